package constant

const (
	// HeaderRetryAfter carries the retry hint on rate-limited responses,
	// either as delta-seconds or as an HTTP-date.
	HeaderRetryAfter = "Retry-After"
	// HeaderRateLimitRemaining carries the remaining requests in the current window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	// HeaderRateLimitReset carries the reset time of the current window.
	HeaderRateLimitReset = "X-RateLimit-Reset"

	// HeaderCircuitBreakerState carries the breaker state on rejected responses.
	HeaderCircuitBreakerState = "X-CircuitBreaker-State"
	// HeaderCircuitBreakerFailureCount carries the breaker failure count.
	HeaderCircuitBreakerFailureCount = "X-CircuitBreaker-FailureCount"
	// HeaderCircuitBreakerTimeout carries the breaker open-timeout in milliseconds.
	HeaderCircuitBreakerTimeout = "X-CircuitBreaker-Timeout"
	// HeaderCircuitBreakerEndpoint carries the endpoint scope of the breaker.
	HeaderCircuitBreakerEndpoint = "X-CircuitBreaker-Endpoint"
	// HeaderCircuitBreakerConcurrentProbes carries the number of in-flight probes.
	HeaderCircuitBreakerConcurrentProbes = "X-CircuitBreaker-ConcurrentProbes"

	// HeaderCorrelationID is the request header boundary layers read the
	// caller-supplied correlation id from.
	HeaderCorrelationID = "X-Correlation-Id"
)
