package circuitbreaker

import (
	"errors"
	"strconv"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"

	"github.com/LerianStudio/lib-resilience/resilience"
)

// ErrOpen is the stable sentinel for calls rejected by an open circuit.
// Every OpenError unwraps to it, so callers can match with errors.Is.
var ErrOpen = errors.New("circuit breaker open")

// OpenError is the structured error returned when an open circuit rejects a
// call before the operation is invoked. Its message is stable regardless of
// which underlying failure opened the circuit.
type OpenError struct {
	Code             string `json:"error_code"`
	State            State  `json:"state"`
	FailureCount     int    `json:"failure_count"`
	TimeoutMs        int64  `json:"timeout_ms"`
	EndpointScope    string `json:"endpoint_scope"`
	ConcurrentProbes int    `json:"concurrent_probes"`
	Trace            string `json:"trace_id"`
	Correlation      string `json:"correlation_id,omitempty"`
}

var _ resilience.Coded = (*OpenError)(nil)

// Error returns the stable circuit-open message.
func (e *OpenError) Error() string { return ErrOpen.Error() }

// Unwrap returns the ErrOpen sentinel.
func (e *OpenError) Unwrap() error { return ErrOpen }

// ErrorCode returns the CIRCUIT_BREAKER_OPEN catalog code.
func (e *OpenError) ErrorCode() string { return e.Code }

// TraceID returns the unique trace id of this rejection.
func (e *OpenError) TraceID() string { return e.Trace }

// CorrelationID returns the optional correlation id.
func (e *OpenError) CorrelationID() string { return e.Correlation }

// Headers returns the breaker diagnostic headers a boundary layer attaches
// to a 503-equivalent response.
func (e *OpenError) Headers() map[string]string {
	return map[string]string{
		constant.HeaderCircuitBreakerState:            string(e.State),
		constant.HeaderCircuitBreakerFailureCount:     strconv.Itoa(e.FailureCount),
		constant.HeaderCircuitBreakerTimeout:          strconv.FormatInt(e.TimeoutMs, 10),
		constant.HeaderCircuitBreakerEndpoint:         e.EndpointScope,
		constant.HeaderCircuitBreakerConcurrentProbes: strconv.Itoa(e.ConcurrentProbes),
	}
}
