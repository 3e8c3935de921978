// Package circuitbreaker implements a per-scope CLOSED/OPEN/HALF_OPEN state
// machine with concurrency-bounded, FIFO-queued probing in the half-open
// state, plus a scope-keyed registry, optional OpenTelemetry metrics, and a
// health checker that resets breakers once their downstream recovers.
//
// The open timeout is evaluated lazily on the next Execute call; there is no
// background timer. Cancellation of the wrapped operation belongs to the
// caller; the breaker only honors context cancellation while a call waits in
// the half-open probe queue.
package circuitbreaker
