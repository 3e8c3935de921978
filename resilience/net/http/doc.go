// Package http renders the library's structured errors at a Fiber boundary
// and provides middleware wiring the circuit breaker registry, the rate
// limiter, and the fault registry into request handling.
package http
