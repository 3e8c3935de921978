// Package resilience provides the shared structured-error envelope used by
// the fault-injection, circuit-breaker, and rate-limit subpackages.
//
// Every structured error in this library carries a stable error code from the
// closed catalog in resilience/constants, a unique trace id, and an optional
// correlation id propagated through context.
package resilience
