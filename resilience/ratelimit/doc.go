// Package ratelimit tracks rate-limited status per scope and derives retry
// waits from dual Retry-After hints.
//
// A rate-limited response may carry the hint as delta-seconds, as an absolute
// HTTP-date, or both. The effective delay is always clamped to zero or more
// and, when both hints are present, honors the shorter of the two. The delay
// is anchored at the moment RecordFailure is called, so CanRetry does not
// drift against a moving clock.
package ratelimit
