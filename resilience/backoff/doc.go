// Package backoff computes capped, jittered exponential retry delays.
//
// ExponentialBackoff carries the attempt counter between calls; Retry wraps
// it into a cancellable retry loop.
package backoff
