package ratelimit

import (
	"errors"
	"strconv"
	"time"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"

	"github.com/LerianStudio/lib-resilience/resilience"
)

// ErrRateLimited is the stable sentinel for rate-limited rejections.
var ErrRateLimited = errors.New("rate limit exceeded")

// Error is the structured error for a 429-equivalent rejection.
type Error struct {
	Code        string `json:"error_code"`
	RetryAfter  int64  `json:"retry_after"`
	Trace       string `json:"trace_id"`
	Correlation string `json:"correlation_id,omitempty"`

	remaining int
	reset     time.Time
}

var _ resilience.Coded = (*Error)(nil)

// NewError builds a rate-limit error. retryAfter is rounded up to whole
// seconds for the Retry-After header; remaining and reset feed the
// X-RateLimit-* headers.
func NewError(retryAfter time.Duration, remaining int, reset time.Time, correlationID string) *Error {
	if retryAfter < 0 {
		retryAfter = 0
	}

	if remaining < 0 {
		remaining = 0
	}

	seconds := int64(retryAfter / time.Second)
	if retryAfter%time.Second != 0 {
		seconds++
	}

	e := &Error{
		Code:       constant.CodeAPIRateLimitExceeded,
		RetryAfter: seconds,
		Trace:      resilience.NewTraceID(),
		remaining:  remaining,
		reset:      reset,
	}

	if resilience.ValidateCorrelation(e.Trace, correlationID) == nil {
		e.Correlation = correlationID
	}

	return e
}

// Error returns the stable rate-limited message.
func (e *Error) Error() string { return ErrRateLimited.Error() }

// Unwrap returns the ErrRateLimited sentinel.
func (e *Error) Unwrap() error { return ErrRateLimited }

// ErrorCode returns the API_RATE_LIMIT_EXCEEDED catalog code.
func (e *Error) ErrorCode() string { return e.Code }

// TraceID returns the unique trace id of this rejection.
func (e *Error) TraceID() string { return e.Trace }

// CorrelationID returns the optional correlation id.
func (e *Error) CorrelationID() string { return e.Correlation }

// Headers returns the retry hint and quota headers for a 429-equivalent
// response.
func (e *Error) Headers() map[string]string {
	headers := map[string]string{
		constant.HeaderRetryAfter:         strconv.FormatInt(e.RetryAfter, 10),
		constant.HeaderRateLimitRemaining: strconv.Itoa(e.remaining),
	}

	if !e.reset.IsZero() {
		headers[constant.HeaderRateLimitReset] = strconv.FormatInt(e.reset.Unix(), 10)
	}

	return headers
}
