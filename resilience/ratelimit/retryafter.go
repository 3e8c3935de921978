package ratelimit

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRetryAfter indicates a Retry-After value that is neither
// delta-seconds nor a valid HTTP-date.
var ErrInvalidRetryAfter = errors.New("ratelimit: invalid Retry-After value")

// ParseRetryAfter parses a Retry-After header value into a delay relative to
// now. Delta-seconds and HTTP-date forms are accepted; negative seconds and
// past dates clamp to zero.
func ParseRetryAfter(value string, now time.Time) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, nil
		}

		return time.Duration(seconds) * time.Second, nil
	}

	if date, err := http.ParseTime(value); err == nil {
		delay := date.Sub(now)
		if delay < 0 {
			return 0, nil
		}

		return delay, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidRetryAfter, value)
}

// SetRetryAfterHeader records a raw Retry-After header value as the matching
// hint: delta-seconds set the seconds hint, HTTP-dates set the date hint.
func (s *State) SetRetryAfterHeader(value string) error {
	value = strings.TrimSpace(value)

	if seconds, err := strconv.Atoi(value); err == nil {
		s.SetRetryAfterSeconds(seconds)
		return nil
	}

	if date, err := http.ParseTime(value); err == nil {
		s.SetRetryAfterDate(date)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidRetryAfter, value)
}
