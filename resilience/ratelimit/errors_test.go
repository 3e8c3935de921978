//go:build unit

package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_RoundsRetryAfterUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		retryAfter time.Duration
		want       int64
	}{
		{"whole seconds", 5 * time.Second, 5},
		{"sub-second rounds up", 1500 * time.Millisecond, 2},
		{"just under a second", 999 * time.Millisecond, 1},
		{"zero stays zero", 0, 0},
		{"negative clamps to zero", -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewError(tt.retryAfter, 0, time.Time{}, "")
			assert.Equal(t, tt.want, e.RetryAfter)
		})
	}
}

func TestError_SentinelAndCode(t *testing.T) {
	t.Parallel()

	e := NewError(3*time.Second, 0, time.Time{}, "")

	assert.True(t, errors.Is(e, ErrRateLimited))
	assert.Equal(t, ErrRateLimited.Error(), e.Error())
	assert.Equal(t, "API_RATE_LIMIT_EXCEEDED", e.ErrorCode())
	assert.NotEmpty(t, e.TraceID())
}

func TestError_TraceIDsUnique(t *testing.T) {
	t.Parallel()

	a := NewError(time.Second, 0, time.Time{}, "")
	b := NewError(time.Second, 0, time.Time{}, "")

	assert.NotEqual(t, a.TraceID(), b.TraceID())
}

func TestError_CorrelationRules(t *testing.T) {
	t.Parallel()

	withCorr := NewError(time.Second, 0, time.Time{}, "corr-1")
	assert.Equal(t, "corr-1", withCorr.CorrelationID())

	without := NewError(time.Second, 0, time.Time{}, "")
	assert.Empty(t, without.CorrelationID())
}

func TestError_Headers(t *testing.T) {
	t.Parallel()

	reset := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)

	e := NewError(7*time.Second, 3, reset, "")

	headers := e.Headers()
	assert.Equal(t, "7", headers["Retry-After"])
	assert.Equal(t, "3", headers["X-RateLimit-Remaining"])
	assert.Equal(t, "1748779230", headers["X-RateLimit-Reset"])
}

func TestError_Headers_OmitResetWhenUnknown(t *testing.T) {
	t.Parallel()

	e := NewError(7*time.Second, 0, time.Time{}, "")

	headers := e.Headers()
	assert.Equal(t, "0", headers["X-RateLimit-Remaining"])
	require.NotContains(t, headers, "X-RateLimit-Reset")
}
