package backoff

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	mrand "math/rand/v2"
	"sync"
	"time"
)

const maxShift = 62

var (
	// ErrInvalidBase indicates a non-positive base delay.
	ErrInvalidBase = errors.New("backoff: base delay must be positive")
	// ErrInvalidMax indicates a max delay smaller than the base.
	ErrInvalidMax = errors.New("backoff: max delay must be at least the base delay")
)

// ExponentialBackoff computes min(base * 2^attempt, max) plus capped jitter,
// incrementing the attempt counter on every NextDelay call.
//
// For a given attempt value the returned delay always falls in
// [base*2^attempt, max*(1+jitterFactor)].
type ExponentialBackoff struct {
	mu sync.Mutex

	base         time.Duration
	max          time.Duration
	jitterFactor float64
	attempt      int

	randFloat func() float64
}

// Option customizes an ExponentialBackoff.
type Option func(*ExponentialBackoff)

// WithJitterFactor sets the initial jitter factor, clamped into [0, 1].
func WithJitterFactor(factor float64) Option {
	return func(b *ExponentialBackoff) {
		b.jitterFactor = clampJitter(factor)
	}
}

// WithRandFloat replaces the jitter randomness source for deterministic
// tests. The function must return values in [0, 1).
func WithRandFloat(randFloat func() float64) Option {
	return func(b *ExponentialBackoff) {
		if randFloat != nil {
			b.randFloat = randFloat
		}
	}
}

// NewExponentialBackoff creates a backoff starting at attempt 0 with no
// jitter unless configured otherwise.
func NewExponentialBackoff(base, maxDelay time.Duration, opts ...Option) (*ExponentialBackoff, error) {
	if base <= 0 {
		return nil, ErrInvalidBase
	}

	if maxDelay < base {
		return nil, ErrInvalidMax
	}

	b := &ExponentialBackoff{
		base:      base,
		max:       maxDelay,
		randFloat: secureFloat,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// NextDelay returns the delay for the current attempt and increments the
// attempt counter.
func (b *ExponentialBackoff) NextDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := exponential(b.base, b.attempt)
	if delay > b.max {
		delay = b.max
	}

	jitter := time.Duration(math.Floor(float64(delay) * b.jitterFactor * b.randFloat()))
	b.attempt++

	return delay + jitter
}

// Reset restarts the sequence at attempt 0.
func (b *ExponentialBackoff) Reset() {
	b.mu.Lock()
	b.attempt = 0
	b.mu.Unlock()
}

// SetJitterFactor updates the jitter factor, clamped into [0, 1].
func (b *ExponentialBackoff) SetJitterFactor(factor float64) {
	b.mu.Lock()
	b.jitterFactor = clampJitter(factor)
	b.mu.Unlock()
}

// Attempt returns the number of NextDelay calls since the last Reset.
func (b *ExponentialBackoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.attempt
}

func clampJitter(factor float64) float64 {
	if factor < 0 || math.IsNaN(factor) {
		return 0
	}

	if factor > 1 {
		return 1
	}

	return factor
}

// exponential computes base * 2^attempt with overflow protection.
func exponential(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << attempt

	baseInt := int64(base)
	if baseInt > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(baseInt * multiplier)
}

// secureFloat returns a uniform value in [0, 1) from crypto/rand, falling
// back to a PCG seeded from whatever entropy is available.
func secureFloat() float64 {
	var buf [8]byte

	if _, err := rand.Read(buf[:]); err != nil {
		rng := mrand.New(mrand.NewPCG(uint64(time.Now().UnixNano()), 0)) // #nosec G404 -- fallback when crypto/rand fails

		return rng.Float64()
	}

	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// SleepWithContext sleeps for the given duration but respects context
// cancellation. Zero or negative durations return immediately.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

// Retry runs fn up to maxAttempts times, sleeping the backoff's next delay
// between attempts. The backoff is reset on success. The last error is
// wrapped and returned once attempts are exhausted.
func Retry(ctx context.Context, b *ExponentialBackoff, maxAttempts int, fn func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		return errors.New("backoff: max attempts must be positive")
	}

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			b.Reset()
			return nil
		}

		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}

		if err := SleepWithContext(ctx, b.NextDelay()); err != nil {
			return err
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", maxAttempts, lastErr)
}
