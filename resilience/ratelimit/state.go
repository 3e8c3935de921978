package ratelimit

import (
	"sync"
	"time"
)

// State tracks the rate-limit status of a single scope.
type State struct {
	mu sync.Mutex

	retryAfterSeconds *int
	retryAfterDate    *time.Time
	lastFailureTime   time.Time
	anchoredDelay     time.Duration
	failureCount      int
	rateLimited       bool

	now func() time.Time
}

// StateOption customizes a State.
type StateOption func(*State)

// WithStateClock replaces the state's time source for deterministic tests.
func WithStateClock(now func() time.Time) StateOption {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// NewState creates a fresh, un-limited state.
func NewState(opts ...StateOption) *State {
	s := &State{now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetRetryAfterSeconds records a delta-seconds retry hint.
func (s *State) SetRetryAfterSeconds(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retryAfterSeconds = &seconds
}

// SetRetryAfterDate records an absolute-date retry hint.
func (s *State) SetRetryAfterDate(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retryAfterDate = &date
}

// EffectiveDelay derives the wait time from the recorded hints.
//
// Each hint is clamped to zero or more, protecting against clock skew and
// dates already in the past. With both hints present the shorter wins; with
// neither the delay is zero.
func (s *State) EffectiveDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.effectiveDelayLocked()
}

func (s *State) effectiveDelayLocked() time.Duration {
	var secondsDelay, dateDelay time.Duration

	hasSeconds := s.retryAfterSeconds != nil
	if hasSeconds {
		secondsDelay = time.Duration(*s.retryAfterSeconds) * time.Second
		if secondsDelay < 0 {
			secondsDelay = 0
		}
	}

	hasDate := s.retryAfterDate != nil
	if hasDate {
		dateDelay = s.retryAfterDate.Sub(s.now())
		if dateDelay < 0 {
			dateDelay = 0
		}
	}

	switch {
	case hasSeconds && hasDate:
		return min(secondsDelay, dateDelay)
	case hasSeconds:
		return secondsDelay
	case hasDate:
		return dateDelay
	default:
		return 0
	}
}

// RecordFailure marks the scope rate-limited and anchors the effective delay
// at the failure timestamp.
func (s *State) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastFailureTime = s.now()
	s.anchoredDelay = s.effectiveDelayLocked()
	s.failureCount++
	s.rateLimited = true
}

// RecordSuccess fully clears the retry hints, the limited flag, and the
// failure count. It is independent of circuit-breaker state.
func (s *State) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retryAfterSeconds = nil
	s.retryAfterDate = nil
	s.rateLimited = false
	s.failureCount = 0
	s.anchoredDelay = 0
}

// CanRetry reports whether the delay anchored at the last failure has
// elapsed. A scope that never failed can always retry.
func (s *State) CanRetry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rateLimited {
		return true
	}

	return !s.now().Before(s.lastFailureTime.Add(s.anchoredDelay))
}

// IsRateLimited reports whether the scope is currently rate-limited.
func (s *State) IsRateLimited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rateLimited
}

// FailureCount returns the number of failures since the last success.
func (s *State) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failureCount
}
