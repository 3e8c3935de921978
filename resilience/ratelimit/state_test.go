//go:build unit

package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestState_EffectiveDelay(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()

	tests := []struct {
		name  string
		setup func(*State)
		want  time.Duration
	}{
		{
			name:  "no hints means zero delay",
			setup: func(_ *State) {},
			want:  0,
		},
		{
			name:  "seconds hint only",
			setup: func(s *State) { s.SetRetryAfterSeconds(7) },
			want:  7 * time.Second,
		},
		{
			name:  "date hint only",
			setup: func(s *State) { s.SetRetryAfterDate(clock.Now().Add(12 * time.Second)) },
			want:  12 * time.Second,
		},
		{
			name: "shorter seconds hint wins",
			setup: func(s *State) {
				s.SetRetryAfterSeconds(5)
				s.SetRetryAfterDate(clock.Now().Add(15 * time.Second))
			},
			want: 5 * time.Second,
		},
		{
			name: "shorter date hint wins",
			setup: func(s *State) {
				s.SetRetryAfterSeconds(10)
				s.SetRetryAfterDate(clock.Now().Add(3 * time.Second))
			},
			want: 3 * time.Second,
		},
		{
			name:  "past date clamps to zero",
			setup: func(s *State) { s.SetRetryAfterDate(clock.Now().Add(-time.Minute)) },
			want:  0,
		},
		{
			name:  "negative seconds clamp to zero",
			setup: func(s *State) { s.SetRetryAfterSeconds(-3) },
			want:  0,
		},
		{
			name: "past date beats seconds after clamping",
			setup: func(s *State) {
				s.SetRetryAfterSeconds(10)
				s.SetRetryAfterDate(clock.Now().Add(-time.Second))
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewState(WithStateClock(clock.Now))
			tt.setup(s)

			assert.Equal(t, tt.want, s.EffectiveDelay())
		})
	}
}

func TestState_RecordFailureAnchorsDelay(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	s := NewState(WithStateClock(clock.Now))

	s.SetRetryAfterDate(clock.Now().Add(10 * time.Second))
	s.RecordFailure()

	require.True(t, s.IsRateLimited())
	require.False(t, s.CanRetry())

	// The wait is anchored at the failure time, not recomputed from the date
	// hint: after 10s from the failure the scope can retry.
	clock.Advance(9 * time.Second)
	assert.False(t, s.CanRetry())

	clock.Advance(time.Second)
	assert.True(t, s.CanRetry())
}

func TestState_CanRetry_NeverFailed(t *testing.T) {
	t.Parallel()

	s := NewState()

	assert.True(t, s.CanRetry())
	assert.False(t, s.IsRateLimited())
	assert.Zero(t, s.FailureCount())
}

func TestState_RecordSuccessClearsEverything(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	s := NewState(WithStateClock(clock.Now))

	s.SetRetryAfterSeconds(30)
	s.SetRetryAfterDate(clock.Now().Add(time.Minute))
	s.RecordFailure()
	s.RecordFailure()

	require.Equal(t, 2, s.FailureCount())
	require.True(t, s.IsRateLimited())

	s.RecordSuccess()

	assert.False(t, s.IsRateLimited())
	assert.Zero(t, s.FailureCount())
	assert.Zero(t, s.EffectiveDelay())
	assert.True(t, s.CanRetry())
}

func TestState_FailureCountAccumulates(t *testing.T) {
	t.Parallel()

	s := NewState()

	for i := 1; i <= 3; i++ {
		s.RecordFailure()
		assert.Equal(t, i, s.FailureCount())
	}
}

func TestState_RepeatFailureReanchors(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	s := NewState(WithStateClock(clock.Now))

	s.SetRetryAfterSeconds(5)
	s.RecordFailure()

	clock.Advance(4 * time.Second)
	require.False(t, s.CanRetry())

	// A second failure restarts the anchored wait from now.
	s.RecordFailure()

	clock.Advance(4 * time.Second)
	assert.False(t, s.CanRetry())

	clock.Advance(time.Second)
	assert.True(t, s.CanRetry())
}

func TestManager_StateForIsIdempotentPerScope(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)

	first := m.StateFor("/api/users")
	second := m.StateFor("/api/users")

	assert.Same(t, first, second)
	assert.Len(t, m.Scopes(), 1)
}

func TestManager_ScopeIsolation(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewManager(nil, WithManagerClock(clock.Now))

	m.StateFor("/api/users").SetRetryAfterSeconds(30)
	m.RecordFailure("/api/users")

	assert.True(t, m.IsRateLimited("/api/users"))
	assert.False(t, m.CanRetry("/api/users"))

	assert.False(t, m.IsRateLimited("/api/orders"))
	assert.True(t, m.CanRetry("/api/orders"))
}

func TestManager_RecordSuccessClearsScope(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)

	m.StateFor("/api/users").SetRetryAfterSeconds(30)
	m.RecordFailure("/api/users")
	require.True(t, m.IsRateLimited("/api/users"))

	m.RecordSuccess("/api/users")

	assert.False(t, m.IsRateLimited("/api/users"))
	assert.Zero(t, m.EffectiveDelay("/api/users"))
}

func TestManager_Reset(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)

	m.RecordFailure("/a")
	m.RecordFailure("/b")
	require.Len(t, m.Scopes(), 2)

	m.Reset()

	assert.Empty(t, m.Scopes())
	assert.False(t, m.IsRateLimited("/a"))
}
