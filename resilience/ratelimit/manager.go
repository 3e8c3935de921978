package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"
)

// Manager keys rate-limit states by scope. Get-or-create is serialized so
// concurrent first access to a new scope never produces two states.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*State
	logger log.Logger
	clock  func() time.Time
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithManagerClock sets the time source handed to every state the manager
// creates.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.clock = now
		}
	}
}

// NewManager creates an empty rate-limit manager. A nil logger is replaced
// with a no-op logger.
func NewManager(logger log.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}

	m := &Manager{
		states: make(map[string]*State),
		logger: logger,
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// StateFor returns the existing state for scope, creating one on first access.
func (m *Manager) StateFor(scope string) *State {
	m.mu.RLock()
	state, exists := m.states[scope]
	m.mu.RUnlock()

	if exists {
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists = m.states[scope]; exists {
		return state
	}

	state = NewState(WithStateClock(m.clock))
	m.states[scope] = state

	return state
}

// RecordFailure marks the scope rate-limited, anchoring the current
// effective delay.
func (m *Manager) RecordFailure(scope string) {
	m.StateFor(scope).RecordFailure()
	m.logger.Log(context.Background(), log.LevelWarn, "scope rate limited",
		log.String("scope", scope))
}

// RecordSuccess clears the scope's hints and limited status.
func (m *Manager) RecordSuccess(scope string) {
	m.StateFor(scope).RecordSuccess()
}

// CanRetry reports whether the scope's anchored delay has elapsed.
func (m *Manager) CanRetry(scope string) bool {
	return m.StateFor(scope).CanRetry()
}

// IsRateLimited reports whether the scope is currently rate-limited.
func (m *Manager) IsRateLimited(scope string) bool {
	return m.StateFor(scope).IsRateLimited()
}

// EffectiveDelay returns the scope's current derived wait time.
func (m *Manager) EffectiveDelay(scope string) time.Duration {
	return m.StateFor(scope).EffectiveDelay()
}

// Scopes returns the scopes the manager currently tracks.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scopes := make([]string, 0, len(m.states))
	for scope := range m.states {
		scopes = append(scopes, scope)
	}

	return scopes
}

// Reset discards every tracked state.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.states = make(map[string]*State)
	m.mu.Unlock()

	m.logger.Log(context.Background(), log.LevelInfo, "rate limit manager reset")
}
