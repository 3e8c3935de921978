package circuitbreaker

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"
)

// StateChangeListener is notified when a breaker changes state.
type StateChangeListener interface {
	OnStateChange(scope string, from State, to State)
}

// Registry owns one breaker per endpoint scope. Get-or-create is serialized
// so concurrent first access to a new scope never produces two breakers.
type Registry struct {
	mu        sync.RWMutex
	breakers  map[string]*Breaker
	listeners []StateChangeListener
	logger    log.Logger
	metrics   *Metrics
	clock     func() time.Time
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock sets the time source handed to every breaker the
// registry creates.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
		}
	}
}

// WithRegistryMetrics attaches a metrics recorder shared by every breaker
// the registry creates. A nil recorder disables metrics.
func WithRegistryMetrics(metrics *Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// NewRegistry creates an empty breaker registry. A nil logger is replaced
// with a no-op logger.
func NewRegistry(logger log.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}

	r := &Registry{
		breakers: make(map[string]*Breaker),
		logger:   logger,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GetBreaker returns the existing breaker for scope, or constructs and
// stores one tagged with that scope. Idempotent per scope: repeated calls
// never create a second instance.
func (r *Registry) GetBreaker(scope string, cfg Config) (*Breaker, error) {
	r.mu.RLock()
	breaker, exists := r.breakers[scope]
	r.mu.RUnlock()

	if exists {
		return breaker, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if breaker, exists = r.breakers[scope]; exists {
		return breaker, nil
	}

	breaker, err := New(scope, cfg,
		WithClock(r.clock),
		WithLogger(r.logger),
		WithMetrics(r.metrics),
		withTransitionHook(r.handleStateChange),
	)
	if err != nil {
		return nil, err
	}

	r.breakers[scope] = breaker

	r.logger.Log(context.Background(), log.LevelInfo, "created circuit breaker",
		log.String("scope", scope))

	return breaker, nil
}

// State returns the current state for scope, or StateUnknown when no breaker
// exists for it.
func (r *Registry) State(scope string) State {
	r.mu.RLock()
	breaker, exists := r.breakers[scope]
	r.mu.RUnlock()

	if !exists {
		return StateUnknown
	}

	return breaker.currentState()
}

// Reset resets a single scope's breaker to closed. Unknown scopes are a no-op.
func (r *Registry) Reset(scope string) {
	r.mu.RLock()
	breaker, exists := r.breakers[scope]
	r.mu.RUnlock()

	if !exists {
		return
	}

	breaker.Reset()
	r.logger.Log(context.Background(), log.LevelInfo, "circuit breaker reset",
		log.String("scope", scope))
}

// ResetAll resets every owned breaker.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	breakers := make([]*Breaker, 0, len(r.breakers))

	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.RUnlock()

	for _, b := range breakers {
		b.Reset()
	}

	r.logger.Log(context.Background(), log.LevelInfo, "all circuit breakers reset",
		log.Int("count", len(breakers)))
}

// GetBreakerCount returns the number of owned breakers.
func (r *Registry) GetBreakerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.breakers)
}

// GetBreakerStates returns a snapshot per owned scope.
func (r *Registry) GetBreakerStates() map[string]Snapshot {
	r.mu.RLock()
	breakers := make(map[string]*Breaker, len(r.breakers))

	for scope, b := range r.breakers {
		breakers[scope] = b
	}
	r.mu.RUnlock()

	states := make(map[string]Snapshot, len(breakers))
	for scope, b := range breakers {
		states[scope] = b.GetState()
	}

	return states
}

// RegisterStateChangeListener registers a listener for state change
// notifications across all scopes. Nil listeners are ignored.
func (r *Registry) RegisterStateChangeListener(listener StateChangeListener) {
	if listener == nil {
		r.logger.Log(context.Background(), log.LevelWarn, "ignoring nil state change listener")
		return
	}

	r.mu.Lock()
	r.listeners = append(r.listeners, listener)
	r.mu.Unlock()
}

// handleStateChange fans a breaker transition out to registered listeners.
// Listeners run in goroutines so a slow listener never blocks the breaker.
func (r *Registry) handleStateChange(scope string, from, to State) {
	r.mu.RLock()
	listeners := make([]StateChangeListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, listener := range listeners {
		go func(l StateChangeListener) {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Log(context.Background(), log.LevelError, "state change listener panicked",
						log.String("scope", scope),
						log.Any("panic", rec))
				}
			}()

			l.OnStateChange(scope, from, to)
		}(listener)
	}
}
