package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"

	"github.com/LerianStudio/lib-resilience/resilience"
)

// State represents the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

// Operation is the asynchronous work a breaker guards.
type Operation func(ctx context.Context) (any, error)

// errOperationPanic marks an operation that panicked mid-flight; the panic is
// re-raised after the probe slot is released.
var errOperationPanic = errors.New("circuitbreaker: operation panicked")

// probeWaiter is one queued half-open caller. admitted is set under the
// breaker lock when a freed slot is handed to this waiter.
type probeWaiter struct {
	ch       chan struct{}
	admitted bool
}

// Snapshot is an immutable view of a breaker's state.
type Snapshot struct {
	EndpointScope    string
	State            State
	FailureCount     int
	SuccessCount     int
	ConcurrentProbes int
	ProbeQueueLength int
	LastFailureTime  time.Time
	LastSuccessTime  time.Time
	NextAttemptTime  time.Time
}

// Breaker is a per-scope circuit breaker. A Breaker instance is exclusively
// owned by one logical scope; cross-scope isolation comes from the Registry.
type Breaker struct {
	mu sync.Mutex

	scope string
	cfg   Config

	state            State
	failureCount     int
	successCount     int
	concurrentProbes int
	probeQueue       []*probeWaiter
	lastFailureTime  time.Time
	lastSuccessTime  time.Time
	nextAttemptTime  time.Time

	now          func() time.Time
	logger       log.Logger
	metrics      *Metrics
	onTransition func(scope string, from, to State)
}

// Option customizes a Breaker.
type Option func(*Breaker)

// WithClock replaces the breaker's time source. Intended for tests that need
// to advance past the open timeout deterministically.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the breaker's logger.
func WithLogger(logger log.Logger) Option {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics attaches an optional metrics recorder. A nil recorder is safe.
func WithMetrics(metrics *Metrics) Option {
	return func(b *Breaker) {
		b.metrics = metrics
	}
}

func withTransitionHook(hook func(scope string, from, to State)) Option {
	return func(b *Breaker) {
		b.onTransition = hook
	}
}

// New creates a closed breaker for the given endpoint scope.
func New(scope string, cfg Config, opts ...Option) (*Breaker, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scope %q: %w", scope, err)
	}

	b := &Breaker{
		scope:  scope,
		cfg:    cfg,
		state:  StateClosed,
		now:    time.Now,
		logger: log.NewNop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Execute runs op through the breaker.
//
// While open and before the next attempt time, the call is rejected with an
// OpenError and op is never invoked. While half-open, at most
// MaxConcurrentProbes operations run concurrently; excess callers queue FIFO
// and resume as slots free. Operation errors are propagated unchanged.
func (b *Breaker) Execute(ctx context.Context, op Operation) (any, error) {
	wasProbe, err := b.admit(ctx)
	if err != nil {
		return nil, err
	}

	completed := false

	defer func() {
		if !completed {
			b.settle(ctx, wasProbe, errOperationPanic)
		}
	}()

	result, opErr := op(ctx)
	completed = true

	b.settle(ctx, wasProbe, opErr)

	if opErr != nil {
		return nil, opErr
	}

	return result, nil
}

// admit decides whether the call may run now. It reports whether the call
// was admitted as a half-open probe (and therefore holds a probe slot).
func (b *Breaker) admit(ctx context.Context) (bool, error) {
	b.mu.Lock()

	for {
		switch b.state {
		case StateClosed:
			b.mu.Unlock()
			return false, nil

		case StateOpen:
			if b.now().Before(b.nextAttemptTime) {
				err := b.openErrorLocked(ctx)
				b.mu.Unlock()

				b.recordRejection(ctx)

				return false, err
			}

			b.transitionLocked(ctx, StateHalfOpen)

		case StateHalfOpen:
			if b.concurrentProbes < b.cfg.MaxConcurrentProbes {
				b.concurrentProbes++
				b.mu.Unlock()

				return true, nil
			}

			waiter := &probeWaiter{ch: make(chan struct{})}
			b.probeQueue = append(b.probeQueue, waiter)
			b.mu.Unlock()

			select {
			case <-waiter.ch:
				b.mu.Lock()

				if waiter.admitted {
					b.mu.Unlock()
					return true, nil
				}
				// Woken by a state transition; re-evaluate from the top.

			case <-ctx.Done():
				b.abandonWaiter(waiter)
				return false, ctx.Err()
			}

		default:
			b.mu.Unlock()
			return false, fmt.Errorf("circuitbreaker: scope %q in unknown state", b.scope)
		}
	}
}

// abandonWaiter removes a cancelled caller from the probe queue. If the
// waiter already won a slot in the race with cancellation, the slot is
// released back to the queue.
func (b *Breaker) abandonWaiter(waiter *probeWaiter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if waiter.admitted {
		if b.concurrentProbes > 0 {
			b.concurrentProbes--
		}

		b.signalNextLocked()

		return
	}

	for i, w := range b.probeQueue {
		if w == waiter {
			b.probeQueue = append(b.probeQueue[:i], b.probeQueue[i+1:]...)
			break
		}
	}
}

// settle applies the operation outcome and releases the probe slot.
func (b *Breaker) settle(ctx context.Context, wasProbe bool, opErr error) {
	b.mu.Lock()

	if opErr != nil {
		b.onFailureLocked(ctx)
	} else {
		b.onSuccessLocked(ctx)
	}

	// A closing or reopening transition already cleared the probe
	// accounting and drained the queue.
	if wasProbe && b.state == StateHalfOpen {
		if b.concurrentProbes > 0 {
			b.concurrentProbes--
		}

		b.signalNextLocked()
	}

	b.mu.Unlock()

	b.recordExecution(ctx, opErr)
}

func (b *Breaker) onSuccessLocked(ctx context.Context) {
	b.failureCount = 0
	b.lastSuccessTime = b.now()

	if b.state == StateHalfOpen {
		b.successCount++

		if b.successCount >= b.cfg.SuccessThreshold {
			b.transitionLocked(ctx, StateClosed)
		}
	}
}

func (b *Breaker) onFailureLocked(ctx context.Context) {
	// Capped at the threshold: blocked attempts never reach here, and a
	// failed probe must not push the count past the trip point.
	if b.failureCount < b.cfg.FailureThreshold {
		b.failureCount++
	}

	b.lastFailureTime = b.now()

	switch b.state {
	case StateClosed:
		if b.failureCount >= b.cfg.FailureThreshold {
			b.transitionLocked(ctx, StateOpen)
		}
	case StateHalfOpen:
		b.transitionLocked(ctx, StateOpen)
	}
}

// transitionLocked moves the machine to the target state and applies the
// per-transition resets. Callers hold b.mu.
func (b *Breaker) transitionLocked(ctx context.Context, to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to

	switch to {
	case StateOpen:
		b.nextAttemptTime = b.now().Add(b.cfg.Timeout)
		b.successCount = 0
		b.concurrentProbes = 0
		b.drainQueueLocked()
	case StateHalfOpen:
		b.successCount = 0
		b.concurrentProbes = 0
	case StateClosed:
		b.successCount = 0
		b.concurrentProbes = 0
		b.drainQueueLocked()
	}

	b.logTransition(ctx, from, to)

	if b.onTransition != nil {
		b.onTransition(b.scope, from, to)
	}

	if b.metrics != nil {
		b.metrics.recordTransition(ctx, b.scope, from, to)
	}
}

// signalNextLocked hands a freed probe slot to the queue head, preserving
// FIFO order against newly arriving callers.
func (b *Breaker) signalNextLocked() {
	if len(b.probeQueue) == 0 || b.concurrentProbes >= b.cfg.MaxConcurrentProbes {
		return
	}

	waiter := b.probeQueue[0]
	b.probeQueue = b.probeQueue[1:]
	waiter.admitted = true
	b.concurrentProbes++
	close(waiter.ch)
}

// drainQueueLocked wakes every queued caller without a slot; each one
// re-evaluates the new state on wake.
func (b *Breaker) drainQueueLocked() {
	for _, waiter := range b.probeQueue {
		close(waiter.ch)
	}

	b.probeQueue = nil
}

func (b *Breaker) openErrorLocked(ctx context.Context) *OpenError {
	traceID := resilience.NewTraceID()

	correlationID := resilience.CorrelationIDFromContext(ctx)
	if resilience.ValidateCorrelation(traceID, correlationID) != nil {
		correlationID = ""
	}

	return &OpenError{
		Code:             constant.CodeCircuitBreakerOpen,
		State:            b.state,
		FailureCount:     b.failureCount,
		TimeoutMs:        b.cfg.Timeout.Milliseconds(),
		EndpointScope:    b.scope,
		ConcurrentProbes: b.concurrentProbes,
		Trace:            traceID,
		Correlation:      correlationID,
	}
}

func (b *Breaker) logTransition(ctx context.Context, from, to State) {
	fields := []log.Field{
		log.String("scope", b.scope),
		log.String("from", string(from)),
		log.String("to", string(to)),
	}

	switch to {
	case StateOpen:
		b.logger.Log(ctx, log.LevelError, "circuit breaker opened, requests will fast-fail", fields...)
	case StateHalfOpen:
		b.logger.Log(ctx, log.LevelInfo, "circuit breaker half-open, probing recovery", fields...)
	case StateClosed:
		b.logger.Log(ctx, log.LevelInfo, "circuit breaker closed", fields...)
	}
}

func (b *Breaker) recordRejection(ctx context.Context) {
	if b.metrics != nil {
		b.metrics.recordRejection(ctx, b.scope)
	}
}

func (b *Breaker) recordExecution(ctx context.Context, opErr error) {
	if b.metrics != nil {
		b.metrics.recordExecution(ctx, b.scope, opErr == nil)
	}
}

// GetState returns an immutable snapshot of the breaker.
func (b *Breaker) GetState() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		EndpointScope:    b.scope,
		State:            b.state,
		FailureCount:     b.failureCount,
		SuccessCount:     b.successCount,
		ConcurrentProbes: b.concurrentProbes,
		ProbeQueueLength: len(b.probeQueue),
		LastFailureTime:  b.lastFailureTime,
		LastSuccessTime:  b.lastSuccessTime,
		NextAttemptTime:  b.nextAttemptTime,
	}
}

// Reset reinitializes the breaker to CLOSED with all counters zeroed and the
// probe queue emptied.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.concurrentProbes = 0
	b.lastFailureTime = time.Time{}
	b.lastSuccessTime = time.Time{}
	b.nextAttemptTime = time.Time{}
	b.drainQueueLocked()
}

// GetEndpointScope returns the scope the breaker is tagged with.
func (b *Breaker) GetEndpointScope() string { return b.scope }

// GetProbeQueueLength returns the number of callers waiting for a probe slot.
func (b *Breaker) GetProbeQueueLength() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.probeQueue)
}

// IsOpen reports whether the breaker is open.
func (b *Breaker) IsOpen() bool { return b.currentState() == StateOpen }

// IsHalfOpen reports whether the breaker is half-open.
func (b *Breaker) IsHalfOpen() bool { return b.currentState() == StateHalfOpen }

// IsClosed reports whether the breaker is closed.
func (b *Breaker) IsClosed() bool { return b.currentState() == StateClosed }

func (b *Breaker) currentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}
