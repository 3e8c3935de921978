package circuitbreaker

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"
)

var (
	// ErrInvalidHealthCheckInterval indicates a non-positive health check interval.
	ErrInvalidHealthCheckInterval = errors.New("circuitbreaker: health check interval must be positive")
	// ErrInvalidHealthCheckTimeout indicates a non-positive health check timeout.
	ErrInvalidHealthCheckTimeout = errors.New("circuitbreaker: health check timeout must be positive")
)

// HealthCheckFunc probes whether a scope's downstream has recovered.
type HealthCheckFunc func(ctx context.Context) error

// HealthChecker periodically probes scopes whose breakers are not closed and
// resets them once the downstream recovers. Register it as a state change
// listener on the Registry to get an immediate probe when a circuit opens.
type HealthChecker struct {
	registry       *Registry
	probes         map[string]HealthCheckFunc
	interval       time.Duration
	checkTimeout   time.Duration
	logger         log.Logger
	stopChan       chan struct{}
	immediateCheck chan string
	wg             sync.WaitGroup
	mu             sync.RWMutex
}

// NewHealthChecker creates a health checker bound to the registry.
// interval is how often probes run; checkTimeout bounds each probe.
func NewHealthChecker(registry *Registry, interval, checkTimeout time.Duration, logger log.Logger) (*HealthChecker, error) {
	if interval <= 0 {
		return nil, ErrInvalidHealthCheckInterval
	}

	if checkTimeout <= 0 {
		return nil, ErrInvalidHealthCheckTimeout
	}

	if logger == nil {
		logger = log.NewNop()
	}

	return &HealthChecker{
		registry:       registry,
		probes:         make(map[string]HealthCheckFunc),
		interval:       interval,
		checkTimeout:   checkTimeout,
		logger:         logger,
		stopChan:       make(chan struct{}),
		immediateCheck: make(chan string, 10),
	}, nil
}

// Register adds a scope to health checking.
func (hc *HealthChecker) Register(scope string, probe HealthCheckFunc) {
	hc.mu.Lock()
	hc.probes[scope] = probe
	hc.mu.Unlock()

	hc.logger.Log(context.Background(), log.LevelInfo, "registered health check",
		log.String("scope", scope))
}

// Start begins the health check loop in a separate goroutine.
func (hc *HealthChecker) Start() {
	hc.wg.Add(1)

	go hc.loop()
}

// Stop gracefully stops the health checker.
func (hc *HealthChecker) Stop() {
	close(hc.stopChan)
	hc.wg.Wait()
}

func (hc *HealthChecker) loop() {
	defer hc.wg.Done()

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hc.checkAll()
		case scope := <-hc.immediateCheck:
			hc.checkScope(scope)
		case <-hc.stopChan:
			return
		}
	}
}

func (hc *HealthChecker) checkAll() {
	hc.mu.RLock()
	probes := make(map[string]HealthCheckFunc, len(hc.probes))
	maps.Copy(probes, hc.probes)
	hc.mu.RUnlock()

	for scope := range probes {
		hc.checkScope(scope)
	}
}

// checkScope probes one scope and resets its breaker on recovery. Scopes
// whose breaker is already closed are skipped.
func (hc *HealthChecker) checkScope(scope string) {
	hc.mu.RLock()
	probe, exists := hc.probes[scope]
	hc.mu.RUnlock()

	if !exists {
		return
	}

	if hc.registry.State(scope) == StateClosed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), hc.checkTimeout)
	err := probe(ctx)

	cancel()

	if err == nil {
		hc.logger.Log(context.Background(), log.LevelInfo, "scope recovered, resetting circuit breaker",
			log.String("scope", scope))
		hc.registry.Reset(scope)

		return
	}

	hc.logger.Log(context.Background(), log.LevelWarn, "scope still unhealthy",
		log.String("scope", scope),
		log.Err(err))
}

// Status returns the breaker state per registered scope.
func (hc *HealthChecker) Status() map[string]State {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := make(map[string]State, len(hc.probes))
	for scope := range hc.probes {
		status[scope] = hc.registry.State(scope)
	}

	return status
}

// OnStateChange implements StateChangeListener. A circuit opening triggers
// an immediate probe instead of waiting for the next tick.
func (hc *HealthChecker) OnStateChange(scope string, _ State, to State) {
	if to != StateOpen {
		return
	}

	select {
	case hc.immediateCheck <- scope:
	default:
		// Channel full; the next interval tick covers it.
	}
}
