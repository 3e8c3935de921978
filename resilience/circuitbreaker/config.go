package circuitbreaker

import (
	"errors"
	"time"
)

var (
	// ErrInvalidFailureThreshold indicates a non-positive failure threshold.
	ErrInvalidFailureThreshold = errors.New("circuitbreaker: failure threshold must be positive")
	// ErrInvalidSuccessThreshold indicates a non-positive success threshold.
	ErrInvalidSuccessThreshold = errors.New("circuitbreaker: success threshold must be positive")
	// ErrInvalidTimeout indicates a non-positive open timeout.
	ErrInvalidTimeout = errors.New("circuitbreaker: timeout must be positive")
	// ErrInvalidMaxConcurrentProbes indicates a non-positive probe limit.
	ErrInvalidMaxConcurrentProbes = errors.New("circuitbreaker: max concurrent probes must be positive")
	// ErrEmptyScope indicates an empty endpoint scope.
	ErrEmptyScope = errors.New("circuitbreaker: endpoint scope must not be empty")
)

// Config holds circuit breaker configuration. Invalid values are fatal at
// construction time and never silently defaulted.
type Config struct {
	FailureThreshold    int           // Consecutive failures that open the circuit
	SuccessThreshold    int           // Consecutive probe successes that close it again
	Timeout             time.Duration // Cooldown before the next probe is admitted
	MaxConcurrentProbes int           // Probe admission bound while half-open
}

// Validate checks every threshold. It returns the first violation found.
func (c Config) Validate() error {
	if c.FailureThreshold <= 0 {
		return ErrInvalidFailureThreshold
	}

	if c.SuccessThreshold <= 0 {
		return ErrInvalidSuccessThreshold
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxConcurrentProbes <= 0 {
		return ErrInvalidMaxConcurrentProbes
	}

	return nil
}

// DefaultConfig provides balanced settings for most endpoints.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		MaxConcurrentProbes: 1,
	}
}

// AggressiveConfig for endpoints requiring fast failure detection.
func AggressiveConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             10 * time.Second,
		MaxConcurrentProbes: 1,
	}
}

// ConservativeConfig for endpoints that should tolerate more failures
// before tripping and demand more evidence before closing again.
func ConservativeConfig() Config {
	return Config{
		FailureThreshold:    10,
		SuccessThreshold:    3,
		Timeout:             60 * time.Second,
		MaxConcurrentProbes: 2,
	}
}
