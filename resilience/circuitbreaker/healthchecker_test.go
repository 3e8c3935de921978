//go:build unit

package circuitbreaker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthChecker_Validation(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)

	_, err := NewHealthChecker(reg, 0, time.Second, nil)
	assert.ErrorIs(t, err, ErrInvalidHealthCheckInterval)

	_, err = NewHealthChecker(reg, time.Second, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidHealthCheckTimeout)
}

func TestHealthChecker_ResetsRecoveredScope(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	cfg := testConfig()

	b, err := reg.GetBreaker("/api/users", cfg)
	require.NoError(t, err)
	driveOpen(t, b, cfg)

	var healthy atomic.Bool

	hc, err := NewHealthChecker(reg, 5*time.Millisecond, time.Second, nil)
	require.NoError(t, err)

	hc.Register("/api/users", func(_ context.Context) error {
		if healthy.Load() {
			return nil
		}

		return errors.New("still down")
	})

	hc.Start()
	defer hc.Stop()

	// While unhealthy the breaker stays open.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, StateOpen, reg.State("/api/users"))

	healthy.Store(true)

	require.Eventually(t, func() bool {
		return reg.State("/api/users") == StateClosed
	}, time.Second, 5*time.Millisecond)
}

func TestHealthChecker_SkipsClosedScopes(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)

	_, err := reg.GetBreaker("/api/users", testConfig())
	require.NoError(t, err)

	var probes atomic.Int32

	hc, err := NewHealthChecker(reg, 5*time.Millisecond, time.Second, nil)
	require.NoError(t, err)

	hc.Register("/api/users", func(_ context.Context) error {
		probes.Add(1)
		return nil
	})

	hc.Start()
	time.Sleep(30 * time.Millisecond)
	hc.Stop()

	assert.Zero(t, probes.Load(), "closed scopes must not be probed")
}

func TestHealthChecker_ImmediateProbeWhenCircuitOpens(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	cfg := testConfig()

	var probes atomic.Int32

	// Long interval so only the listener path can trigger the probe.
	hc, err := NewHealthChecker(reg, time.Hour, time.Second, nil)
	require.NoError(t, err)

	hc.Register("/api/users", func(_ context.Context) error {
		probes.Add(1)
		return errors.New("still down")
	})

	reg.RegisterStateChangeListener(hc)

	hc.Start()
	defer hc.Stop()

	b, err := reg.GetBreaker("/api/users", cfg)
	require.NoError(t, err)
	driveOpen(t, b, cfg)

	require.Eventually(t, func() bool {
		return probes.Load() >= 1
	}, time.Second, time.Millisecond)
}

func TestHealthChecker_Status(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	cfg := testConfig()

	open, err := reg.GetBreaker("/open", cfg)
	require.NoError(t, err)
	driveOpen(t, open, cfg)

	_, err = reg.GetBreaker("/closed", cfg)
	require.NoError(t, err)

	hc, err := NewHealthChecker(reg, time.Hour, time.Second, nil)
	require.NoError(t, err)

	noop := func(_ context.Context) error { return nil }
	hc.Register("/open", noop)
	hc.Register("/closed", noop)
	hc.Register("/unknown", noop)

	status := hc.Status()
	assert.Equal(t, StateOpen, status["/open"])
	assert.Equal(t, StateClosed, status["/closed"])
	assert.Equal(t, StateUnknown, status["/unknown"])
}
