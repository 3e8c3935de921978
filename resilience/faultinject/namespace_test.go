//go:build unit

package faultinject

import (
	"testing"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaces_InjectAndClear(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)

	reg.API().InjectTimeout()
	reg.Map().InjectTileDecodeError()
	reg.Data().InjectSchemaMismatch()
	reg.UI().InjectRenderFailure()
	reg.Env().InjectPermissionDenied()
	reg.Perf().InjectSlowResponse(250)
	reg.Integration().InjectContractViolation()

	assert.Len(t, reg.ActiveFaults(), 7)
	assert.True(t, reg.API().ShouldFail())
	assert.True(t, reg.Map().ShouldFail())

	perfFault := reg.Perf().Fault()
	require.NotNil(t, perfFault)
	assert.Equal(t, 250, perfFault.Params["latency_ms"])

	reg.API().Clear()
	assert.False(t, reg.API().ShouldFail())
	assert.Len(t, reg.ActiveFaults(), 6)
}

func TestAPIFaults_InjectHTTPError_CarriesStatus(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	reg.API().InjectHTTPError(502)

	fault := reg.API().Fault()
	require.NotNil(t, fault)
	assert.Equal(t, KindHTTPError, fault.Kind)
	assert.Equal(t, 502, fault.Params["status"])
}

func TestAPIFaults_InjectRateLimit_ForwardsAndWarnsPerCall(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	reg := NewRegistry(logger)

	reg.API().InjectRateLimit()

	// State matches the canonical injector exactly.
	fault := reg.API().Fault()
	require.NotNil(t, fault)
	assert.Equal(t, KindRateLimitExceeded, fault.Kind)
	assert.Equal(t, 1, logger.countLevel(log.LevelWarn))

	reg.API().InjectRateLimit()
	reg.API().InjectRateLimit()
	assert.Equal(t, 3, logger.countLevel(log.LevelWarn), "one warning per alias call")

	// The canonical injector never warns.
	reg.API().InjectRateLimitExceeded()
	assert.Equal(t, 3, logger.countLevel(log.LevelWarn))
}
