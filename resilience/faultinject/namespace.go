package faultinject

import (
	"context"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"
)

// categoryView is the common per-category surface shared by all namespaces.
type categoryView struct {
	registry *Registry
	category Category
}

// ShouldFail reports whether this category has an active fault.
func (v categoryView) ShouldFail() bool {
	return v.registry.ShouldFail(v.category)
}

// Fault returns this category's active fault, or nil.
func (v categoryView) Fault() *Fault {
	return v.registry.Fault(v.category)
}

// Clear removes this category's active fault.
func (v categoryView) Clear() {
	_ = v.registry.SetFault(v.category, nil)
}

func (v categoryView) inject(kind Kind, params map[string]any) {
	// Kinds injected through typed helpers are valid by construction.
	_ = v.registry.SetFault(v.category, &Fault{Category: v.category, Kind: kind, Params: params})
}

// warnDeprecated emits one deprecation warning for every call of a
// deprecated alias, without altering the resulting state.
func (v categoryView) warnDeprecated(alias, canonical string) {
	v.registry.logger.Log(context.Background(), log.LevelWarn, "deprecated fault injector called",
		log.String("alias", alias),
		log.String("use", canonical))
}

// APIFaults is the api-category namespace.
type APIFaults struct{ categoryView }

// API returns the api-category fault namespace.
func (r *Registry) API() APIFaults {
	return APIFaults{categoryView{registry: r, category: CategoryAPI}}
}

// InjectTimeout simulates an upstream request timeout.
func (f APIFaults) InjectTimeout() { f.inject(KindTimeout, nil) }

// InjectNetworkError simulates a transport-level failure.
func (f APIFaults) InjectNetworkError() { f.inject(KindNetworkError, nil) }

// InjectRateLimitExceeded simulates a 429 from the upstream API.
func (f APIFaults) InjectRateLimitExceeded() { f.inject(KindRateLimitExceeded, nil) }

// InjectHTTPError simulates an upstream response with the given status code.
func (f APIFaults) InjectHTTPError(status int) {
	f.inject(KindHTTPError, map[string]any{"status": status})
}

// InjectInvalidJSON simulates an unparseable response body.
func (f APIFaults) InjectInvalidJSON() { f.inject(KindInvalidJSON, nil) }

// InjectEmptyResponse simulates an empty response body.
func (f APIFaults) InjectEmptyResponse() { f.inject(KindEmptyResponse, nil) }

// InjectRateLimit is a deprecated alias for InjectRateLimitExceeded.
// It forwards to the canonical injector and warns on every call.
//
// Deprecated: use InjectRateLimitExceeded.
func (f APIFaults) InjectRateLimit() {
	f.warnDeprecated("InjectRateLimit", "InjectRateLimitExceeded")
	f.InjectRateLimitExceeded()
}

// MapFaults is the map-category namespace.
type MapFaults struct{ categoryView }

// Map returns the map-category fault namespace.
func (r *Registry) Map() MapFaults {
	return MapFaults{categoryView{registry: r, category: CategoryMap}}
}

// InjectTerrainLoadFailure simulates a failed terrain/heightmap load.
func (f MapFaults) InjectTerrainLoadFailure() { f.inject(KindTerrainLoadFailure, nil) }

// InjectTileDecodeError simulates a corrupt map tile.
func (f MapFaults) InjectTileDecodeError() { f.inject(KindTileDecodeError, nil) }

// DataFaults is the data-category namespace.
type DataFaults struct{ categoryView }

// Data returns the data-category fault namespace.
func (r *Registry) Data() DataFaults {
	return DataFaults{categoryView{registry: r, category: CategoryData}}
}

// InjectStaleData simulates data past its freshness window.
func (f DataFaults) InjectStaleData() { f.inject(KindStaleData, nil) }

// InjectSchemaMismatch simulates a payload that fails schema validation.
func (f DataFaults) InjectSchemaMismatch() { f.inject(KindSchemaMismatch, nil) }

// UIFaults is the ui-category namespace.
type UIFaults struct{ categoryView }

// UI returns the ui-category fault namespace.
func (r *Registry) UI() UIFaults {
	return UIFaults{categoryView{registry: r, category: CategoryUI}}
}

// InjectRenderFailure simulates a component render error.
func (f UIFaults) InjectRenderFailure() { f.inject(KindRenderFailure, nil) }

// InjectAssetMissing simulates a missing static asset.
func (f UIFaults) InjectAssetMissing() { f.inject(KindAssetMissing, nil) }

// EnvFaults is the env-category namespace.
type EnvFaults struct{ categoryView }

// Env returns the env-category fault namespace.
func (r *Registry) Env() EnvFaults {
	return EnvFaults{categoryView{registry: r, category: CategoryEnv}}
}

// InjectMissingConfig simulates absent required configuration.
func (f EnvFaults) InjectMissingConfig() { f.inject(KindMissingConfig, nil) }

// InjectPermissionDenied simulates an environment permission failure.
func (f EnvFaults) InjectPermissionDenied() { f.inject(KindPermissionDenied, nil) }

// PerfFaults is the perf-category namespace.
type PerfFaults struct{ categoryView }

// Perf returns the perf-category fault namespace.
func (r *Registry) Perf() PerfFaults {
	return PerfFaults{categoryView{registry: r, category: CategoryPerf}}
}

// InjectSlowResponse simulates degraded latency. latencyMs is carried in the
// fault params for the simulating caller to honor.
func (f PerfFaults) InjectSlowResponse(latencyMs int) {
	f.inject(KindSlowResponse, map[string]any{"latency_ms": latencyMs})
}

// InjectMemoryPressure simulates memory exhaustion.
func (f PerfFaults) InjectMemoryPressure() { f.inject(KindMemoryPressure, nil) }

// IntegrationFaults is the integration-category namespace.
type IntegrationFaults struct{ categoryView }

// Integration returns the integration-category fault namespace.
func (r *Registry) Integration() IntegrationFaults {
	return IntegrationFaults{categoryView{registry: r, category: CategoryIntegration}}
}

// InjectUpstreamUnavailable simulates a hard-down integration partner.
func (f IntegrationFaults) InjectUpstreamUnavailable() { f.inject(KindUpstreamUnavailable, nil) }

// InjectContractViolation simulates a partner response that breaks contract.
func (f IntegrationFaults) InjectContractViolation() { f.inject(KindContractViolation, nil) }
