package constant

// Error codes form a closed catalog: one stable code per fault category+kind
// pair, plus the codes emitted by the circuit breaker and rate limiter
// themselves. Boundary layers must never invent codes outside this file.
const (
	// CodeCircuitBreakerOpen is emitted whenever an open circuit rejects a call,
	// regardless of which underlying failure opened it.
	CodeCircuitBreakerOpen = "CIRCUIT_BREAKER_OPEN"

	CodeAPITimeout           = "API_TIMEOUT"
	CodeAPINetworkError      = "API_NETWORK_ERROR"
	CodeAPIRateLimitExceeded = "API_RATE_LIMIT_EXCEEDED"
	CodeAPIHTTPError         = "API_HTTP_ERROR"
	CodeAPIInvalidJSON       = "API_INVALID_JSON"
	CodeAPIEmptyResponse     = "API_EMPTY_RESPONSE"

	CodeMapTerrainLoadFailure = "MAP_TERRAIN_LOAD_FAILURE"
	CodeMapTileDecodeError    = "MAP_TILE_DECODE_ERROR"

	CodeDataStaleData      = "DATA_STALE_DATA"
	CodeDataSchemaMismatch = "DATA_SCHEMA_MISMATCH"

	CodeUIRenderFailure = "UI_RENDER_FAILURE"
	CodeUIAssetMissing  = "UI_ASSET_MISSING"

	CodeEnvMissingConfig    = "ENV_MISSING_CONFIG"
	CodeEnvPermissionDenied = "ENV_PERMISSION_DENIED"

	CodePerfSlowResponse   = "PERF_SLOW_RESPONSE"
	CodePerfMemoryPressure = "PERF_MEMORY_PRESSURE"

	CodeIntegrationUpstreamUnavailable = "INTEGRATION_UPSTREAM_UNAVAILABLE"
	CodeIntegrationContractViolation   = "INTEGRATION_CONTRACT_VIOLATION"
)
