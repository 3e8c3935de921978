package faultinject

import (
	"errors"
	"fmt"

	constant "github.com/LerianStudio/lib-resilience/resilience/constants"
)

// Category identifies the subsystem a synthetic fault is injected into.
// The set of categories is closed; CategoryCount bounds iteration.
type Category uint8

const (
	CategoryAPI Category = iota
	CategoryMap
	CategoryData
	CategoryUI
	CategoryEnv
	CategoryPerf
	CategoryIntegration

	categoryCount
)

// ErrUnknownCategory indicates a category outside the closed set.
var ErrUnknownCategory = errors.New("faultinject: unknown fault category")

// ErrInvalidKind indicates a kind that does not belong to the fault's category.
var ErrInvalidKind = errors.New("faultinject: kind does not belong to category")

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryAPI:
		return "api"
	case CategoryMap:
		return "map"
	case CategoryData:
		return "data"
	case CategoryUI:
		return "ui"
	case CategoryEnv:
		return "env"
	case CategoryPerf:
		return "perf"
	case CategoryIntegration:
		return "integration"
	default:
		return "unknown"
	}
}

// Categories returns all categories in stable order.
func Categories() []Category {
	cats := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		cats = append(cats, c)
	}

	return cats
}

// Kind identifies the concrete failure mode within a category. Each category
// owns a closed set of kinds; Validate rejects cross-category combinations.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindNetworkError      Kind = "network-error"
	KindRateLimitExceeded Kind = "rate-limit-exceeded"
	KindHTTPError         Kind = "http-error"
	KindInvalidJSON       Kind = "invalid-json"
	KindEmptyResponse     Kind = "empty-response"

	KindTerrainLoadFailure Kind = "terrain-load-failure"
	KindTileDecodeError    Kind = "tile-decode-error"

	KindStaleData      Kind = "stale-data"
	KindSchemaMismatch Kind = "schema-mismatch"

	KindRenderFailure Kind = "render-failure"
	KindAssetMissing  Kind = "asset-missing"

	KindMissingConfig    Kind = "missing-config"
	KindPermissionDenied Kind = "permission-denied"

	KindSlowResponse   Kind = "slow-response"
	KindMemoryPressure Kind = "memory-pressure"

	KindUpstreamUnavailable Kind = "upstream-unavailable"
	KindContractViolation   Kind = "contract-violation"
)

// Kinds returns the closed set of kinds valid for the given category,
// in stable order.
func Kinds(category Category) []Kind {
	switch category {
	case CategoryAPI:
		return []Kind{KindTimeout, KindNetworkError, KindRateLimitExceeded, KindHTTPError, KindInvalidJSON, KindEmptyResponse}
	case CategoryMap:
		return []Kind{KindTerrainLoadFailure, KindTileDecodeError}
	case CategoryData:
		return []Kind{KindStaleData, KindSchemaMismatch}
	case CategoryUI:
		return []Kind{KindRenderFailure, KindAssetMissing}
	case CategoryEnv:
		return []Kind{KindMissingConfig, KindPermissionDenied}
	case CategoryPerf:
		return []Kind{KindSlowResponse, KindMemoryPressure}
	case CategoryIntegration:
		return []Kind{KindUpstreamUnavailable, KindContractViolation}
	default:
		return nil
	}
}

// Fault is a synthetic failure bound to one category. Params carries
// kind-specific detail, such as the status code of an http-error fault.
type Fault struct {
	Category Category
	Kind     Kind
	Params   map[string]any
}

// Validate checks that the fault's category is known and that its kind
// belongs to that category.
func (f Fault) Validate() error {
	if f.Category >= categoryCount {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, f.Category)
	}

	for _, k := range Kinds(f.Category) {
		if k == f.Kind {
			return nil
		}
	}

	return fmt.Errorf("%w: %q is not a %s kind", ErrInvalidKind, f.Kind, f.Category)
}

// Code returns the stable error code for the fault's category+kind pair.
// The mapping is exhaustive over the closed kind sets.
func (f Fault) Code() string {
	switch f.Kind {
	case KindTimeout:
		return constant.CodeAPITimeout
	case KindNetworkError:
		return constant.CodeAPINetworkError
	case KindRateLimitExceeded:
		return constant.CodeAPIRateLimitExceeded
	case KindHTTPError:
		return constant.CodeAPIHTTPError
	case KindInvalidJSON:
		return constant.CodeAPIInvalidJSON
	case KindEmptyResponse:
		return constant.CodeAPIEmptyResponse
	case KindTerrainLoadFailure:
		return constant.CodeMapTerrainLoadFailure
	case KindTileDecodeError:
		return constant.CodeMapTileDecodeError
	case KindStaleData:
		return constant.CodeDataStaleData
	case KindSchemaMismatch:
		return constant.CodeDataSchemaMismatch
	case KindRenderFailure:
		return constant.CodeUIRenderFailure
	case KindAssetMissing:
		return constant.CodeUIAssetMissing
	case KindMissingConfig:
		return constant.CodeEnvMissingConfig
	case KindPermissionDenied:
		return constant.CodeEnvPermissionDenied
	case KindSlowResponse:
		return constant.CodePerfSlowResponse
	case KindMemoryPressure:
		return constant.CodePerfMemoryPressure
	case KindUpstreamUnavailable:
		return constant.CodeIntegrationUpstreamUnavailable
	case KindContractViolation:
		return constant.CodeIntegrationContractViolation
	default:
		return ""
	}
}
