// Package faultinject provides a category-scoped registry of synthetic
// faults used to simulate deterministic failures in calling code.
//
// The registry holds at most one active fault per category. Categories are
// fully isolated: mutating one never affects another's observable state.
// Use the per-category views (Registry.API, Registry.Map, ...) for typed
// Inject helpers, or Registry.SetFault directly.
package faultinject
