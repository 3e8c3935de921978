package faultinject

import (
	"fmt"

	"github.com/LerianStudio/lib-resilience/resilience"
)

// FaultError is the structured error produced when an injected fault fires.
// It traverses the same failure paths as a real error: callers record it in
// circuit breakers and rate limiters without special-casing.
type FaultError struct {
	Code        string         `json:"error_code"`
	Category    string         `json:"category"`
	Kind        string         `json:"kind"`
	Params      map[string]any `json:"params,omitempty"`
	Trace       string         `json:"trace_id"`
	Correlation string         `json:"correlation_id,omitempty"`
}

var _ resilience.Coded = (*FaultError)(nil)

func newFaultError(f Fault, correlationID string) *FaultError {
	e := &FaultError{
		Code:        f.Code(),
		Category:    f.Category.String(),
		Kind:        string(f.Kind),
		Params:      f.Params,
		Trace:       resilience.NewTraceID(),
		Correlation: correlationID,
	}

	if resilience.ValidateCorrelation(e.Trace, e.Correlation) != nil {
		e.Correlation = ""
	}

	return e
}

// Error returns a stable message naming the category and kind.
func (e *FaultError) Error() string {
	return fmt.Sprintf("injected %s fault: %s", e.Category, e.Kind)
}

// ErrorCode returns the stable catalog code for the fault.
func (e *FaultError) ErrorCode() string { return e.Code }

// TraceID returns the unique trace id of this error instance.
func (e *FaultError) TraceID() string { return e.Trace }

// CorrelationID returns the optional correlation id.
func (e *FaultError) CorrelationID() string { return e.Correlation }

// Headers returns no transport headers; fault errors are rendered by status
// alone at the boundary.
func (e *FaultError) Headers() map[string]string { return map[string]string{} }
