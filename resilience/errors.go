package resilience

import (
	"errors"

	"github.com/google/uuid"
)

// ErrCorrelationEqualsTrace indicates a correlation id that duplicates the trace id.
var ErrCorrelationEqualsTrace = errors.New("resilience: correlation id must differ from trace id")

// Coded is implemented by every structured error in this library.
//
// ErrorCode returns a stable code from the closed catalog in
// resilience/constants. TraceID is unique per error instance. CorrelationID
// is optional and, when present, always differs from TraceID. Headers returns
// the transport headers a boundary layer should attach when rendering the
// error.
type Coded interface {
	error
	ErrorCode() string
	TraceID() string
	CorrelationID() string
	Headers() map[string]string
}

// NewTraceID returns a fresh unique trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// ValidateCorrelation checks that a correlation id, when present, differs
// from the trace id it accompanies.
func ValidateCorrelation(traceID, correlationID string) error {
	if correlationID != "" && correlationID == traceID {
		return ErrCorrelationEqualsTrace
	}

	return nil
}
