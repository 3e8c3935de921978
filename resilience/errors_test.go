//go:build unit

package resilience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceID_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := NewTraceID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "trace id %q repeated", id)
		seen[id] = true
	}
}

func TestValidateCorrelation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		traceID       string
		correlationID string
		wantErr       error
	}{
		{
			name:          "empty correlation is valid",
			traceID:       "trace-1",
			correlationID: "",
		},
		{
			name:          "distinct correlation is valid",
			traceID:       "trace-1",
			correlationID: "corr-1",
		},
		{
			name:          "correlation equal to trace is rejected",
			traceID:       "trace-1",
			correlationID: "trace-1",
			wantErr:       ErrCorrelationEqualsTrace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateCorrelation(tt.traceID, tt.correlationID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestCorrelationIDContext_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ContextWithCorrelationID(context.Background(), "corr-42")
	assert.Equal(t, "corr-42", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDContext_Empty(t *testing.T) {
	t.Parallel()

	ctx := ContextWithCorrelationID(context.Background(), "")
	assert.Empty(t, CorrelationIDFromContext(ctx))

	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(nil)) //nolint:staticcheck
}
