package circuitbreaker

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records breaker activity through OpenTelemetry counters. All
// record methods are safe on a nil receiver, so callers can wire metrics
// unconditionally.
type Metrics struct {
	transitions metric.Int64Counter
	rejections  metric.Int64Counter
	executions  metric.Int64Counter
}

// NewMetrics creates breaker counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transitions, err := meter.Int64Counter("circuitbreaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"))
	if err != nil {
		return nil, fmt.Errorf("create transitions counter: %w", err)
	}

	rejections, err := meter.Int64Counter("circuitbreaker.rejections",
		metric.WithDescription("Calls rejected while the circuit was open"))
	if err != nil {
		return nil, fmt.Errorf("create rejections counter: %w", err)
	}

	executions, err := meter.Int64Counter("circuitbreaker.executions",
		metric.WithDescription("Operations executed through the breaker"))
	if err != nil {
		return nil, fmt.Errorf("create executions counter: %w", err)
	}

	return &Metrics{
		transitions: transitions,
		rejections:  rejections,
		executions:  executions,
	}, nil
}

func (m *Metrics) recordTransition(ctx context.Context, scope string, from, to State) {
	if m == nil || m.transitions == nil {
		return
	}

	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
}

func (m *Metrics) recordRejection(ctx context.Context, scope string) {
	if m == nil || m.rejections == nil {
		return
	}

	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

func (m *Metrics) recordExecution(ctx context.Context, scope string, success bool) {
	if m == nil || m.executions == nil {
		return
	}

	outcome := "error"
	if success {
		outcome = "success"
	}

	m.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}
