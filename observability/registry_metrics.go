package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/servicecore/registry"
)

var _ registry.Observer = (*RegistryMetrics)(nil)

// RegistryMetrics records registry events as OpenTelemetry instruments.
type RegistryMetrics struct {
	registered metric.Int64Counter
	ready      metric.Int64Counter
	pending    metric.Int64UpDownCounter
	latency    metric.Float64Histogram
}

// NewRegistryMetrics creates the registry instruments on meter.
func NewRegistryMetrics(meter metric.Meter) (*RegistryMetrics, error) {
	registered, err := meter.Int64Counter("registry.services.registered",
		metric.WithDescription("Services registered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.services.registered counter: %w", err)
	}

	ready, err := meter.Int64Counter("registry.services.ready",
		metric.WithDescription("Services that reported ready"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.services.ready counter: %w", err)
	}

	pending, err := meter.Int64UpDownCounter("registry.waiters.pending",
		metric.WithDescription("Readiness callbacks queued and not yet run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.waiters.pending counter: %w", err)
	}

	latency, err := meter.Float64Histogram("registry.ready.latency",
		metric.WithDescription("Time from registration to readiness"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.ready.latency histogram: %w", err)
	}

	return &RegistryMetrics{
		registered: registered,
		ready:      ready,
		pending:    pending,
		latency:    latency,
	}, nil
}

func serviceAttr(key string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrServiceKey, key))
}

// ServiceRegistered counts a registration.
func (m *RegistryMetrics) ServiceRegistered(key string) {
	m.registered.Add(context.Background(), 1, serviceAttr(key))
}

// WaiterQueued counts a callback that has to wait.
func (m *RegistryMetrics) WaiterQueued(key string) {
	m.pending.Add(context.Background(), 1, serviceAttr(key))
}

// ServiceReady counts readiness, records its latency and releases the
// drained callbacks from the pending count.
func (m *RegistryMetrics) ServiceReady(key string, latency time.Duration, drained int) {
	ctx := context.Background()
	attrs := serviceAttr(key)
	m.ready.Add(ctx, 1, attrs)
	m.latency.Record(ctx, latency.Seconds(), attrs)
	if drained > 0 {
		m.pending.Add(ctx, -int64(drained), attrs)
	}
}
