package observability

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/servicecore/logger"
)

// Identity describes the running process for exported telemetry.
type Identity struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the trace and meter providers when cfg.Enabled is set. It
// always returns a usable ShutdownFunc.
func Setup(ctx context.Context, cfg Config, id Identity) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	res, err := newResource(id)
	if err != nil {
		return noop, fmt.Errorf("creating resource: %w", err)
	}

	tp, err := InitTracer(ctx, cfg, res)
	if err != nil {
		return noop, err
	}
	mp, err := InitMeter(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}

	logger.WithComponent("observability").Info("Telemetry exporters started", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"interval", cfg.MetricInterval.String(),
	))

	return func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newResource(id Identity) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", id.Name),
			attribute.String("service.version", id.Version),
			attribute.String("service.instance.id", id.InstanceID),
			attribute.String("deployment.environment", id.Environment),
		),
	)
}
