package observability

import (
	"context"
	"sync"

	"github.com/kbukum/servicecore/component"
)

const componentName = "telemetry"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs the OTLP providers on Start and flushes them on Stop.
type Component struct {
	cfg Config
	id  Identity

	mu       sync.Mutex
	shutdown ShutdownFunc
}

// NewComponent creates a telemetry component.
func NewComponent(cfg Config, id Identity) *Component {
	return &Component{cfg: cfg, id: id}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start runs Setup.
func (c *Component) Start(ctx context.Context) error {
	shutdown, err := Setup(ctx, c.cfg, c.id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.shutdown = shutdown
	c.mu.Unlock()
	return nil
}

// Stop flushes pending telemetry.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	shutdown := c.shutdown
	c.shutdown = nil
	c.mu.Unlock()
	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// Health reports degraded while exporters are not installed; telemetry is
// never a reason to consider the process dead.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown == nil {
		return component.Health{Name: componentName, Status: component.StatusDegraded, Message: "exporters not running"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe returns the collector endpoint for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Telemetry",
		Type:    "exporter",
		Details: "otlp/http " + c.cfg.Endpoint,
	}
}
