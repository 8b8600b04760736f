package component

import "context"

// Service is the capability every registry-managed service exposes.
type Service interface {
	// IsReady reports whether initialization has completed.
	IsReady() bool

	// OnInitCompleted subscribes fn to the single init-completion
	// notification. If initialization already completed, fn runs
	// immediately on the caller's goroutine.
	OnInitCompleted(fn func())
}

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed infrastructure component.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for the bootstrap display.
type Description struct {
	// Name is the human-readable display name. If empty, Name() is used.
	Name string
	// Type categorizes the component: "server", "exporter", ...
	Type string
	// Details is a one-liner shown in the startup summary.
	Details string
}

// Describable is optionally implemented by Components to self-report in the
// startup summary.
type Describable interface {
	Describe() Description
}
