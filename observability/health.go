package observability

import (
	"github.com/kbukum/servicecore/component"
)

// ServiceHealth is the aggregated liveness report of the process and its
// infrastructure components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	InstanceID string                 `json:"instance_id,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a healthy report.
func NewServiceHealth(service, version, instanceID string) *ServiceHealth {
	return &ServiceHealth{
		Service:    service,
		Status:     component.StatusHealthy,
		Version:    version,
		InstanceID: instanceID,
	}
}

// AddComponent appends a component result. An unhealthy component makes the
// report unhealthy; a degraded one degrades it unless it is already
// unhealthy.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)

	switch h.Status {
	case component.StatusUnhealthy:
		sh.Status = component.StatusUnhealthy
	case component.StatusDegraded:
		if sh.Status != component.StatusUnhealthy {
			sh.Status = component.StatusDegraded
		}
	}
}

// Healthy reports whether the process should be considered live.
func (sh *ServiceHealth) Healthy() bool {
	return sh.Status != component.StatusUnhealthy
}
