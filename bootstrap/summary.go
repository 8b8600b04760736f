package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/registry"
)

// Summary collects startup facts and renders them as a tree.
type Summary struct {
	serviceName string
	version     string
	instanceID  string

	mu              sync.Mutex
	startupDuration time.Duration
	construction    map[string]time.Duration
}

// NewSummary creates a summary for the named process.
func NewSummary(serviceName, version, instanceID string) *Summary {
	return &Summary{
		serviceName:  serviceName,
		version:      version,
		instanceID:   instanceID,
		construction: make(map[string]time.Duration),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.mu.Lock()
	s.startupDuration = d
	s.mu.Unlock()
}

// TrackConstruction records how long a service's factory took.
func (s *Summary) TrackConstruction(key string, d time.Duration) {
	s.mu.Lock()
	s.construction[key] = d
	s.mu.Unlock()
}

// Render writes the summary: infrastructure components, every configured
// service with its readiness, and live component health. hosted may be nil.
func (s *Summary) Render(w io.Writer, components *component.Registry, reg *registry.Registry, hosted func(string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs (instance %s)\n", s.serviceName, version, s.startupDuration.Seconds(), s.instanceID)

	if components != nil {
		var infra []component.Description
		for _, c := range components.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				infra = append(infra, desc)
			}
		}
		if len(infra) > 0 {
			fmt.Fprintf(w, "\n📊 Infrastructure\n")
			for i, d := range infra {
				fmt.Fprintf(w, "   %s %s [%s]: %s\n", branch(i, len(infra)), d.Name, d.Type, d.Details)
			}
		}
	}

	if reg != nil {
		entries := reg.Entries()
		ready := 0
		fmt.Fprintf(w, "\n📦 Services\n")
		if len(entries) == 0 {
			fmt.Fprintf(w, "   └── No services configured\n")
		}
		for i, e := range entries {
			if e.Ready {
				ready++
			}
			kind := "plain"
			if hosted != nil && hosted(e.Key) {
				kind = "hosted"
			}
			fmt.Fprintf(w, "   %s %s %s (%s)%s\n", branch(i, len(entries)), serviceIcon(e), e.Key, kind, s.serviceDetail(e))
		}
		running := len(reg.Running())
		if running > 0 {
			if reg.AllReady() {
				fmt.Fprintf(w, "\n✅ All services ready (%d/%d)\n", running, running)
			} else {
				fmt.Fprintf(w, "\n⏳ Waiting on %s (%d/%d ready)\n", strings.Join(reg.NotReady(), ", "), running-len(reg.NotReady()), running)
			}
		}
	}

	if components != nil {
		results := components.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(results)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
			}
		}
	}

	fmt.Fprintln(w)
}

func (s *Summary) serviceDetail(e registry.Entry) string {
	var parts []string
	if d, ok := s.construction[e.Key]; ok {
		parts = append(parts, fmt.Sprintf("built in %s", d.Round(time.Millisecond)))
	}
	switch {
	case e.Ready && !e.RegisteredAt.IsZero():
		parts = append(parts, fmt.Sprintf("ready after %s", e.ReadyAt.Sub(e.RegisteredAt).Round(time.Millisecond)))
	case !e.Registered:
		parts = append(parts, "not registered")
	case !e.Configured:
		parts = append(parts, "outside running services")
	}
	if e.Waiters > 0 {
		parts = append(parts, fmt.Sprintf("%d waiting", e.Waiters))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func serviceIcon(e registry.Entry) string {
	switch {
	case e.Ready:
		return "✅"
	case e.Registered:
		return "⏳"
	default:
		return "❌"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
