package statusapi

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/kbukum/servicecore/component"
)

const componentName = "status-api"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Server under the component lifecycle.
type Component struct {
	server  *Server
	running atomic.Bool
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (sc *Component) Name() string { return componentName }

// Start starts the server.
func (sc *Component) Start(ctx context.Context) error {
	if err := sc.server.Start(ctx); err != nil {
		return err
	}
	sc.running.Store(true)
	return nil
}

// Stop shuts the server down.
func (sc *Component) Stop(ctx context.Context) error {
	sc.running.Store(false)
	return sc.server.Stop(ctx)
}

// Health is healthy while the server is serving.
func (sc *Component) Health(ctx context.Context) component.Health {
	if sc.running.Load() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "status server not running",
	}
}

// Describe reports the bound address and the mounted routes.
func (sc *Component) Describe() component.Description {
	return component.Description{
		Name:    "Status API",
		Type:    "server",
		Details: fmt.Sprintf("%s %v", sc.server.Addr(), sc.Routes()),
	}
}

// Routes returns the mounted "METHOD /path" pairs sorted by path.
func (sc *Component) Routes() []string {
	infos := sc.server.engine.Routes()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	routes := make([]string, 0, len(infos))
	for _, r := range infos {
		routes = append(routes, r.Method+" "+r.Path)
	}
	return routes
}
