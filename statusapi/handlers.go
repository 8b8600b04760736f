package statusapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/observability"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/version"
)

// Identity names the process in liveness reports.
type Identity struct {
	Service    string
	Version    string
	InstanceID string
}

// ServicesResponse is the body of GET /services.
type ServicesResponse struct {
	AllReady bool             `json:"all_ready"`
	Services []registry.Entry `json:"services"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status  string   `json:"status"`
	Waiting []string `json:"waiting,omitempty"`
}

// HealthChecker reports component health. *component.Registry satisfies it.
type HealthChecker interface {
	HealthAll(ctx context.Context) []component.Health
}

// Handlers serves registry state.
type Handlers struct {
	reg      *registry.Registry
	health   HealthChecker
	identity Identity
	events   *EventHub
}

// NewHandlers creates handlers over reg. health may be nil, in which case
// liveness reports only the process itself.
func NewHandlers(reg *registry.Registry, health HealthChecker, id Identity) *Handlers {
	return &Handlers{reg: reg, health: health, identity: id}
}

// WithEvents enables GET /events backed by hub.
func (h *Handlers) WithEvents(hub *EventHub) *Handlers {
	h.events = hub
	return h
}

// Mount registers every route on engine.
func (h *Handlers) Mount(engine *gin.Engine) {
	if h.events != nil {
		engine.GET("/events", h.Events)
	}
	engine.GET("/services", h.ListServices)
	engine.GET("/services/:key", h.GetService)
	engine.GET("/readyz", h.Readiness)
	engine.GET("/livez", h.Liveness)
	engine.GET("/version", h.Version)
}

// ListServices returns every configured or registered service.
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, ServicesResponse{
		AllReady: h.reg.AllReady(),
		Services: h.reg.Entries(),
	})
}

// GetService returns one service or a 404 error body.
func (h *Handlers) GetService(c *gin.Context) {
	key := c.Param("key")
	entry, ok := h.reg.Entry(key)
	if !ok {
		RespondWithError(c, errors.ServiceNotFound(key))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Readiness is 200 once every running service is ready and 503 before,
// listing the ones still pending.
func (h *Handlers) Readiness(c *gin.Context) {
	waiting := h.reg.NotReady()
	if len(waiting) > 0 {
		c.JSON(http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Waiting: waiting})
		return
	}
	c.JSON(http.StatusOK, ReadinessResponse{Status: "ready"})
}

// Liveness aggregates component health.
func (h *Handlers) Liveness(c *gin.Context) {
	report := observability.NewServiceHealth(h.identity.Service, h.identity.Version, h.identity.InstanceID)
	if h.health != nil {
		for _, ch := range h.health.HealthAll(c.Request.Context()) {
			report.AddComponent(ch)
		}
	}

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// Version returns build metadata.
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// RespondWithError writes err as an ErrorResponse. Errors that are not
// AppErrors become 500s.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
