package statusapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/observability"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/statusapi"
	"github.com/kbukum/servicecore/version"
)

type service struct {
	component.Readiness
}

type healthFunc func(ctx context.Context) []component.Health

func (f healthFunc) HealthAll(ctx context.Context) []component.Health { return f(ctx) }

func newServer(t *testing.T, reg *registry.Registry, health statusapi.HealthChecker) *statusapi.Server {
	t.Helper()
	cfg := statusapi.Config{}
	cfg.ApplyDefaults()
	srv := statusapi.NewServer(cfg, logger.Nop())
	statusapi.NewHandlers(reg, health, statusapi.Identity{Service: "servicecore", Version: "v1.0.0", InstanceID: "i-1"}).
		Mount(srv.Engine())
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
}

func TestListServices(t *testing.T) {
	reg := registry.New([]string{"settings", "timer"}, registry.WithLogger(logger.Nop()))
	reg.Register("settings", &service{})
	reg.MarkReady("settings")
	reg.WhenReady("timer", func(component.Service) {})

	rr := get(t, newServer(t, reg, nil).Handler(), "/services")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body statusapi.ServicesResponse
	decode(t, rr, &body)
	if body.AllReady {
		t.Error("expected all_ready=false while timer is pending")
	}
	if len(body.Services) != 2 {
		t.Fatalf("expected 2 services, got %+v", body.Services)
	}
	byKey := map[string]registry.Entry{}
	for _, e := range body.Services {
		byKey[e.Key] = e
	}
	if !byKey["settings"].Ready || !byKey["settings"].Registered {
		t.Errorf("unexpected settings entry: %+v", byKey["settings"])
	}
	if byKey["timer"].Registered || byKey["timer"].Waiters != 1 {
		t.Errorf("unexpected timer entry: %+v", byKey["timer"])
	}
}

func TestGetService(t *testing.T) {
	reg := registry.New([]string{"settings"}, registry.WithLogger(logger.Nop()))
	reg.Register("settings", &service{})
	h := newServer(t, reg, nil).Handler()

	rr := get(t, h, "/services/settings")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var entry registry.Entry
	decode(t, rr, &entry)
	if entry.Key != "settings" || entry.Ready {
		t.Errorf("unexpected entry: %+v", entry)
	}

	rr = get(t, h, "/services/ghost")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body errors.ErrorResponse
	decode(t, rr, &body)
	if body.Error.Code != errors.ErrCodeServiceNotFound {
		t.Errorf("expected %s, got %s", errors.ErrCodeServiceNotFound, body.Error.Code)
	}
	if body.Error.Details["service"] != "ghost" {
		t.Errorf("expected service detail, got %v", body.Error.Details)
	}
}

func TestReadiness(t *testing.T) {
	reg := registry.New([]string{"settings", "timer"}, registry.WithLogger(logger.Nop()))
	h := newServer(t, reg, nil).Handler()

	rr := get(t, h, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before startup, got %d", rr.Code)
	}
	var body statusapi.ReadinessResponse
	decode(t, rr, &body)
	if strings.Join(body.Waiting, ",") != "settings,timer" {
		t.Errorf("expected both services waiting, got %v", body.Waiting)
	}

	for _, key := range []string{"settings", "timer"} {
		reg.Register(key, &service{})
		reg.MarkReady(key)
	}
	rr = get(t, h, "/readyz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 once ready, got %d", rr.Code)
	}
	body = statusapi.ReadinessResponse{}
	decode(t, rr, &body)
	if body.Status != "ready" || len(body.Waiting) != 0 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestLiveness(t *testing.T) {
	reg := registry.New(nil, registry.WithLogger(logger.Nop()))

	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus component.HealthStatus
	}{
		{"no components", nil, http.StatusOK, component.StatusHealthy},
		{"degraded", []component.Health{
			{Name: "telemetry", Status: component.StatusDegraded},
		}, http.StatusOK, component.StatusDegraded},
		{"unhealthy", []component.Health{
			{Name: "telemetry", Status: component.StatusHealthy},
			{Name: "status-api", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, component.StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			health := healthFunc(func(context.Context) []component.Health { return tc.components })
			rr := get(t, newServer(t, reg, health).Handler(), "/livez")
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			var report observability.ServiceHealth
			decode(t, rr, &report)
			if report.Status != tc.wantStatus {
				t.Errorf("expected %s, got %s", tc.wantStatus, report.Status)
			}
			if report.Service != "servicecore" || report.InstanceID != "i-1" {
				t.Errorf("unexpected identity: %+v", report)
			}
			if len(report.Components) != len(tc.components) {
				t.Errorf("expected %d components, got %d", len(tc.components), len(report.Components))
			}
		})
	}
}

func TestVersion(t *testing.T) {
	reg := registry.New(nil, registry.WithLogger(logger.Nop()))
	rr := get(t, newServer(t, reg, nil).Handler(), "/version")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var info version.Info
	decode(t, rr, &info)
	if info.Version != version.Get().Version {
		t.Errorf("expected %q, got %q", version.Get().Version, info.Version)
	}
}

func TestRequestID(t *testing.T) {
	reg := registry.New(nil, registry.WithLogger(logger.Nop()))
	h := newServer(t, reg, nil).Handler()

	rr := get(t, h, "/version")
	if rr.Header().Get(statusapi.HeaderRequestID) == "" {
		t.Error("expected a generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/version", http.NoBody)
	req.Header.Set(statusapi.HeaderRequestID, "req-42")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(statusapi.HeaderRequestID); got != "req-42" {
		t.Errorf("expected caller's request ID echoed, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	reg := registry.New(nil, registry.WithLogger(logger.Nop()))
	srv := newServer(t, reg, nil)
	srv.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := get(t, srv.Handler(), "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body errors.ErrorResponse
	decode(t, rr, &body)
	if body.Error.Code != errors.ErrCodeInternal {
		t.Errorf("expected INTERNAL, got %s", body.Error.Code)
	}
}

func TestRespondWithPlainError(t *testing.T) {
	reg := registry.New(nil, registry.WithLogger(logger.Nop()))
	srv := newServer(t, reg, nil)
	srv.Engine().GET("/fail", func(c *gin.Context) {
		statusapi.RespondWithError(c, fmt.Errorf("disk full"))
	})

	rr := get(t, srv.Handler(), "/fail")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for plain error, got %d", rr.Code)
	}
}

func TestComponentLifecycle(t *testing.T) {
	reg := registry.New([]string{"settings"}, registry.WithLogger(logger.Nop()))
	cfg := statusapi.Config{Port: 0}
	cfg.ApplyDefaults()
	srv := statusapi.NewServer(cfg, logger.Nop())
	statusapi.NewHandlers(reg, nil, statusapi.Identity{Service: "servicecore"}).Mount(srv.Engine())
	comp := statusapi.NewComponent(srv)

	if comp.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { comp.Stop(context.Background()) })

	if comp.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}
	if strings.HasSuffix(srv.Addr(), ":0") {
		t.Errorf("expected bound port, got %s", srv.Addr())
	}

	resp, err := http.Get("http://" + srv.Addr() + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}

	desc := comp.Describe()
	if desc.Type != "server" || !strings.Contains(desc.Details, "GET /readyz") {
		t.Errorf("unexpected description: %+v", desc)
	}
	if comp.Name() != "status-api" {
		t.Errorf("unexpected name %q", comp.Name())
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if comp.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy after stop")
	}
}

func TestConfig(t *testing.T) {
	cfg := statusapi.Config{Port: 8081}
	cfg.ApplyDefaults()
	if cfg.Addr() != "127.0.0.1:8081" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	bad := statusapi.Config{Port: 70000}
	bad.ApplyDefaults()
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}
