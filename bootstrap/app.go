package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/di"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/observability"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/statusapi"
)

// App owns the service registry and drives the process lifecycle.
// The type parameter C is the config type; any struct embedding AppConfig
// satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Provide("settings", settings.New)
//	app.ProvideHosted("timer", timer.New)
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	InstanceID string
	Cfg        C
	Registry   *registry.Registry
	Container  di.Container
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer

	mu          sync.Mutex
	hosted      map[string]bool
	started     []component.Component
	constructed bool
	events      *statusapi.EventHub

	onConfigure []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates, initializes the logger and builds the registry, the factory
// container and the infrastructure components.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetAppConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		InstanceID:      base.InstanceID,
		Cfg:             cfg,
		Container:       di.NewContainer(),
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
		hosted:          make(map[string]bool),
	}
	if app.InstanceID == "" {
		app.InstanceID = uuid.NewString()
	}
	if o.container != nil {
		app.Container = o.container
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.summaryOut = o.summaryOut
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	observer := o.observer
	var metrics *observability.RegistryMetrics
	if observer == nil {
		m, err := observability.NewRegistryMetrics(observability.Meter())
		if err != nil {
			return nil, fmt.Errorf("registry metrics: %w", err)
		}
		metrics, observer = m, m
	}
	if base.Status.Enabled && base.Status.Events {
		app.events = statusapi.NewEventHub(app.Logger)
		observer = registry.MultiObserver(observer, app.events)
	}

	app.Registry = registry.NewFromConfig(base.Registry,
		registry.WithLogger(app.Logger.WithComponent("registry")),
		registry.WithObserver(observer),
	)

	if err := app.registerInfrastructure(base); err != nil {
		return nil, err
	}
	if err := app.registerSingletons(metrics); err != nil {
		return nil, err
	}

	app.Summary = NewSummary(base.Name, base.Version, app.InstanceID)
	return app, nil
}

func (a *App[C]) registerInfrastructure(base *AppConfig) error {
	if base.Observability.Enabled {
		tel := observability.NewComponent(base.Observability, observability.Identity{
			Name:        base.Name,
			Version:     base.Version,
			Environment: base.Environment,
			InstanceID:  a.InstanceID,
		})
		if err := a.Components.Register(tel); err != nil {
			return err
		}
	}

	if base.Status.Enabled {
		srv := statusapi.NewServer(base.Status, a.Logger)
		handlers := statusapi.NewHandlers(a.Registry, a.Components, statusapi.Identity{
			Service:    base.Name,
			Version:    base.Version,
			InstanceID: a.InstanceID,
		})
		handlers.WithEvents(a.events).Mount(srv.Engine())
		if err := a.Components.Register(statusapi.NewComponent(srv)); err != nil {
			return err
		}
		// Registered after the server so it stops first and open streams
		// end before the server drains connections.
		if a.events != nil {
			if err := a.Components.Register(a.events); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerSingletons exposes the app's collaborators to service
// constructors that take a di.Container.
func (a *App[C]) registerSingletons(metrics *observability.RegistryMetrics) error {
	singletons := []struct {
		key      string
		instance interface{}
	}{
		{di.Names.Config, a.Cfg},
		{di.Names.Logger, a.Logger},
		{di.Names.Registry, a.Registry},
		{di.Names.Components, a.Components},
	}
	if metrics != nil {
		singletons = append(singletons, struct {
			key      string
			instance interface{}
		}{di.Names.Metrics, metrics})
	}
	for _, s := range singletons {
		if err := a.Container.RegisterSingleton(s.key, s.instance); err != nil {
			return fmt.Errorf("registering %s: %w", s.key, err)
		}
	}
	return nil
}

// RegisterComponent adds an infrastructure component. Components start
// before any service is constructed and stop after every service.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback to run after services are constructed.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// WhenReady defers fn until the service under key is ready.
func (a *App[C]) WhenReady(key string, fn registry.Waiter) error {
	return a.Registry.WhenReady(key, fn)
}

// Await blocks until the service under key is ready or ctx ends. Use it
// from goroutines that cannot be expressed as callbacks.
func (a *App[C]) Await(ctx context.Context, key string) (component.Service, error) {
	return a.Registry.Await(ctx, key)
}

// WhenAllReady runs fn once every running service is ready. fn runs on the
// goroutine that marks the last service ready.
func (a *App[C]) WhenAllReady(fn func()) error {
	running := a.Registry.Running()
	if len(running) == 0 {
		fn()
		return nil
	}

	var mu sync.Mutex
	remaining := len(running)
	for _, key := range running {
		err := a.Registry.WhenReady(key, func(component.Service) {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				fn()
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadyCheck verifies that all infrastructure components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the lifecycle of a long-running process: start components,
// OnStart hooks, construct services, configure, OnReady hooks, block on a
// signal, then shut down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	a.Logger.Info("Application running, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full lifecycle. The task context
// is canceled on SIGINT/SIGTERM; shutdown runs when the task returns.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	ctx, phase := observability.StartPhase(ctx, observability.SpanStart)

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":        a.Name,
		"version":     a.Version,
		"instance_id": a.InstanceID,
	})

	err := a.startupPhases(ctx)
	phase.End(err)
	if err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

func (a *App[C]) startupPhases(ctx context.Context) error {
	a.Logger.Info("Phase 1: Starting components")
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	a.Logger.Info("Phase 2: Constructing services", map[string]interface{}{
		"order": a.Cfg.GetAppConfig().Registry.CreationOrder,
		"count": len(a.Registry.Running()),
	})
	if err := a.StartServices(ctx); err != nil {
		return fmt.Errorf("service construction failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 3: Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary writes the startup summary.
func (a *App[C]) DisplaySummary() {
	a.Summary.Render(a.summaryOut, a.Components, a.Registry, a.IsHosted)
}

// WaitForSignal blocks until SIGINT/SIGTERM or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks, stops hosted services in reverse start order,
// stops components and closes the container.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	ctx, phase := observability.StartPhase(ctx, observability.SpanShutdown)

	var shutdownErr error
	record := func(msg string, err error) {
		a.Logger.Error(msg, map[string]interface{}{"error": err.Error()})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if err := runHooks(ctx, a.onStop); err != nil {
		record("OnStop hook error", err)
	}
	if err := a.stopHosted(ctx); err != nil {
		record("Hosted service stop error", err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		record("Component stop error", err)
	}
	if err := a.Container.Close(); err != nil {
		record("Container close error", err)
	}

	phase.End(shutdownErr)
	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
