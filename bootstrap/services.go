package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/observability"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/resilience"
	"github.com/kbukum/servicecore/validation"
)

// Provide registers a factory for a plain service. constructor takes any
// shape di.Container accepts and must produce a component.Service.
func (a *App[C]) Provide(key string, constructor interface{}) error {
	return a.provide(key, constructor, false)
}

// ProvideHosted registers a factory for a host-bound service. Its instance
// must also implement component.Component; it is started right after
// registration and stopped on shutdown.
func (a *App[C]) ProvideHosted(key string, constructor interface{}) error {
	return a.provide(key, constructor, true)
}

func (a *App[C]) provide(key string, constructor interface{}, hosted bool) error {
	if !validation.IsServiceKey(key) {
		return errors.InvalidInput("key", fmt.Sprintf("%q is not a valid service key", key))
	}
	if err := a.Container.Register(key, constructor); err != nil {
		return err
	}

	a.mu.Lock()
	a.hosted[key] = hosted
	a.mu.Unlock()

	if !a.Registry.IsConfigured(key) {
		a.Logger.Debug("Factory provided for a service outside running services", logger.ServiceFields(key))
	}
	return nil
}

// IsHosted reports whether key was provided with ProvideHosted.
func (a *App[C]) IsHosted(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hosted[key]
}

// CreationOrder returns the running services in the order StartServices
// constructs them. Plain-first and hosted-first keep running order inside
// each group.
func (a *App[C]) CreationOrder() []string {
	running := a.Registry.Running()
	policy := a.Cfg.GetAppConfig().Registry.CreationOrder
	if policy == registry.OrderDeclared {
		return running
	}

	var plain, hosted []string
	for _, key := range running {
		if a.IsHosted(key) {
			hosted = append(hosted, key)
		} else {
			plain = append(plain, key)
		}
	}
	if policy == registry.OrderHostedFirst {
		return append(hosted, plain...)
	}
	return append(plain, hosted...)
}

// StartServices constructs, registers and subscribes every running service
// in creation order. Every running key must have a factory; the check runs
// before anything is constructed. It may only be called once.
func (a *App[C]) StartServices(ctx context.Context) error {
	a.mu.Lock()
	if a.constructed {
		a.mu.Unlock()
		return errors.Conflict("services already started")
	}
	a.constructed = true
	a.mu.Unlock()

	order := a.CreationOrder()
	for _, key := range order {
		if !a.Container.Has(key) {
			return errors.FactoryMissing(key)
		}
	}

	for _, key := range order {
		if err := a.startService(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (a *App[C]) startService(ctx context.Context, key string) (err error) {
	ctx, phase := observability.StartPhase(ctx, observability.SpanConstruct, observability.ServiceKeyAttr(key))
	defer func() {
		elapsed := phase.End(err)
		if err == nil {
			a.Summary.TrackConstruction(key, elapsed)
		}
	}()

	cfg := a.Cfg.GetAppConfig().Registry
	log := a.Logger.WithFields(logger.ServiceFields(key))

	instance, err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts:    cfg.ConstructAttempts,
		InitialBackoff: cfg.ConstructBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("Service construction failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
		},
	}, func() (interface{}, error) {
		return a.Container.Resolve(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("construct %s: %w", key, err)
	}

	svc, ok := instance.(component.Service)
	if !ok {
		return errors.InvalidInput(key, fmt.Sprintf("factory produced %T, which does not implement component.Service", instance))
	}

	var hostedComp component.Component
	hosted := a.IsHosted(key)
	if hosted {
		hostedComp, ok = instance.(component.Component)
		if !ok {
			return errors.InvalidInput(key, fmt.Sprintf("hosted service %T does not implement component.Component", instance))
		}
	}

	if err := a.Registry.Register(key, svc); err != nil {
		return err
	}
	svc.OnInitCompleted(func() {
		if err := a.Registry.MarkReady(key); err != nil {
			log.Warn("Service signaled init completion twice", map[string]interface{}{"error": err.Error()})
		}
	})

	if hosted {
		if err := hostedComp.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", key, err)
		}
		a.mu.Lock()
		a.started = append(a.started, hostedComp)
		a.mu.Unlock()
	}
	return nil
}

func (a *App[C]) stopHosted(ctx context.Context) error {
	a.mu.Lock()
	started := a.started
	a.started = nil
	a.mu.Unlock()

	var firstErr error
	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(ctx); err != nil {
			a.Logger.Error("Failed to stop hosted service", map[string]interface{}{
				"component": started[i].Name(),
				"error":     err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
