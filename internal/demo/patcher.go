package demo

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/servicecore/component"
	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/resilience"
)

// SettingsKey is the registry key the patcher waits on.
const SettingsKey = "settings"

// VersionSource reports the latest available version.
type VersionSource func(ctx context.Context) (string, error)

// DelayedSource returns a source that answers latest after delay.
func DelayedSource(latest string, delay time.Duration) VersionSource {
	return func(ctx context.Context) (string, error) {
		select {
		case <-time.After(delay):
			return latest, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Patcher checks for a newer version once settings is ready and becomes
// ready when the check finishes, whether or not it succeeded.
type Patcher struct {
	component.Readiness

	current string
	source  VersionSource
	retry   resilience.RetryConfig
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	latest string
	err    error
}

// NewPatcher creates a patcher for the running version current. When source
// is nil the check uses the settings' latest version and delay.
func NewPatcher(reg *registry.Registry, current string, source VersionSource, log *logger.Logger) (*Patcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Patcher{
		current: current,
		source:  source,
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
		},
		log:    log.WithComponent("patcher"),
		ctx:    ctx,
		cancel: cancel,
	}

	err := reg.WhenReady(SettingsKey, func(svc component.Service) {
		settings, ok := svc.(*Settings)
		if !ok {
			p.finish("", errors.InvalidInput(SettingsKey, "not a *demo.Settings"))
			return
		}
		p.wg.Add(1)
		go p.check(settings)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	return p, nil
}

func (p *Patcher) check(settings *Settings) {
	defer p.wg.Done()

	source := p.source
	if source == nil {
		source = DelayedSource(settings.LatestVersion(), settings.CheckDelay())
	}

	latest, err := resilience.Retry(p.ctx, p.retry, func() (string, error) {
		return source(p.ctx)
	})
	p.finish(latest, err)
}

func (p *Patcher) finish(latest string, err error) {
	p.mu.Lock()
	p.latest, p.err = latest, err
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("Version check failed", map[string]interface{}{"error": err.Error()})
	} else if p.UpdateAvailable() {
		p.log.Info("Update available", map[string]interface{}{
			"current": p.current,
			"latest":  latest,
		})
	}
	_ = p.Complete()
}

// Latest returns the checked version and the check error, if any.
func (p *Patcher) Latest() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.err
}

// UpdateAvailable reports whether the check found a version different from
// the running one.
func (p *Patcher) UpdateAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err == nil && p.latest != "" && p.latest != p.current
}

// Close cancels a check in flight and waits for it.
func (p *Patcher) Close() error {
	p.cancel()
	p.wg.Wait()
	return nil
}
