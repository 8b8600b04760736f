package registry

import (
	"time"

	"github.com/kbukum/servicecore/logger"
)

// Observer receives registry lifecycle events. observability.RegistryMetrics
// implements it with OpenTelemetry instruments.
type Observer interface {
	ServiceRegistered(key string)
	WaiterQueued(key string)
	ServiceReady(key string, latency time.Duration, drained int)
}

type nopObserver struct{}

func (nopObserver) ServiceRegistered(string) {}
func (nopObserver) WaiterQueued(string) {}
func (nopObserver) ServiceReady(string, time.Duration, int) {}

type multiObserver []Observer

// MultiObserver fans every event out to each non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nopObserver{}
	case 1:
		return m[0]
	}
	return m
}

func (m multiObserver) ServiceRegistered(key string) {
	for _, o := range m {
		o.ServiceRegistered(key)
	}
}

func (m multiObserver) WaiterQueued(key string) {
	for _, o := range m {
		o.WaiterQueued(key)
	}
}

func (m multiObserver) ServiceReady(key string, latency time.Duration, drained int) {
	for _, o := range m {
		o.ServiceReady(key, latency, drained)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the sink for service lifecycle events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock overrides the time source used for registration and readiness
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}
