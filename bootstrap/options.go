package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/servicecore/di"
	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/registry"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	container       di.Container
	observer        registry.Observer
	summaryOut      io.Writer
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainer sets the service factory container.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithObserver replaces the OpenTelemetry registry metrics with o.
func WithObserver(obs registry.Observer) Option {
	return func(o *appOptions) {
		o.observer = obs
	}
}

// WithSummaryWriter redirects the startup summary. Defaults to stdout.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}
