package main

import (
	"context"
	"fmt"

	"github.com/kbukum/servicecore/bootstrap"
	"github.com/kbukum/servicecore/di"
	"github.com/kbukum/servicecore/internal/demo"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/version"
)

// Config is the servicecore binary's configuration.
type Config struct {
	bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
	Demo                demo.Config `yaml:"demo" mapstructure:"demo" json:"demo"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.AppConfig.ApplyDefaults()
	c.Demo.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.AppConfig.Validate(); err != nil {
		return err
	}
	if err := c.Demo.Validate(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}

// newApp builds the application and provides the demo services.
func newApp(cfg *Config, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := app.Provide("settings", func() *demo.Settings {
		return demo.NewSettings(cfg.Demo)
	}); err != nil {
		return nil, err
	}

	if err := app.ProvideHosted("timer", func(c di.Container) (*demo.Timer, error) {
		settings, err := di.Resolve[*demo.Settings](context.Background(), c, "settings")
		if err != nil {
			return nil, err
		}
		return demo.NewTimer(settings.TickInterval(), app.Logger), nil
	}); err != nil {
		return nil, err
	}

	if err := app.Provide("patcher", func(c di.Container) (*demo.Patcher, error) {
		reg, err := di.Resolve[*registry.Registry](context.Background(), c, di.Names.Registry)
		if err != nil {
			return nil, err
		}
		return demo.NewPatcher(reg, version.Get().Version, nil, app.Logger)
	}); err != nil {
		return nil, err
	}

	return app, nil
}
