package bootstrap

import (
	"fmt"

	"github.com/kbukum/servicecore/config"
	"github.com/kbukum/servicecore/observability"
	"github.com/kbukum/servicecore/registry"
	"github.com/kbukum/servicecore/statusapi"
)

// Config is the constraint on application configuration types. Any struct
// embedding AppConfig by value satisfies it through promoted methods.
//
//	type MyConfig struct {
//	    bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Patcher PatcherConfig `yaml:"patcher" mapstructure:"patcher"`
//	}
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg)
type Config interface {
	GetAppConfig() *AppConfig
	ApplyDefaults()
	Validate() error
}

// AppConfig is the configuration every servicecore process reads.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Registry             registry.Config      `yaml:"registry" mapstructure:"registry" json:"registry"`
	Status               statusapi.Config     `yaml:"status" mapstructure:"status" json:"status"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability" json:"observability"`
}

// GetAppConfig returns c.
func (c *AppConfig) GetAppConfig() *AppConfig {
	return c
}

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Registry.ApplyDefaults()
	c.Status.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. The status and observability sections are
// only checked when enabled.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if c.Status.Enabled {
		if err := c.Status.Validate(); err != nil {
			return fmt.Errorf("status: %w", err)
		}
	}
	if c.Observability.Enabled {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("observability: %w", err)
		}
	}
	return nil
}
