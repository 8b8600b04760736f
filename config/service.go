package config

import (
	"fmt"

	"github.com/kbukum/servicecore/logger"
	"github.com/kbukum/servicecore/validation"
)

// Environments accepted by ServiceConfig.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig holds the fields every servicecore process needs.
// Applications embed it next to their own sections.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Registry registry.Config `yaml:"registry" mapstructure:"registry"`
//	}
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name" json:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" json:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version" json:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug" json:"debug"`
	// InstanceID identifies this process in logs and the status API.
	// A random UUID is generated at startup when empty.
	InstanceID string        `yaml:"instance_id" mapstructure:"instance_id" json:"instance_id" validate:"omitempty,uuid"`
	Logging    logger.Config `yaml:"logging" mapstructure:"logging" json:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the method
// is promoted so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Embedding structs that override it
// should call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the base fields and the logging section.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
