// Package config loads application configuration with Viper.
//
// LoadConfig finds config.yml and .env files in the usual places for a
// command (./cmd/<name>/, ./config/, the working directory), reads the YAML,
// overlays environment variables and decodes the result into the caller's
// struct. Environment variables map onto nested keys by splitting on
// underscores, so REGISTRY_RUNNING_SERVICES=settings,timer overrides
// registry.running_services.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Registry registry.Config `yaml:"registry" mapstructure:"registry"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("servicecore", &cfg)
package config
