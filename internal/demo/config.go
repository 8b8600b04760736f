package demo

import (
	"time"

	"github.com/kbukum/servicecore/validation"
)

// Config is the demo section of the sample configuration.
type Config struct {
	TickInterval  time.Duration `yaml:"tick_interval" mapstructure:"tick_interval" json:"tick_interval" validate:"gte=0"`
	CheckDelay    time.Duration `yaml:"check_delay" mapstructure:"check_delay" json:"check_delay" validate:"gte=0"`
	LatestVersion string        `yaml:"latest_version" mapstructure:"latest_version" json:"latest_version"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
	if c.CheckDelay == 0 {
		c.CheckDelay = 500 * time.Millisecond
	}
	if c.LatestVersion == "" {
		c.LatestVersion = "v1.0.0"
	}
}

// Validate checks the section with struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
