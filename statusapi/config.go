package statusapi

import (
	"net"
	"strconv"
	"time"

	"github.com/kbukum/servicecore/validation"
)

// Config is the status section of the application configuration.
type Config struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	Host            string        `yaml:"host" mapstructure:"host" json:"host"`
	Events          bool          `yaml:"events" mapstructure:"events" json:"events"`
	Port            int           `yaml:"port" mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
}

// ApplyDefaults fills unset fields. Port 0 is kept and means "pick a free
// port", which tests rely on.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
