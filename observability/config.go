package observability

import (
	"time"

	"github.com/kbukum/servicecore/validation"
)

// Config is the observability section of the application configuration.
type Config struct {
	// Enabled turns on the OTLP exporters. Registry metrics are recorded on
	// the global meter provider either way.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint" validate:"required,hostname_port"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure" json:"insecure"`
	// SampleRate is the trace sampling ratio between 0 and 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
	// MetricInterval is how often metrics are pushed.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval" json:"metric_interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields with development-friendly values.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
