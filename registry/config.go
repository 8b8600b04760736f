package registry

import (
	"time"

	"github.com/kbukum/servicecore/validation"
)

// Creation order policies understood by the bootstrap layer.
const (
	OrderPlainFirst  = "plain_first"
	OrderHostedFirst = "hosted_first"
	OrderDeclared    = "declared"
)

// Config is the registry section of the application configuration.
type Config struct {
	// RunningServices is the ordered active service set.
	RunningServices []string `yaml:"running_services" mapstructure:"running_services" json:"running_services" validate:"required,min=1,unique,dive,required,servicekey"`
	// CreationOrder decides whether plain or host-bound services are
	// constructed first. Declared keeps RunningServices order.
	CreationOrder string `yaml:"creation_order" mapstructure:"creation_order" json:"creation_order" validate:"oneof=plain_first hosted_first declared"`
	// ConstructAttempts bounds how often a failing constructor is retried.
	ConstructAttempts int `yaml:"construct_attempts" mapstructure:"construct_attempts" json:"construct_attempts" validate:"gte=1,lte=10"`
	// ConstructBackoff is the delay before the first constructor retry.
	ConstructBackoff time.Duration `yaml:"construct_backoff" mapstructure:"construct_backoff" json:"construct_backoff" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.CreationOrder == "" {
		c.CreationOrder = OrderPlainFirst
	}
	if c.ConstructAttempts == 0 {
		c.ConstructAttempts = 1
	}
	if c.ConstructBackoff == 0 {
		c.ConstructBackoff = 200 * time.Millisecond
	}
}

// Validate checks the configuration with struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
