// Package validation checks configuration sections and service keys.
//
// Struct tag validation covers config sections that are decoded by the
// config loader:
//
//	type Config struct {
//	    RunningServices []string `json:"running_services" validate:"required,min=1,unique"`
//	}
//	err := validation.Validate(&cfg)
//
// The fluent Validator collects errors for values that are not structs,
// such as keys passed to bootstrap at provide time:
//
//	err := validation.New().
//	    ServiceKey("key", key).
//	    OptionalUUID("instance_id", id).
//	    Validate()
//
// Both return *errors.AppError with a "fields" detail listing every failure.
package validation
