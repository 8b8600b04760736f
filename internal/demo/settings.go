package demo

import (
	"time"

	"github.com/kbukum/servicecore/component"
)

// Settings exposes the demo configuration as a service.
type Settings struct {
	component.Readiness
	cfg Config
}

// NewSettings returns settings that are already ready.
func NewSettings(cfg Config) *Settings {
	s := &Settings{cfg: cfg}
	_ = s.Complete()
	return s
}

// TickInterval is the timer period.
func (s *Settings) TickInterval() time.Duration { return s.cfg.TickInterval }

// CheckDelay is how long the simulated version check takes.
func (s *Settings) CheckDelay() time.Duration { return s.cfg.CheckDelay }

// LatestVersion is the version the simulated check reports.
func (s *Settings) LatestVersion() string { return s.cfg.LatestVersion }
