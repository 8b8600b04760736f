// Package registry implements the servicecore service registry: a
// string-keyed store of singleton services with readiness tracking and
// deferred callback delivery.
//
// The registry is built from an ordered list of running service keys. Only
// those keys may be looked up or awaited; everything else is reported as
// not configured. A service is registered once, flips to ready exactly once
// via MarkReady, and every callback queued with WhenReady before that moment
// runs once, in registration order, when it does. Callbacks added after
// readiness run synchronously.
//
//	reg := registry.New([]string{"settings", "timer"})
//	_ = reg.Register("timer", timer)
//	_ = reg.WhenReady("timer", func(s component.Service) { ... })
//	_ = reg.MarkReady("timer") // queued callback fires here
//
// Failures are *errors.AppError values matchable with errors.Is against
// ErrDuplicateService, ErrNotFound, ErrNotConfigured and ErrAlreadyReady.
package registry
