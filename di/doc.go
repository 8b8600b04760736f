// Package di is the factory container servicecore builds services from.
//
// Constructors are registered under a string key and run at most once, on
// first Resolve; the result is cached. Pre-built values go in with
// RegisterSingleton. Accepted constructor shapes:
//
//	func() T
//	func() (T, error)
//	func(context.Context) (T, error)
//	func(di.Container) (T, error)
//
// A constructor that takes a Container can resolve its own dependencies
// through it. Dependency cycles are reported as errors instead of
// deadlocking.
//
//	c := di.NewContainer()
//	_ = c.RegisterSingleton(di.Names.Config, cfg)
//	_ = c.Register("timer", func(c di.Container) (*Timer, error) {
//	    cfg, err := di.Resolve[*AppConfig](ctx, c, di.Names.Config)
//	    ...
//	})
//	timer, err := di.Resolve[*Timer](ctx, c, "timer")
package di
