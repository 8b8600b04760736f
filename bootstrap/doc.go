// Package bootstrap wires the service registry into a process lifecycle.
//
// An App owns the registry, a di.Container of service factories and the
// infrastructure components (status API, telemetry). On startup it starts
// the components, constructs every running service in the configured
// creation order, registers it and marks it ready when the service signals
// init completion. Callbacks registered with WhenReady run as services
// become ready.
//
//	cfg := bootstrap.AppConfig{}
//	if err := config.LoadConfig("servicecore", &cfg); err != nil {
//	    return err
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.Provide("settings", settings.New)
//	app.ProvideHosted("timer", timer.New)
//	app.WhenReady("settings", func(svc component.Service) { ... })
//	return app.Run(ctx)
package bootstrap
