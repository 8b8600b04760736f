// Package observability wires OpenTelemetry into servicecore.
//
// RegistryMetrics implements registry.Observer and turns registry events
// into instruments:
//
//	registry.services.registered  counter    per service key
//	registry.services.ready       counter    per service key
//	registry.waiters.pending      up-down    queued callbacks not yet run
//	registry.ready.latency        histogram  seconds from register to ready
//
// Setup installs OTLP/HTTP trace and metric exporters when enabled.
// StartPhase wraps a bootstrap phase in a span:
//
//	ctx, phase := observability.StartPhase(ctx, "bootstrap.construct")
//	err := construct(ctx)
//	phase.End(err)
package observability
