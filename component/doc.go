// Package component defines the capabilities servicecore manages.
//
// A Service is a long-lived singleton with an asynchronous readiness
// lifecycle: it reports IsReady and notifies subscribers exactly once when
// its initialization completes. Readiness is an embeddable implementation
// of that contract.
//
// A Component is an infrastructure piece (for example the status HTTP
// server) with an explicit Start/Stop lifecycle and health reporting.
// Registry starts components in registration order and stops them in
// reverse.
package component
