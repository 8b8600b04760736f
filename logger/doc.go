// Package logger provides structured logging for servicecore using zerolog.
//
// It supports console and JSON output, log level configuration, and
// component-scoped loggers with structured fields. The service registry and
// the bootstrap layer receive a *Logger by injection; package-level helpers
// delegate to a process-wide global logger.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("registry")
//	log.Info("Service ready", logger.Fields(logger.FieldServiceKey, "timer"))
package logger
