// Package errors provides unified error handling for servicecore.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection. Registry failures (duplicate registration, unknown
// or unconfigured keys, double readiness) are AppErrors with dedicated codes
// so callers can match them with errors.Is.
package errors
