// Package resilience retries fallible operations with exponential backoff.
//
// Bootstrap uses it to retry service constructors that fail transiently:
//
//	svc, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts:    cfg.ConstructAttempts,
//	    InitialBackoff: cfg.ConstructBackoff,
//	}, func() (component.Service, error) {
//	    return construct(ctx)
//	})
//
// Errors that are *errors.AppError are retried only when marked retryable,
// and context cancellation is never retried.
package resilience
