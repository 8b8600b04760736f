package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Service registry errors. None of these are retryable: they signal either a
// configuration mistake or a programming error.
const (
	// ErrCodeServiceDuplicate indicates a second registration under the same key.
	ErrCodeServiceDuplicate ErrorCode = "SERVICE_DUPLICATE"
	// ErrCodeServiceNotFound indicates a lookup of a key that was never registered.
	ErrCodeServiceNotFound ErrorCode = "SERVICE_NOT_FOUND"
	// ErrCodeServiceNotConfigured indicates the key is not part of the active service set.
	ErrCodeServiceNotConfigured ErrorCode = "SERVICE_NOT_CONFIGURED"
	// ErrCodeServiceAlreadyReady indicates readiness was signalled twice.
	ErrCodeServiceAlreadyReady ErrorCode = "SERVICE_ALREADY_READY"
	// ErrCodeFactoryMissing indicates an active service has no constructor.
	ErrCodeFactoryMissing ErrorCode = "FACTORY_MISSING"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
