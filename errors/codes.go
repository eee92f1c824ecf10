package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Backend capacity/availability errors (eligible for failover)
const (
	// ErrCodeOverloaded indicates a backend refused the call because its
	// admission queue is full.
	ErrCodeOverloaded ErrorCode = "OVERLOADED"
	// ErrCodeBackendUnavailable indicates a backend could not be reached or
	// failed while serving the call.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
)

// Connection/Availability errors (retryable)
const (
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeOverloaded:         true,
	ErrCodeBackendUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// invalidInputCodes are the codes that classify as caller errors.
var invalidInputCodes = map[ErrorCode]bool{
	ErrCodeInvalidInput: true,
}
