package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsInvalidInput reports whether err was caused by the caller's input.
func IsInvalidInput(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && invalidInputCodes[appErr.Code]
}

// IsOverloaded reports whether err signals a full backend queue.
func IsOverloaded(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == ErrCodeOverloaded
}

// IsUnavailable reports whether err signals an unreachable or failed backend.
func IsUnavailable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == ErrCodeBackendUnavailable
}

// IsFailoverEligible reports whether a call that failed with err may be
// repeated against another backend.
func IsFailoverEligible(err error) bool {
	return IsOverloaded(err) || IsUnavailable(err)
}

// Classify normalizes a backend error into the three backend error kinds.
// Invalid-input and overload errors pass through unchanged; every other
// error, including non-AppErrors, becomes Unavailable for the named backend.
func Classify(backend string, err error) error {
	if err == nil {
		return nil
	}
	if IsInvalidInput(err) || IsFailoverEligible(err) {
		return err
	}
	return Unavailable(backend, err)
}
