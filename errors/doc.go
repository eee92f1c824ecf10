// Package errors provides the structured error type shared by the gateway.
//
// Every failure is an *AppError carrying a machine-readable code, an HTTP
// status and a retryable flag. Backend handles report exactly three kinds:
// invalid input, overloaded and unavailable; the dispatcher uses
// IsFailoverEligible to decide whether the backup backend is tried.
package errors
