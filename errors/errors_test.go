package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if New(ErrCodeInvalidInput, "bad", http.StatusBadRequest).Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestAppError_InvalidInput_MessageIsReason(t *testing.T) {
	err := InvalidInput("model", "Invalid model large. Need to be base")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Message != "Invalid model large. Need to be base" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["field"] != "model" {
		t.Errorf("expected field=model, got %v", err.Details["field"])
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"Overloaded", Overloaded("gpu"), ErrCodeOverloaded, http.StatusServiceUnavailable, true},
		{"Unavailable", Unavailable("cpu", nil), ErrCodeBackendUnavailable, http.StatusServiceUnavailable, true},
		{"RateLimited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests, true},
		{"NotFound", NotFound("route", ""), ErrCodeNotFound, http.StatusNotFound, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Unavailable("gpu", nil).WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := Overloaded("gpu").ToResponse()
	if resp.Error.Code != ErrCodeOverloaded {
		t.Errorf("expected OVERLOADED, got %s", resp.Error.Code)
	}
	if !resp.Error.Retryable {
		t.Error("expected retryable=true in response")
	}
	if resp.Error.Details["backend"] != "gpu" {
		t.Error("expected backend=gpu in response details")
	}
}

func TestAppError_AsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))
	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to return false for plain error")
	}
}

func TestKindPredicates_Table(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		invalid  bool
		failover bool
	}{
		{"invalid input", InvalidInput("f", "bad"), true, false},
		{"overloaded", Overloaded("a"), false, true},
		{"unavailable", Unavailable("a", nil), false, true},
		{"wrapped overloaded", fmt.Errorf("call: %w", Overloaded("a")), false, true},
		{"rate limited", RateLimited(), false, false},
		{"plain", fmt.Errorf("boom"), false, false},
		{"nil", nil, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsInvalidInput(tc.err); got != tc.invalid {
				t.Errorf("IsInvalidInput = %v, want %v", got, tc.invalid)
			}
			if got := IsFailoverEligible(tc.err); got != tc.failover {
				t.Errorf("IsFailoverEligible = %v, want %v", got, tc.failover)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify("gpu", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}

	invalid := InvalidInput("model", "bad")
	if Classify("gpu", invalid) != invalid {
		t.Error("invalid input should pass through")
	}

	over := Overloaded("gpu")
	if Classify("gpu", over) != over {
		t.Error("overloaded should pass through")
	}

	plain := fmt.Errorf("socket closed")
	got := Classify("gpu", plain)
	if !IsUnavailable(got) {
		t.Fatalf("plain error should become unavailable, got %v", got)
	}
	if !stderrors.Is(got, plain) {
		t.Error("classified error should keep the cause")
	}

	if !IsUnavailable(Classify("gpu", New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout))) {
		t.Error("timeout should classify as unavailable")
	}
}
