package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/whisper-gateway/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("model", "base").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("model", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("model", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorURL(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"http://gpu:9000", true},
		{"nats://127.0.0.1:4222", true},
		{"", true},
		{"gpu:9000", false},
		{"ftp://gpu", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			v := New().URL("url", tc.value, "http", "https", "nats")
			if v.HasErrors() == tc.valid {
				t.Errorf("URL(%q) errors = %v, want valid=%v", tc.value, v.Errors(), tc.valid)
			}
		})
	}
}

func TestValidatorRangeMin(t *testing.T) {
	if New().Range("max_concurrent", 4, 1, 1024).HasErrors() {
		t.Error("expected 4 to be within range")
	}
	if !New().Range("max_concurrent", 0, 1, 1024).HasErrors() {
		t.Error("expected 0 to be out of range")
	}
	if !New().Min("probe_count", -1, 0).HasErrors() {
		t.Error("expected -1 to be below min")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"whisper", "nats"}
	if New().OneOf("kind", "nats", allowed).HasErrors() {
		t.Error("expected nats to be allowed")
	}
	if New().OneOf("kind", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	v := New().OneOf("kind", "grpc", allowed)
	if !v.HasErrors() {
		t.Fatal("expected grpc to be rejected")
	}
	if !strings.Contains(v.Errors()[0].Message, "whisper, nats") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
}

func TestValidatorValidateAggregates(t *testing.T) {
	v := New().
		Required("backends.preferred.url", "")
	v.AddError("dispatch.model", "must not be empty")

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "backends.preferred.url: is required") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", appErr.Details["fields"])
	}
}

func TestValidatorErrNil(t *testing.T) {
	if err := New().Required("x", "y").Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	if v.Required("name", "John").Min("count", 2, 1) != v {
		t.Error("expected chaining to return same validator")
	}
}

func TestStructValidateUsesFormNames(t *testing.T) {
	type Input struct {
		Audio []byte  `form:"file" validate:"min=1"`
		Model string  `form:"model" validate:"required"`
		Temp  float64 `json:"temperature" validate:"gte=0,lte=1"`
	}

	if err := Validate(Input{Audio: []byte{1}, Model: "base"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	err := Validate(Input{Temp: 2})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"file:", "model: is required", "temperature: must be less than or equal to 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !errors.IsInvalidInput(err) {
		t.Error("struct validation should classify as invalid input")
	}
}

func TestStructValidateDiveOneOf(t *testing.T) {
	type Input struct {
		Granularities []string `form:"timestamp_granularities[]" validate:"dive,oneof=segment word"`
	}
	if err := Validate(Input{Granularities: []string{"segment", "word"}}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := Validate(Input{Granularities: []string{"char"}}); err == nil {
		t.Error("expected error for unknown granularity")
	}
}
