// Package validation provides input validation for request records and
// configuration.
//
// Struct tag validation backs the typed transcription requests; the
// fluent Validator collects errors for configuration sections.
//
// # Struct Tag Validation
//
//	type Input struct {
//	    Model string `form:"model" validate:"required"`
//	}
//	err := validation.Validate(in)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("backends.preferred.url", cfg.URL).
//	    Min("dispatch.probe_count", cfg.ProbeCount, 0).
//	    Err()
package validation
