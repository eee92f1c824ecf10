package transcription

import (
	"fmt"
	"slices"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/validation"
)

// Input holds the fields shared by transcription and translation requests.
type Input struct {
	Audio          []byte  `form:"file" validate:"min=1"`
	Filename       string  `form:"filename"`
	Model          string  `form:"model" validate:"required"`
	Prompt         *string `form:"prompt"`
	Temperature    float64 `form:"temperature" validate:"gte=0"`
	ResponseFormat Format  `form:"response_format"`
}

// TranscriptionRequest asks a backend to transcribe audio in its spoken
// language. Language is nil when the backend should detect it.
type TranscriptionRequest struct {
	Input
	Language               *string       `form:"language"`
	TimestampGranularities []Granularity `form:"timestamp_granularities[]" validate:"dive,oneof=segment word"`
}

// TranslationRequest asks a backend to translate audio into English.
type TranslationRequest struct {
	Input
}

// Request is implemented by both request kinds so validation and
// formatting can treat them uniformly.
type Request interface {
	Task() Task
	Common() *Input
	Granularities() []Granularity
	Options() DecodingOptions
}

// NewTranscriptionRequest fills defaults for fields the caller left empty.
func NewTranscriptionRequest(in Input, language *string, granularities []Granularity) *TranscriptionRequest {
	if in.ResponseFormat == "" {
		in.ResponseFormat = FormatJSON
	}
	if len(granularities) == 0 {
		granularities = slices.Clone(DefaultGranularities)
	}
	return &TranscriptionRequest{Input: in, Language: language, TimestampGranularities: granularities}
}

// NewTranslationRequest fills defaults for fields the caller left empty.
func NewTranslationRequest(in Input) *TranslationRequest {
	if in.ResponseFormat == "" {
		in.ResponseFormat = FormatJSON
	}
	return &TranslationRequest{Input: in}
}

func (r *TranscriptionRequest) Task() Task                   { return TaskTranscribe }
func (r *TranscriptionRequest) Common() *Input               { return &r.Input }
func (r *TranscriptionRequest) Granularities() []Granularity { return r.TimestampGranularities }

// Wants reports whether g was requested.
func (r *TranscriptionRequest) Wants(g Granularity) bool {
	return slices.Contains(r.TimestampGranularities, g)
}

// Options derives the decoding options sent to the backend. Word
// timestamps are only computed when word granularity was requested.
func (r *TranscriptionRequest) Options() DecodingOptions {
	return DecodingOptions{
		Task:           TaskTranscribe,
		Language:       r.Language,
		Prompt:         r.Prompt,
		Temperature:    r.Temperature,
		WordTimestamps: r.Wants(GranularityWord),
	}
}

func (r *TranslationRequest) Task() Task     { return TaskTranslate }
func (r *TranslationRequest) Common() *Input { return &r.Input }

// Granularities is always segment-level for translations.
func (r *TranslationRequest) Granularities() []Granularity { return DefaultGranularities }

// Options derives the decoding options sent to the backend.
func (r *TranslationRequest) Options() DecodingOptions {
	return DecodingOptions{
		Task:        TaskTranslate,
		Prompt:      r.Prompt,
		Temperature: r.Temperature,
	}
}

// Validate checks req against the task's supported formats and the model
// the gateway serves. Every failure is an INVALID_INPUT AppError.
func Validate(req Request, model string) error {
	in := req.Common()
	if !req.Task().Supports(in.ResponseFormat) {
		return errors.InvalidInput("response_format", fmt.Sprintf("Invalid response format %s", in.ResponseFormat))
	}
	if in.Model != model {
		return errors.InvalidInput("model", fmt.Sprintf("Invalid model %s. Need to be %s", in.Model, model))
	}
	return validation.Validate(req)
}
