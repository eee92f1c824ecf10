package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Multipart field names.
const (
	fieldFile           = "file"
	fieldModel          = "model"
	fieldLanguage       = "language"
	fieldPrompt         = "prompt"
	fieldResponseFormat = "response_format"
	fieldTemperature    = "temperature"
	fieldGranularities  = "timestamp_granularities[]"
)

// readInput decodes the fields both endpoints share.
func readInput(c *gin.Context) (transcription.Input, error) {
	var in transcription.Input

	fh, err := c.FormFile(fieldFile)
	if err != nil {
		return in, formError(err)
	}
	f, err := fh.Open()
	if err != nil {
		return in, formError(err)
	}
	defer f.Close()
	if in.Audio, err = io.ReadAll(f); err != nil {
		return in, formError(err)
	}
	in.Filename = fh.Filename

	in.Model = c.PostForm(fieldModel)
	in.Prompt = optional(c, fieldPrompt)
	in.ResponseFormat = transcription.Format(c.PostForm(fieldResponseFormat))

	if raw := c.PostForm(fieldTemperature); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, errors.InvalidInput(fieldTemperature, fmt.Sprintf("Invalid temperature %s", raw))
		}
		in.Temperature = t
	}
	return in, nil
}

func readTranscription(c *gin.Context) (*transcription.TranscriptionRequest, error) {
	in, err := readInput(c)
	if err != nil {
		return nil, err
	}
	var granularities []transcription.Granularity
	for _, g := range c.PostFormArray(fieldGranularities) {
		granularities = append(granularities, transcription.Granularity(g))
	}
	return transcription.NewTranscriptionRequest(in, optional(c, fieldLanguage), granularities), nil
}

func readTranslation(c *gin.Context) (*transcription.TranslationRequest, error) {
	in, err := readInput(c)
	if err != nil {
		return nil, err
	}
	return transcription.NewTranslationRequest(in), nil
}

// optional returns nil for absent or empty fields.
func optional(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// formError keeps *http.MaxBytesError intact so it is answered with 413.
func formError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxErr):
		return err
	case stderrors.Is(err, http.ErrMissingFile):
		return errors.InvalidInput(fieldFile, "file is required")
	default:
		return errors.InvalidInput(fieldFile, fmt.Sprintf("Invalid multipart form: %v", err))
	}
}
