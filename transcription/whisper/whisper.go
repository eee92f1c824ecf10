// Package whisper is the HTTP transport for faster-whisper style workers.
//
// A worker exposes:
//
//	GET  /ping        lightweight round trip used by probes
//	GET  /health      200 when the model is loaded
//	POST /transcribe  multipart audio, returns {"segments": [...], "info": {...}}
//	POST /translate   same, translating into English
//
// 400 and 422 answers become INVALID_INPUT, 429 and 503 become OVERLOADED,
// and every other failure becomes BACKEND_UNAVAILABLE.
package whisper

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/httpclient"
	"github.com/kbukum/whisper-gateway/transcription"
)

const (
	pathPing       = "/ping"
	pathHealth     = "/health"
	pathTranscribe = "/transcribe"
	pathTranslate  = "/translate"

	defaultFilename = "audio"
)

// Transport calls one HTTP worker.
type Transport struct {
	name   string
	model  string
	device string
	client *httpclient.Client
}

var _ backend.Transport = (*Transport)(nil)

// New creates a transport for the worker at cfg.URL.
func New(cfg backend.Config) (*Transport, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		TLS:     cfg.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper %s: %w", cfg.Name, err)
	}
	return &Transport{name: cfg.Name, model: cfg.Model, device: cfg.Device, client: client}, nil
}

// Factory is the backend.Factory for KindWhisper.
func Factory(cfg backend.Config) (backend.Transport, error) {
	return New(cfg)
}

// Name returns the backend name.
func (t *Transport) Name() string { return t.name }

// IsAvailable reports whether /health answers 200.
func (t *Transport) IsAvailable(ctx context.Context) bool {
	_, err := t.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: pathHealth})
	return err == nil
}

// Ping calls /ping.
func (t *Transport) Ping(ctx context.Context) error {
	_, err := t.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: pathPing})
	return t.classify(err)
}

// Transcribe posts the audio to /transcribe.
func (t *Transport) Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error) {
	return t.run(ctx, pathTranscribe, req)
}

// Translate posts the audio to /translate.
func (t *Transport) Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error) {
	return t.run(ctx, pathTranslate, req)
}

// Close drops idle worker connections. In-flight calls are not affected.
func (t *Transport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *Transport) run(ctx context.Context, path string, req transcription.Request) (*transcription.Result, error) {
	resp, err := t.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: map[string]string{"Accept": "application/json"},
		Body:    t.form(req),
	})
	if err != nil {
		return nil, t.classify(err)
	}

	var res transcription.Result
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, errors.Unavailable(t.name, fmt.Errorf("decode worker response: %w", err))
	}
	return &res, nil
}

// form builds the multipart body. Optional options are only sent when set.
func (t *Transport) form(req transcription.Request) *httpclient.MultipartBody {
	in := req.Common()
	opts := req.Options()

	fields := map[string]string{
		"model":           t.model,
		"device":          t.device,
		"task":            string(opts.Task),
		"temperature":     strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"word_timestamps": strconv.FormatBool(opts.WordTimestamps),
	}
	if opts.Language != nil {
		fields["language"] = *opts.Language
	}
	if opts.Prompt != nil {
		fields["initial_prompt"] = *opts.Prompt
	}

	filename := in.Filename
	if filename == "" {
		filename = defaultFilename
	}
	return &httpclient.MultipartBody{
		Fields: fields,
		Files:  []httpclient.FileField{{FieldName: "file", FileName: filename, Data: in.Audio}},
	}
}

// workerError is the error body workers send, FastAPI style.
type workerError struct {
	Detail string `json:"detail"`
}

func (t *Transport) classify(err error) error {
	if err == nil {
		return nil
	}
	var he *httpclient.Error
	if !stderrors.As(err, &he) {
		return errors.Unavailable(t.name, err)
	}
	switch {
	case he.Code == httpclient.ErrCodeBusy:
		return errors.Overloaded(t.name).WithCause(err)
	case he.Code == httpclient.ErrCodeValidation && he.StatusCode > 0:
		return errors.InvalidInput("request", detail(he)).WithDetail("backend", t.name)
	}
	unavailable := errors.Unavailable(t.name, err)
	switch {
	case httpclient.IsTimeout(err):
		unavailable.WithDetail("reason", "timeout")
	case httpclient.IsConnection(err):
		unavailable.WithDetail("reason", "connection")
	}
	return unavailable
}

// detail extracts the worker's message, falling back to the HTTP error.
func detail(he *httpclient.Error) string {
	var we workerError
	if json.Unmarshal(he.Body, &we) == nil && we.Detail != "" {
		return we.Detail
	}
	return he.Error()
}
