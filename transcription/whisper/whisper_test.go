package whisper

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/security"
	"github.com/kbukum/whisper-gateway/security/tlstest"
	"github.com/kbukum/whisper-gateway/transcription"
)

type received struct {
	path   string
	fields map[string]string
	file   string
	name   string
}

// fakeWorker records the last request and answers with status and body.
func fakeWorker(t *testing.T, status int, body any, got *received) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		if r.Method == http.MethodPost {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
				return
			}
			got.fields = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				got.fields[k] = v[0]
			}
			f, hdr, err := r.FormFile("file")
			if err == nil {
				data, _ := io.ReadAll(f)
				got.file = string(data)
				got.name = hdr.Filename
				f.Close()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func newTransport(t *testing.T, url string) *Transport {
	t.Helper()
	cfg := backend.Config{Kind: backend.KindWhisper, Name: "gpu-1", URL: url, Model: "large-v3"}
	cfg.ApplyDefaults()
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func strPtr(s string) *string { return &s }

func workerResult() transcription.Result {
	return transcription.Result{
		Segments: []transcription.Segment{
			{ID: 0, Start: 0, End: 1.5, Text: " hello", Words: []transcription.Word{{Word: " hello", Start: 0, End: 1.5}}},
			{ID: 1, Start: 1.5, End: 3, Text: " world"},
		},
		Metadata: transcription.RunMetadata{Language: "en", Duration: 3},
	}
}

func TestTranscribe_SendsFormAndDecodesResult(t *testing.T) {
	var got received
	srv := fakeWorker(t, http.StatusOK, workerResult(), &got)
	defer srv.Close()
	tr := newTransport(t, srv.URL)

	req := transcription.NewTranscriptionRequest(transcription.Input{
		Audio:       []byte("RIFF"),
		Filename:    "meeting.wav",
		Model:       "large-v3",
		Prompt:      strPtr("Glossary: gRPC"),
		Temperature: 0.2,
	}, strPtr("en"), []transcription.Granularity{transcription.GranularityWord})

	res, err := tr.Transcribe(context.Background(), req)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.path != "/transcribe" {
		t.Errorf("path = %q", got.path)
	}
	want := map[string]string{
		"model":           "large-v3",
		"device":          "cuda",
		"task":            "transcribe",
		"language":        "en",
		"initial_prompt":  "Glossary: gRPC",
		"temperature":     "0.2",
		"word_timestamps": "true",
	}
	for k, v := range want {
		if got.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, got.fields[k], v)
		}
	}
	if got.file != "RIFF" || got.name != "meeting.wav" {
		t.Errorf("file = %q name = %q", got.file, got.name)
	}
	if len(res.Segments) != 2 || res.Segments[0].Text != " hello" || len(res.Segments[0].Words) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Metadata.Language != "en" {
		t.Errorf("language = %q", res.Metadata.Language)
	}
}

func TestTranslate_OmitsUnsetOptions(t *testing.T) {
	var got received
	srv := fakeWorker(t, http.StatusOK, workerResult(), &got)
	defer srv.Close()
	tr := newTransport(t, srv.URL)

	req := transcription.NewTranslationRequest(transcription.Input{Audio: []byte("RIFF"), Model: "large-v3"})
	if _, err := tr.Translate(context.Background(), req); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.path != "/translate" {
		t.Errorf("path = %q", got.path)
	}
	if got.fields["task"] != "translate" || got.fields["word_timestamps"] != "false" {
		t.Errorf("unexpected fields %v", got.fields)
	}
	for _, k := range []string{"language", "initial_prompt"} {
		if _, ok := got.fields[k]; ok {
			t.Errorf("field %s should not be sent when unset", k)
		}
	}
	if got.name != defaultFilename {
		t.Errorf("expected default filename, got %q", got.name)
	}
}

func TestTranscribe_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(error) bool
	}{
		{"bad request", http.StatusBadRequest, map[string]string{"detail": "Invalid model tiny. Need to be large-v3"}, errors.IsInvalidInput},
		{"unprocessable", http.StatusUnprocessableEntity, map[string]string{"detail": "file is empty"}, errors.IsInvalidInput},
		{"too many requests", http.StatusTooManyRequests, nil, errors.IsOverloaded},
		{"service unavailable", http.StatusServiceUnavailable, nil, errors.IsOverloaded},
		{"internal error", http.StatusInternalServerError, nil, errors.IsUnavailable},
		{"not found", http.StatusNotFound, nil, errors.IsUnavailable},
		{"garbage body", http.StatusOK, "not a result", errors.IsUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got received
			srv := fakeWorker(t, tt.status, tt.body, &got)
			defer srv.Close()
			tr := newTransport(t, srv.URL)

			_, err := tr.Transcribe(context.Background(), transcription.NewTranscriptionRequest(
				transcription.Input{Audio: []byte("x"), Model: "large-v3"}, nil, nil))
			if !tt.check(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestTranscribe_InvalidInputCarriesWorkerDetail(t *testing.T) {
	var got received
	srv := fakeWorker(t, http.StatusBadRequest, map[string]string{"detail": "unsupported sample rate"}, &got)
	defer srv.Close()
	tr := newTransport(t, srv.URL)

	_, err := tr.Transcribe(context.Background(), transcription.NewTranscriptionRequest(
		transcription.Input{Audio: []byte("x"), Model: "large-v3"}, nil, nil))
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "unsupported sample rate" {
		t.Errorf("message = %q", appErr.Message)
	}
	if appErr.Details["backend"] != "gpu-1" {
		t.Errorf("expected backend detail, got %v", appErr.Details)
	}
}

func TestTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	tr := newTransport(t, url)

	if tr.IsAvailable(context.Background()) {
		t.Error("closed worker should not be available")
	}
	err := tr.Ping(context.Background())
	if !errors.IsUnavailable(err) {
		t.Fatalf("expected BACKEND_UNAVAILABLE from Ping, got %v", err)
	}
	if appErr, _ := errors.AsAppError(err); appErr.Details["reason"] != "connection" {
		t.Errorf("expected reason=connection, got %v", appErr.Details)
	}
	_, err = tr.Translate(context.Background(), transcription.NewTranslationRequest(transcription.Input{Audio: []byte("x")}))
	if !errors.IsUnavailable(err) {
		t.Errorf("expected BACKEND_UNAVAILABLE, got %v", err)
	}
}

func TestTransport_PingAndHealth(t *testing.T) {
	var got received
	srv := fakeWorker(t, http.StatusOK, map[string]string{"status": "ok"}, &got)
	defer srv.Close()
	tr := newTransport(t, srv.URL)

	if err := tr.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if got.path != "/ping" {
		t.Errorf("ping path = %q", got.path)
	}
	if !tr.IsAvailable(context.Background()) {
		t.Error("expected worker to be available")
	}
	if got.path != "/health" {
		t.Errorf("health path = %q", got.path)
	}
}

func TestTransport_TLSWorker(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{certs.ServerTLS}}
	srv.StartTLS()
	defer srv.Close()

	if err := newTransport(t, srv.URL).Ping(context.Background()); err == nil {
		t.Fatal("expected untrusted certificate to fail")
	}

	cfg := backend.Config{
		Kind:  backend.KindWhisper,
		Name:  "gpu-tls",
		URL:   srv.URL,
		Model: "large-v3",
		TLS:   &security.TLSConfig{CAFile: certs.CAFile, MinVersion: "1.3"},
	}
	cfg.ApplyDefaults()
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tr.Ping(context.Background()); err != nil {
		t.Fatalf("Ping over TLS: %v", err)
	}
}

func TestTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := backend.Config{Kind: backend.KindWhisper, Name: "gpu-1", URL: srv.URL, Model: "large-v3", Timeout: 20 * time.Millisecond}
	cfg.ApplyDefaults()
	tr, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.Transcribe(context.Background(), transcription.NewTranscriptionRequest(
		transcription.Input{Audio: []byte("x"), Model: "large-v3"}, nil, nil))
	if !errors.IsUnavailable(err) {
		t.Fatalf("expected a hung worker to surface BACKEND_UNAVAILABLE, got %v", err)
	}
	if appErr, _ := errors.AsAppError(err); appErr.Details["reason"] != "timeout" {
		t.Errorf("expected reason=timeout, got %v", appErr.Details)
	}
}

func TestFactory(t *testing.T) {
	reg := backend.NewRegistry()
	reg.RegisterFactory(backend.KindWhisper, Factory)

	cfg := backend.Config{Kind: backend.KindWhisper, Name: "gpu-1", URL: "http://gpu:9000", Model: "large-v3"}
	cfg.ApplyDefaults()
	tr, err := reg.Create(backend.KindWhisper, cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tr.Name() != "gpu-1" {
		t.Errorf("name = %q", tr.Name())
	}
}
