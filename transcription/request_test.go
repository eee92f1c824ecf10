package transcription

import (
	"strings"
	"testing"

	"github.com/kbukum/whisper-gateway/errors"
)

func validInput() Input {
	return Input{Audio: []byte("RIFF"), Model: "base"}
}

func TestNewTranscriptionRequest_Defaults(t *testing.T) {
	req := NewTranscriptionRequest(validInput(), nil, nil)
	if req.ResponseFormat != FormatJSON {
		t.Errorf("default format = %q", req.ResponseFormat)
	}
	if len(req.TimestampGranularities) != 1 || req.TimestampGranularities[0] != GranularitySegment {
		t.Errorf("default granularities = %v", req.TimestampGranularities)
	}
	req.TimestampGranularities[0] = GranularityWord
	if DefaultGranularities[0] != GranularitySegment {
		t.Error("request defaults must not alias the package default")
	}
}

func TestTranscriptionRequest_Options(t *testing.T) {
	lang := "de"
	req := NewTranscriptionRequest(validInput(), &lang, []Granularity{GranularityWord})
	opts := req.Options()
	if opts.Task != TaskTranscribe {
		t.Errorf("task = %q", opts.Task)
	}
	if !opts.WordTimestamps {
		t.Error("word granularity should enable word timestamps")
	}
	if opts.Language == nil || *opts.Language != "de" {
		t.Errorf("language = %v", opts.Language)
	}

	plain := NewTranscriptionRequest(validInput(), nil, nil)
	if plain.Options().WordTimestamps {
		t.Error("segment granularity should not enable word timestamps")
	}
}

func TestTranslationRequest_Options(t *testing.T) {
	req := NewTranslationRequest(validInput())
	if req.Task() != TaskTranslate {
		t.Errorf("task = %q", req.Task())
	}
	if req.Options().WordTimestamps {
		t.Error("translations are never word-timestamped")
	}
	if g := req.Granularities(); len(g) != 1 || g[0] != GranularitySegment {
		t.Errorf("granularities = %v", g)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"valid transcription", NewTranscriptionRequest(validInput(), nil, nil), ""},
		{"valid translation", NewTranslationRequest(validInput()), ""},
		{"bad format", NewTranscriptionRequest(Input{Audio: []byte{1}, Model: "base", ResponseFormat: "xml"}, nil, nil), "Invalid response format xml"},
		{"bad model", NewTranslationRequest(Input{Audio: []byte{1}, Model: "large"}), "Invalid model large. Need to be base"},
		{"empty audio", NewTranscriptionRequest(Input{Model: "base"}, nil, nil), "file:"},
		{"bad granularity", NewTranscriptionRequest(validInput(), nil, []Granularity{"char"}), "timestamp_granularities[]"},
		{"temperature above one", NewTranslationRequest(Input{Audio: []byte{1}, Model: "base", Temperature: 1.5}), ""},
		{"negative temperature", NewTranslationRequest(Input{Audio: []byte{1}, Model: "base", Temperature: -0.5}), "temperature"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.req, "base")
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.IsInvalidInput(err) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected %q in %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestFormatSupport(t *testing.T) {
	for _, task := range []Task{TaskTranscribe, TaskTranslate} {
		for _, f := range []Format{FormatJSON, FormatVerboseJSON, FormatSRT, FormatVTT} {
			if !task.Supports(f) {
				t.Errorf("%s should support %s", task, f)
			}
		}
		if task.Supports("xml") {
			t.Errorf("%s should not support xml", task)
		}
	}
	if !FormatSRT.IsText() || FormatVerboseJSON.IsText() {
		t.Error("IsText misclassified")
	}
}
