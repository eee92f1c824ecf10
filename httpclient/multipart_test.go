package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMultipartBody_Upload(t *testing.T) {
	audio := []byte("RIFF....WAVE")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("model"); got != "large-v3" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		if hdr.Filename != `a "quoted".wav` {
			t.Errorf("filename = %q", hdr.Filename)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("part content type = %q", ct)
		}
		data, _ := io.ReadAll(f)
		if string(data) != string(audio) {
			t.Errorf("file data = %q", data)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &MultipartBody{
			Fields: map[string]string{"model": "large-v3", "language": "en"},
			Files:  []FileField{{FieldName: "file", FileName: `a "quoted".wav`, Data: audio}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
