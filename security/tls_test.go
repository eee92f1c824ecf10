package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/whisper-gateway/security/tlstest"
)

func TestTLSConfig_BuildDisabled(t *testing.T) {
	for name, cfg := range map[string]*TLSConfig{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			result, err := cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != nil {
				t.Fatal("expected nil tls.Config so transport defaults apply")
			}
		})
	}
}

func TestTLSConfig_BuildMinVersion(t *testing.T) {
	tests := []struct {
		min  string
		want uint16
	}{
		{"", tls.VersionTLS12},
		{"1.2", tls.VersionTLS12},
		{"1.3", tls.VersionTLS13},
	}
	for _, tt := range tests {
		t.Run("v"+tt.min, func(t *testing.T) {
			cfg := &TLSConfig{SkipVerify: true, MinVersion: tt.min}
			result, err := cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.MinVersion != tt.want {
				t.Errorf("expected MinVersion %d, got %d", tt.want, result.MinVersion)
			}
			if !result.InsecureSkipVerify {
				t.Error("expected InsecureSkipVerify")
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantErr bool
	}{
		{"nil", nil, false},
		{"cert and key", &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}, false},
		{"cert without key", &TLSConfig{CertFile: "cert.pem"}, true},
		{"key without cert", &TLSConfig{KeyFile: "key.pem"}, true},
		{"tls 1.1", &TLSConfig{MinVersion: "1.1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
		{"ca_file", &TLSConfig{CAFile: "ca.pem"}, true},
		{"cert_file", &TLSConfig{CertFile: "cert.pem"}, true},
		{"server_name", &TLSConfig{ServerName: "gpu-1.internal"}, true},
		{"min_version", &TLSConfig{MinVersion: "1.3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestTLSConfig_BuildFiles(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
		MinVersion: "1.3",
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 client certificate, got %d", len(result.Certificates))
	}
	if result.ServerName != "localhost" {
		t.Errorf("expected ServerName=localhost, got %s", result.ServerName)
	}
}

func TestTLSConfig_BuildErrors(t *testing.T) {
	tests := map[string]*TLSConfig{
		"missing CA":         {CAFile: "/nonexistent/ca.pem"},
		"invalid CA content": {CAFile: tlstest.WriteInvalidPEM(t, "bad-ca.pem")},
		"missing cert files": {CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"},
		"mismatched pair":    {CertFile: "cert.pem"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := cfg.Build(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
