package config

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

type testBackend struct {
	URL           string `mapstructure:"url"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Dispatch      struct {
		Model      string `mapstructure:"model"`
		ProbeCount int    `mapstructure:"probe_count"`
	} `mapstructure:"dispatch"`
	Backends struct {
		Preferred testBackend `mapstructure:"preferred"`
	} `mapstructure:"backends"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const sampleYAML = `
name: whisper-gateway
environment: staging
dispatch:
  model: base
  probe_count: 2
backends:
  preferred:
    url: http://gpu:9000
    max_concurrent: 4
`

func TestServiceConfigApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{Name: "svc"}
	cfg.ApplyDefaults()
	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug=true for development")
	}
	if cfg.Logging.ServiceName != "svc" {
		t.Errorf("expected logging service name to follow Name, got %q", cfg.Logging.ServiceName)
	}

	prod := ServiceConfig{Name: "svc", Environment: "production"}
	prod.ApplyDefaults()
	if prod.Debug {
		t.Error("expected debug=false for production")
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	var cfg testConfig
	if err := LoadConfig("whisper-gateway", &cfg, WithConfigFile(path), WithEnvPrefix("WGTEST_NONE")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "whisper-gateway" {
		t.Errorf("expected name 'whisper-gateway', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Dispatch.ProbeCount != 2 {
		t.Errorf("expected probe_count 2, got %d", cfg.Dispatch.ProbeCount)
	}
	if cfg.Backends.Preferred.MaxConcurrent != 4 {
		t.Errorf("expected max_concurrent 4, got %d", cfg.Backends.Preferred.MaxConcurrent)
	}
}

func TestLoadConfigEnvPrefixOverride(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("WGTEST_DISPATCH_PROBE_COUNT", "5")

	var cfg testConfig
	if err := LoadConfig("whisper-gateway", &cfg, WithConfigFile(path), WithEnvPrefix("WGTEST")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dispatch.ProbeCount != 5 {
		t.Errorf("expected env override 5, got %d", cfg.Dispatch.ProbeCount)
	}
}

func TestLoadConfigEnvAlias(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("MODEL_NAME", "large-v3")

	var cfg testConfig
	err := LoadConfig("whisper-gateway", &cfg,
		WithConfigFile(path),
		WithEnvPrefix("WGTEST_NONE"),
		WithEnvAlias("MODEL_NAME", "dispatch.model"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dispatch.Model != "large-v3" {
		t.Errorf("expected aliased model 'large-v3', got %q", cfg.Dispatch.Model)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("WGTEST_NONE"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/whisper-gateway/config.yml": true,
		"./cmd/whisper-gateway/.env":       true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("whisper-gateway", LoaderConfig{})
	if files.ConfigFile != "./cmd/whisper-gateway/config.yml" {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
	if files.EnvFile != "./cmd/whisper-gateway/.env" {
		t.Errorf("unexpected env file %q", files.EnvFile)
	}
}

func TestResolverShortNameFallback(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./cmd/gateway/config.yml": true}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("whisper-gateway", LoaderConfig{})
	if files.ConfigFile != "./cmd/gateway/config.yml" {
		t.Errorf("expected short-name match, got %q", files.ConfigFile)
	}
}

func TestStructKeys(t *testing.T) {
	keys := structKeys(reflect.TypeOf(&testConfig{}), "")
	want := []string{
		"name", "environment", "version", "debug",
		"logging.level", "dispatch.model", "dispatch.probe_count",
		"backends.preferred.url", "backends.preferred.max_concurrent",
	}
	for _, w := range want {
		if !slices.Contains(keys, w) {
			t.Errorf("missing key %q in %v", w, keys)
		}
	}
	if slices.Contains(keys, "serviceconfig") {
		t.Error("squashed embed should not produce its own key")
	}
}

func TestEnvName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "dispatch.probe_count", "DISPATCH_PROBE_COUNT"},
		{"GW", "backends.preferred.url", "GW_BACKENDS_PREFERRED_URL"},
	}
	for _, tt := range tests {
		if got := envName(tt.prefix, tt.key); got != tt.want {
			t.Errorf("envName(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "dispatch: [unclosed")
	var cfg testConfig
	if err := LoadConfig("whisper-gateway", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("gw_")(&lc)
	WithEnvAlias("MODEL_DEVICE", "backends.preferred.device")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected file overrides %+v", lc)
	}
	if lc.EnvPrefix != "GW" {
		t.Errorf("expected normalized prefix GW, got %q", lc.EnvPrefix)
	}
	if lc.EnvAliases["MODEL_DEVICE"] != "backends.preferred.device" {
		t.Errorf("unexpected aliases %v", lc.EnvAliases)
	}
}
