package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/whisper-gateway/component"
)

func fakeRegistry(fakes map[string]*fakeTransport) *Registry {
	reg := NewRegistry()
	factory := func(cfg Config) (Transport, error) {
		return fakes[cfg.Name], nil
	}
	reg.RegisterFactory(KindWhisper, factory)
	reg.RegisterFactory(KindNATS, factory)
	return reg
}

func validConfig(name, kind, url string) Config {
	return Config{Name: name, Kind: kind, URL: url, Model: "large-v3"}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"whisper ok", validConfig("gpu", KindWhisper, "http://gpu:9000"), ""},
		{"nats ok", validConfig("cpu", KindNATS, "nats://nats:4222"), ""},
		{"missing name", validConfig("", KindWhisper, "http://gpu:9000"), "name"},
		{"missing url", validConfig("gpu", KindWhisper, ""), "url"},
		{"bad scheme", validConfig("gpu", KindWhisper, "nats://gpu:4222"), "url"},
		{"unknown kind", validConfig("gpu", "grpc", "http://gpu:9000"), "kind"},
		{"missing model", Config{Name: "gpu", URL: "http://gpu:9000"}, "model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr+":") {
				t.Fatalf("expected validation error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Kind != KindWhisper || cfg.Device != "cuda" || cfg.MaxConcurrent != 4 || cfg.Subject != "whisper" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout == 0 || cfg.ProbeTimeout == 0 {
		t.Error("expected timeouts to be defaulted")
	}
}

func TestBuild_UsesRegisteredFactory(t *testing.T) {
	fakes := map[string]*fakeTransport{"gpu": newFake("gpu")}
	reg := fakeRegistry(fakes)

	gate, handle, err := Build(reg, validConfig("gpu", KindWhisper, "http://gpu:9000"), RolePreferred, Options{Tracing: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if gate.Capacity() != 4 {
		t.Errorf("expected default capacity 4, got %d", gate.Capacity())
	}
	if handle.Name() != "gpu" {
		t.Errorf("handle name = %q", handle.Name())
	}
}

func TestBuild_KindWithoutFactory(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory(KindWhisper, func(cfg Config) (Transport, error) { return newFake(cfg.Name), nil })

	cfg := validConfig("bus", KindNATS, "nats://127.0.0.1:4222")
	_, _, err := Build(reg, cfg, RoleBackup, Options{})
	if err == nil {
		t.Fatal("expected error for a kind with no factory")
	}
	if !strings.Contains(err.Error(), "not registered") || !strings.Contains(err.Error(), "backup") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	reg := fakeRegistry(nil)
	if _, _, err := Build(reg, Config{Name: "gpu"}, RoleBackup, Options{}); err == nil {
		t.Fatal("expected error for incomplete config")
	} else if !strings.Contains(err.Error(), "backup") {
		t.Errorf("expected the role in the error, got %v", err)
	}
}

func TestComponent_Health(t *testing.T) {
	tests := []struct {
		name           string
		prefUp, backUp bool
		want           component.HealthStatus
	}{
		{"both up", true, true, component.StatusHealthy},
		{"preferred down", false, true, component.StatusDegraded},
		{"backup down", true, false, component.StatusDegraded},
		{"both down", false, false, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakes := map[string]*fakeTransport{"gpu": newFake("gpu"), "cpu": newFake("cpu")}
			fakes["gpu"].available = tt.prefUp
			fakes["cpu"].available = tt.backUp

			c, err := NewComponent(fakeRegistry(fakes),
				validConfig("gpu", KindWhisper, "http://gpu:9000"),
				validConfig("cpu", KindNATS, "nats://nats:4222"),
				Options{})
			if err != nil {
				t.Fatalf("NewComponent: %v", err)
			}
			if err := c.Start(context.Background()); err != nil {
				t.Fatalf("Start: %v", err)
			}

			h := c.Health(context.Background())
			if h.Status != tt.want {
				t.Errorf("status = %s, want %s (%s)", h.Status, tt.want, h.Message)
			}
			if err := c.Stop(context.Background()); err != nil {
				t.Fatalf("Stop: %v", err)
			}
			if !fakes["gpu"].closed.Load() || !fakes["cpu"].closed.Load() {
				t.Error("expected Stop to close both transports")
			}
		})
	}
}

func TestComponent_PoolAndDescribe(t *testing.T) {
	fakes := map[string]*fakeTransport{"gpu": newFake("gpu"), "cpu": newFake("cpu")}
	c, err := NewComponent(fakeRegistry(fakes),
		validConfig("gpu", KindWhisper, "http://gpu:9000"),
		validConfig("cpu", KindNATS, "nats://nats:4222"),
		Options{})
	if err != nil {
		t.Fatalf("NewComponent: %v", err)
	}
	defer c.Stop(context.Background())

	if c.Pool().Preferred().Name() != "gpu" || c.Pool().Backup().Name() != "cpu" {
		t.Error("pool roles do not match config")
	}
	d := c.Describe()
	if !strings.Contains(d.Details, "preferred=gpu(whisper") || !strings.Contains(d.Details, "backup=cpu(nats") {
		t.Errorf("unexpected description %q", d.Details)
	}
}
