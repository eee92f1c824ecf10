package provider

import (
	"context"
	"strings"
	"testing"
)

type testConfig struct {
	URL string
}

// testProvider implements the Provider interface for testing.
type testProvider struct {
	name      string
	url       string
	available bool
}

func (p *testProvider) Name() string                     { return p.name }
func (p *testProvider) IsAvailable(context.Context) bool { return p.available }

func newTestFactory(name string) Factory[*testProvider, testConfig] {
	return func(cfg testConfig) (*testProvider, error) {
		return &testProvider{name: name, url: cfg.URL, available: true}, nil
	}
}

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]()
	reg.RegisterFactory("whisper", newTestFactory("whisper"))

	p, err := reg.Create("whisper", testConfig{URL: "http://gpu:9000"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "whisper" {
		t.Errorf("expected name 'whisper', got %q", p.Name())
	}
	if p.url != "http://gpu:9000" {
		t.Errorf("expected config to reach the factory, got %q", p.url)
	}
}

func TestRegistryCreateUnregistered(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]()
	reg.RegisterFactory("nats", newTestFactory("nats"))

	_, err := reg.Create("grpc", testConfig{})
	if err == nil {
		t.Fatal("expected error for unregistered factory")
	}
	if !strings.Contains(err.Error(), "not registered") || !strings.Contains(err.Error(), "nats") {
		t.Errorf("expected error to name the missing and known kinds, got %q", err.Error())
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry[*testProvider, testConfig]()
	reg.RegisterFactory("whisper", newTestFactory("whisper"))
	reg.RegisterFactory("nats", newTestFactory("nats"))

	names := reg.List()
	if len(names) != 2 || names[0] != "nats" || names[1] != "whisper" {
		t.Errorf("expected sorted [nats whisper], got %v", names)
	}
}
