package main

import (
	"fmt"

	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/config"
	"github.com/kbukum/whisper-gateway/dispatch"
	"github.com/kbukum/whisper-gateway/observability"
	"github.com/kbukum/whisper-gateway/server"
	"github.com/kbukum/whisper-gateway/validation"
)

const serviceName = "whisper-gateway"

// Config is the configuration of the whisper-gateway binary.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `mapstructure:"server"`
	Dispatch      dispatch.Config      `mapstructure:"dispatch"`
	Backends      BackendsConfig       `mapstructure:"backends"`
	Observability observability.Config `mapstructure:"observability"`
	Bridge        BridgeConfig         `mapstructure:"bridge"`
}

// BackendsConfig holds the two backends in failover order. Model and
// Device fill in the per-backend values left empty.
type BackendsConfig struct {
	Device    string         `mapstructure:"device"`
	Preferred backend.Config `mapstructure:"preferred"`
	Backup    backend.Config `mapstructure:"backup"`
}

// BridgeConfig configures the bridge command, which answers NATS worker
// subjects with an HTTP whisper worker.
type BridgeConfig struct {
	// URL is the NATS server to subscribe on.
	URL string `mapstructure:"url"`
	// Subject is the subject prefix gateways send to.
	Subject string `mapstructure:"subject"`
	// Queue is the queue group shared by bridge replicas.
	Queue string `mapstructure:"queue"`
	// Worker is the HTTP worker requests are forwarded to.
	Worker backend.Config `mapstructure:"worker"`
}

// ApplyDefaults fills in zero-value fields of every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Dispatch.ApplyDefaults()
	c.Observability.ApplyDefaults()

	for _, b := range []*backend.Config{&c.Backends.Preferred, &c.Backends.Backup, &c.Bridge.Worker} {
		if b.Model == "" {
			b.Model = c.Dispatch.Model
		}
		if b.Device == "" {
			b.Device = c.Backends.Device
		}
		b.ApplyDefaults()
	}
	if c.Bridge.Worker.Name == "" {
		c.Bridge.Worker.Name = "bridge-worker"
	}
	if c.Bridge.Subject == "" {
		c.Bridge.Subject = "whisper"
	}
	if c.Bridge.Queue == "" {
		c.Bridge.Queue = "whisper-workers"
	}
}

// Validate checks the sections the serve command needs. The bridge
// section is checked by the bridge command.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}

	v := validation.New()
	roles := []string{"preferred", "backup"}
	for i, b := range []backend.Config{c.Backends.Preferred, c.Backends.Backup} {
		role := roles[i]
		if err := b.Validate(); err != nil {
			v.AddError("backends."+role, err.Error())
			continue
		}
		if b.Model != c.Dispatch.Model {
			v.AddError("backends."+role+".model", fmt.Sprintf("must match dispatch.model %s (got: %s)", c.Dispatch.Model, b.Model))
		}
	}
	if c.Backends.Preferred.Name != "" && c.Backends.Preferred.Name == c.Backends.Backup.Name {
		v.AddError("backends", "preferred and backup need distinct names")
	}
	return v.Err()
}

// ValidateBridge checks the bridge section.
func (c *Config) ValidateBridge() error {
	v := validation.New()
	v.Required("bridge.url", c.Bridge.URL)
	v.URL("bridge.url", c.Bridge.URL, "nats", "tls", "ws", "wss")
	if c.Bridge.Worker.Kind != backend.KindWhisper {
		v.AddError("bridge.worker.kind", "must be whisper")
	}
	if err := c.Bridge.Worker.Validate(); err != nil {
		v.AddError("bridge.worker", err.Error())
	}
	return v.Err()
}

// loadConfig reads config.yml, .env and the environment. MODEL_NAME and
// MODEL_DEVICE are accepted for compatibility with worker deployments.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	opts := []config.LoaderOption{
		config.WithEnvAlias("MODEL_NAME", "dispatch.model"),
		config.WithEnvAlias("MODEL_DEVICE", "backends.device"),
	}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
