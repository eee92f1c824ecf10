package backend

import (
	"time"

	"github.com/kbukum/whisper-gateway/security"
	"github.com/kbukum/whisper-gateway/validation"
)

// Transport kinds.
const (
	KindWhisper = "whisper"
	KindNATS    = "nats"
)

// Config describes one backend.
type Config struct {
	// Kind selects the transport factory: "whisper" (HTTP) or "nats".
	Kind string `mapstructure:"kind"`
	// Name identifies the backend in logs, metrics and errors.
	Name string `mapstructure:"name"`
	// URL is the worker base URL for HTTP or the server URL for NATS.
	URL string `mapstructure:"url"`
	// Subject is the NATS subject prefix. Ignored for HTTP.
	Subject string `mapstructure:"subject"`
	// Model and Device are forwarded to the worker with every call.
	Model  string `mapstructure:"model"`
	Device string `mapstructure:"device"`
	// Timeout bounds one transcribe or translate call.
	Timeout time.Duration `mapstructure:"timeout"`
	// ProbeTimeout bounds one ping.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	// MaxConcurrent is the number of calls and probes the backend accepts
	// before new calls are rejected as overloaded.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// MaxWait is how long a call waits for a free slot. 0 rejects at once.
	MaxWait time.Duration       `mapstructure:"max_wait"`
	TLS     *security.TLSConfig `mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Kind == "" {
		c.Kind = KindWhisper
	}
	if c.Subject == "" {
		c.Subject = "whisper"
	}
	if c.Device == "" {
		c.Device = "cuda"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Minute
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
}

// Validate checks that the backend can be built.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("name", c.Name)
	v.OneOf("kind", c.Kind, []string{KindWhisper, KindNATS})
	v.Required("model", c.Model)
	v.Required("url", c.URL)
	switch c.Kind {
	case KindWhisper:
		v.URL("url", c.URL, "http", "https")
	case KindNATS:
		v.URL("url", c.URL, "nats", "tls", "ws", "wss")
		v.Required("subject", c.Subject)
	}
	v.Min("max_concurrent", c.MaxConcurrent, 1)
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	return v.Err()
}
