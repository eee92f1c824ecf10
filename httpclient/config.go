package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/whisper-gateway/security"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds the whole request including reading the body.
	Timeout time.Duration `mapstructure:"timeout"`
	// TLS configures the transport. Nil uses the system defaults.
	TLS *security.TLSConfig `mapstructure:"tls"`
	// Headers are sent with every request.
	Headers map[string]string `mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}
