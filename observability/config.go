package observability

import (
	"fmt"
	"time"
)

// Config groups the telemetry settings of the service.
type Config struct {
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint   string  `mapstructure:"endpoint"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// MetricsConfig controls metric export. Prometheus and OTLP can run side by side.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Prometheus exposes a scrape handler served on /metrics.
	Prometheus bool `mapstructure:"prometheus"`
	// Endpoint enables OTLP push when set.
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
	Interval time.Duration `mapstructure:"interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Validate checks the telemetry settings.
func (c *Config) Validate() error {
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("observability: tracing.sample_rate must be within [0, 1], got %v", c.Tracing.SampleRate)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("observability: tracing.endpoint is required when tracing is enabled")
	}
	return nil
}
