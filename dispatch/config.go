package dispatch

import (
	"github.com/kbukum/whisper-gateway/validation"
)

// DefaultProbeCount is how many probes precede a call to the preferred
// backend. Two probes let a busy preferred backend fill its admission
// queue so the real call is rejected and fails over.
const DefaultProbeCount = 2

// Config configures the Dispatcher.
type Config struct {
	// Model is the only model name requests may ask for.
	Model string `mapstructure:"model"`
	// ProbeCount is the number of probes sent to the preferred backend
	// before each call.
	ProbeCount int `mapstructure:"probe_count"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.ProbeCount <= 0 {
		c.ProbeCount = DefaultProbeCount
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.New().
		Required("model", c.Model).
		Range("probe_count", c.ProbeCount, 1, 16).
		Err()
}
