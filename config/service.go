package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/whisper-gateway/logger"
)

// ServiceConfig contains the fields every binary in this module needs.
// Binaries extend it by embedding:
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Server server.Config `mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `mapstructure:"name"`
	Environment string        `mapstructure:"environment"`
	Version     string        `mapstructure:"version"`
	Debug       bool          `mapstructure:"debug"`
	Logging     logger.Config `mapstructure:"logging"`
}

// Environments accepted by Validate.
var Environments = []string{"development", "staging", "production"}

// GetServiceConfig returns the base ServiceConfig. The method is promoted
// through embedding so every service config satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
