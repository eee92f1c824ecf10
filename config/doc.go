// Package config loads service configuration with Viper.
//
// LoadConfig looks for cmd/<service>/config.yml (and a few fallbacks),
// loads an optional .env file through godotenv, and lets environment
// variables override file values: DISPATCH_PROBE_COUNT sets
// dispatch.probe_count. Individual variables can be aliased to keys with
// WithEnvAlias.
package config
