// Package config handles process configuration and the analysis profile
// (keyword lexicons, thresholds, factor weights) for the analyzer.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process-level settings resolved from the environment.
type Config struct {
	ServiceEnvironment string `envconfig:"ANALYZER_ENVIRONMENT" default:"development"`
	InputDir           string `envconfig:"ANALYZER_INPUT_DIR" default:"."`
	OutputDir          string `envconfig:"ANALYZER_OUTPUT_DIR" default:"."`
	ProfilePath        string `envconfig:"ANALYZER_PROFILE"`
}

// Load resolves the process configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// ConfigError reports an invalid analysis profile value. It is fatal: the
// run aborts before any record is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
