package config

import (
	"fmt"

	"github.com/surgicalcoder/deploymentharness/observability"
	"github.com/surgicalcoder/deploymentharness/process"
)

// HarnessConfig is the full configuration of the harness binary.
type HarnessConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Runner        process.Config       `yaml:"runner" mapstructure:"runner"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies defaults to every section.
func (c *HarnessConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Runner.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *HarnessConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
