package process

import (
	"time"

	"github.com/surgicalcoder/deploymentharness/validation"
)

const (
	// DefaultGracePeriod is the time between SIGTERM and SIGKILL on cancel.
	DefaultGracePeriod = 5 * time.Second
	// DefaultMaxLineBytes bounds a single delivered line; longer lines are
	// delivered in several chunks.
	DefaultMaxLineBytes = 1 << 20
)

// Config is the runner section of the harness configuration.
type Config struct {
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// Timeout bounds every run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxLineBytes is the longest line delivered in one notification.
	MaxLineBytes int `yaml:"max_line_bytes" mapstructure:"max_line_bytes"`
	// Passthrough disables capture; the child inherits stdout and stderr.
	Passthrough bool `yaml:"passthrough" mapstructure:"passthrough"`
}

// ApplyDefaults applies default values to runner configuration.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod == 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if c.MaxLineBytes == 0 {
		c.MaxLineBytes = DefaultMaxLineBytes
	}
}

// Validate validates runner configuration.
func (c *Config) Validate() error {
	return validation.New().
		NonNegativeDuration("grace_period", c.GracePeriod).
		NonNegativeDuration("timeout", c.Timeout).
		Min("max_line_bytes", c.MaxLineBytes, 1).
		Error()
}
