package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/surgicalcoder/deploymentharness/logger"
	"github.com/surgicalcoder/deploymentharness/validation"
)

// Config is the telemetry section of the harness configuration.
type Config struct {
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	// PrometheusTextfile, when set, is where run metrics are written in the
	// Prometheus text format on exit (node_exporter textfile collector).
	PrometheusTextfile string `yaml:"prometheus_textfile" mapstructure:"prometheus_textfile"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig configures OTLP metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset endpoints and intervals.
func (c *Config) ApplyDefaults() {
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Validate validates telemetry configuration.
func (c *Config) Validate() error {
	v := validation.New()
	if c.Tracing.Enabled {
		v.Required("telemetry.tracing.endpoint", c.Tracing.Endpoint)
	}
	v.RangeFloat("telemetry.tracing.sample_rate", c.Tracing.SampleRate, 0, 1)
	if c.Metrics.Enabled {
		v.Required("telemetry.metrics.endpoint", c.Metrics.Endpoint)
	}
	v.NonNegativeDuration("telemetry.metrics.interval", c.Metrics.Interval)
	return v.Error()
}

// ShutdownFunc flushes and stops the providers started by Setup.
type ShutdownFunc func(context.Context) error

// Setup starts the tracer and meter providers enabled in cfg.
// The returned ShutdownFunc is never nil.
func Setup(ctx context.Context, cfg *Config, serviceName, serviceVersion, environment string) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return stderrors.Join(errs...)
	}

	if cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, &TracerConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			Environment:    environment,
			Endpoint:       cfg.Tracing.Endpoint,
			Insecure:       cfg.Tracing.Insecure,
			SampleRate:     cfg.Tracing.SampleRate,
		})
		if err != nil {
			return shutdown, fmt.Errorf("tracing: %w", err)
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, &MeterConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			Environment:    environment,
			Endpoint:       cfg.Metrics.Endpoint,
			Insecure:       cfg.Metrics.Insecure,
			Interval:       cfg.Metrics.Interval,
		})
		if err != nil {
			_ = shutdown(ctx)
			return func(context.Context) error { return nil }, fmt.Errorf("metrics: %w", err)
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	if len(shutdowns) == 0 {
		logger.Debug("telemetry disabled")
	}
	return shutdown, nil
}
