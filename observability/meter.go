package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/surgicalcoder/deploymentharness/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Run outcomes recorded on process.runs.
const (
	OutcomeExited       = "exited"
	OutcomeLaunchFailed = "launch_failed"
	OutcomeWaitFailed   = "wait_failed"
	OutcomeCanceled     = "canceled"
)

// Instrument names.
const (
	MetricRuns        = "process.runs"
	MetricRunDuration = "process.run.duration"
	MetricRunsActive  = "process.runs.active"
	MetricLines       = "process.output.lines"
	MetricBytes       = "process.output.bytes"
)

// ProcessMetrics holds OpenTelemetry instruments for process runs.
type ProcessMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	lines    metric.Int64Counter
	bytes    metric.Int64Counter
}

// NewProcessMetrics creates process instruments on the given meter.
func NewProcessMetrics(meter metric.Meter) (*ProcessMetrics, error) {
	runs, err := meter.Int64Counter(MetricRuns,
		metric.WithDescription("Completed process runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRuns, err)
	}

	duration, err := meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Wall time from start to exit"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRunDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricRunsActive,
		metric.WithDescription("Child processes currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricRunsActive, err)
	}

	lines, err := meter.Int64Counter(MetricLines,
		metric.WithDescription("Captured output lines by stream"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLines, err)
	}

	bytes, err := meter.Int64Counter(MetricBytes,
		metric.WithDescription("Captured output bytes by stream"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBytes, err)
	}

	return &ProcessMetrics{
		runs:     runs,
		duration: duration,
		active:   active,
		lines:    lines,
		bytes:    bytes,
	}, nil
}

// RunStarted increments the active run count.
func (m *ProcessMetrics) RunStarted(ctx context.Context, command string) {
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String("command", command)))
}

// RunFinished records a completed run. Call RunStarted first for every
// outcome except OutcomeLaunchFailed.
func (m *ProcessMetrics) RunFinished(ctx context.Context, command, outcome string, exitCode int, duration time.Duration) {
	cmdAttr := attribute.String("command", command)
	if outcome != OutcomeLaunchFailed {
		m.active.Add(ctx, -1, metric.WithAttributes(cmdAttr))
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(
		cmdAttr,
		attribute.String("outcome", outcome),
		attribute.Bool("success", outcome == OutcomeExited && exitCode == 0),
	))
	if outcome != OutcomeLaunchFailed {
		m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(cmdAttr))
	}
}

// LineObserved counts one captured line of n bytes on the named stream.
func (m *ProcessMetrics) LineObserved(ctx context.Context, stream string, n int) {
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	m.lines.Add(ctx, 1, attrs)
	m.bytes.Add(ctx, int64(n), attrs)
}
