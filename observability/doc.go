// Package observability wires OpenTelemetry tracing and metrics for process runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &observability.TracerConfig{...})
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartRunSpan(ctx, observability.RunAttributes{Command: "make"})
//	defer observability.EndRunSpan(span, exitCode, err)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{...})
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewProcessMetrics(observability.Meter("harness"))
//	metrics.RunFinished(ctx, "make", observability.OutcomeExited, 0, elapsed)
//
// Setup initialises both providers from a Config and returns one shutdown func.
package observability
