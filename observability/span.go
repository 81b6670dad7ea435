package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RunAttributes describe a process run on its span.
type RunAttributes struct {
	RunID   string
	Command string
	Args    []string
	Dir     string
	Capture bool
}

// StartRunSpan starts a process.run span carrying the run's invocation.
func StartRunSpan(ctx context.Context, ra RunAttributes) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, ra.RunID),
		attribute.String(AttrCommand, ra.Command),
		attribute.Bool(AttrCapture, ra.Capture),
	}
	if len(ra.Args) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrArgs, ra.Args))
	}
	if ra.Dir != "" {
		attrs = append(attrs, attribute.String(AttrDir, ra.Dir))
	}
	return StartSpan(ctx, SpanProcessRun,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// MarkRunStarted records the child PID once the process exists.
func MarkRunStarted(span trace.Span, pid int) {
	span.SetAttributes(attribute.Int(AttrPID, pid))
	span.AddEvent("process.created")
}

// EndRunSpan records the outcome of the run and ends the span.
// A non-zero exit code is not a span error.
func EndRunSpan(span trace.Span, exitCode int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int(AttrExitCode, exitCode),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
