package promobserver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/surgicalcoder/deploymentharness/logger"
	"github.com/surgicalcoder/deploymentharness/process"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, reg
}

func TestCollectorNotifications(t *testing.T) {
	c, _ := newTestCollector(t)

	c.OnCreated(process.Created{PID: 1})
	c.OnOutput(process.Line{Stream: process.Stdout, Text: "hello"})
	c.OnOutput(process.Line{Stream: process.Stdout, Text: "world"})
	c.OnError(process.Line{Stream: process.Stderr, Text: "oops"})

	if got := testutil.ToFloat64(c.running); got != 1 {
		t.Errorf("running = %v, want 1", got)
	}

	c.OnTerminated(process.Termination{ExitCode: 3, Duration: 250 * time.Millisecond})

	tests := []struct {
		name string
		col  prometheus.Collector
		want float64
	}{
		{"started", c.started, 1},
		{"running", c.running, 0},
		{"last exit", c.lastExit, 3},
		{"stdout lines", c.lines.WithLabelValues("stdout"), 2},
		{"stderr lines", c.lines.WithLabelValues("stderr"), 1},
		{"stdout bytes", c.bytes.WithLabelValues("stdout"), 10},
		{"failures", c.completed.WithLabelValues("failure"), 1},
		{"exit code 3", c.exitCodes.WithLabelValues("3"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.col); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectorWaitFailure(t *testing.T) {
	c, _ := newTestCollector(t)
	obs := process.Observers(c, process.NopObserver{})

	obs.OnCreated(process.Created{RunID: "r1", PID: 7})
	w, ok := obs.(process.WaitFailureObserver)
	if !ok {
		t.Fatal("combined observers should forward wait failures")
	}
	w.OnWaitFailed(process.WaitFailure{RunID: "r1", PID: 7})

	if got := testutil.ToFloat64(c.running); got != 0 {
		t.Errorf("running = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.completed.WithLabelValues("wait_failed")); got != 1 {
		t.Errorf("wait_failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.exitCodes.WithLabelValues("-1")); got != 0 {
		t.Errorf("wait failure must not record an exit code, got %v", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		term process.Termination
		want string
	}{
		{process.Termination{ExitCode: 0}, "success"},
		{process.Termination{ExitCode: 2}, "failure"},
		{process.Termination{ExitCode: -1, Signal: "SIGTERM"}, "signaled"},
	}
	for _, tt := range tests {
		if got := status(tt.term); got != tt.want {
			t.Errorf("status(%+v) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := New(reg); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestCollectorWithRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	c, reg := newTestCollector(t)
	r := process.NewRunner(
		process.WithLogger(logger.Nop()),
		process.WithTracing(false),
		process.WithObserver(c),
	)

	for _, script := range []string{"echo a", "exit 1"} {
		if _, err := r.Run(context.Background(), process.Command{Binary: "sh", Args: []string{"-c", script}}, nil); err != nil {
			t.Fatal(err)
		}
	}

	expected := `
# HELP harness_process_completed_total Child processes that terminated, by status (success, failure, signaled)
# TYPE harness_process_completed_total counter
harness_process_completed_total{status="failure"} 1
harness_process_completed_total{status="success"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "harness_process_completed_total"); err != nil {
		t.Error(err)
	}

	path := filepath.Join(t.TempDir(), "harness.prom")
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		t.Fatalf("WriteToTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "harness_process_started_total 2") {
		t.Errorf("textfile missing started counter:\n%s", data)
	}
}
