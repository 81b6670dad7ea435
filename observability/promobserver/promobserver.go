// Package promobserver exposes process runs as Prometheus metrics.
//
// A Collector is a process.Observer; register it on a Runner with
// process.WithObserver so it sees every run.
//
//	reg := prometheus.NewRegistry()
//	col, err := promobserver.New(reg)
//	runner := process.NewRunner(process.WithObserver(col))
//	...
//	err = prometheus.WriteToTextfile("/var/lib/node_exporter/harness.prom", reg)
package promobserver

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/surgicalcoder/deploymentharness/process"
)

const namespace = "harness"

// Collector records process notifications as Prometheus metrics.
// It is safe for concurrent use.
type Collector struct {
	started   prometheus.Counter
	completed *prometheus.CounterVec
	exitCodes *prometheus.CounterVec
	running   prometheus.Gauge
	lastExit  prometheus.Gauge
	lines     *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	duration  prometheus.Histogram
}

var (
	_ process.Observer            = (*Collector)(nil)
	_ process.WaitFailureObserver = (*Collector)(nil)
)

// New creates a Collector and registers its metrics on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "started_total",
			Help:      "Child processes successfully started",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "completed_total",
			Help:      "Child processes that ended, by status (success, failure, signaled, wait_failed)",
		}, []string{"status"}),
		exitCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "exit_codes_total",
			Help:      "Terminations by exit code (-1 when killed by a signal)",
		}, []string{"code"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "running",
			Help:      "Child processes currently running",
		}),
		lastExit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "last_exit_code",
			Help:      "Exit code of the most recently terminated child",
		}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "output_lines_total",
			Help:      "Captured output lines by stream",
		}, []string{"stream"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "output_bytes_total",
			Help:      "Captured output bytes by stream, excluding line terminators",
		}, []string{"stream"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "process",
			Name:      "run_duration_seconds",
			Help:      "Wall time from process start to exit",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}

	for _, col := range []prometheus.Collector{
		c.started, c.completed, c.exitCodes, c.running,
		c.lastExit, c.lines, c.bytes, c.duration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is New that panics on registration failure.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) OnCreated(process.Created) {
	c.started.Inc()
	c.running.Inc()
}

func (c *Collector) OnOutput(l process.Line) {
	c.line(l)
}

func (c *Collector) OnError(l process.Line) {
	c.line(l)
}

func (c *Collector) line(l process.Line) {
	stream := string(l.Stream)
	c.lines.WithLabelValues(stream).Inc()
	c.bytes.WithLabelValues(stream).Add(float64(len(l.Text)))
}

func (c *Collector) OnTerminated(t process.Termination) {
	c.running.Dec()
	c.completed.WithLabelValues(status(t)).Inc()
	c.exitCodes.WithLabelValues(strconv.Itoa(t.ExitCode)).Inc()
	c.lastExit.Set(float64(t.ExitCode))
	c.duration.Observe(t.Duration.Seconds())
}

// OnWaitFailed accounts for a started child whose exit was never observed.
func (c *Collector) OnWaitFailed(process.WaitFailure) {
	c.running.Dec()
	c.completed.WithLabelValues("wait_failed").Inc()
}

func status(t process.Termination) string {
	switch {
	case t.Signal != "":
		return "signaled"
	case t.ExitCode == 0:
		return "success"
	default:
		return "failure"
	}
}
