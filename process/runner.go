package process

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/surgicalcoder/deploymentharness/errors"
	"github.com/surgicalcoder/deploymentharness/logger"
	"github.com/surgicalcoder/deploymentharness/observability"
)

// Runner launches child processes. A Runner is safe for concurrent use;
// each Run owns its child and its per-call observer.
type Runner struct {
	log          *logger.Logger
	gracePeriod  time.Duration
	timeout      time.Duration
	maxLineBytes int
	passthrough  bool
	stdout       io.Writer
	stderr       io.Writer
	metrics      *observability.ProcessMetrics
	tracing      bool
	observer     Observer
	newRunID     func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to the "process" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithGracePeriod sets the delay between SIGTERM and SIGKILL on cancel.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.gracePeriod = d
		}
	}
}

// WithTimeout bounds every run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithMaxLineBytes sets the longest line delivered in one notification.
func WithMaxLineBytes(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxLineBytes = n
		}
	}
}

// WithPassthrough makes every run skip capture, regardless of Command.Passthrough.
func WithPassthrough(on bool) Option {
	return func(r *Runner) { r.passthrough = on }
}

// WithPassthroughOutput sets where uncaptured child output goes.
// Defaults to os.Stdout and os.Stderr.
func WithPassthroughOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *observability.ProcessMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracing toggles the process.run span. Enabled by default.
func WithTracing(on bool) Option {
	return func(r *Runner) { r.tracing = on }
}

// WithObserver registers an observer notified on every run of this Runner,
// before the per-call observer. It must be safe for concurrent use.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = Observers(r.observer, o) }
}

// WithRunIDFunc replaces the run ID generator.
func WithRunIDFunc(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		log:          logger.Get("process"),
		gracePeriod:  DefaultGracePeriod,
		maxLineBytes: DefaultMaxLineBytes,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		tracing:      true,
		newRunID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRunnerFromConfig creates a Runner from the runner config section.
// Options are applied after the config.
func NewRunnerFromConfig(cfg Config, opts ...Option) *Runner {
	cfg.ApplyDefaults()
	base := []Option{
		WithGracePeriod(cfg.GracePeriod),
		WithTimeout(cfg.Timeout),
		WithMaxLineBytes(cfg.MaxLineBytes),
		WithPassthrough(cfg.Passthrough),
	}
	return NewRunner(append(base, opts...)...)
}

// Run executes cmd and returns its captured stdout, each line followed by
// "\n". obs may be nil.
func (r *Runner) Run(ctx context.Context, cmd Command, obs Observer) (string, error) {
	res, err := r.RunResult(ctx, cmd, obs)
	if res == nil {
		return "", err
	}
	return res.Stdout, err
}

// RunResult executes cmd and returns the full result.
//
// On launch or wait failure it returns a nil Result and no termination is
// reported. On cancellation it returns the Result together with a CANCELED
// or TIMEOUT error.
func (r *Runner) RunResult(ctx context.Context, cmd Command, obs Observer) (*Result, error) {
	obs = Observers(r.observer, obs)
	if r.passthrough {
		cmd.Passthrough = true
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	grace := r.gracePeriod
	if cmd.GracePeriod > 0 {
		grace = cmd.GracePeriod
	}
	capture := !cmd.Passthrough
	runID := r.newRunID()
	log := r.log.WithFields(logger.Fields(logger.FieldRunID, runID))

	span := trace.SpanFromContext(ctx)
	if r.tracing {
		ctx, span = observability.StartRunSpan(ctx, observability.RunAttributes{
			RunID:   runID,
			Command: cmd.Binary,
			Args:    cmd.argv(),
			Dir:     cmd.Dir,
			Capture: capture,
		})
	}
	finish := func(outcome string, exitCode int, d time.Duration, err error) {
		if r.metrics != nil {
			r.metrics.RunFinished(ctx, cmd.Binary, outcome, exitCode, d)
		}
		if r.tracing {
			observability.EndRunSpan(span, exitCode, d, err)
		}
	}

	log.Info("running command", logger.Fields(
		logger.FieldCommand, cmd.Binary,
		logger.FieldArgs, cmd.String(),
		logger.FieldDir, cmd.Dir,
		logger.FieldCapture, capture,
	))

	c := exec.Command(cmd.Binary) //nolint:gosec // running arbitrary commands is the purpose of this package
	prepare(c, cmd)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.Stdin = cmd.Stdin

	var stdoutPipe, stderrPipe io.ReadCloser
	if capture {
		var err error
		if stdoutPipe, err = c.StdoutPipe(); err != nil {
			return nil, r.launchFailed(log, cmd, err, finish)
		}
		if stderrPipe, err = c.StderrPipe(); err != nil {
			_ = stdoutPipe.Close()
			return nil, r.launchFailed(log, cmd, err, finish)
		}
	} else {
		c.Stdout = r.stdout
		c.Stderr = r.stderr
	}

	if err := c.Start(); err != nil {
		return nil, r.launchFailed(log, cmd, err, finish)
	}
	startTime := time.Now()
	pid := c.Process.Pid
	log = log.WithFields(logger.Fields(logger.FieldPID, pid))

	if r.metrics != nil {
		r.metrics.RunStarted(ctx, cmd.Binary)
	}
	if r.tracing {
		observability.MarkRunStarted(span, pid)
	}
	stopWatch := r.watch(ctx, c.Process, grace, log)

	log.Info("process created")
	obs.OnCreated(Created{RunID: runID, PID: pid, StartTime: startTime, Command: cmd})

	var out strings.Builder
	if capture {
		base := Line{RunID: runID, PID: pid}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.pump(ctx, stdoutPipe, Stdout, base, log, func(l Line) {
				out.WriteString(l.Text)
				out.WriteByte('\n')
				obs.OnOutput(l)
			})
		}()
		go func() {
			defer wg.Done()
			r.pump(ctx, stderrPipe, Stderr, base, log, obs.OnError)
		}()
		wg.Wait()
	}

	waitErr := c.Wait()
	exitTime := time.Now()
	signaled := stopWatch()
	duration := exitTime.Sub(startTime)

	var exitErr *exec.ExitError
	if waitErr != nil && !stderrors.As(waitErr, &exitErr) {
		err := errors.WaitFailed(pid, waitErr)
		log.Error("failed waiting for process", logger.MergeWithError(logger.Fields(logger.FieldPID, pid), waitErr))
		notifyWaitFailed(obs, WaitFailure{RunID: runID, PID: pid, Err: err})
		finish(observability.OutcomeWaitFailed, -1, duration, err)
		return nil, err
	}

	term := Termination{
		RunID:     runID,
		PID:       pid,
		StartTime: startTime,
		ExitTime:  exitTime,
		ExitCode:  c.ProcessState.ExitCode(),
		Signal:    signalOf(c.ProcessState),
		Duration:  duration,
	}
	log.Info("process terminated", logger.MergeWithDuration(logger.Fields(
		logger.FieldExitCode, term.ExitCode,
		logger.FieldSignal, term.Signal,
	), duration))
	obs.OnTerminated(term)

	res := &Result{
		RunID:     runID,
		PID:       pid,
		Stdout:    out.String(),
		ExitCode:  term.ExitCode,
		Signal:    term.Signal,
		StartTime: startTime,
		ExitTime:  exitTime,
		Duration:  duration,
	}

	if signaled {
		err := cancellationError(ctx.Err())
		finish(observability.OutcomeCanceled, term.ExitCode, duration, err)
		return res, err
	}
	finish(observability.OutcomeExited, term.ExitCode, duration, nil)
	return res, nil
}

func (r *Runner) launchFailed(log *logger.Logger, cmd Command, cause error, finish func(string, int, time.Duration, error)) error {
	err := errors.LaunchFailed(cmd.Binary, cause)
	log.Error("failed to start process", logger.MergeWithError(logger.Fields(logger.FieldCommand, cmd.Binary), cause))
	finish(observability.OutcomeLaunchFailed, -1, 0, err)
	return err
}

// pump reads one stream line by line until EOF, logging and emitting each line.
func (r *Runner) pump(ctx context.Context, rd io.Reader, stream Stream, base Line, log *logger.Logger, emit func(Line)) {
	prefix := "[O] "
	if stream == Stderr {
		prefix = "[E] "
	}
	streamLog := log.WithFields(logger.Fields(logger.FieldStream, string(stream)))

	sc := newLineScanner(rd, r.maxLineBytes)
	for sc.Scan() {
		text := sc.Text()
		streamLog.Info(prefix + text)
		if r.metrics != nil {
			r.metrics.LineObserved(ctx, string(stream), len(text))
		}
		l := base
		l.Stream = stream
		l.Text = text
		l.Time = time.Now()
		emit(l)
	}
	if err := sc.Err(); err != nil {
		streamLog.WithError(err).Warn("reading output failed")
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, rd)
	}
}

// watch signals the child when ctx is done: SIGTERM first, SIGKILL after
// grace. The returned stop func ends the watch and reports whether any
// signal was sent.
func (r *Runner) watch(ctx context.Context, p *os.Process, grace time.Duration, log *logger.Logger) func() bool {
	done := make(chan struct{})
	var (
		wg       sync.WaitGroup
		signaled bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		select {
		case <-done:
			return
		default:
		}

		signaled = true
		log.Warn("stopping process", logger.Fields("reason", ctx.Err().Error(), "grace_period", grace.String()))
		if err := terminate(p); err != nil {
			log.WithError(err).Warn("failed to terminate process")
		}

		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			log.Warn("grace period expired, killing process")
			if err := kill(p); err != nil {
				log.WithError(err).Warn("failed to kill process")
			}
		}
	}()

	return func() bool {
		close(done)
		wg.Wait()
		return signaled
	}
}

func cancellationError(cause error) error {
	if stderrors.Is(cause, context.DeadlineExceeded) {
		return errors.Timeout("process.run", cause)
	}
	return errors.Canceled("process.run", cause)
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
