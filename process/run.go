package process

import (
	"context"
	"io"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultRunner *Runner
)

// Default returns the Runner used by the package-level Run functions.
func Default() *Runner {
	defaultMu.RLock()
	r := defaultRunner
	defaultMu.RUnlock()
	if r != nil {
		return r
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRunner == nil {
		defaultRunner = NewRunner()
	}
	return defaultRunner
}

// SetDefault replaces the Runner used by the package-level Run functions.
func SetDefault(r *Runner) {
	defaultMu.Lock()
	defaultRunner = r
	defaultMu.Unlock()
}

type runOptions struct {
	runner    *Runner
	observers []Observer
	cmd       Command
}

// RunOption adjusts a package-level Run call.
type RunOption func(*runOptions)

// Notify adds an observer for this call.
func Notify(o Observer) RunOption {
	return func(ro *runOptions) { ro.observers = append(ro.observers, o) }
}

// WithoutCapture runs in passthrough mode: output is not captured and no
// line notifications are raised.
func WithoutCapture() RunOption {
	return func(ro *runOptions) { ro.cmd.Passthrough = true }
}

// WithEnv adds KEY=VALUE environment entries.
func WithEnv(env ...string) RunOption {
	return func(ro *runOptions) { ro.cmd.Env = append(ro.cmd.Env, env...) }
}

// WithStdin feeds r to the child's standard input.
func WithStdin(r io.Reader) RunOption {
	return func(ro *runOptions) { ro.cmd.Stdin = r }
}

// Using runs the call on r instead of the default Runner.
func Using(r *Runner) RunOption {
	return func(ro *runOptions) { ro.runner = r }
}

// Run launches command with the opaque argument string args in the current
// working directory and returns the captured stdout.
func Run(ctx context.Context, command, args string, opts ...RunOption) (string, error) {
	return RunIn(ctx, command, args, "", opts...)
}

// RunIn is Run with an explicit working directory.
func RunIn(ctx context.Context, command, args, workingDirectory string, opts ...RunOption) (string, error) {
	ro := runOptions{cmd: Command{Binary: command, ArgLine: args, Dir: workingDirectory}}
	for _, opt := range opts {
		opt(&ro)
	}
	r := ro.runner
	if r == nil {
		r = Default()
	}
	return r.Run(ctx, ro.cmd, Observers(ro.observers...))
}
