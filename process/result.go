package process

import "time"

// Stream identifies which child output a line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Line is one line of captured output, without its terminator.
type Line struct {
	RunID  string
	PID    int
	Stream Stream
	Text   string
	Time   time.Time
}

// Created is delivered once the child process exists.
type Created struct {
	RunID     string
	PID       int
	StartTime time.Time
	Command   Command
}

// Termination is delivered once the child has exited and its output is drained.
type Termination struct {
	RunID     string
	PID       int
	StartTime time.Time
	ExitTime  time.Time
	// ExitCode is the child's exit status, or -1 if it was killed by a signal.
	ExitCode int
	// Signal names the terminating signal, empty for a normal exit.
	Signal   string
	Duration time.Duration
}

// Success reports whether the child exited normally with status 0.
func (t Termination) Success() bool {
	return t.ExitCode == 0 && t.Signal == ""
}

// Result holds the outcome of a completed run.
type Result struct {
	RunID string
	PID   int
	// Stdout is the captured standard output, each line followed by "\n".
	// Empty when the command ran in passthrough mode.
	Stdout    string
	ExitCode  int
	Signal    string
	StartTime time.Time
	ExitTime  time.Time
	Duration  time.Duration
}
