package process

import (
	"io"
	"strings"
	"time"

	"github.com/surgicalcoder/deploymentharness/validation"
)

// Command describes one child process invocation.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string `json:"binary" validate:"required,nonul"`
	// Args are passed to the child verbatim, one argv entry each.
	Args []string `json:"args" validate:"dive,nonul"`
	// ArgLine is an opaque argument string appended after Args. On Windows
	// it reaches the child's command line unchanged; elsewhere it is split
	// by SplitArgLine using the same rules.
	ArgLine string `json:"arg_line" validate:"nonul"`
	// Dir is the working directory. If empty, the current directory is used.
	// A directory that cannot be entered fails the launch.
	Dir string `json:"dir"`
	// Env is additional environment variables (KEY=VALUE), appended to os.Environ.
	Env []string `json:"env" validate:"dive,envpair"`
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader `json:"-" validate:"-"`
	// Passthrough disables capture: the child writes straight to this
	// process's stdout and stderr and no line notifications are raised.
	Passthrough bool `json:"passthrough"`
	// GracePeriod overrides the runner's SIGTERM to SIGKILL delay when > 0.
	GracePeriod time.Duration `json:"grace_period" validate:"gte=0"`
}

// Validate checks the command before launch.
func (c Command) Validate() error {
	return validation.Validate(c)
}

// String renders the command for logs.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Binary)
	for _, a := range c.Args {
		b.WriteByte(' ')
		if a == "" || strings.ContainsAny(a, " \t\"") {
			b.WriteString(quote(a))
		} else {
			b.WriteString(a)
		}
	}
	if c.ArgLine != "" {
		b.WriteByte(' ')
		b.WriteString(c.ArgLine)
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// argv returns the arguments after the binary name for platforms where the
// argument string is split in-process.
func (c Command) argv() []string {
	extra := SplitArgLine(c.ArgLine)
	if len(extra) == 0 {
		return c.Args
	}
	out := make([]string, 0, len(c.Args)+len(extra))
	out = append(out, c.Args...)
	return append(out, extra...)
}
