//go:build unix

package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// prepare sets argv and starts the child in its own process group so
// cancellation reaches every process it spawned. A child reading from a
// terminal stays in the caller's group instead: a background group would be
// stopped by SIGTTIN on its first read. Signals then go to the child alone.
func prepare(c *exec.Cmd, cmd Command) {
	c.Args = append([]string{cmd.Binary}, cmd.argv()...)
	if isTerminal(cmd.Stdin) {
		c.SysProcAttr = &syscall.SysProcAttr{}
		return
	}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && f != nil && isatty.IsTerminal(f.Fd())
}

// terminate asks the child's process group to stop.
func terminate(p *os.Process) error {
	return signalGroup(p, unix.SIGTERM)
}

// kill forcibly stops the child's process group.
func kill(p *os.Process) error {
	return signalGroup(p, unix.SIGKILL)
}

func signalGroup(p *os.Process, sig syscall.Signal) error {
	if err := p.Signal(syscall.Signal(0)); errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	err := unix.Kill(-p.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		// No group led by the child: it shares ours or has already exited.
		err = p.Signal(sig)
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
	}
	return err
}

// signalOf returns the name of the signal that ended the process, if any.
func signalOf(state *os.ProcessState) string {
	if state == nil {
		return ""
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return ""
	}
	return unix.SignalName(ws.Signal())
}
