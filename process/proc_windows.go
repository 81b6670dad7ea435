//go:build windows

package process

import (
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// prepare hands an ArgLine to the child unchanged by composing the raw
// command line; Windows programs split their own arguments.
func prepare(c *exec.Cmd, cmd Command) {
	c.Args = append([]string{cmd.Binary}, cmd.Args...)
	if cmd.ArgLine == "" {
		return
	}
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Args {
		parts = append(parts, windows.EscapeArg(a))
	}
	parts = append(parts, cmd.ArgLine)
	c.SysProcAttr = &syscall.SysProcAttr{CmdLine: strings.Join(parts, " ")}
}

// terminate stops the child. Windows has no SIGTERM for console children.
func terminate(p *os.Process) error {
	return p.Kill()
}

func kill(p *os.Process) error {
	return p.Kill()
}

func signalOf(*os.ProcessState) string {
	return ""
}
