//go:build !unix && !windows

package process

import (
	"os"
	"os/exec"
)

func prepare(c *exec.Cmd, cmd Command) {
	c.Args = append([]string{cmd.Binary}, cmd.argv()...)
}

func terminate(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func kill(p *os.Process) error {
	return p.Kill()
}

func signalOf(*os.ProcessState) string {
	return ""
}
