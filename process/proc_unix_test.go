//go:build linux || darwin

package process

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/creack/pty"
)

func TestPrepareProcessGroup(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()
	defer pw.Close()

	tests := []struct {
		name      string
		stdin     io.Reader
		wantGroup bool
	}{
		{"no stdin", nil, true},
		{"reader", strings.NewReader("x"), true},
		{"pipe", pr, true},
		{"terminal", tty, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exec.Command("true")
			prepare(c, Command{Binary: "true", Args: []string{"a"}, Stdin: tt.stdin})
			if c.SysProcAttr == nil || c.SysProcAttr.Setpgid != tt.wantGroup {
				t.Errorf("Setpgid = %v, want %v", c.SysProcAttr != nil && c.SysProcAttr.Setpgid, tt.wantGroup)
			}
			if strings.Join(c.Args, " ") != "true a" {
				t.Errorf("args = %q", c.Args)
			}
		})
	}
}

func TestTerminateChildSharingGroup(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	c := exec.Command("sleep", "5")
	prepare(c, Command{Binary: "sleep", Args: []string{"5"}, Stdin: tty})
	c.Stdin = tty
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := terminate(c.Process); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	_ = c.Wait()
	if got := signalOf(c.ProcessState); got != "SIGTERM" {
		t.Errorf("signal = %q, want SIGTERM", got)
	}
}
