package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/surgicalcoder/deploymentharness/process"
)

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("harness"))
	b.WriteString("  ")
	b.WriteString(commandStyle.Render(truncate(m.command, m.width-10)))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderOutput())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.termination != nil:
		return m.Summary()
	case m.done && m.pid == 0:
		return statusFailed.Render("failed to start")
	case m.done:
		return statusFailed.Render(fmt.Sprintf("lost pid %d", m.pid))
	case m.pid == 0:
		return statusRunning.Render("starting")
	case m.stopping:
		return statusRunning.Render(fmt.Sprintf("stopping pid %d", m.pid))
	default:
		return statusRunning.Render(fmt.Sprintf("running pid %d", m.pid)) +
			mutedStyle.Render("  "+formatDuration(m.Elapsed()))
	}
}

func (m Model) renderOutput() string {
	// Header, status, footer and the box border take six rows.
	rows := m.height - 6
	if rows < 1 {
		rows = 1
	}
	tail := m.lines
	if len(tail) > rows {
		tail = tail[len(tail)-rows:]
	}

	inner := m.width - 4
	out := make([]string, 0, len(tail))
	for _, l := range tail {
		tag := stdoutTag
		if l.stream == process.Stderr {
			tag = stderrTag
		}
		out = append(out, tag+" "+truncate(l.text, inner-4))
	}
	if len(out) == 0 {
		out = append(out, mutedStyle.Render("no output yet"))
	}
	box := outputBox
	if inner > 0 {
		box = box.Width(inner)
	}
	return box.Render(strings.Join(out, "\n"))
}

func (m Model) renderFooter() string {
	keys := "q: stop"
	if m.done {
		keys = "q: quit"
	}
	return mutedStyle.Render(fmt.Sprintf("stdout %d  stderr %d  %s", m.stdoutLines, m.stderrLines, keys))
}

// Summary is a one-line styled description of how the child ended.
// It is empty until a termination has been seen.
func (m Model) Summary() string {
	t := m.termination
	if t == nil {
		return ""
	}
	var status string
	switch {
	case t.Signal != "":
		status = statusFailed.Render("killed by " + t.Signal)
	case t.ExitCode == 0:
		status = statusOK.Render("exited 0")
	default:
		status = statusFailed.Render(fmt.Sprintf("exited %d", t.ExitCode))
	}
	detail := mutedStyle.Render(fmt.Sprintf("pid %d  %s  %d stdout / %d stderr lines",
		t.PID, formatDuration(t.Duration), m.stdoutLines, m.stderrLines))
	return lipgloss.JoinHorizontal(lipgloss.Top, status, "  ", detail)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
