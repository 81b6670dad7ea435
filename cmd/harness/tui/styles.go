// Package tui renders a live terminal view of a single harness run.
//
// The model consumes a process.EventStream: it shows the child's PID and
// state, the tail of its interleaved output and, once the child exits,
// a one-line summary that is also available after the program ends.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorText    = lipgloss.Color("#E5E7EB")
	colorMuted   = lipgloss.Color("#9CA3AF")
	colorBorder  = lipgloss.Color("#374151")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	stdoutTag = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Render("[O]")

	stderrTag = lipgloss.NewStyle().
			Foreground(colorError).
			Render("[E]")

	statusRunning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusOK = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	statusFailed = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	outputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)
