package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surgicalcoder/deploymentharness/process"
)

// DefaultMaxLines is the number of output lines kept for display.
const DefaultMaxLines = 200

// EventMsg wraps one event read from the stream.
type EventMsg process.Event

// StreamClosedMsg is sent when the event stream is closed, which happens
// after the run returns.
type StreamClosedMsg struct{}

// TickMsg refreshes the elapsed time.
type TickMsg time.Time

// Config holds TUI configuration.
type Config struct {
	// Command is shown in the header.
	Command string
	// Events is the stream the model consumes.
	Events <-chan process.Event
	// Cancel is called when the user asks to stop the child. May be nil.
	Cancel func()
	// MaxLines bounds the retained output tail.
	MaxLines int
}

type outputLine struct {
	stream process.Stream
	text   string
}

// Model is the bubbletea model of a single run.
type Model struct {
	command  string
	events   <-chan process.Event
	cancel   func()
	maxLines int

	pid         int
	runID       string
	startTime   time.Time
	now         time.Time
	lines       []outputLine
	stdoutLines int
	stderrLines int
	termination *process.Termination

	width    int
	height   int
	stopping bool
	done     bool
}

// New creates a Model.
func New(cfg Config) Model {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	now := time.Now()
	return Model{
		command:   cfg.Command,
		events:    cfg.Events,
		cancel:    cfg.Cancel,
		maxLines:  cfg.MaxLines,
		startTime: now,
		now:       now,
		width:     80,
		height:    24,
	}
}

// Init starts reading the stream and the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.done {
				return m, tea.Quit
			}
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case EventMsg:
		m.apply(process.Event(msg))
		return m, waitForEvent(m.events)

	case StreamClosedMsg:
		m.done = true
		if m.termination != nil {
			m.now = m.termination.ExitTime
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) apply(e process.Event) {
	switch e.Kind {
	case process.EventCreated:
		m.pid = e.Created.PID
		m.runID = e.Created.RunID
		m.startTime = e.Created.StartTime
	case process.EventOutput:
		m.stdoutLines++
		m.push(outputLine{stream: process.Stdout, text: e.Line.Text})
	case process.EventError:
		m.stderrLines++
		m.push(outputLine{stream: process.Stderr, text: e.Line.Text})
	case process.EventTerminated:
		t := *e.Termination
		m.termination = &t
	}
}

func (m *Model) push(l outputLine) {
	m.lines = append(m.lines, l)
	if over := len(m.lines) - m.maxLines; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
}

// Termination returns the child's termination, or nil if none was seen.
func (m Model) Termination() *process.Termination {
	return m.termination
}

// Done reports whether the event stream has closed.
func (m Model) Done() bool {
	return m.done
}

// Stopping reports whether the user asked to stop the child.
func (m Model) Stopping() bool {
	return m.stopping
}

// Elapsed returns the run time so far, or the final duration once the
// child has exited.
func (m Model) Elapsed() time.Duration {
	if m.termination != nil {
		return m.termination.Duration
	}
	if m.now.Before(m.startTime) {
		return 0
	}
	return m.now.Sub(m.startTime)
}

func waitForEvent(ch <-chan process.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg(e)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
