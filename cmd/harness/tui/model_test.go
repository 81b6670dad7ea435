package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surgicalcoder/deploymentharness/process"
)

func created(pid int) process.Event {
	return process.Event{Kind: process.EventCreated, Created: &process.Created{RunID: "r1", PID: pid, StartTime: time.Now()}}
}

func output(kind process.EventKind, text string) process.Event {
	stream := process.Stdout
	if kind == process.EventError {
		stream = process.Stderr
	}
	return process.Event{Kind: kind, Line: &process.Line{Stream: stream, Text: text}}
}

func terminated(code int, signal string) process.Event {
	return process.Event{Kind: process.EventTerminated, Termination: &process.Termination{
		PID: 42, ExitCode: code, Signal: signal, Duration: 1500 * time.Millisecond,
	}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNew(t *testing.T) {
	m := New(Config{Command: "echo hi"})
	if m.maxLines != DefaultMaxLines {
		t.Errorf("maxLines = %d, want %d", m.maxLines, DefaultMaxLines)
	}
	if m.width != 80 || m.height != 24 {
		t.Errorf("size = %dx%d, want 80x24", m.width, m.height)
	}
	if m.Init() == nil {
		t.Error("Init() returned nil cmd")
	}
}

func TestApplyEvents(t *testing.T) {
	m := New(Config{Command: "sh"})
	for _, e := range []process.Event{
		created(42),
		output(process.EventOutput, "one"),
		output(process.EventError, "oops"),
		output(process.EventOutput, "two"),
	} {
		var cmd tea.Cmd
		m, cmd = update(t, m, EventMsg(e))
		if cmd == nil {
			t.Fatal("expected a follow-up read of the stream")
		}
	}

	if m.pid != 42 || m.runID != "r1" {
		t.Errorf("pid/runID = %d/%q", m.pid, m.runID)
	}
	if m.stdoutLines != 2 || m.stderrLines != 1 {
		t.Errorf("counts = %d/%d, want 2/1", m.stdoutLines, m.stderrLines)
	}
	want := []string{"one", "oops", "two"}
	for i, l := range m.lines {
		if l.text != want[i] {
			t.Errorf("line %d = %q, want %q", i, l.text, want[i])
		}
	}
	if m.lines[1].stream != process.Stderr {
		t.Errorf("line 1 stream = %q, want stderr", m.lines[1].stream)
	}
}

func TestOutputTailIsBounded(t *testing.T) {
	m := New(Config{MaxLines: 3})
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		m, _ = update(t, m, EventMsg(output(process.EventOutput, s)))
	}
	if len(m.lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(m.lines))
	}
	if m.lines[0].text != "c" || m.lines[2].text != "e" {
		t.Errorf("tail = %v", m.lines)
	}
	if m.stdoutLines != 5 {
		t.Errorf("stdoutLines = %d, want 5", m.stdoutLines)
	}
}

func TestStopKeyCancelsOnce(t *testing.T) {
	calls := 0
	m := New(Config{Cancel: func() { calls++ }})

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	}
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(t, m, k)
		if cmd != nil {
			t.Errorf("%s: stop while running should not quit", k)
		}
	}
	if calls != 1 {
		t.Errorf("cancel called %d times, want 1", calls)
	}
	if !m.Stopping() {
		t.Error("Stopping() = false after stop key")
	}
}

func TestQuitAfterDone(t *testing.T) {
	m := New(Config{})
	m, cmd := update(t, m, StreamClosedMsg{})
	if !m.Done() || cmd == nil {
		t.Fatal("stream close should finish the program")
	}
	if _, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q after done should quit")
	}
}

func TestTickStopsWhenDone(t *testing.T) {
	m := New(Config{})
	if _, cmd := update(t, m, TickMsg(time.Now())); cmd == nil {
		t.Error("tick while running should reschedule")
	}
	m, _ = update(t, m, StreamClosedMsg{})
	if _, cmd := update(t, m, TickMsg(time.Now())); cmd != nil {
		t.Error("tick after done should not reschedule")
	}
}

func TestWindowSize(t *testing.T) {
	m, _ := update(t, New(Config{}), tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
}

func TestWaitForEventReadsChannel(t *testing.T) {
	ch := make(chan process.Event, 1)
	ch <- created(7)
	msg := waitForEvent(ch)()
	em, ok := msg.(EventMsg)
	if !ok || em.Created.PID != 7 {
		t.Fatalf("msg = %#v", msg)
	}
	close(ch)
	if _, ok := waitForEvent(ch)().(StreamClosedMsg); !ok {
		t.Error("closed channel should yield StreamClosedMsg")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		term process.Event
		want string
	}{
		{"success", terminated(0, ""), "exited 0"},
		{"failure", terminated(3, ""), "exited 3"},
		{"signaled", terminated(-1, "SIGTERM"), "killed by SIGTERM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Config{})
			if m.Summary() != "" {
				t.Error("summary before termination should be empty")
			}
			m, _ = update(t, m, EventMsg(tt.term))
			s := m.Summary()
			if !strings.Contains(s, tt.want) {
				t.Errorf("Summary() = %q, want it to contain %q", s, tt.want)
			}
			if !strings.Contains(s, "pid 42") {
				t.Errorf("Summary() = %q, missing pid", s)
			}
			if m.Elapsed() != 1500*time.Millisecond {
				t.Errorf("Elapsed() = %v", m.Elapsed())
			}
		})
	}
}

func TestView(t *testing.T) {
	m := New(Config{Command: "make build"})
	if v := m.View(); !strings.Contains(v, "starting") || !strings.Contains(v, "no output yet") {
		t.Errorf("initial view = %q", v)
	}

	m, _ = update(t, m, EventMsg(created(42)))
	m, _ = update(t, m, EventMsg(output(process.EventOutput, "compiling")))
	v := m.View()
	for _, want := range []string{"make build", "running pid 42", "compiling", "stdout 1"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}

	m, _ = update(t, m, StreamClosedMsg{})
	if v := m.View(); !strings.Contains(v, "lost pid 42") {
		t.Errorf("closed without termination:\n%s", v)
	}

	failed, _ := update(t, New(Config{}), StreamClosedMsg{})
	if v := failed.View(); !strings.Contains(v, "failed to start") {
		t.Errorf("closed before creation:\n%s", v)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 0, "hello"},
		{"héllo", 3, "hé…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
