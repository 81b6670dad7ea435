package process

import "sync"

// EventKind discriminates Event values.
type EventKind int

const (
	EventCreated EventKind = iota + 1
	EventOutput
	EventError
	EventTerminated
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventOutput:
		return "output"
	case EventError:
		return "error"
	case EventTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is one notification delivered through an EventStream. Exactly one
// of Created, Line or Termination is set, according to Kind.
type Event struct {
	Kind        EventKind
	Created     *Created
	Line        *Line
	Termination *Termination
}

// EventStream is an Observer that forwards notifications to a channel.
// Sends block until the consumer receives, so no event is dropped; drain
// Events concurrently with the run and call Close once it returns.
type EventStream struct {
	ch     chan Event
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewEventStream creates a stream with the given channel buffer size.
func NewEventStream(buffer int) *EventStream {
	if buffer < 0 {
		buffer = 0
	}
	return &EventStream{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the stream.
func (s *EventStream) Events() <-chan Event {
	return s.ch
}

// Close closes the channel. Notifications after Close are discarded.
func (s *EventStream) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

func (s *EventStream) send(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.ch <- e
}

func (s *EventStream) OnCreated(c Created) {
	s.send(Event{Kind: EventCreated, Created: &c})
}

func (s *EventStream) OnOutput(l Line) {
	s.send(Event{Kind: EventOutput, Line: &l})
}

func (s *EventStream) OnError(l Line) {
	s.send(Event{Kind: EventError, Line: &l})
}

func (s *EventStream) OnTerminated(t Termination) {
	s.send(Event{Kind: EventTerminated, Termination: &t})
}
