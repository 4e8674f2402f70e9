// Package events implements the push-based progress protocol used by the
// verification pipeline: an ordered sequence of progress events terminated by
// exactly one error or complete event.
package events

import "sync"

// Type identifies the kind of a progress event.
type Type string

// Event kinds. Error and Complete are terminal: after either one the stream
// is closed and further emissions are dropped.
const (
	TypeProgress Type = "progress"
	TypeError    Type = "error"
	TypeComplete Type = "complete"
)

// Event is a single message pushed from the pipeline to the caller.
type Event struct {
	Type     Type   `json:"type"`
	Message  string `json:"message,omitempty"`
	Progress int    `json:"progress,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// Stream is a single-producer push channel from the pipeline to one caller.
// Progress percentages are forced monotonically non-decreasing, and exactly
// one terminal event is delivered; anything emitted after it is discarded.
type Stream struct {
	ch       chan Event
	mu       sync.Mutex
	last     int
	terminal bool
}

// NewStream creates a Stream with the given channel buffer size.
func NewStream(buffer int) *Stream {
	return &Stream{
		ch: make(chan Event, buffer),
	}
}

// Events returns the receive side of the stream. The channel is closed after
// the terminal event has been delivered.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Progress emits a progress event. Percentages lower than a previously
// emitted value are raised to it.
func (s *Stream) Progress(pct int, message string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return
	}
	if pct < s.last {
		pct = s.last
	}
	s.last = pct

	s.ch <- Event{
		Type:     TypeProgress,
		Message:  message,
		Progress: pct,
		Data:     data,
	}
}

// Fail emits the terminal error event and closes the stream.
func (s *Stream) Fail(message string) {
	s.finish(Event{Type: TypeError, Message: message})
}

// Complete emits the terminal complete event with the final payload and
// closes the stream.
func (s *Stream) Complete(data any) {
	s.finish(Event{Type: TypeComplete, Progress: 100, Data: data})
}

// Terminated reports whether a terminal event has been emitted.
func (s *Stream) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

func (s *Stream) finish(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return
	}
	s.terminal = true

	s.ch <- e
	close(s.ch)
}
