package chat

import (
	"sync"

	"github.com/AIDentistry/nicolette-chatbot/internal/chat/ui"
)

// UIStream is a single-writer, multi-read incremental render value. It is
// open until Done is called, after which no further updates are accepted.
// Reads at any time observe the latest committed value.
//
// A UIStream satisfies ui.Node so it can be handed to renderers directly;
// renderers resolve it to its current value (and may use Wait to learn when
// the value is final).
type UIStream struct {
	mu     sync.Mutex
	value  ui.Node
	closed bool
	done   chan struct{}
}

// NewUIStream creates an open stream holding the given initial value.
func NewUIStream(initial ui.Node) *UIStream {
	return &UIStream{
		value: initial,
		done:  make(chan struct{}),
	}
}

// NodeKind implements ui.Node.
func (s *UIStream) NodeKind() string { return "stream" }

// Update replaces the current value. Valid only while the stream is open.
func (s *UIStream) Update(node ui.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.value = node
	return nil
}

// Done transitions the stream to closed. If final is non-nil it replaces
// the current value atomically with the transition; otherwise the last
// updated value stands. The transition is one-way: a second Done, like an
// Update after Done, returns ErrStreamClosed.
func (s *UIStream) Done(final ui.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if final != nil {
		s.value = final
	}
	s.closed = true
	close(s.done)
	return nil
}

// Value returns the latest committed value.
func (s *UIStream) Value() ui.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Closed reports whether the stream has been finalized.
func (s *UIStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Wait returns a channel that is closed once the stream is finalized.
func (s *UIStream) Wait() <-chan struct{} {
	return s.done
}
