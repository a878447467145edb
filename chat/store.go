package chat

import (
	"slices"
	"sync"

	"github.com/fwojciec/uistream"
)

// Status is the request status of a chat.
type Status string

const (
	StatusReady     Status = "ready"
	StatusSubmitted Status = "submitted"
	StatusStreaming Status = "streaming"
)

// Store holds the observable chat state. Listeners run after every change,
// outside the lock, on the goroutine that made the change.
type Store struct {
	mu        sync.RWMutex
	messages  []uistream.Message
	status    Status
	err       error
	listeners map[int]func()
	nextID    int
}

// NewStore returns a ready store seeded with messages.
func NewStore(messages []uistream.Message) *Store {
	return &Store{
		messages:  slices.Clone(messages),
		status:    StatusReady,
		listeners: make(map[int]func()),
	}
}

// Messages returns a copy of the message list.
func (s *Store) Messages() []uistream.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// LastMessage returns the final message, if any.
func (s *Store) LastMessage() (uistream.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return uistream.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Status returns the current request status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the error of the last failed request, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Subscribe registers fn to run after every change and returns a function
// that removes it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Append adds msg to the end of the list.
func (s *Store) Append(msg uistream.Message) {
	s.update(func() { s.messages = append(s.messages, msg) })
}

// ReplaceLast replaces the final message with msg, or appends msg to an
// empty list.
func (s *Store) ReplaceLast(msg uistream.Message) {
	s.update(func() {
		if len(s.messages) == 0 {
			s.messages = append(s.messages, msg)
			return
		}
		s.messages[len(s.messages)-1] = msg
	})
}

// RemoveLastAssistant drops the final message if it is an assistant
// message and reports whether it did.
func (s *Store) RemoveLastAssistant() bool {
	var removed bool
	s.update(func() {
		n := len(s.messages)
		if n > 0 && s.messages[n-1].Role == uistream.RoleAssistant {
			s.messages = s.messages[:n-1]
			removed = true
		}
	})
	return removed
}

// SetStatus sets the request status. Leaving the ready state clears the
// previous error.
func (s *Store) SetStatus(status Status) {
	s.update(func() {
		if status != StatusReady {
			s.err = nil
		}
		s.status = status
	})
}

// Fail records err and returns the store to the ready state.
func (s *Store) Fail(err error) {
	s.update(func() {
		s.err = err
		s.status = StatusReady
	})
}

func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}
