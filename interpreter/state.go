package interpreter

import (
	"context"
	"strings"

	"github.com/fwojciec/uistream"
)

// State is the part-assembly state of one stream. It is owned by a single
// interpreter for the stream's lifetime; observers only ever see snapshots.
type State struct {
	Message      uistream.Message
	FinishReason string

	// Open spans by chunk id, as indices into Message.Parts. Parts are only
	// appended or replaced in place, so indices stay valid.
	activeText      map[string]int
	activeReasoning map[string]int

	partialToolCalls map[string]*partialToolCall
}

// partialToolCall buffers streamed tool input text.
type partialToolCall struct {
	text     strings.Builder
	toolName string
	index    int
	dynamic  bool
	title    string
}

// NewState returns the initial state for a stream. A previous assistant
// message is continued: its id, metadata and parts are kept and new parts
// are appended after them. Otherwise the state starts from an empty
// assistant message with messageID.
func NewState(previous *uistream.Message, messageID string) *State {
	s := &State{
		activeText:       make(map[string]int),
		activeReasoning:  make(map[string]int),
		partialToolCalls: make(map[string]*partialToolCall),
	}
	if previous != nil && previous.Role == uistream.RoleAssistant {
		s.Message = previous.Clone()
	} else {
		s.Message = uistream.Message{ID: messageID, Role: uistream.RoleAssistant}
	}
	if s.Message.Parts == nil {
		s.Message.Parts = []uistream.Part{}
	}
	return s
}

// Snapshot returns an independent copy of the message.
func (s *State) Snapshot() uistream.Message {
	return s.Message.Clone()
}

// Job applies one chunk's transition to the state. It calls publish zero or
// more times, synchronously, after each externally visible change.
type Job func(ctx context.Context, state *State, publish func()) error

// JobRunner runs jobs one at a time against the same state.
type JobRunner func(ctx context.Context, job Job) error

// NewJobRunner returns the standard runner for state: publish takes a
// snapshot and passes it to deliver before returning. deliver may be nil.
func NewJobRunner(state *State, deliver func(uistream.Message)) JobRunner {
	publish := func() {
		if deliver != nil {
			deliver(state.Snapshot())
		}
	}
	return func(ctx context.Context, job Job) error {
		return job(ctx, state, publish)
	}
}

// toolInputOrder returns the position among tool parts at which the tool
// call with toolCallID began streaming its input.
func (s *State) toolInputOrder(toolCallID string) (int, bool) {
	p, ok := s.partialToolCalls[toolCallID]
	if !ok {
		return 0, false
	}
	return p.index, true
}
