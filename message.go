package uistream

import (
	"maps"
	"slices"
	"strings"
)

// Message is a conversation message made of ordered parts.
type Message struct {
	ID       string
	Role     Role
	Parts    []Part
	Metadata map[string]any
}

// NewUserMessage returns a user message holding a single text part.
func NewUserMessage(id, text string) Message {
	return Message{
		ID:    id,
		Role:  RoleUser,
		Parts: []Part{TextPart{Text: text}},
	}
}

// Clone returns a one-level copy of m: the parts slice and the metadata map
// are new, while JSON values nested inside parts are shared. Values nested
// inside parts are only ever replaced, never mutated in place, so a clone is
// safe to read while the original keeps changing.
func (m Message) Clone() Message {
	c := Message{ID: m.ID, Role: m.Role}
	if m.Parts != nil {
		c.Parts = slices.Clone(m.Parts)
	}
	if m.Metadata != nil {
		c.Metadata = maps.Clone(m.Metadata)
	}
	return c
}

// Text returns the concatenation of all text parts.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool calls of m in part order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := ToolCallOf(p); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}
