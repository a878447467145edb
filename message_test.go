package uistream_test

import (
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/stretchr/testify/assert"
)

func TestMessage_CloneIsIndependent(t *testing.T) {
	t.Parallel()
	orig := uistream.Message{
		ID:       "m1",
		Role:     uistream.RoleAssistant,
		Parts:    []uistream.Part{uistream.TextPart{Text: "hi", State: uistream.SpanStreaming}},
		Metadata: map[string]any{"a": 1.0},
	}

	c := orig.Clone()
	orig.Parts[0] = uistream.TextPart{Text: "changed"}
	orig.Parts = append(orig.Parts, uistream.StepStartPart{})
	orig.Metadata["a"] = 2.0

	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "hi", State: uistream.SpanStreaming}}, c.Parts)
	assert.Equal(t, map[string]any{"a": 1.0}, c.Metadata)
}

func TestMessage_CloneKeepsNil(t *testing.T) {
	t.Parallel()
	c := uistream.Message{ID: "m1", Role: uistream.RoleAssistant}.Clone()
	assert.Nil(t, c.Parts)
	assert.Nil(t, c.Metadata)
}

func TestMessage_Text(t *testing.T) {
	t.Parallel()
	msg := uistream.Message{Parts: []uistream.Part{
		uistream.TextPart{Text: "Hello"},
		uistream.ReasoningPart{Text: "ignored"},
		uistream.TextPart{Text: " world"},
	}}
	assert.Equal(t, "Hello world", msg.Text())
}

func TestMessage_ToolCalls(t *testing.T) {
	t.Parallel()
	msg := uistream.Message{Parts: []uistream.Part{
		uistream.TextPart{Text: "x"},
		uistream.ToolPart{ToolCall: uistream.ToolCall{ToolCallID: "a", ToolName: "read"}},
		uistream.DynamicToolPart{ToolCall: uistream.ToolCall{ToolCallID: "b", ToolName: "mcp"}},
	}}
	calls := msg.ToolCalls()
	if assert.Len(t, calls, 2) {
		assert.Equal(t, "a", calls[0].ToolCallID)
		assert.Equal(t, "b", calls[1].ToolCallID)
	}
}

func TestNewUserMessage(t *testing.T) {
	t.Parallel()
	msg := uistream.NewUserMessage("u1", "hello")
	assert.Equal(t, uistream.RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Text())
}

func TestPartTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		part uistream.Part
		want string
	}{
		{uistream.TextPart{}, "text"},
		{uistream.ReasoningPart{}, "reasoning"},
		{uistream.ToolPart{ToolCall: uistream.ToolCall{ToolName: "weather"}}, "tool-weather"},
		{uistream.DynamicToolPart{}, "dynamic-tool"},
		{uistream.DataPart{Type: "data-progress"}, "data-progress"},
		{uistream.StepStartPart{}, "step-start"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.part.PartType())
	}
	assert.True(t, uistream.IsToolPartType("tool-weather"))
	assert.False(t, uistream.IsToolPartType("dynamic-tool"))
}

func TestToolCallOf(t *testing.T) {
	t.Parallel()
	tc, ok := uistream.ToolCallOf(uistream.DynamicToolPart{ToolCall: uistream.ToolCall{ToolCallID: "x"}})
	assert.True(t, ok)
	assert.Equal(t, "x", tc.ToolCallID)

	_, ok = uistream.ToolCallOf(uistream.TextPart{})
	assert.False(t, ok)
}

func TestToolState_WireValues(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{
		"input-streaming",
		"input-available",
		"approval-requested",
		"output-available",
		"output-error",
		"output-denied",
	}, []string{
		string(uistream.ToolStateInputStreaming),
		string(uistream.ToolStateInputAvailable),
		string(uistream.ToolStateApprovalRequested),
		string(uistream.ToolStateOutputAvailable),
		string(uistream.ToolStateOutputError),
		string(uistream.ToolStateOutputDenied),
	})
	assert.Equal(t, uistream.ChunkToolInputAvailable, uistream.ToolInputAvailable{}.ChunkType())
	assert.Equal(t, uistream.ChunkToolOutputDenied, uistream.ToolOutputDenied{}.ChunkType())
}
