package interpreter

import "github.com/fwojciec/uistream"

// toolUpdate describes one change to a tool part. State, toolName, input,
// output, errorText and preliminary always overwrite. rawInput and
// providerExecuted overwrite only when set. title overwrites only when
// non-empty. providerMetadata is attached only for input-available.
type toolUpdate struct {
	toolCallID       string
	toolName         string
	state            uistream.ToolState
	input            any
	output           any
	rawInput         any
	errorText        string
	preliminary      bool
	providerExecuted *bool
	title            string
	providerMetadata map[string]any
}

func (u toolUpdate) applyTo(tc uistream.ToolCall) uistream.ToolCall {
	tc.ToolCallID = u.toolCallID
	tc.State = u.state
	tc.ToolName = u.toolName
	tc.Input = u.input
	tc.Output = u.output
	tc.ErrorText = u.errorText
	tc.Preliminary = u.preliminary
	if u.rawInput != nil {
		tc.RawInput = u.rawInput
	}
	if u.providerExecuted != nil {
		tc.ProviderExecuted = *u.providerExecuted
	}
	if u.title != "" {
		tc.Title = u.title
	}
	if u.providerMetadata != nil && u.state == uistream.ToolStateInputAvailable {
		tc.CallProviderMetadata = u.providerMetadata
	}
	return tc
}

// updateTool applies u to the named (or, if dynamic, the dynamic) tool part
// for u.toolCallID, appending a new part when none exists.
func (s *State) updateTool(dynamic bool, u toolUpdate) {
	for idx, p := range s.Message.Parts {
		switch tp := p.(type) {
		case uistream.ToolPart:
			if !dynamic && tp.ToolCallID == u.toolCallID {
				s.Message.Parts[idx] = uistream.ToolPart{ToolCall: u.applyTo(tp.ToolCall)}
				return
			}
		case uistream.DynamicToolPart:
			if dynamic && tp.ToolCallID == u.toolCallID {
				s.Message.Parts[idx] = uistream.DynamicToolPart{ToolCall: u.applyTo(tp.ToolCall)}
				return
			}
		}
	}
	tc := u.applyTo(uistream.ToolCall{})
	if dynamic {
		s.Message.Parts = append(s.Message.Parts, uistream.DynamicToolPart{ToolCall: tc})
		return
	}
	s.Message.Parts = append(s.Message.Parts, uistream.ToolPart{ToolCall: tc})
}

// lookupTool finds the tool part of either kind for toolCallID.
func (s *State) lookupTool(toolCallID string) (int, uistream.ToolCall, error) {
	for idx, p := range s.Message.Parts {
		if tc, ok := uistream.ToolCallOf(p); ok && tc.ToolCallID == toolCallID {
			return idx, tc, nil
		}
	}
	return -1, uistream.ToolCall{}, &uistream.UnknownToolCallError{ToolCallID: toolCallID}
}

func (s *State) replaceTool(idx int, tc uistream.ToolCall) {
	if s.isDynamic(idx) {
		s.Message.Parts[idx] = uistream.DynamicToolPart{ToolCall: tc}
		return
	}
	s.Message.Parts[idx] = uistream.ToolPart{ToolCall: tc}
}

func (s *State) isDynamic(idx int) bool {
	_, ok := s.Message.Parts[idx].(uistream.DynamicToolPart)
	return ok
}

func (s *State) toolPartCount() int {
	n := 0
	for _, p := range s.Message.Parts {
		if _, ok := uistream.ToolCallOf(p); ok {
			n++
		}
	}
	return n
}
