package interpreter

import (
	"context"
	"encoding/json"
	"maps"
	"reflect"

	"github.com/fwojciec/uistream"
)

// reservedMetadataKeys are decoration-only keys stripped from merged metadata.
var reservedMetadataKeys = []string{"customComponents", "name"}

func (i *Interpreter) apply(ctx context.Context, s *State, chunk uistream.Chunk, publish func()) error {
	switch c := chunk.(type) {
	case uistream.TextStart:
		s.openSpan(s.activeText, c.ID, uistream.TextPart{State: uistream.SpanStreaming})
		publish()
	case uistream.TextDelta:
		s.appendText(c.ID, c.Delta)
		publish()
	case uistream.TextEnd:
		s.closeSpan(s.activeText, c.ID)
		publish()
	case uistream.ReasoningStart:
		s.openSpan(s.activeReasoning, c.ID, uistream.ReasoningPart{State: uistream.SpanStreaming})
		publish()
	case uistream.ReasoningDelta:
		s.appendReasoning(c.ID, c.Delta)
		publish()
	case uistream.ReasoningEnd:
		s.closeSpan(s.activeReasoning, c.ID)
		publish()

	case uistream.ToolInputStart:
		s.partialToolCalls[c.ToolCallID] = &partialToolCall{
			toolName: c.ToolName,
			index:    s.toolPartCount(),
			dynamic:  c.Dynamic,
			title:    c.Title,
		}
		s.updateTool(c.Dynamic, toolUpdate{
			toolCallID:       c.ToolCallID,
			toolName:         c.ToolName,
			state:            uistream.ToolStateInputStreaming,
			providerExecuted: c.ProviderExecuted,
			title:            c.Title,
		})
		publish()
	case uistream.ToolInputDelta:
		p, ok := s.partialToolCalls[c.ToolCallID]
		if !ok {
			i.logger.Warn("tool input delta without start", "toolCallId", c.ToolCallID)
			return nil
		}
		p.text.WriteString(c.InputTextDelta)
		s.updateTool(p.dynamic, toolUpdate{
			toolCallID: c.ToolCallID,
			toolName:   p.toolName,
			state:      uistream.ToolStateInputStreaming,
			input:      parsePartialInput(p.text.String()),
			title:      p.title,
		})
		publish()
	case uistream.ToolInputAvailable:
		if order, ok := s.toolInputOrder(c.ToolCallID); ok {
			i.logger.Debug("tool input complete", "toolCallId", c.ToolCallID, "order", order)
		}
		s.updateTool(c.Dynamic, toolUpdate{
			toolCallID:       c.ToolCallID,
			toolName:         c.ToolName,
			state:            uistream.ToolStateInputAvailable,
			input:            c.Input,
			providerExecuted: c.ProviderExecuted,
			providerMetadata: c.ProviderMetadata,
			title:            c.Title,
		})
		publish()
		if i.onToolCall != nil && !c.IsProviderExecuted() {
			return i.onToolCall(ctx, c)
		}
	case uistream.ToolInputError:
		u := toolUpdate{
			toolCallID:       c.ToolCallID,
			toolName:         c.ToolName,
			state:            uistream.ToolStateOutputError,
			errorText:        c.ErrorText,
			providerExecuted: c.ProviderExecuted,
			providerMetadata: c.ProviderMetadata,
		}
		if c.Dynamic {
			u.input = c.Input
		} else {
			u.rawInput = c.Input
		}
		s.updateTool(c.Dynamic, u)
		publish()

	case uistream.ToolApprovalRequest:
		idx, tc, err := s.lookupTool(c.ToolCallID)
		if err != nil {
			return err
		}
		tc.State = uistream.ToolStateApprovalRequested
		tc.Approval = &uistream.ToolApproval{ID: c.ApprovalID}
		s.replaceTool(idx, tc)
		publish()
	case uistream.ToolOutputDenied:
		idx, tc, err := s.lookupTool(c.ToolCallID)
		if err != nil {
			return err
		}
		tc.State = uistream.ToolStateOutputDenied
		s.replaceTool(idx, tc)
		publish()
	case uistream.ToolOutputAvailable:
		idx, tc, err := s.lookupTool(c.ToolCallID)
		if err != nil {
			return err
		}
		s.updateTool(s.isDynamic(idx), toolUpdate{
			toolCallID:       c.ToolCallID,
			toolName:         tc.ToolName,
			state:            uistream.ToolStateOutputAvailable,
			input:            tc.Input,
			output:           c.Output,
			preliminary:      c.Preliminary,
			providerExecuted: c.ProviderExecuted,
			title:            tc.Title,
		})
		publish()
	case uistream.ToolOutputError:
		idx, tc, err := s.lookupTool(c.ToolCallID)
		if err != nil {
			return err
		}
		s.updateTool(s.isDynamic(idx), toolUpdate{
			toolCallID:       c.ToolCallID,
			toolName:         tc.ToolName,
			state:            uistream.ToolStateOutputError,
			input:            tc.Input,
			rawInput:         tc.RawInput,
			errorText:        c.ErrorText,
			providerExecuted: c.ProviderExecuted,
			title:            tc.Title,
		})
		publish()

	case uistream.StartStep:
		// Not published on its own: the boundary becomes visible with the
		// next content change.
		s.Message.Parts = append(s.Message.Parts, uistream.StepStartPart{})
	case uistream.FinishStep:
		clear(s.activeText)
		clear(s.activeReasoning)

	case uistream.Start:
		if err := i.validateMetadata(ctx, c.MessageMetadata); err != nil {
			return err
		}
		prevID, prevMeta := s.Message.ID, s.Message.Metadata
		if c.MessageID != "" {
			s.Message.ID = c.MessageID
		}
		s.mergeMetadata(c.MessageMetadata)
		if s.Message.ID != prevID || !reflect.DeepEqual(prevMeta, s.Message.Metadata) {
			publish()
		}
	case uistream.Finish:
		if err := i.validateMetadata(ctx, c.MessageMetadata); err != nil {
			return err
		}
		if c.FinishReason != "" {
			s.FinishReason = c.FinishReason
		}
		if s.mergeMetadata(c.MessageMetadata) {
			publish()
		}
	case uistream.MessageMetadata:
		if err := i.validateMetadata(ctx, c.MessageMetadata); err != nil {
			return err
		}
		if s.mergeMetadata(c.MessageMetadata) {
			publish()
		}

	case uistream.DataChunk:
		if schema := i.schemas[c.Type]; schema != nil {
			if err := schema.Validate(ctx, c.Data); err != nil {
				return &uistream.SchemaValidationError{Type: c.Type, Err: err}
			}
		}
		if c.Transient {
			i.emitData(c)
			return nil
		}
		s.upsertData(c)
		i.emitData(c)
		publish()

	case uistream.UnknownChunk:
		return &uistream.UnknownChunkError{Type: c.Type}
	default:
		return &uistream.UnknownChunkError{Type: chunk.ChunkType()}
	}
	return nil
}

func (i *Interpreter) emitData(c uistream.DataChunk) {
	if i.onData != nil {
		i.onData(c)
	}
}

func (i *Interpreter) validateMetadata(ctx context.Context, md map[string]any) error {
	if i.metadataSchema == nil || md == nil {
		return nil
	}
	if err := i.metadataSchema.Validate(ctx, md); err != nil {
		return &uistream.SchemaValidationError{Type: uistream.ChunkMessageMetadata, Err: err}
	}
	return nil
}

// parsePartialInput parses accumulated tool input text as JSON. Text that is
// not (yet) valid JSON is returned as the raw string.
func parsePartialInput(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	return v
}

func (s *State) openSpan(active map[string]int, id string, p uistream.Part) {
	if id != "" {
		active[id] = len(s.Message.Parts)
	}
	s.Message.Parts = append(s.Message.Parts, p)
}

func (s *State) closeSpan(active map[string]int, id string) {
	idx, ok := active[id]
	if !ok {
		return
	}
	switch p := s.Message.Parts[idx].(type) {
	case uistream.TextPart:
		p.State = uistream.SpanDone
		s.Message.Parts[idx] = p
	case uistream.ReasoningPart:
		p.State = uistream.SpanDone
		s.Message.Parts[idx] = p
	}
	delete(active, id)
}

// appendText appends to the span registered under id. Without one, the delta
// joins a trailing text part or opens an ad-hoc text part.
func (s *State) appendText(id, delta string) {
	if idx, ok := s.activeText[id]; ok {
		if p, ok := s.Message.Parts[idx].(uistream.TextPart); ok {
			p.Text += delta
			s.Message.Parts[idx] = p
			return
		}
	}
	if n := len(s.Message.Parts); n > 0 {
		if p, ok := s.Message.Parts[n-1].(uistream.TextPart); ok {
			p.Text += delta
			s.Message.Parts[n-1] = p
			return
		}
	}
	s.Message.Parts = append(s.Message.Parts, uistream.TextPart{Text: delta})
}

// appendReasoning appends to the reasoning span registered under id. Deltas
// for unregistered ids are dropped.
func (s *State) appendReasoning(id, delta string) {
	idx, ok := s.activeReasoning[id]
	if !ok {
		return
	}
	if p, ok := s.Message.Parts[idx].(uistream.ReasoningPart); ok {
		p.Text += delta
		s.Message.Parts[idx] = p
	}
}

// mergeMetadata shallow-merges md over the message metadata and reports
// whether the stored metadata changed.
func (s *State) mergeMetadata(md map[string]any) bool {
	if md == nil {
		return false
	}
	merged := make(map[string]any, len(s.Message.Metadata)+len(md))
	maps.Copy(merged, s.Message.Metadata)
	maps.Copy(merged, md)
	for _, k := range reservedMetadataKeys {
		delete(merged, k)
	}
	changed := !reflect.DeepEqual(s.Message.Metadata, merged)
	s.Message.Metadata = merged
	return changed
}

func (s *State) upsertData(c uistream.DataChunk) {
	if c.ID != "" {
		for idx, p := range s.Message.Parts {
			if dp, ok := p.(uistream.DataPart); ok && dp.Type == c.Type && dp.ID == c.ID {
				dp.Data = c.Data
				s.Message.Parts[idx] = dp
				return
			}
		}
	}
	s.Message.Parts = append(s.Message.Parts, uistream.DataPart{Type: c.Type, ID: c.ID, Data: c.Data})
}
