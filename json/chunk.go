package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/sse"
	"github.com/tidwall/gjson"
)

// DonePayload is the sentinel data payload that ends a stream.
const DonePayload = "[DONE]"

const dataPrefix = "data-"

// chunkDTO is the union of all chunk payload fields. textDelta and
// argsTextDelta are accepted as aliases of delta and inputTextDelta.
type chunkDTO struct {
	Type             string         `json:"type"`
	ID               string         `json:"id,omitempty"`
	Delta            *string        `json:"delta,omitempty"`
	TextDelta        *string        `json:"textDelta,omitempty"`
	ToolCallID       string         `json:"toolCallId,omitempty"`
	ToolName         string         `json:"toolName,omitempty"`
	InputTextDelta   *string        `json:"inputTextDelta,omitempty"`
	ArgsTextDelta    *string        `json:"argsTextDelta,omitempty"`
	Input            any            `json:"input,omitempty"`
	Output           any            `json:"output,omitempty"`
	ErrorText        string         `json:"errorText,omitempty"`
	Dynamic          bool           `json:"dynamic,omitempty"`
	ProviderExecuted *bool          `json:"providerExecuted,omitempty"`
	ProviderMetadata map[string]any `json:"providerMetadata,omitempty"`
	Title            string         `json:"title,omitempty"`
	ApprovalID       string         `json:"approvalId,omitempty"`
	Preliminary      bool           `json:"preliminary,omitempty"`
	MessageID        string         `json:"messageId,omitempty"`
	MessageMetadata  map[string]any `json:"messageMetadata,omitempty"`
	FinishReason     string         `json:"finishReason,omitempty"`
	Data             any            `json:"data,omitempty"`
	Transient        bool           `json:"transient,omitempty"`
}

// DecodeChunk maps one SSE frame to a chunk. It returns a nil chunk and nil
// error for the [DONE] sentinel. Types outside the protocol decode to a
// DataChunk when they carry a data field or a "data-" prefix, and to an
// UnknownChunk otherwise.
func DecodeChunk(f sse.Frame) (uistream.Chunk, error) {
	payload := strings.TrimSpace(f.Data)
	if payload == DonePayload {
		return nil, nil
	}
	if !gjson.Valid(payload) {
		return nil, errors.New("decode chunk: invalid JSON")
	}
	typ := gjson.Get(payload, "type")
	if !typ.Exists() {
		return nil, errors.New("decode chunk: missing type")
	}
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("decode chunk: type must be a string, got %s", typ.Type)
	}

	var dto chunkDTO
	if err := json.Unmarshal([]byte(payload), &dto); err != nil {
		return nil, fmt.Errorf("decode chunk %q: %w", typ.String(), err)
	}

	if c, ok := protocolChunk(dto); ok {
		return c, nil
	}
	if strings.HasPrefix(dto.Type, dataPrefix) || gjson.Get(payload, "data").Exists() {
		return uistream.DataChunk{
			Type:      dto.Type,
			ID:        dto.ID,
			Data:      dto.Data,
			Transient: dto.Transient,
		}, nil
	}
	return uistream.UnknownChunk{Type: dto.Type, Raw: json.RawMessage(payload)}, nil
}

func protocolChunk(d chunkDTO) (uistream.Chunk, bool) {
	switch d.Type {
	case uistream.ChunkTextStart:
		return uistream.TextStart{ID: d.ID}, true
	case uistream.ChunkTextDelta:
		return uistream.TextDelta{ID: d.ID, Delta: firstOf(d.Delta, d.TextDelta)}, true
	case uistream.ChunkTextEnd:
		return uistream.TextEnd{ID: d.ID}, true
	case uistream.ChunkReasoningStart:
		return uistream.ReasoningStart{ID: d.ID}, true
	case uistream.ChunkReasoningDelta:
		return uistream.ReasoningDelta{ID: d.ID, Delta: firstOf(d.Delta, d.TextDelta)}, true
	case uistream.ChunkReasoningEnd:
		return uistream.ReasoningEnd{ID: d.ID}, true
	case uistream.ChunkToolInputStart:
		return uistream.ToolInputStart{
			ToolCallID:       d.ToolCallID,
			ToolName:         d.ToolName,
			Dynamic:          d.Dynamic,
			ProviderExecuted: d.ProviderExecuted,
			Title:            d.Title,
		}, true
	case uistream.ChunkToolInputDelta:
		return uistream.ToolInputDelta{
			ToolCallID:     d.ToolCallID,
			InputTextDelta: firstOf(d.InputTextDelta, d.ArgsTextDelta),
		}, true
	case uistream.ChunkToolInputAvailable:
		return uistream.ToolInputAvailable{
			ToolCallID:       d.ToolCallID,
			ToolName:         d.ToolName,
			Input:            d.Input,
			Dynamic:          d.Dynamic,
			ProviderExecuted: d.ProviderExecuted,
			ProviderMetadata: d.ProviderMetadata,
			Title:            d.Title,
		}, true
	case uistream.ChunkToolInputError:
		return uistream.ToolInputError{
			ToolCallID:       d.ToolCallID,
			ToolName:         d.ToolName,
			Input:            d.Input,
			ErrorText:        d.ErrorText,
			Dynamic:          d.Dynamic,
			ProviderExecuted: d.ProviderExecuted,
			ProviderMetadata: d.ProviderMetadata,
		}, true
	case uistream.ChunkToolApprovalRequest:
		return uistream.ToolApprovalRequest{ToolCallID: d.ToolCallID, ApprovalID: d.ApprovalID}, true
	case uistream.ChunkToolOutputDenied:
		return uistream.ToolOutputDenied{ToolCallID: d.ToolCallID}, true
	case uistream.ChunkToolOutputAvailable:
		return uistream.ToolOutputAvailable{
			ToolCallID:       d.ToolCallID,
			Output:           d.Output,
			ProviderExecuted: d.ProviderExecuted,
			Preliminary:      d.Preliminary,
			Dynamic:          d.Dynamic,
		}, true
	case uistream.ChunkToolOutputError:
		return uistream.ToolOutputError{
			ToolCallID:       d.ToolCallID,
			ErrorText:        d.ErrorText,
			ProviderExecuted: d.ProviderExecuted,
			Dynamic:          d.Dynamic,
		}, true
	case uistream.ChunkStartStep:
		return uistream.StartStep{}, true
	case uistream.ChunkFinishStep:
		return uistream.FinishStep{}, true
	case uistream.ChunkStart:
		return uistream.Start{MessageID: d.MessageID, MessageMetadata: d.MessageMetadata}, true
	case uistream.ChunkFinish:
		return uistream.Finish{FinishReason: d.FinishReason, MessageMetadata: d.MessageMetadata}, true
	case uistream.ChunkMessageMetadata:
		return uistream.MessageMetadata{MessageMetadata: d.MessageMetadata}, true
	default:
		return nil, false
	}
}

// EncodeChunk serializes a chunk to its wire payload.
func EncodeChunk(c uistream.Chunk) ([]byte, error) {
	var d chunkDTO
	switch v := c.(type) {
	case uistream.TextStart:
		d = chunkDTO{ID: v.ID}
	case uistream.TextDelta:
		d = chunkDTO{ID: v.ID, Delta: &v.Delta}
	case uistream.TextEnd:
		d = chunkDTO{ID: v.ID}
	case uistream.ReasoningStart:
		d = chunkDTO{ID: v.ID}
	case uistream.ReasoningDelta:
		d = chunkDTO{ID: v.ID, Delta: &v.Delta}
	case uistream.ReasoningEnd:
		d = chunkDTO{ID: v.ID}
	case uistream.ToolInputStart:
		d = chunkDTO{ToolCallID: v.ToolCallID, ToolName: v.ToolName, Dynamic: v.Dynamic, ProviderExecuted: v.ProviderExecuted, Title: v.Title}
	case uistream.ToolInputDelta:
		d = chunkDTO{ToolCallID: v.ToolCallID, InputTextDelta: &v.InputTextDelta}
	case uistream.ToolInputAvailable:
		d = chunkDTO{ToolCallID: v.ToolCallID, ToolName: v.ToolName, Input: v.Input, Dynamic: v.Dynamic, ProviderExecuted: v.ProviderExecuted, ProviderMetadata: v.ProviderMetadata, Title: v.Title}
	case uistream.ToolInputError:
		d = chunkDTO{ToolCallID: v.ToolCallID, ToolName: v.ToolName, Input: v.Input, ErrorText: v.ErrorText, Dynamic: v.Dynamic, ProviderExecuted: v.ProviderExecuted, ProviderMetadata: v.ProviderMetadata}
	case uistream.ToolApprovalRequest:
		d = chunkDTO{ToolCallID: v.ToolCallID, ApprovalID: v.ApprovalID}
	case uistream.ToolOutputDenied:
		d = chunkDTO{ToolCallID: v.ToolCallID}
	case uistream.ToolOutputAvailable:
		d = chunkDTO{ToolCallID: v.ToolCallID, Output: v.Output, ProviderExecuted: v.ProviderExecuted, Preliminary: v.Preliminary, Dynamic: v.Dynamic}
	case uistream.ToolOutputError:
		d = chunkDTO{ToolCallID: v.ToolCallID, ErrorText: v.ErrorText, ProviderExecuted: v.ProviderExecuted, Dynamic: v.Dynamic}
	case uistream.StartStep, uistream.FinishStep:
	case uistream.Start:
		d = chunkDTO{MessageID: v.MessageID, MessageMetadata: v.MessageMetadata}
	case uistream.Finish:
		d = chunkDTO{FinishReason: v.FinishReason, MessageMetadata: v.MessageMetadata}
	case uistream.MessageMetadata:
		d = chunkDTO{MessageMetadata: v.MessageMetadata}
	case uistream.DataChunk:
		d = chunkDTO{ID: v.ID, Data: v.Data, Transient: v.Transient}
	case uistream.UnknownChunk:
		return append([]byte(nil), v.Raw...), nil
	default:
		return nil, fmt.Errorf("unknown chunk type: %T", c)
	}
	d.Type = c.ChunkType()
	return json.Marshal(d)
}

func firstOf(ps ...*string) string {
	for _, p := range ps {
		if p != nil {
			return *p
		}
	}
	return ""
}
