package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/uistream"
)

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	ID       string         `json:"id"`
	Role     string         `json:"role"`
	Parts    []partDTO      `json:"parts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// partDTO is the JSON representation of a Part with a type discriminator.
type partDTO struct {
	Type                 string         `json:"type"`
	Text                 *string        `json:"text,omitempty"`
	State                string         `json:"state,omitempty"`
	ToolCallID           string         `json:"toolCallId,omitempty"`
	ToolName             string         `json:"toolName,omitempty"`
	Input                any            `json:"input,omitempty"`
	Output               any            `json:"output,omitempty"`
	RawInput             any            `json:"rawInput,omitempty"`
	ErrorText            string         `json:"errorText,omitempty"`
	ProviderExecuted     *bool          `json:"providerExecuted,omitempty"`
	Preliminary          *bool          `json:"preliminary,omitempty"`
	Title                string         `json:"title,omitempty"`
	CallProviderMetadata map[string]any `json:"callProviderMetadata,omitempty"`
	Approval             *approvalDTO   `json:"approval,omitempty"`
	ID                   string         `json:"id,omitempty"`
	Data                 any            `json:"data,omitempty"`
}

type approvalDTO struct {
	ID string `json:"id"`
}

// MarshalMessage serializes a single message in the UI message wire format.
func MarshalMessage(msg uistream.Message) ([]byte, error) {
	dto, err := marshalMessage(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalMessage deserializes a single message.
func UnmarshalMessage(data []byte) (uistream.Message, error) {
	var dto messageDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return uistream.Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return unmarshalMessage(dto)
}

// MarshalRequestBody builds a chat request body: {"messages": [...]} merged
// with extra top-level fields. Extra fields never override "messages".
func MarshalRequestBody(msgs []uistream.Message, extra map[string]any) ([]byte, error) {
	dtos, err := marshalMessages(msgs)
	if err != nil {
		return nil, err
	}
	body := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		body[k] = v
	}
	body["messages"] = dtos
	return json.Marshal(body)
}

func marshalMessages(msgs []uistream.Message) ([]messageDTO, error) {
	dtos := make([]messageDTO, len(msgs))
	for i, msg := range msgs {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		dtos[i] = dto
	}
	return dtos, nil
}

func marshalMessage(msg uistream.Message) (messageDTO, error) {
	switch msg.Role {
	case uistream.RoleSystem, uistream.RoleUser, uistream.RoleAssistant:
	default:
		return messageDTO{}, fmt.Errorf("unknown role: %q", msg.Role)
	}
	parts := make([]partDTO, len(msg.Parts))
	for i, p := range msg.Parts {
		dto, err := marshalPart(p)
		if err != nil {
			return messageDTO{}, fmt.Errorf("part %d: %w", i, err)
		}
		parts[i] = dto
	}
	return messageDTO{
		ID:       msg.ID,
		Role:     string(msg.Role),
		Parts:    parts,
		Metadata: msg.Metadata,
	}, nil
}

func unmarshalMessage(dto messageDTO) (uistream.Message, error) {
	role := uistream.Role(dto.Role)
	switch role {
	case uistream.RoleSystem, uistream.RoleUser, uistream.RoleAssistant:
	default:
		return uistream.Message{}, fmt.Errorf("unknown role: %q", dto.Role)
	}
	parts := make([]uistream.Part, len(dto.Parts))
	for i, pd := range dto.Parts {
		p, err := unmarshalPart(pd)
		if err != nil {
			return uistream.Message{}, fmt.Errorf("part %d: %w", i, err)
		}
		parts[i] = p
	}
	return uistream.Message{
		ID:       dto.ID,
		Role:     role,
		Parts:    parts,
		Metadata: dto.Metadata,
	}, nil
}

func marshalPart(p uistream.Part) (partDTO, error) {
	switch v := p.(type) {
	case uistream.TextPart:
		return partDTO{Type: uistream.PartText, Text: &v.Text, State: string(v.State)}, nil
	case uistream.ReasoningPart:
		return partDTO{Type: uistream.PartReasoning, Text: &v.Text, State: string(v.State)}, nil
	case uistream.ToolPart:
		dto := marshalToolCall(v.ToolCall)
		dto.Type = v.PartType()
		dto.ToolName = ""
		return dto, nil
	case uistream.DynamicToolPart:
		dto := marshalToolCall(v.ToolCall)
		dto.Type = uistream.PartDynamicTool
		return dto, nil
	case uistream.DataPart:
		return partDTO{Type: v.Type, ID: v.ID, Data: v.Data}, nil
	case uistream.StepStartPart:
		return partDTO{Type: uistream.PartStepStart}, nil
	default:
		return partDTO{}, fmt.Errorf("unknown part type: %T", p)
	}
}

func marshalToolCall(tc uistream.ToolCall) partDTO {
	dto := partDTO{
		ToolCallID:           tc.ToolCallID,
		ToolName:             tc.ToolName,
		State:                string(tc.State),
		Input:                tc.Input,
		Output:               tc.Output,
		RawInput:             tc.RawInput,
		ErrorText:            tc.ErrorText,
		Title:                tc.Title,
		CallProviderMetadata: tc.CallProviderMetadata,
	}
	if tc.ProviderExecuted {
		dto.ProviderExecuted = &tc.ProviderExecuted
	}
	if tc.Preliminary {
		dto.Preliminary = &tc.Preliminary
	}
	if tc.Approval != nil {
		dto.Approval = &approvalDTO{ID: tc.Approval.ID}
	}
	return dto
}

func unmarshalPart(dto partDTO) (uistream.Part, error) {
	switch {
	case dto.Type == uistream.PartText:
		return uistream.TextPart{Text: deref(dto.Text), State: uistream.SpanState(dto.State)}, nil
	case dto.Type == uistream.PartReasoning:
		return uistream.ReasoningPart{Text: deref(dto.Text), State: uistream.SpanState(dto.State)}, nil
	case dto.Type == uistream.PartStepStart:
		return uistream.StepStartPart{}, nil
	case dto.Type == uistream.PartDynamicTool:
		return uistream.DynamicToolPart{ToolCall: unmarshalToolCall(dto, dto.ToolName)}, nil
	case uistream.IsToolPartType(dto.Type):
		name := strings.TrimPrefix(dto.Type, uistream.ToolPartPrefix)
		return uistream.ToolPart{ToolCall: unmarshalToolCall(dto, name)}, nil
	case dto.Type == "":
		return nil, errors.New("part type is required")
	default:
		// Data chunks without the "data-" prefix are kept under their own type.
		return uistream.DataPart{Type: dto.Type, ID: dto.ID, Data: dto.Data}, nil
	}
}

func unmarshalToolCall(dto partDTO, name string) uistream.ToolCall {
	tc := uistream.ToolCall{
		ToolCallID:           dto.ToolCallID,
		ToolName:             name,
		State:                uistream.ToolState(dto.State),
		Input:                dto.Input,
		Output:               dto.Output,
		RawInput:             dto.RawInput,
		ErrorText:            dto.ErrorText,
		ProviderExecuted:     dto.ProviderExecuted != nil && *dto.ProviderExecuted,
		Preliminary:          dto.Preliminary != nil && *dto.Preliminary,
		Title:                dto.Title,
		CallProviderMetadata: dto.CallProviderMetadata,
	}
	if dto.Approval != nil {
		tc.Approval = &uistream.ToolApproval{ID: dto.Approval.ID}
	}
	return tc
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
