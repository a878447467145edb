package uistream

import "encoding/json"

// Chunk type tags as they appear in the "type" field of the wire payload.
const (
	ChunkTextStart           = "text-start"
	ChunkTextDelta           = "text-delta"
	ChunkTextEnd             = "text-end"
	ChunkReasoningStart      = "reasoning-start"
	ChunkReasoningDelta      = "reasoning-delta"
	ChunkReasoningEnd        = "reasoning-end"
	ChunkToolInputStart      = "tool-input-start"
	ChunkToolInputDelta      = "tool-input-delta"
	ChunkToolInputAvailable  = "tool-input-available"
	ChunkToolInputError      = "tool-input-error"
	ChunkToolApprovalRequest = "tool-approval-request"
	ChunkToolOutputDenied    = "tool-output-denied"
	ChunkToolOutputAvailable = "tool-output-available"
	ChunkToolOutputError     = "tool-output-error"
	ChunkStartStep           = "start-step"
	ChunkFinishStep          = "finish-step"
	ChunkStart               = "start"
	ChunkFinish              = "finish"
	ChunkMessageMetadata     = "message-metadata"
)

// Chunk is a sealed interface representing one decoded stream event.
// The unexported marker method prevents external implementations.
// ChunkType returns the wire type tag without requiring a type switch.
type Chunk interface {
	chunk()
	ChunkType() string
}

// TextStart opens a text span.
type TextStart struct {
	ID string
}

func (TextStart) chunk() {}

// ChunkType returns ChunkTextStart.
func (TextStart) ChunkType() string { return ChunkTextStart }

// TextDelta appends text to the span registered under ID.
type TextDelta struct {
	ID    string
	Delta string
}

func (TextDelta) chunk() {}

// ChunkType returns ChunkTextDelta.
func (TextDelta) ChunkType() string { return ChunkTextDelta }

// TextEnd closes the text span registered under ID.
type TextEnd struct {
	ID string
}

func (TextEnd) chunk() {}

// ChunkType returns ChunkTextEnd.
func (TextEnd) ChunkType() string { return ChunkTextEnd }

// ReasoningStart opens a reasoning span.
type ReasoningStart struct {
	ID string
}

func (ReasoningStart) chunk() {}

// ChunkType returns ChunkReasoningStart.
func (ReasoningStart) ChunkType() string { return ChunkReasoningStart }

// ReasoningDelta appends text to the reasoning span registered under ID.
type ReasoningDelta struct {
	ID    string
	Delta string
}

func (ReasoningDelta) chunk() {}

// ChunkType returns ChunkReasoningDelta.
func (ReasoningDelta) ChunkType() string { return ChunkReasoningDelta }

// ReasoningEnd closes the reasoning span registered under ID.
type ReasoningEnd struct {
	ID string
}

func (ReasoningEnd) chunk() {}

// ChunkType returns ChunkReasoningEnd.
func (ReasoningEnd) ChunkType() string { return ChunkReasoningEnd }

// ToolInputStart announces a tool call whose input will be streamed.
type ToolInputStart struct {
	ToolCallID       string
	ToolName         string
	Dynamic          bool
	ProviderExecuted *bool
	Title            string
}

func (ToolInputStart) chunk() {}

// ChunkType returns ChunkToolInputStart.
func (ToolInputStart) ChunkType() string { return ChunkToolInputStart }

// ToolInputDelta carries a fragment of the raw JSON argument text.
type ToolInputDelta struct {
	ToolCallID     string
	InputTextDelta string
}

func (ToolInputDelta) chunk() {}

// ChunkType returns ChunkToolInputDelta.
func (ToolInputDelta) ChunkType() string { return ChunkToolInputDelta }

// ToolInputAvailable carries the final, parsed tool input.
type ToolInputAvailable struct {
	ToolCallID       string
	ToolName         string
	Input            any
	Dynamic          bool
	ProviderExecuted *bool
	ProviderMetadata map[string]any
	Title            string
}

func (ToolInputAvailable) chunk() {}

// ChunkType returns ChunkToolInputAvailable.
func (ToolInputAvailable) ChunkType() string { return ChunkToolInputAvailable }

// IsProviderExecuted reports whether the provider already ran the tool.
func (c ToolInputAvailable) IsProviderExecuted() bool {
	return c.ProviderExecuted != nil && *c.ProviderExecuted
}

// ToolInputError reports that the tool input could not be produced or parsed.
// Input is the raw, unparsed input.
type ToolInputError struct {
	ToolCallID       string
	ToolName         string
	Input            any
	ErrorText        string
	Dynamic          bool
	ProviderExecuted *bool
	ProviderMetadata map[string]any
}

func (ToolInputError) chunk() {}

// ChunkType returns ChunkToolInputError.
func (ToolInputError) ChunkType() string { return ChunkToolInputError }

// ToolApprovalRequest asks the user to approve a registered tool call.
type ToolApprovalRequest struct {
	ToolCallID string
	ApprovalID string
}

func (ToolApprovalRequest) chunk() {}

// ChunkType returns ChunkToolApprovalRequest.
func (ToolApprovalRequest) ChunkType() string { return ChunkToolApprovalRequest }

// ToolOutputDenied reports that execution of a registered tool call was denied.
type ToolOutputDenied struct {
	ToolCallID string
}

func (ToolOutputDenied) chunk() {}

// ChunkType returns ChunkToolOutputDenied.
func (ToolOutputDenied) ChunkType() string { return ChunkToolOutputDenied }

// ToolOutputAvailable carries the result of a registered tool call.
type ToolOutputAvailable struct {
	ToolCallID       string
	Output           any
	ProviderExecuted *bool
	Preliminary      bool
	Dynamic          bool
}

func (ToolOutputAvailable) chunk() {}

// ChunkType returns ChunkToolOutputAvailable.
func (ToolOutputAvailable) ChunkType() string { return ChunkToolOutputAvailable }

// ToolOutputError reports that a registered tool call failed.
type ToolOutputError struct {
	ToolCallID       string
	ErrorText        string
	ProviderExecuted *bool
	Dynamic          bool
}

func (ToolOutputError) chunk() {}

// ChunkType returns ChunkToolOutputError.
func (ToolOutputError) ChunkType() string { return ChunkToolOutputError }

// StartStep marks the beginning of a generation step.
type StartStep struct{}

func (StartStep) chunk() {}

// ChunkType returns ChunkStartStep.
func (StartStep) ChunkType() string { return ChunkStartStep }

// FinishStep marks the end of a generation step.
type FinishStep struct{}

func (FinishStep) chunk() {}

// ChunkType returns ChunkFinishStep.
func (FinishStep) ChunkType() string { return ChunkFinishStep }

// Start begins a message. Empty MessageID and nil MessageMetadata mean absent.
type Start struct {
	MessageID       string
	MessageMetadata map[string]any
}

func (Start) chunk() {}

// ChunkType returns ChunkStart.
func (Start) ChunkType() string { return ChunkStart }

// Finish ends a message.
type Finish struct {
	FinishReason    string
	MessageMetadata map[string]any
}

func (Finish) chunk() {}

// ChunkType returns ChunkFinish.
func (Finish) ChunkType() string { return ChunkFinish }

// MessageMetadata updates the message metadata mid-stream.
type MessageMetadata struct {
	MessageMetadata map[string]any
}

func (MessageMetadata) chunk() {}

// ChunkType returns ChunkMessageMetadata.
func (MessageMetadata) ChunkType() string { return ChunkMessageMetadata }

// DataChunk is an application-defined chunk. Type is the application name
// (conventionally "data-<name>"). A non-empty ID makes the resulting part
// updatable in place. Transient chunks are observed but never stored.
type DataChunk struct {
	Type      string
	ID        string
	Data      any
	Transient bool
}

func (DataChunk) chunk() {}

// ChunkType returns the application-defined type.
func (c DataChunk) ChunkType() string { return c.Type }

// UnknownChunk is a payload whose type is not part of the protocol and that
// does not look like a data chunk. It is kept so that protocol drift surfaces
// as an error instead of disappearing.
type UnknownChunk struct {
	Type string
	Raw  json.RawMessage
}

func (UnknownChunk) chunk() {}

// ChunkType returns the unrecognized type tag.
func (c UnknownChunk) ChunkType() string { return c.Type }

// Interface compliance checks.
var (
	_ Chunk = TextStart{}
	_ Chunk = TextDelta{}
	_ Chunk = TextEnd{}
	_ Chunk = ReasoningStart{}
	_ Chunk = ReasoningDelta{}
	_ Chunk = ReasoningEnd{}
	_ Chunk = ToolInputStart{}
	_ Chunk = ToolInputDelta{}
	_ Chunk = ToolInputAvailable{}
	_ Chunk = ToolInputError{}
	_ Chunk = ToolApprovalRequest{}
	_ Chunk = ToolOutputDenied{}
	_ Chunk = ToolOutputAvailable{}
	_ Chunk = ToolOutputError{}
	_ Chunk = StartStep{}
	_ Chunk = FinishStep{}
	_ Chunk = Start{}
	_ Chunk = Finish{}
	_ Chunk = MessageMetadata{}
	_ Chunk = DataChunk{}
	_ Chunk = UnknownChunk{}
)
