package uistream

import "strings"

// SpanState is the streaming state of a text or reasoning part.
type SpanState string

const (
	SpanStreaming SpanState = "streaming"
	SpanDone      SpanState = "done"
)

// ToolState is the lifecycle state of a tool invocation.
type ToolState string

const (
	ToolStateInputStreaming    ToolState = "input-streaming"
	ToolStateInputAvailable    ToolState = "input-available"
	ToolStateApprovalRequested ToolState = "approval-requested"
	ToolStateOutputAvailable   ToolState = "output-available"
	ToolStateOutputError       ToolState = "output-error"
	ToolStateOutputDenied      ToolState = "output-denied"
)

// Part type tags for the fixed part variants.
const (
	PartText        = "text"
	PartReasoning   = "reasoning"
	PartDynamicTool = "dynamic-tool"
	PartStepStart   = "step-start"

	// ToolPartPrefix prefixes the type of a named tool part ("tool-<name>").
	ToolPartPrefix = "tool-"
)

// Part is a sealed interface representing one constituent of a message.
// The unexported marker method prevents external implementations.
type Part interface {
	part()
	PartType() string
}

// TextPart contains assistant or user text.
// State is empty for parts opened by a delta without a matching start.
type TextPart struct {
	Text  string
	State SpanState
}

func (TextPart) part() {}

// PartType returns PartText.
func (TextPart) PartType() string { return PartText }

// ReasoningPart contains model reasoning text.
type ReasoningPart struct {
	Text  string
	State SpanState
}

func (ReasoningPart) part() {}

// PartType returns PartReasoning.
func (ReasoningPart) PartType() string { return PartReasoning }

// ToolApproval identifies a pending approval for a tool call.
type ToolApproval struct {
	ID string
}

// ToolCall is the state shared by named and dynamic tool parts.
// Input and Output hold decoded JSON values; RawInput holds input that could
// not be parsed.
type ToolCall struct {
	ToolCallID           string
	ToolName             string
	State                ToolState
	Input                any
	Output               any
	RawInput             any
	ErrorText            string
	ProviderExecuted     bool
	Preliminary          bool
	Title                string
	CallProviderMetadata map[string]any
	Approval             *ToolApproval
}

// ToolPart is an invocation of a tool known to the client by name.
type ToolPart struct {
	ToolCall
}

func (ToolPart) part() {}

// PartType returns "tool-" followed by the tool name.
func (p ToolPart) PartType() string { return ToolPartPrefix + p.ToolName }

// DynamicToolPart is an invocation of a tool not known to the client ahead
// of time.
type DynamicToolPart struct {
	ToolCall
}

func (DynamicToolPart) part() {}

// PartType returns PartDynamicTool.
func (DynamicToolPart) PartType() string { return PartDynamicTool }

// DataPart is an application-defined part. Parts with a non-empty ID are
// identified by (Type, ID).
type DataPart struct {
	Type string
	ID   string
	Data any
}

func (DataPart) part() {}

// PartType returns the application-defined type.
func (p DataPart) PartType() string { return p.Type }

// StepStartPart marks a step boundary.
type StepStartPart struct{}

func (StepStartPart) part() {}

// PartType returns PartStepStart.
func (StepStartPart) PartType() string { return PartStepStart }

// ToolCallOf returns the tool call carried by p, if p is a tool part of
// either kind.
func ToolCallOf(p Part) (ToolCall, bool) {
	switch tp := p.(type) {
	case ToolPart:
		return tp.ToolCall, true
	case DynamicToolPart:
		return tp.ToolCall, true
	default:
		return ToolCall{}, false
	}
}

// IsToolPartType reports whether typ names a named tool part.
func IsToolPartType(typ string) bool {
	return strings.HasPrefix(typ, ToolPartPrefix)
}

// Interface compliance checks.
var (
	_ Part = TextPart{}
	_ Part = ReasoningPart{}
	_ Part = ToolPart{}
	_ Part = DynamicToolPart{}
	_ Part = DataPart{}
	_ Part = StepStartPart{}
)
