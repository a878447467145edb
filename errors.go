package uistream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// TransportError reports a response with a non-success status. No chunk is
// produced when it occurs.
type TransportError struct {
	StatusCode int
	Status     string // status text, e.g. "Not Found"
}

func (e *TransportError) Error() string {
	return "non-success status: " + e.Status
}

// EmptyBodyError reports a successful response without a body.
type EmptyBodyError struct{}

func (e *EmptyBodyError) Error() string {
	return "no response body"
}

// UnknownToolCallError reports a lifecycle chunk that references a tool call
// id with no registered tool part.
type UnknownToolCallError struct {
	ToolCallID string
}

func (e *UnknownToolCallError) Error() string {
	return fmt.Sprintf("no tool invocation found for tool call %s", e.ToolCallID)
}

// SchemaValidationError reports a payload that failed its registered schema.
// Type is the data chunk type, or ChunkMessageMetadata for metadata.
type SchemaValidationError struct {
	Type string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s: schema validation failed: %v", e.Type, e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}

// UnknownChunkError reports a chunk type outside the protocol.
type UnknownChunkError struct {
	Type string
}

func (e *UnknownChunkError) Error() string {
	return fmt.Sprintf("unknown chunk type %q", e.Type)
}
