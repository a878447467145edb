package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/uistream"
)

const (
	// EventSchemaVersionV1 is the first version of the event payload schema.
	EventSchemaVersionV1 = 1

	// EventTypeMessageFinished is emitted after an assistant turn completes.
	EventTypeMessageFinished = "uistream.message.finished"
)

// MessageEvent announces a finished assistant message to external
// consumers.
type MessageEvent struct {
	EventID   string
	EmittedAt time.Time
	Message   uistream.Message
}

type eventDTO struct {
	SchemaVersion int        `json:"schema_version"`
	EventType     string     `json:"event_type"`
	EventID       string     `json:"event_id"`
	EmittedAt     time.Time  `json:"emitted_at"`
	Message       messageDTO `json:"message"`
}

// MarshalMessageEvent serializes e as a versioned, transport-neutral event.
func MarshalMessageEvent(e MessageEvent) ([]byte, error) {
	msg, err := marshalMessage(e.Message)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventDTO{
		SchemaVersion: EventSchemaVersionV1,
		EventType:     EventTypeMessageFinished,
		EventID:       e.EventID,
		EmittedAt:     e.EmittedAt,
		Message:       msg,
	})
}

// UnmarshalMessageEvent deserializes an event written by MarshalMessageEvent.
func UnmarshalMessageEvent(data []byte) (MessageEvent, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return MessageEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if dto.SchemaVersion != EventSchemaVersionV1 {
		return MessageEvent{}, fmt.Errorf("unsupported event schema version: %d", dto.SchemaVersion)
	}
	msg, err := unmarshalMessage(dto.Message)
	if err != nil {
		return MessageEvent{}, err
	}
	return MessageEvent{EventID: dto.EventID, EmittedAt: dto.EmittedAt, Message: msg}, nil
}
