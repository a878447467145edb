package uistream

import "context"

// Sink receives finished assistant messages, one per completed turn.
type Sink interface {
	Write(ctx context.Context, msg Message) error
}
