package mock

import (
	"context"

	"github.com/fwojciec/uistream"
)

// Interface compliance check.
var _ uistream.Sink = (*Sink)(nil)

// Sink is a test double for uistream.Sink.
// Set WriteFn before calling Write.
type Sink struct {
	WriteFn func(ctx context.Context, msg uistream.Message) error
}

// Write delegates to WriteFn.
func (s *Sink) Write(ctx context.Context, msg uistream.Message) error {
	return s.WriteFn(ctx, msg)
}
