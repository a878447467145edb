package mock

import "github.com/fwojciec/uistream/interpreter"

// Interface compliance check.
var _ interpreter.Observer = (*Observer)(nil)

// Observer is a test double for interpreter.Observer.
// Both function fields are nil-safe (no-op) because tests usually care about
// only one of them.
type Observer struct {
	ChunkProcessedFn func(chunkType string, err error)
	PublishedFn      func()
}

// ChunkProcessed delegates to ChunkProcessedFn.
func (o *Observer) ChunkProcessed(chunkType string, err error) {
	if o.ChunkProcessedFn != nil {
		o.ChunkProcessedFn(chunkType, err)
	}
}

// Published delegates to PublishedFn.
func (o *Observer) Published() {
	if o.PublishedFn != nil {
		o.PublishedFn()
	}
}
