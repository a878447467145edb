package mock

import "github.com/fwojciec/uistream"

// Interface compliance check.
var _ uistream.ChunkSource = (*ChunkSource)(nil)

// ChunkSource is a test double for uistream.ChunkSource.
// NextFn panics when nil to catch missing setup.
type ChunkSource struct {
	NextFn func() (uistream.Chunk, error)
}

// Next delegates to NextFn.
func (s *ChunkSource) Next() (uistream.Chunk, error) {
	return s.NextFn()
}
