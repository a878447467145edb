package uistream

import "io"

// ChunkSource uses a pull-based iterator pattern. Next returns io.EOF once
// the source is exhausted. Any other error is terminal. Cancellation flows
// through the context that produced the source.
type ChunkSource interface {
	Next() (Chunk, error)
}

// Chunks returns a ChunkSource that yields the given chunks in order.
func Chunks(chunks ...Chunk) ChunkSource {
	return &sliceSource{chunks: chunks}
}

type sliceSource struct {
	chunks []Chunk
	pos    int
}

func (s *sliceSource) Next() (Chunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}
