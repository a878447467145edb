package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/uistream"
	uijson "github.com/fwojciec/uistream/json"
)

// chunkRecorder writes chunks as an SSE response body that replay reads back.
// The first write error is kept and later chunks are dropped.
type chunkRecorder struct {
	w   io.Writer
	err error
}

func newChunkRecorder(w io.Writer) *chunkRecorder {
	return &chunkRecorder{w: w}
}

// Record writes c as one SSE event.
func (r *chunkRecorder) Record(c uistream.Chunk) {
	if r.err != nil {
		return
	}
	data, err := uijson.EncodeChunk(c)
	if err != nil {
		r.err = fmt.Errorf("record %s chunk: %w", c.ChunkType(), err)
		return
	}
	r.writeEvent(string(data))
}

// Finish terminates the stream with the [DONE] sentinel and reports the first
// error seen.
func (r *chunkRecorder) Finish() error {
	r.writeEvent(uijson.DonePayload)
	return r.err
}

func (r *chunkRecorder) writeEvent(payload string) {
	if r.err != nil {
		return
	}
	var b strings.Builder
	for line := range strings.SplitSeq(payload, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, r.err = io.WriteString(r.w, b.String())
}

// chunkHandlers combines handlers into one that calls each in order.
func chunkHandlers(hs ...func(uistream.Chunk)) func(uistream.Chunk) {
	return func(c uistream.Chunk) {
		for _, h := range hs {
			h(c)
		}
	}
}
