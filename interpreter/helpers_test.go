package interpreter_test

import (
	"context"
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/stretchr/testify/require"
)

type result struct {
	state     *interpreter.State
	snapshots []uistream.Message
	err       error
}

// run interprets chunks into a fresh state and records every snapshot.
func run(t *testing.T, chunks []uistream.Chunk, opts ...interpreter.Option) result {
	t.Helper()
	var r result
	state := interpreter.NewState(nil, "msg-1")
	r.state, r.err = interpreter.New(opts...).Interpret(
		context.Background(),
		uistream.Chunks(chunks...),
		state,
		func(m uistream.Message) { r.snapshots = append(r.snapshots, m) },
	)
	return r
}

func mustRun(t *testing.T, chunks []uistream.Chunk, opts ...interpreter.Option) result {
	t.Helper()
	r := run(t, chunks, opts...)
	require.NoError(t, r.err)
	return r
}

func ptr[T any](v T) *T { return &v }
