package interpreter_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/fwojciec/uistream/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret_TextScenario(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.Start{MessageID: "m1"},
		uistream.TextStart{ID: "t1"},
		uistream.TextDelta{ID: "t1", Delta: "Hel"},
		uistream.TextDelta{ID: "t1", Delta: "lo"},
		uistream.TextEnd{ID: "t1"},
		uistream.Finish{FinishReason: "stop"},
	})

	assert.Equal(t, uistream.Message{
		ID:    "m1",
		Role:  uistream.RoleAssistant,
		Parts: []uistream.Part{uistream.TextPart{Text: "Hello", State: uistream.SpanDone}},
	}, r.state.Message)
	assert.Equal(t, "stop", r.state.FinishReason)
	// start, text-start, two deltas, text-end; finish carries no metadata.
	assert.Len(t, r.snapshots, 5)
}

func TestInterpret_ToolScenario(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "search"},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: `{"q":"ai"}`},
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "search", Input: map[string]any{"q": "ai"}},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: map[string]any{"results": []any{}}},
	})

	require.Len(t, r.state.Message.Parts, 1)
	part, ok := r.state.Message.Parts[0].(uistream.ToolPart)
	require.True(t, ok, "expected ToolPart, got %T", r.state.Message.Parts[0])
	assert.Equal(t, "tool-search", part.PartType())
	assert.Equal(t, "c1", part.ToolCallID)
	assert.Equal(t, uistream.ToolStateOutputAvailable, part.State)
	assert.Equal(t, map[string]any{"q": "ai"}, part.Input)
	assert.Equal(t, map[string]any{"results": []any{}}, part.Output)
}

func TestInterpret_SnapshotsAreIndependent(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.TextStart{ID: "t"},
		uistream.TextDelta{ID: "t", Delta: "a"},
		uistream.TextDelta{ID: "t", Delta: "b"},
		uistream.TextEnd{ID: "t"},
	})

	require.Len(t, r.snapshots, 4)
	assert.Equal(t, []uistream.Part{uistream.TextPart{State: uistream.SpanStreaming}}, r.snapshots[0].Parts)
	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "a", State: uistream.SpanStreaming}}, r.snapshots[1].Parts)
	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "ab", State: uistream.SpanStreaming}}, r.snapshots[2].Parts)
	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "ab", State: uistream.SpanDone}}, r.snapshots[3].Parts)
}

func TestRun_ChunkHandlerReceivesEveryChunkEvenOnError(t *testing.T) {
	t.Parallel()
	chunks := []uistream.Chunk{
		uistream.TextStart{ID: "t"},
		uistream.ToolOutputAvailable{ToolCallID: "missing"},
		uistream.UnknownChunk{Type: "mystery"},
		uistream.TextEnd{ID: "t"},
	}
	var forwarded []uistream.Chunk
	var sunk []error
	r := run(t, chunks,
		interpreter.WithChunkHandler(func(c uistream.Chunk) { forwarded = append(forwarded, c) }),
		interpreter.WithErrorSink(func(err error) error {
			sunk = append(sunk, err)
			return nil
		}),
	)

	require.NoError(t, r.err)
	assert.Equal(t, chunks, forwarded)
	require.Len(t, sunk, 2)

	var utc *uistream.UnknownToolCallError
	assert.ErrorAs(t, sunk[0], &utc)
	var uce *uistream.UnknownChunkError
	assert.ErrorAs(t, sunk[1], &uce)
	assert.Equal(t, "mystery", uce.Type)

	assert.Equal(t, []uistream.Part{uistream.TextPart{State: uistream.SpanDone}}, r.state.Message.Parts)
}

func TestRun_DefaultErrorSinkStops(t *testing.T) {
	t.Parallel()
	r := run(t, []uistream.Chunk{
		uistream.TextStart{ID: "t"},
		uistream.ToolOutputError{ToolCallID: "nope", ErrorText: "x"},
		uistream.TextDelta{ID: "t", Delta: "never"},
	})

	var utc *uistream.UnknownToolCallError
	require.ErrorAs(t, r.err, &utc)
	assert.Equal(t, "nope", utc.ToolCallID)
	assert.Equal(t, []uistream.Part{uistream.TextPart{State: uistream.SpanStreaming}}, r.state.Message.Parts)
}

func TestRun_SourceErrorIsTerminal(t *testing.T) {
	t.Parallel()
	calls := 0
	src := &mock.ChunkSource{NextFn: func() (uistream.Chunk, error) {
		calls++
		if calls == 1 {
			return uistream.TextStart{ID: "t"}, nil
		}
		return nil, assert.AnError
	}}
	state := interpreter.NewState(nil, "m")
	err := interpreter.New().Run(context.Background(), src, interpreter.NewJobRunner(state, nil))

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
	assert.Len(t, state.Message.Parts, 1)
}

func TestRun_EOFEndsCleanly(t *testing.T) {
	t.Parallel()
	src := &mock.ChunkSource{NextFn: func() (uistream.Chunk, error) { return nil, io.EOF }}
	err := interpreter.New().Run(context.Background(), src, interpreter.NewJobRunner(interpreter.NewState(nil, "m"), nil))
	assert.NoError(t, err)
}

func TestRun_CancellationStopsRequestingChunks(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	requested := 0
	src := &mock.ChunkSource{NextFn: func() (uistream.Chunk, error) {
		requested++
		return uistream.TextDelta{ID: "t", Delta: "x"}, nil
	}}
	state := interpreter.NewState(nil, "m")
	runner := interpreter.NewJobRunner(state, func(uistream.Message) { cancel() })

	err := interpreter.New().Run(ctx, src, runner)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, requested)
	// The in-flight transition completed.
	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "x"}}, state.Message.Parts)
}

func TestRun_ToolCallHandlerAwaitedBeforeNextChunk(t *testing.T) {
	t.Parallel()
	var events []string
	chunks := []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "read", Input: "a"},
		uistream.TextDelta{Delta: "after"},
	}
	pos := 0
	src := &mock.ChunkSource{NextFn: func() (uistream.Chunk, error) {
		if pos == len(chunks) {
			return nil, io.EOF
		}
		events = append(events, "next:"+chunks[pos].ChunkType())
		pos++
		return chunks[pos-1], nil
	}}
	var got uistream.ToolInputAvailable
	interp := interpreter.New(interpreter.WithToolCallHandler(func(_ context.Context, call uistream.ToolInputAvailable) error {
		events = append(events, "tool-call")
		got = call
		return nil
	}))
	state := interpreter.NewState(nil, "m")
	runner := interpreter.NewJobRunner(state, func(uistream.Message) { events = append(events, "publish") })

	require.NoError(t, interp.Run(context.Background(), src, runner))
	assert.Equal(t, []string{
		"next:tool-input-available", "publish", "tool-call",
		"next:text-delta", "publish",
	}, events)
	assert.Equal(t, "c1", got.ToolCallID)
}

func TestRun_ToolCallHandlerSkippedWhenProviderExecuted(t *testing.T) {
	t.Parallel()
	called := false
	mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "web", ProviderExecuted: ptr(true)},
	}, interpreter.WithToolCallHandler(func(context.Context, uistream.ToolInputAvailable) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}

func TestRun_ToolCallHandlerErrorGoesToSink(t *testing.T) {
	t.Parallel()
	r := run(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "read"},
	}, interpreter.WithToolCallHandler(func(context.Context, uistream.ToolInputAvailable) error {
		return assert.AnError
	}))
	assert.ErrorIs(t, r.err, assert.AnError)
	// The part was updated and published before the handler ran.
	assert.Len(t, r.snapshots, 1)
}

func TestRun_ErrorSinkCanReplaceError(t *testing.T) {
	t.Parallel()
	stop := errors.New("stop")
	r := run(t, []uistream.Chunk{uistream.UnknownChunk{Type: "x"}},
		interpreter.WithErrorSink(func(error) error { return stop }))
	assert.ErrorIs(t, r.err, stop)
}

func TestRun_Observer(t *testing.T) {
	t.Parallel()
	type processed struct {
		typ string
		err bool
	}
	var seen []processed
	published := 0
	obs := &mock.Observer{
		ChunkProcessedFn: func(typ string, err error) { seen = append(seen, processed{typ, err != nil}) },
		PublishedFn:      func() { published++ },
	}
	run(t, []uistream.Chunk{
		uistream.TextStart{ID: "t"},
		uistream.StartStep{},
		uistream.DataChunk{Type: "data-x", Data: 1.0},
		uistream.UnknownChunk{Type: "mystery"},
	}, interpreter.WithObserver(obs), interpreter.WithErrorSink(func(error) error { return nil }))

	assert.Equal(t, []processed{
		{"text-start", false},
		{"start-step", false},
		{"data-x", false},
		{"mystery", true},
	}, seen)
	assert.Equal(t, 2, published)
}

func TestProcess_CustomJobRunner(t *testing.T) {
	t.Parallel()
	state := interpreter.NewState(nil, "m")
	jobs := 0
	runner := func(ctx context.Context, job interpreter.Job) error {
		jobs++
		return job(ctx, state, func() {})
	}
	interp := interpreter.New()
	require.NoError(t, interp.Process(context.Background(), uistream.TextStart{ID: "a"}, runner))
	require.NoError(t, interp.Process(context.Background(), uistream.TextDelta{ID: "a", Delta: "z"}, runner))

	assert.Equal(t, 2, jobs)
	assert.Equal(t, []uistream.Part{uistream.TextPart{Text: "z", State: uistream.SpanStreaming}}, state.Message.Parts)
}
