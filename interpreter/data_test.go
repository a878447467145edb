package interpreter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/fwojciec/uistream/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData_UpsertByTypeAndID(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.DataChunk{Type: "data-weather", ID: "w1", Data: "loading"},
		uistream.DataChunk{Type: "data-weather", ID: "w1", Data: "sunny"},
		uistream.DataChunk{Type: "data-weather", ID: "w2", Data: "rain"},
		uistream.DataChunk{Type: "data-other", ID: "w1", Data: "separate"},
	})
	assert.Equal(t, []uistream.Part{
		uistream.DataPart{Type: "data-weather", ID: "w1", Data: "sunny"},
		uistream.DataPart{Type: "data-weather", ID: "w2", Data: "rain"},
		uistream.DataPart{Type: "data-other", ID: "w1", Data: "separate"},
	}, r.state.Message.Parts)
	assert.Len(t, r.snapshots, 4)
	assert.Equal(t, uistream.DataPart{Type: "data-weather", ID: "w1", Data: "loading"}, r.snapshots[0].Parts[0])
}

func TestData_WithoutIDAlwaysAppends(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.DataChunk{Type: "data-log", Data: "a"},
		uistream.DataChunk{Type: "data-log", Data: "b"},
	})
	assert.Len(t, r.state.Message.Parts, 2)
}

func TestData_TransientReachesObserverOnly(t *testing.T) {
	t.Parallel()
	var seen []uistream.DataChunk
	r := mustRun(t, []uistream.Chunk{
		uistream.DataChunk{Type: "data-status", Data: "thinking", Transient: true},
		uistream.DataChunk{Type: "data-final", Data: "kept"},
	}, interpreter.WithDataHandler(func(c uistream.DataChunk) { seen = append(seen, c) }))

	assert.Equal(t, []uistream.Part{uistream.DataPart{Type: "data-final", Data: "kept"}}, r.state.Message.Parts)
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Transient)
	assert.Len(t, r.snapshots, 1)
}

func TestData_SchemaMismatchLeavesMessageUnmutated(t *testing.T) {
	t.Parallel()
	schemaErr := errors.New("expected object")
	schema := &mock.Schema{ValidateFn: func(_ context.Context, v any) error {
		if _, ok := v.(map[string]any); !ok {
			return schemaErr
		}
		return nil
	}}
	var dataSeen int
	var sunk error
	r := run(t, []uistream.Chunk{
		uistream.DataChunk{Type: "data-weather", ID: "w", Data: map[string]any{"c": 1.0}},
		uistream.DataChunk{Type: "data-weather", ID: "w", Data: "not an object"},
	},
		interpreter.WithSchemas(map[string]uistream.Schema{"data-weather": schema}),
		interpreter.WithDataHandler(func(uistream.DataChunk) { dataSeen++ }),
		interpreter.WithErrorSink(func(err error) error {
			sunk = err
			return nil
		}),
	)
	require.NoError(t, r.err)

	var sve *uistream.SchemaValidationError
	require.ErrorAs(t, sunk, &sve)
	assert.Equal(t, "data-weather", sve.Type)
	assert.ErrorIs(t, sunk, schemaErr)

	assert.Equal(t, []uistream.Part{uistream.DataPart{Type: "data-weather", ID: "w", Data: map[string]any{"c": 1.0}}}, r.state.Message.Parts)
	assert.Equal(t, 1, dataSeen)
	assert.Len(t, r.snapshots, 1)
}

func TestData_SchemaOnlyAppliesToItsType(t *testing.T) {
	t.Parallel()
	schema := &mock.Schema{ValidateFn: func(context.Context, any) error { return assert.AnError }}
	r := mustRun(t, []uistream.Chunk{
		uistream.DataChunk{Type: "data-free", Data: 1.0},
	}, interpreter.WithSchemas(map[string]uistream.Schema{"data-strict": schema}))
	assert.Len(t, r.state.Message.Parts, 1)
}

func TestMetadataSchema_RejectsBeforeMutation(t *testing.T) {
	t.Parallel()
	schema := &mock.Schema{ValidateFn: func(_ context.Context, v any) error {
		if _, bad := v.(map[string]any)["forbidden"]; bad {
			return assert.AnError
		}
		return nil
	}}
	r := run(t, []uistream.Chunk{
		uistream.Start{MessageID: "m2", MessageMetadata: map[string]any{"forbidden": true}},
	}, interpreter.WithMessageMetadataSchema(schema))

	var sve *uistream.SchemaValidationError
	require.ErrorAs(t, r.err, &sve)
	assert.Equal(t, uistream.ChunkMessageMetadata, sve.Type)
	assert.Equal(t, "msg-1", r.state.Message.ID)
	assert.Nil(t, r.state.Message.Metadata)
}
