package interpreter_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyTool(t *testing.T, r result) uistream.ToolCall {
	t.Helper()
	require.Len(t, r.state.Message.Parts, 1)
	tc, ok := uistream.ToolCallOf(r.state.Message.Parts[0])
	require.True(t, ok, "expected a tool part, got %T", r.state.Message.Parts[0])
	return tc
}

func TestTool_InputStartCreatesStreamingPart(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read", Title: "Read file", ProviderExecuted: ptr(true)},
	})
	assert.Equal(t, []uistream.Part{uistream.ToolPart{ToolCall: uistream.ToolCall{
		ToolCallID:       "c1",
		ToolName:         "read",
		State:            uistream.ToolStateInputStreaming,
		Title:            "Read file",
		ProviderExecuted: true,
	}}}, r.state.Message.Parts)
	assert.Len(t, r.snapshots, 1)
}

func TestTool_InputDeltaParsesAccumulatedJSON(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read"},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: `{"path":`},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: `"a.go"}`},
	})
	require.Len(t, r.snapshots, 3)

	partial, _ := uistream.ToolCallOf(r.snapshots[1].Parts[0])
	assert.Equal(t, `{"path":`, partial.Input)

	tc := onlyTool(t, r)
	assert.Equal(t, map[string]any{"path": "a.go"}, tc.Input)
	assert.Equal(t, uistream.ToolStateInputStreaming, tc.State)
}

func TestTool_InputDeltaNeverValidKeepsRawString(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read"},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: "not "},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: "json"},
	})
	assert.Equal(t, "not json", onlyTool(t, r).Input)
}

func TestTool_InputDeltaWithoutStartIsIgnored(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputDelta{ToolCallID: "ghost", InputTextDelta: "{}"},
	})
	assert.Empty(t, r.state.Message.Parts)
	assert.Empty(t, r.snapshots)
}

func TestTool_InputDeltaKeepsTitleAndProviderExecuted(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read", Title: "T", ProviderExecuted: ptr(true)},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: "1"},
	})
	tc := onlyTool(t, r)
	assert.Equal(t, "T", tc.Title)
	assert.True(t, tc.ProviderExecuted)
	assert.Equal(t, 1.0, tc.Input)
}

func TestTool_InputOrderCountsToolParts(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mustRun(t, []uistream.Chunk{
		uistream.TextStart{ID: "t"},
		uistream.ToolInputStart{ToolCallID: "a", ToolName: "x"},
		uistream.ToolInputStart{ToolCallID: "b", ToolName: "y", Dynamic: true},
		uistream.ToolInputAvailable{ToolCallID: "b", ToolName: "y", Dynamic: true},
		uistream.ToolInputAvailable{ToolCallID: "a", ToolName: "x"},
		uistream.ToolInputAvailable{ToolCallID: "c", ToolName: "z"},
	}, interpreter.WithLogger(log))

	orders := map[string]float64{}
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		if rec["msg"] == "tool input complete" {
			orders[rec["toolCallId"].(string)] = rec["order"].(float64)
		}
	}
	assert.Equal(t, map[string]float64{"a": 0, "b": 1}, orders)
}

func TestTool_InputAvailableAttachesProviderMetadata(t *testing.T) {
	t.Parallel()
	md := map[string]any{"openai": map[string]any{"itemId": "i1"}}
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read"},
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "read", Input: "x", ProviderMetadata: md},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "ok"},
	})
	tc := onlyTool(t, r)
	assert.Equal(t, md, tc.CallProviderMetadata)
	assert.Equal(t, "x", tc.Input)
	assert.Equal(t, "ok", tc.Output)
}

func TestTool_InputAvailableWithoutStartCreatesPart(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "read", Input: "x", Dynamic: true},
	})
	require.Len(t, r.state.Message.Parts, 1)
	part, ok := r.state.Message.Parts[0].(uistream.DynamicToolPart)
	require.True(t, ok)
	assert.Equal(t, uistream.ToolStateInputAvailable, part.State)
}

func TestTool_InputErrorNamedStoresRawInput(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "read"},
		uistream.ToolInputDelta{ToolCallID: "c1", InputTextDelta: `{"a"`},
		uistream.ToolInputError{ToolCallID: "c1", ToolName: "read", Input: `{"a"`, ErrorText: "bad json", ProviderMetadata: map[string]any{"k": "v"}},
	})
	tc := onlyTool(t, r)
	assert.Equal(t, uistream.ToolStateOutputError, tc.State)
	assert.Nil(t, tc.Input)
	assert.Equal(t, `{"a"`, tc.RawInput)
	assert.Equal(t, "bad json", tc.ErrorText)
	assert.Nil(t, tc.CallProviderMetadata)
	_, isNamed := r.state.Message.Parts[0].(uistream.ToolPart)
	assert.True(t, isNamed)
}

func TestTool_InputErrorDynamicStoresInput(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "mcp", Dynamic: true},
		uistream.ToolInputError{ToolCallID: "c1", ToolName: "mcp", Input: "raw", ErrorText: "bad", Dynamic: true},
	})
	tc := onlyTool(t, r)
	_, isDynamic := r.state.Message.Parts[0].(uistream.DynamicToolPart)
	assert.True(t, isDynamic)
	assert.Equal(t, "raw", tc.Input)
	assert.Nil(t, tc.RawInput)
}

func TestTool_OutputErrorPreservesRawInput(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputError{ToolCallID: "c1", ToolName: "read", Input: "raw", ErrorText: "first"},
		uistream.ToolOutputError{ToolCallID: "c1", ErrorText: "second"},
	})
	tc := onlyTool(t, r)
	assert.Equal(t, "raw", tc.RawInput)
	assert.Equal(t, "second", tc.ErrorText)
	assert.Equal(t, "read", tc.ToolName)
}

func TestTool_LifecyclePreservesInputNameTitle(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "mcp", Dynamic: true, Title: "Search"},
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "mcp", Dynamic: true, Input: "q"},
		uistream.ToolApprovalRequest{ToolCallID: "c1", ApprovalID: "ap-1"},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "partial", Preliminary: true},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "final"},
	})
	require.Len(t, r.snapshots, 5)

	approval, _ := uistream.ToolCallOf(r.snapshots[2].Parts[0])
	assert.Equal(t, uistream.ToolStateApprovalRequested, approval.State)
	assert.Equal(t, &uistream.ToolApproval{ID: "ap-1"}, approval.Approval)

	prelim, _ := uistream.ToolCallOf(r.snapshots[3].Parts[0])
	assert.True(t, prelim.Preliminary)

	part, ok := r.state.Message.Parts[0].(uistream.DynamicToolPart)
	require.True(t, ok)
	assert.Equal(t, uistream.ToolStateOutputAvailable, part.State)
	assert.Equal(t, "mcp", part.ToolName)
	assert.Equal(t, "Search", part.Title)
	assert.Equal(t, "q", part.Input)
	assert.Equal(t, "final", part.Output)
	assert.False(t, part.Preliminary)
}

func TestTool_OutputDenied(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "rm", Input: "/"},
		uistream.ToolApprovalRequest{ToolCallID: "c1", ApprovalID: "a"},
		uistream.ToolOutputDenied{ToolCallID: "c1"},
	})
	tc := onlyTool(t, r)
	assert.Equal(t, uistream.ToolStateOutputDenied, tc.State)
	assert.Equal(t, "/", tc.Input)
}

func TestTool_OutputClearsErrorText(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "x"},
		uistream.ToolOutputError{ToolCallID: "c1", ErrorText: "boom"},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "ok"},
	})
	tc := onlyTool(t, r)
	assert.Empty(t, tc.ErrorText)
	assert.Equal(t, "ok", tc.Output)
}

func TestTool_ProviderExecutedKeptUnlessProvided(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "web", ProviderExecuted: ptr(true)},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "x"},
	})
	assert.True(t, onlyTool(t, r).ProviderExecuted)

	r = mustRun(t, []uistream.Chunk{
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "web", ProviderExecuted: ptr(true)},
		uistream.ToolOutputAvailable{ToolCallID: "c1", Output: "x", ProviderExecuted: ptr(false)},
	})
	assert.False(t, onlyTool(t, r).ProviderExecuted)
}

func TestTool_NamedAndDynamicLookedUpSeparately(t *testing.T) {
	t.Parallel()
	r := mustRun(t, []uistream.Chunk{
		uistream.ToolInputStart{ToolCallID: "c1", ToolName: "x"},
		uistream.ToolInputAvailable{ToolCallID: "c1", ToolName: "x", Dynamic: true},
	})
	require.Len(t, r.state.Message.Parts, 2)
	assert.IsType(t, uistream.ToolPart{}, r.state.Message.Parts[0])
	assert.IsType(t, uistream.DynamicToolPart{}, r.state.Message.Parts[1])
}

func TestTool_UnknownToolCallLeavesMessageUnmutated(t *testing.T) {
	t.Parallel()
	for _, c := range []uistream.Chunk{
		uistream.ToolApprovalRequest{ToolCallID: "ghost", ApprovalID: "a"},
		uistream.ToolOutputDenied{ToolCallID: "ghost"},
		uistream.ToolOutputAvailable{ToolCallID: "ghost", Output: "x"},
		uistream.ToolOutputError{ToolCallID: "ghost", ErrorText: "x"},
	} {
		t.Run(c.ChunkType(), func(t *testing.T) {
			t.Parallel()
			var sunk error
			r := run(t, []uistream.Chunk{
				uistream.ToolInputAvailable{ToolCallID: "real", ToolName: "x", Input: "in"},
				c,
			}, interpreter.WithErrorSink(func(err error) error {
				sunk = err
				return nil
			}))
			require.NoError(t, r.err)

			var utc *uistream.UnknownToolCallError
			require.ErrorAs(t, sunk, &utc)
			assert.Equal(t, "ghost", utc.ToolCallID)
			assert.Len(t, r.snapshots, 1)
			assert.Equal(t, []uistream.Part{uistream.ToolPart{ToolCall: uistream.ToolCall{
				ToolCallID: "real",
				ToolName:   "x",
				State:      uistream.ToolStateInputAvailable,
				Input:      "in",
			}}}, r.state.Message.Parts)
		})
	}
}
