package uistream_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/uistream"
	"github.com/stretchr/testify/assert"
)

func TestTransportError_Message(t *testing.T) {
	t.Parallel()
	err := &uistream.TransportError{StatusCode: 404, Status: "Not Found"}
	assert.Equal(t, "non-success status: Not Found", err.Error())
}

func TestEmptyBodyError_Message(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "no response body", (&uistream.EmptyBodyError{}).Error())
}

func TestUnknownToolCallError_Message(t *testing.T) {
	t.Parallel()
	err := &uistream.UnknownToolCallError{ToolCallID: "c9"}
	assert.Equal(t, "no tool invocation found for tool call c9", err.Error())
}

func TestSchemaValidationError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("missing property")
	err := fmt.Errorf("process: %w", &uistream.SchemaValidationError{Type: "data-x", Err: cause})

	var sve *uistream.SchemaValidationError
	assert.ErrorAs(t, err, &sve)
	assert.Equal(t, "data-x", sve.Type)
	assert.ErrorIs(t, err, cause)
}

func TestUnknownChunkError_Message(t *testing.T) {
	t.Parallel()
	err := &uistream.UnknownChunkError{Type: "bogus"}
	assert.Equal(t, `unknown chunk type "bogus"`, err.Error())
}
