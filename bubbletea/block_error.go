package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/uistream"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the error that ended a turn. Stream errors get a short
// summary with the underlying cause on a muted second line.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	summary, detail := describeError(b.err)
	content := b.styles.Error.Render("✗ " + summary)
	if detail != "" {
		content += "\n" + b.styles.Muted.Render("  "+detail)
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}

func describeError(err error) (summary, detail string) {
	var (
		transportErr *uistream.TransportError
		schemaErr    *uistream.SchemaValidationError
		unknownTool  *uistream.UnknownToolCallError
		unknownChunk *uistream.UnknownChunkError
	)
	switch {
	case errors.As(err, &transportErr):
		return fmt.Sprintf("server returned %d %s", transportErr.StatusCode, transportErr.Status), ""
	case errors.As(err, &schemaErr):
		return schemaErr.Type + " rejected by schema", schemaErr.Err.Error()
	case errors.As(err, &unknownTool):
		return "stream referenced an unknown tool call", unknownTool.ToolCallID
	case errors.As(err, &unknownChunk):
		return fmt.Sprintf("unsupported chunk type %q", unknownChunk.Type), ""
	case errors.Is(err, uistream.ErrStreamClosed):
		return "stream closed", ""
	default:
		return err.Error(), ""
	}
}
