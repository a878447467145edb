package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
)

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
// Sent by the root model when the user presses the toggle key on a focused block.
type ToggleMsg struct{}

// PartBlock is a block that renders one message part and follows it across
// snapshots.
type PartBlock interface {
	MessageBlock
	// SetPart updates the block to p. It returns false when p is a
	// different kind of part, in which case the block must be replaced.
	SetPart(p uistream.Part) bool
}

// NewPartBlock returns the block that renders p.
func NewPartBlock(p uistream.Part, theme uistream.Theme, styles Styles) PartBlock {
	var b PartBlock
	switch p.(type) {
	case uistream.TextPart:
		b = NewTextBlock(theme)
	case uistream.ReasoningPart:
		b = NewReasoningBlock(styles)
	case uistream.ToolPart, uistream.DynamicToolPart:
		b = NewToolBlock(styles)
	case uistream.DataPart:
		b = NewDataBlock(styles)
	default:
		b = NewStepBlock(styles)
	}
	b.SetPart(p)
	return b
}

func isCollapsible(b MessageBlock) bool {
	switch b.(type) {
	case *ReasoningBlock, *ToolBlock, *DataBlock:
		return true
	}
	return false
}

// messageView holds the blocks of one message.
type messageView struct {
	role   uistream.Role
	blocks []MessageBlock
}

// sync brings the view's blocks in line with parts, keeping blocks (and
// their collapsed state) whose part kind is unchanged.
func (v *messageView) sync(parts []uistream.Part, theme uistream.Theme, styles Styles) {
	for i, p := range parts {
		if i < len(v.blocks) {
			if pb, ok := v.blocks[i].(PartBlock); ok && pb.SetPart(p) {
				continue
			}
			v.blocks[i] = NewPartBlock(p, theme, styles)
			continue
		}
		v.blocks = append(v.blocks, NewPartBlock(p, theme, styles))
	}
	v.blocks = v.blocks[:len(parts)]
}
