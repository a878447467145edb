package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
	"github.com/mattn/go-runewidth"
)

var _ PartBlock = (*DataBlock)(nil)

// DataBlock renders an application data part with a collapsible toggle.
type DataBlock struct {
	part      uistream.DataPart
	collapsed bool
	styles    Styles
}

// NewDataBlock creates a DataBlock that starts collapsed.
func NewDataBlock(styles Styles) *DataBlock {
	return &DataBlock{collapsed: true, styles: styles}
}

// SetPart implements PartBlock.
func (b *DataBlock) SetPart(p uistream.Part) bool {
	dp, ok := p.(uistream.DataPart)
	if !ok {
		return false
	}
	b.part = dp
	return true
}

func (b *DataBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *DataBlock) View(width int) string {
	label := b.part.Type
	if b.part.ID != "" {
		label += " #" + b.part.ID
	}
	plain := indicator(b.collapsed) + " " + label
	header := b.styles.Data.Render(plain)

	block := b.styles.Block.Width(width)
	if b.collapsed {
		room := width - block.GetHorizontalPadding() - runewidth.StringWidth(plain) - 3
		if summary := preview(compactJSON(b.part.Data), room); summary != "" {
			header += "  " + b.styles.Muted.Render(summary)
		}
		return block.Render(header)
	}
	body := indentedJSON(b.part.Data)
	if body == "" {
		return block.Render(header)
	}
	return block.Render(header + "\n" + body)
}
