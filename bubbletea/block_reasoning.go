package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/uistream"
)

var _ PartBlock = (*ReasoningBlock)(nil)

// ReasoningBlock renders model reasoning with a collapsible toggle.
type ReasoningBlock struct {
	text      string
	streaming bool
	collapsed bool
	styles    Styles
}

// NewReasoningBlock creates a ReasoningBlock that starts collapsed.
func NewReasoningBlock(styles Styles) *ReasoningBlock {
	return &ReasoningBlock{collapsed: true, styles: styles}
}

// SetPart implements PartBlock.
func (b *ReasoningBlock) SetPart(p uistream.Part) bool {
	rp, ok := p.(uistream.ReasoningPart)
	if !ok {
		return false
	}
	b.text = rp.Text
	b.streaming = rp.State == uistream.SpanStreaming
	return true
}

func (b *ReasoningBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ReasoningBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	title := "Reasoning"
	if b.streaming {
		title += " …"
	}
	header := b.styles.Reasoning.Render(wrap.Render(indicator(b.collapsed) + " " + title))
	if b.collapsed || b.text == "" {
		return header
	}
	return header + "\n" + b.styles.Reasoning.Render(wrap.Render(b.text))
}

func indicator(collapsed bool) string {
	if collapsed {
		return "▶"
	}
	return "▼"
}
