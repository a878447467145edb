package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/markdown"
)

var _ PartBlock = (*TextBlock)(nil)

// TextBlock renders assistant text as markdown. The prefix up to the last
// paragraph break outside a code fence is rendered once per width and
// cached; only the trailing paragraph is re-rendered as the text grows.
type TextBlock struct {
	text      string
	streaming bool
	theme     uistream.Theme

	stable        string
	stableByWidth map[int]string
}

// NewTextBlock creates an empty TextBlock.
func NewTextBlock(theme uistream.Theme) *TextBlock {
	return &TextBlock{theme: theme, stableByWidth: make(map[int]string)}
}

// SetPart implements PartBlock.
func (b *TextBlock) SetPart(p uistream.Part) bool {
	tp, ok := p.(uistream.TextPart)
	if !ok {
		return false
	}
	b.SetText(tp.Text, tp.State == uistream.SpanStreaming)
	return true
}

// SetText replaces the block's text.
func (b *TextBlock) SetText(text string, streaming bool) {
	if b.stable != "" && !strings.HasPrefix(text, b.stable+"\n\n") {
		b.stable = ""
		clear(b.stableByWidth)
	}
	b.text = text
	b.streaming = streaming
	b.promote()
}

func (b *TextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *TextBlock) View(width int) string {
	stable := b.renderStable(width)
	trailing := strings.TrimPrefix(b.text, b.stable)
	trailing = strings.TrimPrefix(trailing, "\n\n")
	if strings.TrimSpace(trailing) == "" {
		return stable
	}

	render := markdown.Render
	if b.streaming {
		render = markdown.RenderStreaming
	}
	rendered := render(trailing, width, b.theme)
	if stable == "" {
		return rendered
	}
	return strings.TrimRight(stable, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promote moves the stable prefix to the last "\n\n" whose prefix has every
// code fence closed.
func (b *TextBlock) promote() {
	for end := len(b.text); ; {
		idx := strings.LastIndex(b.text[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := b.text[:idx]
		if !markdown.HasOpenFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *TextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := markdown.Render(b.stable, width, b.theme)
	b.stableByWidth[width] = rendered
	return rendered
}
