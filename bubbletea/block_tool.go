package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/uistream"
	"github.com/mattn/go-runewidth"
)

var _ PartBlock = (*ToolBlock)(nil)

// ToolBlock renders a tool invocation through its lifecycle with a
// collapsible toggle. Failed invocations are always expanded.
type ToolBlock struct {
	call      uistream.ToolCall
	collapsed bool
	styles    Styles
}

// NewToolBlock creates a ToolBlock that starts collapsed.
func NewToolBlock(styles Styles) *ToolBlock {
	return &ToolBlock{collapsed: true, styles: styles}
}

// SetPart implements PartBlock.
func (b *ToolBlock) SetPart(p uistream.Part) bool {
	tc, ok := uistream.ToolCallOf(p)
	if !ok {
		return false
	}
	b.call = tc
	return true
}

// Call returns the rendered tool call.
func (b *ToolBlock) Call() uistream.ToolCall { return b.call }

func (b *ToolBlock) expanded() bool {
	return !b.collapsed || b.call.State == uistream.ToolStateOutputError
}

func (b *ToolBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolBlock) View(width int) string {
	name := b.call.ToolName
	if b.call.Title != "" {
		name = b.call.Title
	}
	icon, iconStyle := b.status()
	plain := indicator(!b.expanded()) + " " + name + " " + icon
	header := b.styles.ToolCall.Render(indicator(!b.expanded())+" "+name) + " " + iconStyle.Render(icon)

	block := b.styles.Block.Width(width)
	if !b.expanded() {
		room := width - block.GetHorizontalPadding() - runewidth.StringWidth(plain) - 3
		if summary := preview(b.summary(), room); summary != "" {
			header += "  " + b.styles.Muted.Render(summary)
		}
		return block.Render(header)
	}

	lines := []string{header}
	if in := indentedJSON(b.call.Input); in != "" {
		lines = append(lines, b.styles.Muted.Render(in))
	}
	if raw := indentedJSON(b.call.RawInput); raw != "" {
		lines = append(lines, b.styles.Muted.Render("raw: "+raw))
	}
	switch b.call.State {
	case uistream.ToolStateOutputAvailable:
		if out := indentedJSON(b.call.Output); out != "" {
			lines = append(lines, out)
		}
	case uistream.ToolStateOutputError:
		lines = append(lines, b.styles.Error.Render(b.call.ErrorText))
	case uistream.ToolStateApprovalRequested:
		lines = append(lines, b.styles.Accent.Render("awaiting approval"))
	case uistream.ToolStateOutputDenied:
		lines = append(lines, b.styles.Error.Render("denied"))
	}
	return block.Render(strings.Join(lines, "\n"))
}

// status returns the icon for the call's state.
func (b *ToolBlock) status() (string, lipgloss.Style) {
	switch b.call.State {
	case uistream.ToolStateInputStreaming:
		return "…", b.styles.Muted
	case uistream.ToolStateInputAvailable:
		return "○", b.styles.Muted
	case uistream.ToolStateApprovalRequested:
		return "?", b.styles.Accent
	case uistream.ToolStateOutputAvailable:
		if b.call.Preliminary {
			return "◐", b.styles.Success
		}
		return "✓", b.styles.Success
	case uistream.ToolStateOutputDenied:
		return "⊘", b.styles.Error
	default:
		return "✗", b.styles.Error
	}
}

func (b *ToolBlock) summary() string {
	switch b.call.State {
	case uistream.ToolStateOutputAvailable:
		return compactJSON(b.call.Output)
	case uistream.ToolStateOutputError:
		return b.call.ErrorText
	default:
		return compactJSON(b.call.Input)
	}
}
