package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/uistream"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message: its text behind a "> " prompt
// and a count of any data parts it carries.
type UserMessageBlock struct {
	text   string
	data   int
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock for msg.
func NewUserMessageBlock(msg uistream.Message, styles Styles) *UserMessageBlock {
	b := &UserMessageBlock{text: msg.Text(), styles: styles}
	for _, p := range msg.Parts {
		if _, ok := p.(uistream.DataPart); ok {
			b.data++
		}
	}
	return b
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + b.text
	if b.data > 0 {
		content += " " + b.styles.Muted.Render(fmt.Sprintf("[+%d data]", b.data))
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}
