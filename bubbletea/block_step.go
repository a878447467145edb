package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
)

var _ PartBlock = (*StepBlock)(nil)

const stepRuleWidth = 24

// StepBlock renders a step boundary as a faint rule.
type StepBlock struct {
	styles Styles
}

// NewStepBlock creates a StepBlock.
func NewStepBlock(styles Styles) *StepBlock {
	return &StepBlock{styles: styles}
}

// SetPart implements PartBlock.
func (b *StepBlock) SetPart(p uistream.Part) bool {
	_, ok := p.(uistream.StepStartPart)
	return ok
}

func (b *StepBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *StepBlock) View(width int) string {
	return b.styles.Muted.Render(strings.Repeat("╌", max(min(width, stepRuleWidth), 0)))
}
