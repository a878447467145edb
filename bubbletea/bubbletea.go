// Package bubbletea provides a Bubble Tea TUI that renders published
// message snapshots as they stream in.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
)

// SendFunc sends one user turn. publish is called with each snapshot of the
// assistant message as it changes. The function blocks until the turn
// completes or the context is cancelled.
type SendFunc func(ctx context.Context, text string, publish func(uistream.Message)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The program quits when ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SnapshotMsg delivers a published assistant message snapshot to the model.
type SnapshotMsg struct {
	Message uistream.Message
}

// TurnDoneMsg signals that a turn has completed.
type TurnDoneMsg struct {
	Err error
}
