package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/uistream"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	send   SendFunc
	theme  uistream.Theme
	styles Styles

	views      []*messageView
	streaming  int // index of the view receiving snapshots (-1 = none)
	blockFocus int // index into focusable blocks (-1 = none)

	running bool
	cancel  context.CancelFunc
	snapCh  chan uistream.Message
	doneCh  chan error
	err     error
	ready   bool
}

// New creates a TUI Model that sends turns with send and starts from the
// given conversation.
func New(send SendFunc, messages []uistream.Message, theme uistream.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:      ti,
		send:       send,
		theme:      theme,
		styles:     NewStyles(theme),
		streaming:  -1,
		blockFocus: -1,
	}
	for _, msg := range messages {
		m = m.addMessage(msg)
	}
	return m.updateBlockFocus()
}

// Running returns whether a turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last turn, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m = m.applySnapshot(msg.Message)
		m.refresh()
		if m.snapCh != nil {
			return m, listenForSnapshot(m.snapCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		if m.cancel != nil {
			m.cancel()
		}
		m.running = false
		m.cancel = nil
		m.snapCh = nil
		m.doneCh = nil
		m.streaming = -1
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
			m.views = append(m.views, &messageView{blocks: []MessageBlock{NewErrorBlock(msg.Err, m.styles)}})
		}
		m = m.updateBlockFocus()
		m.refresh()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const inputHeight, statusHeight, gaps = 1, 1, 2
	vpHeight := max(msg.Height-inputHeight-statusHeight-gaps, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyTab:
		if b := m.focused(); b != nil && !m.running {
			b.Update(ToggleMsg{})
			m.refresh()
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
		}
		return m, nil
	}

	if m.running {
		return m, nil
	}
	// Character keys go to the input only; 'j'/'k' would otherwise scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil

	m.views = append(m.views, &messageView{
		role:   uistream.RoleUser,
		blocks: []MessageBlock{NewUserMessageBlock(uistream.NewUserMessage("", text), m.styles)},
	})
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.snapCh = make(chan uistream.Message, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	return m, tea.Batch(
		startTurn(ctx, m.send, text, m.snapCh, m.doneCh),
		listenForSnapshot(m.snapCh, m.doneCh),
	)
}

// addMessage appends a finished message from the initial conversation.
func (m Model) addMessage(msg uistream.Message) Model {
	switch msg.Role {
	case uistream.RoleUser:
		m.views = append(m.views, &messageView{
			role:   msg.Role,
			blocks: []MessageBlock{NewUserMessageBlock(msg, m.styles)},
		})
	case uistream.RoleAssistant:
		v := &messageView{role: msg.Role}
		v.sync(msg.Parts, m.theme, m.styles)
		m.views = append(m.views, v)
	}
	return m
}

// applySnapshot replaces the streaming view's blocks with those of msg.
func (m Model) applySnapshot(msg uistream.Message) Model {
	if m.streaming < 0 {
		m.views = append(m.views, &messageView{role: uistream.RoleAssistant})
		m.streaming = len(m.views) - 1
	}
	before := len(m.focusable())
	m.views[m.streaming].sync(msg.Parts, m.theme, m.styles)
	if len(m.focusable()) != before {
		m = m.updateBlockFocus()
	}
	return m
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	rendered := make([]string, 0, len(m.views))
	for _, v := range m.views {
		if len(v.blocks) == 0 {
			continue
		}
		parts := make([]string, len(v.blocks))
		for i, b := range v.blocks {
			parts[i] = b.View(width)
		}
		rendered = append(rendered, strings.Join(parts, "\n"))
	}
	return strings.Join(rendered, "\n\n")
}

func (m Model) focusable() []MessageBlock {
	var out []MessageBlock
	for _, v := range m.views {
		for _, b := range v.blocks {
			if isCollapsible(b) {
				out = append(out, b)
			}
		}
	}
	return out
}

func (m Model) focused() MessageBlock {
	f := m.focusable()
	if m.blockFocus < 0 || m.blockFocus >= len(f) {
		return nil
	}
	return f[m.blockFocus]
}

// updateBlockFocus focuses the last collapsible block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = len(m.focusable()) - 1
	return m
}

// cycleFocusPrev moves focus to the previous collapsible block, wrapping
// around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.focusable())
	if n == 0 {
		m.blockFocus = -1
		return m
	}
	m.blockFocus = (m.blockFocus - 1 + n) % n
	return m
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.styles.Muted.Render("Generating... (Ctrl+C to stop)")
	}
	return m.styles.Muted.Render("Enter to send, Tab to expand, Ctrl+C to quit")
}

// startTurn runs send in a goroutine and signals completion.
func startTurn(ctx context.Context, send SendFunc, text string, snapCh chan<- uistream.Message, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := send(ctx, text, func(msg uistream.Message) {
			select {
			case snapCh <- msg:
			case <-ctx.Done():
			}
		})
		close(snapCh)
		doneCh <- err
		return nil
	}
}

// listenForSnapshot waits for the next snapshot. When the channel closes it
// reads the turn's error from doneCh and returns TurnDoneMsg.
func listenForSnapshot(ch <-chan uistream.Message, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return TurnDoneMsg{Err: <-doneCh}
		}
		return SnapshotMsg{Message: msg}
	}
}
