package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/uistream"
	bt "github.com/fwojciec/uistream/bubbletea"
	"github.com/fwojciec/uistream/chat"
	"github.com/fwojciec/uistream/config"
	"github.com/spf13/cobra"
)

// debugLogPath receives logs while the TUI owns the terminal.
const debugLogPath = "uistream.log"

const chatLongDesc string = `Start an interactive chat with a UI message stream endpoint.

Assistant messages render as they stream. Tab expands the focused reasoning,
tool or data block and Shift+Tab moves focus. Ctrl+C stops a running turn and
quits when idle.

With --session the conversation is loaded from and saved back to a file.
With --debug logs are written to uistream.log in the working directory.

Examples:
  uistream chat --api http://localhost:3000/api/chat
  uistream chat --session ~/.uistream/sessions/today.json`

const chatShortDesc string = "Interactive terminal chat"

type chatCommander struct {
	api            string
	schemas        string
	metadataSchema string
	session        string
	metricsListen  string
	redisAddr      string
	kafkaBrokers   []string
}

func newChatCmd(rf *rootFlags) *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd, rf)
		},
	}

	cmder.addFlags(cmd)
	return cmd
}

func (c *chatCommander) addFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.FlagAPI, &c.api)
	config.AddStringFlag(cmd, config.FlagSchemas, &c.schemas)
	config.AddStringFlag(cmd, config.FlagMetadataSchema, &c.metadataSchema)
	config.AddStringFlag(cmd, config.FlagSession, &c.session)
	config.AddStringFlag(cmd, config.FlagMetricsListen, &c.metricsListen)
	config.AddStringFlag(cmd, config.FlagRedisAddr, &c.redisAddr)
	config.AddStringSliceFlag(cmd, config.FlagKafkaBrokers, &c.kafkaBrokers)
}

// chatFlagKeys are the registry flags shared by chat and send.
var chatFlagKeys = []string{
	config.FlagAPI,
	config.FlagSchemas,
	config.FlagMetadataSchema,
	config.FlagSession,
	config.FlagMetricsListen,
	config.FlagRedisAddr,
	config.FlagKafkaBrokers,
}

func (c *chatCommander) run(cmd *cobra.Command, rf *rootFlags) error {
	var logs io.Writer = io.Discard
	if rf.debug {
		f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer f.Close()
		logs = f
	}

	a, err := newApp(cmd, rf, logs, chatFlagKeys...)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := loadSession(a.cfg.SessionPath)
	if err != nil {
		return err
	}

	ch := chat.New(a.chatOptions(sess.Messages)...)
	model := bt.New(tuiSend(ch), sess.Messages, uistream.DefaultTheme())
	if err := bt.Run(cmd.Context(), model); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	return saveSession(a.cfg.SessionPath, sess, ch.Store().Messages())
}

// tuiSend adapts ch to the TUI: assistant messages in the store are
// forwarded to publish while the turn runs.
func tuiSend(ch *chat.Chat) bt.SendFunc {
	return func(ctx context.Context, text string, publish func(uistream.Message)) error {
		store := ch.Store()
		unsubscribe := store.Subscribe(func() {
			if last, ok := store.LastMessage(); ok && last.Role == uistream.RoleAssistant && store.Status() != chat.StatusReady {
				publish(last)
			}
		})
		defer unsubscribe()
		return ch.Send(ctx, text)
	}
}
