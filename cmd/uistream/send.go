package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/chat"
	"github.com/fwojciec/uistream/interpreter"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/spf13/cobra"
)

const sendLongDesc string = `Send one prompt and print the assistant's reply.

Text streams to stdout as it arrives. With --json the final message is printed
as a single JSON object instead. With --session the prompt continues the saved
conversation and the reply is appended to it. With --record the received
chunks are saved as an SSE stream that "uistream replay" reads.

Examples:
  uistream send "What's the weather in Paris?"
  uistream send --json --api http://localhost:3000/api/chat "hello"
  uistream send --record weather.sse "What's the weather in Paris?"`

const sendShortDesc string = "Send one prompt and print the reply"

// errNoReply is returned when a turn ends without an assistant message.
var errNoReply = errors.New("no assistant reply")

type sendCommander struct {
	chatCommander
	json   bool
	record string
}

func newSendCmd(rf *rootFlags) *cobra.Command {
	cmder := &sendCommander{}

	cmd := &cobra.Command{
		Use:   "send <prompt>",
		Short: sendShortDesc,
		Long:  sendLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, rf, args[0])
		},
	}

	cmder.addFlags(cmd)
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the final message as JSON")
	cmd.Flags().StringVar(&cmder.record, "record", "", "Save the received chunks as an SSE stream to this file")
	return cmd
}

func (c *sendCommander) run(cmd *cobra.Command, rf *rootFlags, prompt string) error {
	a, err := newApp(cmd, rf, cmd.ErrOrStderr(), chatFlagKeys...)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := loadSession(a.cfg.SessionPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := a.chatOptions(sess.Messages)
	var handlers []func(uistream.Chunk)
	if !c.json {
		handlers = append(handlers, streamText(out))
	}
	var rec *chunkRecorder
	if c.record != "" {
		f, err := os.Create(c.record)
		if err != nil {
			return fmt.Errorf("create recording: %w", err)
		}
		defer f.Close()
		rec = newChunkRecorder(f)
		handlers = append(handlers, rec.Record)
	}
	if len(handlers) > 0 {
		opts = append(opts, chat.WithInterpreterOptions(interpreter.WithChunkHandler(chunkHandlers(handlers...))))
	}
	var finishReason string
	opts = append(opts, chat.WithOnFinish(func(_ uistream.Message, reason string) {
		finishReason = reason
	}))

	ch := chat.New(opts...)
	if err := ch.Send(cmd.Context(), prompt); err != nil {
		return err
	}
	if rec != nil {
		if err := rec.Finish(); err != nil {
			return err
		}
		a.logger.Debug("recording saved", "file", c.record)
	}

	last, ok := ch.Store().LastMessage()
	if !ok || last.Role != uistream.RoleAssistant {
		return errNoReply
	}
	a.logger.Debug("reply received", "message", last.ID, "finish_reason", finishReason)

	if c.json {
		data, err := uijson.MarshalMessage(last)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintln(out)
	}

	return saveSession(a.cfg.SessionPath, sess, ch.Store().Messages())
}

// streamText writes text deltas to w as they are interpreted.
func streamText(w io.Writer) func(uistream.Chunk) {
	return func(c uistream.Chunk) {
		if d, ok := c.(uistream.TextDelta); ok {
			fmt.Fprint(w, d.Delta)
		}
	}
}
