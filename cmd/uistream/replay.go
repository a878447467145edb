package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/config"
	"github.com/fwojciec/uistream/httpstream"
	"github.com/fwojciec/uistream/interpreter"
	uijson "github.com/fwojciec/uistream/json"
	"github.com/fwojciec/uistream/markdown"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const replayLongDesc string = `Interpret a recorded SSE stream without a server.

The file holds the raw response body of a chat endpoint. Its chunks are
interpreted exactly as a live stream would be and the final assistant message
is printed as JSON. With --text the message text is rendered as markdown
instead. The message is also written to any configured Redis or Kafka sink.
Recordings made with "uistream send --record" replay the same way.

Examples:
  uistream replay testdata/weather.sse
  uistream replay --text --schemas 'schemas/*.json' recording.sse`

const replayShortDesc string = "Interpret a recorded SSE stream offline"

type replayCommander struct {
	schemas        string
	metadataSchema string
	redisAddr      string
	kafkaBrokers   []string
	text           bool
	width          int
}

func newReplayCmd(rf *rootFlags) *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, rf, args[0])
		},
	}

	config.AddStringFlag(cmd, config.FlagSchemas, &cmder.schemas)
	config.AddStringFlag(cmd, config.FlagMetadataSchema, &cmder.metadataSchema)
	config.AddStringFlag(cmd, config.FlagRedisAddr, &cmder.redisAddr)
	config.AddStringSliceFlag(cmd, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	cmd.Flags().BoolVar(&cmder.text, "text", false, "Render the message text as markdown instead of JSON")
	cmd.Flags().IntVar(&cmder.width, "width", markdown.DefaultWidth, "Wrap width for --text")
	return cmd
}

func (c *replayCommander) run(cmd *cobra.Command, rf *rootFlags, path string) error {
	a, err := newApp(cmd, rf, cmd.ErrOrStderr(),
		config.FlagSchemas,
		config.FlagMetadataSchema,
		config.FlagRedisAddr,
		config.FlagKafkaBrokers,
	)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	ctx := cmd.Context()
	stream := httpstream.Read(ctx, f, nil)
	defer stream.Close()

	var snapshots int
	state := interpreter.NewState(nil, uuid.NewString())
	state, err = interpreter.New(a.interpreterOptions()...).Interpret(ctx, stream, state, func(uistream.Message) {
		snapshots++
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}

	final := state.Snapshot()
	a.logger.Debug("replay finished",
		"file", path,
		"message", final.ID,
		"parts", len(final.Parts),
		"snapshots", snapshots,
		"finish_reason", state.FinishReason,
	)
	a.writeSinks(ctx, final)

	out := cmd.OutOrStdout()
	if c.text {
		fmt.Fprintln(out, markdown.Render(final.Text(), c.width, uistream.DefaultTheme()))
		return nil
	}
	data, err := uijson.MarshalMessage(final)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
