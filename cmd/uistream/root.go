package main

import (
	"github.com/fwojciec/uistream/config"
	"github.com/spf13/cobra"
)

const rootLongDesc string = `uistream streams UI message chunks from a chat endpoint and assembles
them into assistant messages.

Commands:
  uistream chat      Interactive terminal chat
  uistream send      Send one prompt and print the reply
  uistream replay    Interpret a recorded SSE stream offline`

const rootShortDesc string = "UI message stream client"

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	debug      bool
	jsonLogs   bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "uistream",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&rf.configPath, "config", "c", "", "Path to config.toml")
	config.AddBoolFlag(cmd, config.FlagDebug, &rf.debug)
	config.AddBoolFlag(cmd, config.FlagJSONLogs, &rf.jsonLogs)
	config.AddPersistentStringFlag(cmd, config.FlagLogFile, &rf.logFile)

	cmd.AddCommand(newChatCmd(rf))
	cmd.AddCommand(newSendCmd(rf))
	cmd.AddCommand(newReplayCmd(rf))

	return cmd
}
