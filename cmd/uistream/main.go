// Command uistream talks to chat endpoints that stream UI message chunks.
//
// Usage:
//
//	uistream chat [flags]            Interactive terminal chat
//	uistream send [flags] <prompt>   Send one prompt and print the reply
//	uistream replay [flags] <file>   Interpret a recorded SSE stream offline
//
// Settings come from flags, UISTREAM_* environment variables and an
// optional config.toml, in that order of precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "uistream: %v\n", err)
		os.Exit(1)
	}
}
