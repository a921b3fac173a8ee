package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/trk/internal/cli"
	"github.com/vburojevic/trk/internal/config"
)

const quickStart = `trk - analytics session recorder

Quick start:
  trk start                             Start a session
  trk track ButtonClicked screen=Main   Track an event
  trk events                            List tracked events
  trk end                               End the session
  trk shell                             Interactive mode (screen timing)

For help:
  trk --help                            All commands and flags
  trk schema --format ndjson            NDJSON output schemas
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults, CLI flags still win
	ctx := kong.Parse(&c,
		kong.Name("trk"),
		kong.Description("trk: record analytics sessions, events and screen time to a local store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.KongVars(cfg),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if cerr := globals.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}
