// cmd/monetrax/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	app "monetrax-ledger/internal"
	"monetrax-ledger/internal/cli"
)

func main() {
	// Keep the terminal quiet unless asked otherwise
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "warn")
	}
	if os.Getenv("LOG_FORMAT") == "" {
		os.Setenv("LOG_FORMAT", "console")
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	flag.Parse()

	ctx := context.Background()
	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	cli.Register(commander, &cli.Env{
		Service:  application.LedgerService,
		Currency: application.Config.Currency,
		Out:      os.Stdout,
		Err:      os.Stderr,
	})

	status := commander.Execute(ctx)
	if err := application.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown failed: %v\n", err)
	}
	os.Exit(int(status))
}
