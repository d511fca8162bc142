// Package main provides the entry point for noteguard-cli.
package main

import (
	"context"
	"os"
	"slices"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/command"
	"github.com/Nurcan-altg/noteguard-app/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())

	app := command.App()
	err := app.RunContext(ctx, os.Args)
	stop()

	if err != nil {
		verbose := slices.Contains(os.Args, "--verbose") || slices.Contains(os.Args, "-V")
		command.PrintError(os.Stderr, err, verbose)
		os.Exit(1)
	}
}
