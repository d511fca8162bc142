package command

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/repl"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: replRun,
	}
}

func replRun(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	// Restoration runs in the background; the loop shows a notice until
	// it settles.
	go func() {
		if err := env.Restore(c.Context); err != nil {
			PrintError(env.errOut, err, env.Verbose)
		}
	}()

	opts := []repl.Option{
		repl.WithIO(env.in, env.out),
		repl.WithSession(env.Session),
		repl.WithLogger(env.Log.With("component", "repl")),
		repl.WithHistory(repl.NewHistory(filepath.Join(filepath.Dir(env.ConfigPath), "history"))),
	}
	if w, ok := env.Store.(tokenstore.Watcher); ok {
		opts = append(opts, repl.WithWatcher(w))
	}

	exec := func(ctx context.Context, args []string) error {
		app := newApp(env)
		if err := app.RunContext(ctx, append([]string{app.Name}, args...)); err != nil {
			return errors.New(FormatError(err, env.Verbose))
		}
		return nil
	}

	return repl.New(exec, opts...).Run(c.Context)
}
