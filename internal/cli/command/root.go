package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the application. A non-nil shared Env is reused and not
// closed when the run ends; the REPL runs every line this way.
func newApp(shared *Env) *cli.App {
	app := &cli.App{
		Name:                 "noteguard-cli",
		Usage:                "NoteGuard text analysis from the command line",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			AuthCommand(),
			AnalyzeCommand(),
			HistoryCommand(),
			SystemCommand(),
			ConfigCommand(),
			ReplCommand(),
		},
		Metadata: map[string]any{},
		Before: func(c *cli.Context) error {
			if _, ok := c.App.Metadata[envKey].(*Env); ok {
				return nil
			}
			env, err := newEnv(c)
			if err != nil {
				return err
			}
			c.App.Metadata[envKey] = env
			c.App.Metadata[ownedKey] = true
			return nil
		},
		After: func(c *cli.Context) error {
			owned, _ := c.App.Metadata[ownedKey].(bool)
			if env, ok := c.App.Metadata[envKey].(*Env); ok && owned {
				return env.Close()
			}
			return nil
		},
	}
	if shared != nil {
		app.Metadata[envKey] = shared
		app.Reader = shared.in
		app.Writer = shared.out
		app.ErrWriter = shared.errOut
		app.ExitErrHandler = func(*cli.Context, error) {}
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "NoteGuard backend address (e.g. http://localhost:8009)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log diagnostics to stderr",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.noteguard/cli.yaml)",
			EnvVars: []string{"NOTEGUARD_CONFIG"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
		},
		&cli.StringFlag{
			Name:  "token-store",
			Usage: "Token storage backend: file, badger, memory",
		},
	}
}

// GlobalFlags holds the global flags given on the command line.
type GlobalFlags struct {
	Server     string
	Output     string
	Wide       bool
	Verbose    bool
	Config     string
	TokenStore string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:     c.String("server"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
		Verbose:    c.Bool("verbose"),
		Config:     c.String("config"),
		TokenStore: c.String("token-store"),
	}
}

// overrides returns the config keys set explicitly by flags.
func overrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("server") {
		m["server"] = c.String("server")
	}
	if c.IsSet("output") {
		m["output"] = c.String("output")
	}
	if c.IsSet("timeout") {
		m["timeout"] = c.Duration("timeout").String()
	}
	if c.IsSet("token-store") {
		m["token_store.backend"] = c.String("token-store")
	}
	if c.Bool("verbose") {
		m["log.level"] = "debug"
	}
	return m
}

// FormatError turns err into the line shown to the user. Server and
// network details are withheld unless verbose is set.
func FormatError(err error, verbose bool) string {
	msg := describe(err)
	if verbose && msg != err.Error() {
		msg += " (" + err.Error() + ")"
	}
	return msg
}

func describe(err error) string {
	kind := domain.KindOf(err)
	if kind == domain.KindNetwork || kind == domain.KindServer {
		return domain.UserMessage(err)
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return de.Message + ": " + de.Details
		}
		return de.Message
	}

	var ae *domain.APIError
	if errors.As(err, &ae) && kind == domain.KindValidation && ae.Detail != "" {
		return ae.Detail
	}
	if kind == domain.KindUnknown {
		return err.Error()
	}
	return domain.UserMessage(err)
}

// PrintError prints an error line to w.
func PrintError(w io.Writer, err error, verbose bool) {
	fmt.Fprintf(w, "Error: %s\n", FormatError(err, verbose))
}
