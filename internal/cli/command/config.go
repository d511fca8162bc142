package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/config"
	"github.com/Nurcan-altg/noteguard-app/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Show the configuration file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	cfg := env.Config.Redacted()
	if env.Structured() {
		return env.Print(cfg)
	}
	// Nested sections read better as YAML than as a two-column table.
	return (&output.YAMLFormatter{}).Format(c.App.Writer, cfg)
}

func configPath(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	state := "not created"
	if config.Exists(env.ConfigPath) {
		state = "exists"
	}
	fmt.Fprintf(c.App.Writer, "%s (%s)\n", env.ConfigPath, state)
	return nil
}

func configInit(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	if config.Exists(env.ConfigPath) && !c.Bool("force") {
		return errors.New("config file already exists, use --force to overwrite")
	}
	if err := config.Save(env.Config, env.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", env.ConfigPath)
	return nil
}
