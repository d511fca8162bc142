package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Backend and client information",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check backend health",
				Action: systemHealth,
			},
			{
				Name:   "version",
				Usage:  "Show client build information",
				Action: systemVersion,
			},
			{
				Name:   "metrics",
				Usage:  "Show client request and session metrics",
				Action: systemMetrics,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	h, err := env.Analysis.Health(c.Context)
	if err != nil {
		return err
	}

	if env.Structured() {
		return env.Print(h)
	}
	if h.Status == "healthy" {
		fmt.Fprintf(c.App.Writer, "✓ %s is healthy\n", serviceName(h.Service))
	} else {
		fmt.Fprintf(c.App.Writer, "✗ %s is unhealthy: %s\n", serviceName(h.Service), h.Status)
	}
	fmt.Fprintf(c.App.Writer, "  Target: %s\n", env.Client.BaseURL())
	return nil
}

func serviceName(s string) string {
	if s == "" {
		return "Backend"
	}
	return s
}

func systemVersion(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	return env.Print(buildinfo.Get())
}

func systemMetrics(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	samples, err := env.Metrics.Snapshot()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	return env.Print(samples)
}
