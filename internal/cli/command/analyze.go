package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/output"
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
)

// AnalyzeCommand returns the analyze command.
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyse a text for grammar, repetition and coherence",
		ArgsUsage: "[TEXT]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdin", Usage: "Read the text from standard input"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Upload a .txt or .docx file"},
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Reference topic for the coherence check"},
			&cli.BoolFlag{Name: "demo", Usage: "Use the demo endpoint (no login, nothing stored)"},
			&cli.BoolFlag{Name: "html", Usage: "Print the highlighted text as an HTML fragment"},
		},
		Action: analyzeRun,
	}
}

func analyzeRun(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	topic := c.String("topic")
	demo := c.Bool("demo")

	var (
		text string
		resp *domain.AnalyzeResponse
	)

	if path := c.String("file"); path != "" {
		if demo {
			return domain.ErrMissingArgument.WithDetails("--demo accepts text only, not --file")
		}
		if err := domain.ValidateUploadName(path); err != nil {
			return err
		}
		if _, err := env.RequireUser(c.Context); err != nil {
			return loginHint(err)
		}
		if strings.EqualFold(filepath.Ext(path), ".txt") {
			if data, err := os.ReadFile(path); err == nil {
				text = string(data)
			}
		}
		if resp, err = uploadFile(c, env, path, topic); err != nil {
			return err
		}
	} else {
		if text, err = readText(c, env); err != nil {
			return err
		}
		req := domain.AnalyzeRequest{Text: text, ReferenceTopic: topic}
		if err := domain.ValidateAnalyzeRequest(req); err != nil {
			return err
		}

		if !demo {
			if _, err := env.RequireUser(c.Context); err != nil {
				return loginHint(err)
			}
		}

		sp := env.Spinner("Analysing…")
		if demo {
			resp, err = env.Analysis.AnalyzeDemo(c.Context, req)
		} else {
			resp, err = env.Analysis.Analyze(c.Context, req)
		}
		sp.Stop()
		if err != nil {
			return err
		}
	}

	if env.Structured() {
		return env.Print(resp)
	}
	return renderResult(c.App.Writer, resultView{
		Text:           text,
		Result:         resp.Result,
		ProcessingTime: resp.ProcessingTime,
		HTML:           c.Bool("html"),
	})
}

func readText(c *cli.Context, env *Env) (string, error) {
	if c.Bool("stdin") {
		data, err := io.ReadAll(env.lines)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(c.Args().Slice(), " "), nil
}

// uploadFile sends path, drawing a progress bar when stderr is a terminal.
func uploadFile(c *cli.Context, env *Env, path, topic string) (*domain.AnalyzeResponse, error) {
	if !env.Interactive() {
		return env.Analysis.AnalyzeFile(c.Context, path, topic)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	bar := output.NewProgressBar(env.errOut, "Uploading "+filepath.Base(path), size)
	resp, err := env.Analysis.AnalyzeUpload(c.Context, filepath.Base(path), bar.Reader(f), topic)
	bar.Finish()
	return resp, err
}

func loginHint(err error) error {
	if domain.IsDomainError(err, domain.ErrNotAuthenticated.Code) {
		return domain.ErrNotAuthenticated.WithDetails("run 'noteguard-cli auth login' or use --demo")
	}
	return err
}
