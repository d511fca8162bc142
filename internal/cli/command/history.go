package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/output"
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/history"
)

// HistoryCommand returns the history subcommand group.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "Browse and manage stored analyses",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored analyses, newest first",
				Flags:   []cli.Flag{pageFlag()},
				Action:  historyList,
			},
			{
				Name:      "get",
				Usage:     "Show one stored analysis",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "html", Usage: "Print the highlighted text as an HTML fragment"},
				},
				Action: historyGet,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a stored analysis",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
				},
				Action: historyDelete,
			},
			{
				Name:      "search",
				Usage:     "Filter the page by excerpt or topic",
				ArgsUsage: "QUERY",
				Flags:     []cli.Flag{pageFlag()},
				Action:    historySearch,
			},
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page number, starting at 1", Value: 1}
}

// historyRow is one line of the history table.
type historyRow struct {
	ID      string  `json:"id" yaml:"id" table:"ID,wide"`
	Date    string  `json:"created_at" yaml:"created_at" table:"DATE"`
	Source  string  `json:"source_type" yaml:"source_type" table:"SOURCE"`
	Topic   string  `json:"reference_topic" yaml:"reference_topic" table:"TOPIC"`
	Score   float64 `json:"overall_score" yaml:"overall_score" table:"SCORE"`
	Rating  string  `json:"rating" yaml:"rating" table:"RATING"`
	Excerpt string  `json:"text_excerpt" yaml:"text_excerpt" table:"EXCERPT"`
}

func toRows(items []domain.Analysis) []historyRow {
	rows := make([]historyRow, 0, len(items))
	for _, a := range items {
		date := a.CreatedAt
		if t := a.CreatedTime(); !t.IsZero() {
			date = t.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, historyRow{
			ID:      a.ID,
			Date:    date,
			Source:  a.SourceType,
			Topic:   a.ReferenceTopic,
			Score:   a.OverallScore,
			Rating:  domain.Rate(a.OverallScore),
			Excerpt: output.Truncate(a.Excerpt(), 60),
		})
	}
	return rows
}

// loadPage restores the session and loads the page given by --page.
func loadPage(c *cli.Context, env *Env) (*history.View, error) {
	if _, err := env.RequireUser(c.Context); err != nil {
		return nil, err
	}
	view := env.History()
	view.SetPage(c.Int("page") - 1)

	sp := env.Spinner("Loading history…")
	err := view.Refresh(c.Context)
	sp.Stop()
	if err != nil {
		return nil, err
	}
	return view, nil
}

func printPage(c *cli.Context, env *Env, view *history.View, items []domain.Analysis) error {
	if env.Structured() {
		return env.Print(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(c.App.Writer, "No analyses found.")
		return nil
	}
	if err := env.Print(toRows(items)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nPage %d of %d, %d analyses in total\n", view.Page()+1, view.Pages(), view.Total())
	return nil
}

func historyList(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	view, err := loadPage(c, env)
	if err != nil {
		return err
	}
	return printPage(c, env, view, view.Search(""))
}

func historySearch(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return domain.ErrMissingArgument.WithDetails("search query")
	}
	view, err := loadPage(c, env)
	if err != nil {
		return err
	}
	return printPage(c, env, view, view.Search(query))
}

func historyGet(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("analysis id")
	}
	if _, err := env.RequireUser(c.Context); err != nil {
		return err
	}

	a, err := env.Analysis.Get(c.Context, id)
	if err != nil {
		return err
	}
	if env.Structured() {
		return env.Print(a)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Analysis %s\n", a.ID)
	if t := a.CreatedTime(); !t.IsZero() {
		fmt.Fprintf(w, "Created: %s\n", t.Local().Format("2006-01-02 15:04"))
	}
	if a.ReferenceTopic != "" {
		fmt.Fprintf(w, "Topic:   %s\n", a.ReferenceTopic)
	}
	fmt.Fprintln(w)
	return renderResult(w, resultView{
		Text:           a.FullText,
		Result:         a.Result(),
		ProcessingTime: a.ProcessingTime,
		HTML:           c.Bool("html"),
	})
}

func historyDelete(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	id := c.Args().First()
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("analysis id")
	}
	if err := domain.ValidateAnalysisID(id); err != nil {
		return err
	}
	if _, err := env.RequireUser(c.Context); err != nil {
		return err
	}

	if !c.Bool("yes") {
		answer, err := env.Prompt(fmt.Sprintf("Delete analysis %s? [y/N]", id), false)
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(c.App.Writer, "Cancelled.")
			return nil
		}
	}

	view := env.History()
	err = view.Delete(c.Context, id)
	switch {
	case err == nil:
		fmt.Fprintf(c.App.Writer, "Deleted analysis %s.\n", id)
		return nil
	case domain.KindOf(err) == domain.KindNotFound:
		fmt.Fprintf(c.App.ErrWriter, "%s. Reloading history…\n", FormatError(err, false))
		view.Wait()
		return printPage(c, env, view, view.Items())
	default:
		return err
	}
}
