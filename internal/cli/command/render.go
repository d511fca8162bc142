package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/highlight"
)

var ratingColors = map[string]lipgloss.Color{
	domain.RatingExcellent:        lipgloss.Color("#43A047"),
	domain.RatingGood:             lipgloss.Color("#FB8C00"),
	domain.RatingNeedsImprovement: lipgloss.Color("#E53935"),
}

// resultView selects what renderResult prints.
type resultView struct {
	Text           string
	Result         domain.AnalysisResult
	ProcessingTime float64
	HTML           bool
}

// renderResult prints score cards, the highlighted text and the findings.
func renderResult(w io.Writer, v resultView) error {
	r := lipgloss.NewRenderer(w)
	res := v.Result

	cards := []string{
		scoreCard(r, "Overall", res.OverallScore),
		scoreCard(r, "Grammar", res.GrammarScore),
		scoreCard(r, "Repetition", res.RepetitionScore),
		scoreCard(r, "Semantic", res.SemanticScore),
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	if v.ProcessingTime > 0 {
		fmt.Fprintf(w, "Processed in %.2fs\n", v.ProcessingTime)
	}

	heading := r.NewStyle().Bold(true)

	if v.Text != "" {
		segs := highlight.Build(v.Text, res.GrammarErrors, res.RepetitionErrors)
		fmt.Fprintf(w, "\n%s\n", heading.Render("Text"))
		if v.HTML {
			if err := highlight.WriteHTML(w, segs); err != nil {
				return err
			}
			fmt.Fprintln(w)
		} else {
			ansi := highlight.NewANSIRenderer(w)
			ansi.Footnotes = !isTerminal(w)
			fmt.Fprintln(w, ansi.Render(segs))
		}
	}

	if len(res.GrammarErrors) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Render(fmt.Sprintf("Grammar issues (%d)", len(res.GrammarErrors))))
		runes := []rune(v.Text)
		for i, g := range res.GrammarErrors {
			fmt.Fprintf(w, "  %d. %s", i+1, g.Message)
			if span := spanText(runes, g); span != "" {
				fmt.Fprintf(w, " %q", span)
			}
			fmt.Fprintln(w)
			if len(g.Suggestions) > 0 {
				fmt.Fprintf(w, "     suggestions: %s\n", strings.Join(g.Suggestions, ", "))
			}
		}
	}

	if len(res.RepetitionErrors) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Render(fmt.Sprintf("Repetitions (%d)", len(res.RepetitionErrors))))
		for _, rep := range res.RepetitionErrors {
			fmt.Fprintf(w, "  - %s\n", rep.Summary())
		}
	}

	sc := res.SemanticCoherence
	fmt.Fprintf(w, "\n%s %.0f%%\n", heading.Render("Semantic coherence:"), sc.Percent())
	if sc.Explanation != "" {
		fmt.Fprintf(w, "  %s\n", sc.Explanation)
	}

	if len(res.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Render("Suggestions"))
		for _, s := range res.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

func scoreCard(r *lipgloss.Renderer, title string, score float64) string {
	rating := domain.Rate(score)
	body := fmt.Sprintf("%s\n%5.1f / 100\n%s",
		r.NewStyle().Bold(true).Render(title),
		score,
		r.NewStyle().Foreground(ratingColors[rating]).Render(rating),
	)
	return r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(20).
		Render(body)
}

// spanText returns the text a grammar issue covers, or "" when the span is
// outside the text.
func spanText(text []rune, g domain.GrammarError) string {
	if g.Offset < 0 || g.Length <= 0 || g.Offset >= len(text) {
		return ""
	}
	end := g.End()
	if end > len(text) {
		end = len(text)
	}
	return string(text[g.Offset:end])
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
