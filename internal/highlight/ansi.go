package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	grammarColor    = lipgloss.Color("#e53935")
	repetitionColor = lipgloss.Color("#FFC107")
)

// ANSIRenderer renders segments for a terminal.
type ANSIRenderer struct {
	Grammar    lipgloss.Style
	Repetition lipgloss.Style

	// Footnotes appends a [n] marker to each highlight and lists the
	// tooltips below the text.
	Footnotes bool
}

// NewANSIRenderer returns a renderer whose color support follows w.
func NewANSIRenderer(w io.Writer) *ANSIRenderer {
	r := lipgloss.NewRenderer(w)
	return &ANSIRenderer{
		Grammar: r.NewStyle().
			Foreground(grammarColor).
			Underline(true).
			TabWidth(lipgloss.NoTabConversion),
		Repetition: r.NewStyle().
			Foreground(repetitionColor).
			Bold(true).
			TabWidth(lipgloss.NoTabConversion),
	}
}

// Render returns the styled text.
func (r *ANSIRenderer) Render(segs []Segment) string {
	var b strings.Builder
	var notes []string

	for _, s := range segs {
		switch s.Kind {
		case KindGrammar:
			b.WriteString(styleLines(r.Grammar, s.Text))
		case KindRepetition:
			b.WriteString(styleLines(r.Repetition, s.Text))
		default:
			b.WriteString(s.Text)
			continue
		}
		if r.Footnotes {
			notes = append(notes, s.Tooltip)
			fmt.Fprintf(&b, "[%d]", len(notes))
		}
	}

	if len(notes) > 0 {
		b.WriteString("\n\n")
		for i, n := range notes {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, n)
		}
	}
	return b.String()
}

// styleLines styles each line on its own; lipgloss pads multi-line blocks
// to a common width, which would alter the text.
func styleLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
