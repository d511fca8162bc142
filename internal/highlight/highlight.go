package highlight

import (
	"sort"
	"strings"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
)

// Kind tags a segment.
type Kind int

const (
	KindPlain Kind = iota
	KindGrammar
	KindRepetition
)

// String returns the kind name, also used as the HTML class suffix.
func (k Kind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindRepetition:
		return "repetition"
	default:
		return "plain"
	}
}

// Range is a candidate highlight [Start, End) in code points.
type Range struct {
	Start   int
	End     int
	Kind    Kind
	Tooltip string
}

// Segment is one piece of the rendering. Plain segments have no tooltip.
type Segment struct {
	Text    string
	Start   int
	End     int
	Kind    Kind
	Tooltip string
}

// Highlighted reports whether the segment is annotated.
func (s Segment) Highlighted() bool {
	return s.Kind != KindPlain
}

// Ranges resolves the findings to candidate ranges sorted by start.
//
// Grammar spans are clamped to the text; empty or out-of-range spans are
// dropped. A repetition resolves to the first occurrence of its word at or
// after its first hinted position. When there is none, or no hint, the
// repetition yields no range.
func Ranges(text string, grammar []domain.GrammarError, repetitions []domain.RepetitionError) []Range {
	runes := []rune(text)
	n := len(runes)
	ranges := make([]Range, 0, len(grammar)+len(repetitions))

	for _, g := range grammar {
		if g.Offset < 0 || g.Offset >= n || g.Length <= 0 {
			continue
		}
		end := n
		if g.Length < n-g.Offset {
			end = g.Offset + g.Length
		}
		ranges = append(ranges, Range{Start: g.Offset, End: end, Kind: KindGrammar, Tooltip: g.Message})
	}

	for _, r := range repetitions {
		if r.Word == "" || len(r.Positions) == 0 {
			continue
		}
		word := []rune(r.Word)
		start := indexFrom(runes, word, r.Positions[0])
		if start < 0 {
			continue
		}
		ranges = append(ranges, Range{Start: start, End: start + len(word), Kind: KindRepetition, Tooltip: r.Summary()})
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
	return ranges
}

// indexFrom returns the first index >= from at which word occurs in text,
// or -1.
func indexFrom(text, word []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(word) <= len(text); i++ {
		match := true
		for j := range word {
			if text[i+j] != word[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// Build returns the disjoint segments covering text.
func Build(text string, grammar []domain.GrammarError, repetitions []domain.RepetitionError) []Segment {
	return Segments(text, Ranges(text, grammar, repetitions))
}

// Segments walks sorted ranges left to right and fills the gaps with plain
// segments. Overlapping ranges are clipped at the cursor; ranges that fall
// outside the text are skipped.
func Segments(text string, ranges []Range) []Segment {
	runes := []rune(text)
	segs := make([]Segment, 0, 2*len(ranges)+1)
	cursor := 0

	plain := func(end int) {
		if end > cursor {
			segs = append(segs, Segment{Text: string(runes[cursor:end]), Start: cursor, End: end})
		}
	}

	for _, r := range ranges {
		if r.End > len(runes) {
			r.End = len(runes)
		}
		if r.End <= cursor {
			continue
		}
		start := r.Start
		if start < cursor {
			start = cursor
		}
		if start >= r.End {
			continue
		}
		plain(start)
		segs = append(segs, Segment{
			Text:    string(runes[start:r.End]),
			Start:   start,
			End:     r.End,
			Kind:    r.Kind,
			Tooltip: r.Tooltip,
		})
		cursor = r.End
	}
	plain(len(runes))
	return segs
}

// Join concatenates the segment texts.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
