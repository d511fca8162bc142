// Package domain defines the core domain models for NoteGuard.
package domain

import (
	"fmt"
	"time"
)

// GrammarError is a grammar issue spanning [Offset, Offset+Length) of the
// analysed text. Offsets count Unicode code points.
type GrammarError struct {
	Message     string   `json:"message" yaml:"message"`
	Offset      int      `json:"offset" yaml:"offset"`
	Length      int      `json:"length" yaml:"length"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// End returns the exclusive end offset of the span.
func (e GrammarError) End() int {
	return e.Offset + e.Length
}

// RepetitionError reports a word used Count times. Positions are hints of
// occurrence starts, in code points.
type RepetitionError struct {
	Word      string `json:"word" yaml:"word"`
	Count     int    `json:"count" yaml:"count"`
	Positions []int  `json:"positions" yaml:"positions"`
}

// Summary is the human-readable description of the repetition.
func (e RepetitionError) Summary() string {
	return fmt.Sprintf("%q repeated %d times", e.Word, e.Count)
}

// SemanticCoherence is the coherence verdict; Score is in [0, 1].
type SemanticCoherence struct {
	Score       float64 `json:"score" yaml:"score"`
	Explanation string  `json:"explanation" yaml:"explanation"`
}

// Percent returns the coherence score on the 0-100 scale of the other scores.
func (s SemanticCoherence) Percent() float64 {
	return s.Score * 100
}

// AnalysisResult holds the scores (0-100) and findings for one text.
type AnalysisResult struct {
	GrammarScore      float64           `json:"grammar_score" yaml:"grammar_score"`
	RepetitionScore   float64           `json:"repetition_score" yaml:"repetition_score"`
	SemanticScore     float64           `json:"semantic_score" yaml:"semantic_score"`
	OverallScore      float64           `json:"overall_score" yaml:"overall_score"`
	GrammarErrors     []GrammarError    `json:"grammar_errors" yaml:"grammar_errors"`
	RepetitionErrors  []RepetitionError `json:"repetition_errors" yaml:"repetition_errors"`
	SemanticCoherence SemanticCoherence `json:"semantic_coherence" yaml:"semantic_coherence"`
	Suggestions       []string          `json:"suggestions" yaml:"suggestions"`
}

// AnalyzeRequest is the payload of POST /analyze and /analyze/demo.
type AnalyzeRequest struct {
	Text           string `json:"text"`
	ReferenceTopic string `json:"reference_topic,omitempty"`
}

// AnalyzeResponse wraps an analysis result. ProcessingTime is in seconds.
type AnalyzeResponse struct {
	Success        bool           `json:"success" yaml:"success"`
	Result         AnalysisResult `json:"result" yaml:"result"`
	ProcessingTime float64        `json:"processing_time" yaml:"processing_time"`
}

// Source types of a stored analysis.
const (
	SourceText = "text"
	SourceFile = "file"
)

// Analysis is a stored analysis from the user's history.
type Analysis struct {
	ID                string            `json:"id" yaml:"id"`
	UserID            string            `json:"user_id" yaml:"user_id"`
	SourceType        string            `json:"source_type" yaml:"source_type"`
	TextExcerpt       string            `json:"text_excerpt" yaml:"text_excerpt"`
	FullText          string            `json:"full_text" yaml:"full_text"`
	ReferenceTopic    string            `json:"reference_topic,omitempty" yaml:"reference_topic,omitempty"`
	OverallScore      float64           `json:"overall_score" yaml:"overall_score"`
	GrammarScore      float64           `json:"grammar_score" yaml:"grammar_score"`
	RepetitionScore   float64           `json:"repetition_score" yaml:"repetition_score"`
	SemanticScore     float64           `json:"semantic_score" yaml:"semantic_score"`
	GrammarErrors     []GrammarError    `json:"grammar_errors" yaml:"grammar_errors"`
	RepetitionErrors  []RepetitionError `json:"repetition_errors" yaml:"repetition_errors"`
	SemanticCoherence SemanticCoherence `json:"semantic_coherence" yaml:"semantic_coherence"`
	Suggestions       []string          `json:"suggestions" yaml:"suggestions"`
	ProcessingTime    float64           `json:"processing_time" yaml:"processing_time"`
	CreatedAt         string            `json:"created_at" yaml:"created_at"`
	UpdatedAt         string            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Result returns the stored findings in the shape used for rendering.
func (a Analysis) Result() AnalysisResult {
	return AnalysisResult{
		GrammarScore:      a.GrammarScore,
		RepetitionScore:   a.RepetitionScore,
		SemanticScore:     a.SemanticScore,
		OverallScore:      a.OverallScore,
		GrammarErrors:     a.GrammarErrors,
		RepetitionErrors:  a.RepetitionErrors,
		SemanticCoherence: a.SemanticCoherence,
		Suggestions:       a.Suggestions,
	}
}

// Excerpt returns the stored excerpt, or the first 100 characters of the
// full text when the backend sent none.
func (a Analysis) Excerpt() string {
	if a.TextExcerpt != "" {
		return a.TextExcerpt
	}
	r := []rune(a.FullText)
	if len(r) <= 100 {
		return a.FullText
	}
	return string(r[:100]) + "..."
}

// timestamp layouts the backend is known to emit (Python isoformat, with and
// without zone).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// CreatedTime parses CreatedAt. The zero time is returned when it is empty
// or unparseable.
func (a Analysis) CreatedTime() time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, a.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// AnalysisPage is one page of GET /analyses.
type AnalysisPage struct {
	Analyses []Analysis `json:"analyses" yaml:"analyses"`
	Total    int        `json:"total" yaml:"total"`
	Limit    int        `json:"limit" yaml:"limit"`
	Offset   int        `json:"offset" yaml:"offset"`
	HasMore  bool       `json:"has_more" yaml:"has_more"`
}

// Pages returns the number of pages of the given size needed for Total.
func (p AnalysisPage) Pages(size int) int {
	if size <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + size - 1) / size
}

// Ordering columns accepted by GET /analyses.
const (
	OrderByCreatedAt       = "created_at"
	OrderByOverallScore    = "overall_score"
	OrderByGrammarScore    = "grammar_score"
	OrderByRepetitionScore = "repetition_score"
	OrderBySemanticScore   = "semantic_score"
)

// List bounds accepted by GET /analyses.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListOptions are the query parameters of GET /analyses.
type ListOptions struct {
	Limit     int
	Offset    int
	OrderBy   string
	OrderDesc bool
}

// DefaultListOptions returns newest-first options with the default limit.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:     DefaultListLimit,
		OrderBy:   OrderByCreatedAt,
		OrderDesc: true,
	}
}

// Rating labels for a 0-100 score.
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
)

// Rate returns the rating label of a 0-100 score.
func Rate(score float64) string {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}
