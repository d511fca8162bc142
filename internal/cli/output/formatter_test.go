package output

import (
	"bytes"
	"strings"
	"testing"
)

type analysisRow struct {
	ID      string  `json:"id" yaml:"id" table:"ID,wide"`
	Excerpt string  `json:"excerpt" yaml:"excerpt"`
	Score   float64 `json:"overall_score" yaml:"overall_score" table:"SCORE"`
	secret  string
	Skip    string `yaml:"-" table:"-"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json format should give JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml format should give YAMLFormatter")
	}
	tf, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Error("table format should give a wide TableFormatter")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	rows := []analysisRow{{ID: "a", Excerpt: "<b>x</b>", Score: 0.5}}
	if err := (&JSONFormatter{}).Format(&buf, rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"overall_score": 0.5`) {
		t.Errorf("missing score in %s", out)
	}
	if !strings.Contains(out, "<b>x</b>") {
		t.Errorf("HTML should not be escaped: %s", out)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := analysisRow{ID: "a1", Excerpt: "Ali okula gitti.", Score: 0.85}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"id: a1", "excerpt: Ali okula gitti.", "overall_score: 0.85"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	rows := []analysisRow{
		{ID: "a1", Excerpt: "first", Score: 0.9},
		{ID: "a2", Excerpt: "", Score: 0.25},
	}

	tests := []struct {
		name    string
		wide    bool
		want    []string
		notWant []string
	}{
		{"narrow", false, []string{"EXCERPT", "SCORE", "first", "0.90", "-"}, []string{"ID", "a1", "SKIP"}},
		{"wide", true, []string{"ID", "a1", "a2", "EXCERPT"}, []string{"SKIP"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TableFormatter{Wide: tt.wide}).Format(&buf, rows); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTableFormatter_StructAndMap(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, &analysisRow{Excerpt: "e", Score: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "FIELD") || !strings.Contains(buf.String(), "SCORE") {
		t.Errorf("struct table = %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"b": 2, "a": 1}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "a") || !strings.HasPrefix(lines[2], "b") {
		t.Errorf("map table should be sorted by key: %q", lines)
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("fallback = %q", buf.String())
	}
}

func TestTable_RenderNoHeaders(t *testing.T) {
	tbl := &Table{}
	tbl.SetHeaders("A", "B")
	tbl.AddRow("1", "2")

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "A") {
		t.Errorf("headers rendered: %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"line one\nline two", 50, "line one line two"},
		{"Çok uzun bir cümle", 10, "Çok uzu..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
