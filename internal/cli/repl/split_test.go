package repl

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
		err  error
	}{
		{"plain", "history list --limit 5", []string{"history", "list", "--limit", "5"}, nil},
		{"double quotes", `analyze "Ali okula gitti."`, []string{"analyze", "Ali okula gitti."}, nil},
		{"single quotes keep backslash", `analyze 'a\b'`, []string{"analyze", `a\b`}, nil},
		{"escaped space", `analyze a\ b`, []string{"analyze", "a b"}, nil},
		{"empty quoted arg", `auth login ""`, []string{"auth", "login", ""}, nil},
		{"tabs and runs of spaces", "a \t  b", []string{"a", "b"}, nil},
		{"empty", "   ", nil, nil},
		{"escaped quote inside double quotes", `analyze "say \"hi\""`, []string{"analyze", `say "hi"`}, nil},
		{"unterminated", `analyze "oops`, nil, ErrUnterminatedQuote},
		{"unterminated single", `analyze 'oops`, nil, ErrUnterminatedQuote},
		{"trailing backslash", `analyze \`, nil, ErrUnterminatedQuote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.line)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Split(%q) error = %v, want %v", tt.line, err, tt.err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
