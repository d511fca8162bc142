package output

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressBar_Reader(t *testing.T) {
	var buf bytes.Buffer
	payload := strings.Repeat("a", 2048)
	bar := NewProgressBar(&buf, "Uploading", int64(len(payload)))

	n, err := io.Copy(io.Discard, bar.Reader(strings.NewReader(payload)))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2048 || bar.Current() != 2048 {
		t.Errorf("copied %d, bar at %d", n, bar.Current())
	}
	bar.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") || !strings.Contains(out, "2.0 KB/2.0 KB") {
		t.Errorf("output = %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "Uploading", 0)
	bar.Add(10)
	if !strings.Contains(buf.String(), "Uploading 10 B") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
