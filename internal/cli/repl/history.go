package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
)

// secretFlags mark lines that are never written to history.
var secretFlags = []string{"--password", "--passphrase", "--token", "--new-password"}

// History keeps entered lines, persisted to ~/.noteguard/history.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a History backed by file; "" selects the default.
func NewHistory(file string) *History {
	if file == "" {
		file = filepath.Join(tokenstore.DefaultDir(), "history")
	}
	return &History{
		maxSize: 1000,
		file:    file,
	}
}

// Add records a line unless it carries a secret or repeats the last entry.
func (h *History) Add(line string) {
	if line == "" || sensitive(line) {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

func sensitive(line string) bool {
	for _, f := range secretFlags {
		if strings.Contains(line, f) {
			return true
		}
	}
	return false
}

// Get returns the entry at index, 0 being the most recent.
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Load reads the history file. A missing file is not an error.
func (h *History) Load() error {
	f, err := os.Open(h.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save writes the history file with owner-only permissions.
func (h *History) Save() error {
	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return err
	}

	var b strings.Builder
	for _, entry := range h.entries {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return os.WriteFile(h.file, []byte(b.String()), 0600)
}
