package repl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"))

	h.Add("analyze hello")
	h.Add("analyze hello")
	h.Add("")
	h.Add("auth login --email a@b.c --password secret")
	h.Add("history list")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Get(0) != "history list" || h.Get(1) != "analyze hello" {
		t.Errorf("entries = %q, %q", h.Get(0), h.Get(1))
	}
	if h.Get(2) != "" || h.Get(-1) != "" {
		t.Error("out of range Get should return empty")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"))
	h.maxSize = 3
	for _, line := range []string{"a", "b", "c", "d"} {
		h.Add(line)
	}
	if h.Len() != 3 || h.Get(2) != "b" {
		t.Errorf("oldest entry should be dropped, Get(2) = %q", h.Get(2))
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")
	h := NewHistory(path)
	h.Add("system health")
	h.Add("history search okul")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != "history search okul" {
		t.Errorf("loaded %d entries, latest %q", loaded.Len(), loaded.Get(0))
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestHistory_DefaultPath(t *testing.T) {
	h := NewHistory("")
	if !strings.HasSuffix(h.file, filepath.Join(".noteguard", "history")) {
		t.Errorf("file = %q", h.file)
	}
}
