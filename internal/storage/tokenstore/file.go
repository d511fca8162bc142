package tokenstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"

	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// ErrPassphraseRequired is returned when a sealed token is found but the
// store has no passphrase.
var ErrPassphraseRequired = errors.New("tokenstore: token file is sealed, a passphrase is required")

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStore keeps the token in a single file.
type FileStore struct {
	path   string
	sealer *sealer
	log    logger.Logger

	mu     sync.Mutex
	closed bool
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithPassphrase seals the token at rest.
func WithPassphrase(passphrase []byte) FileOption {
	return func(s *FileStore) {
		if len(passphrase) > 0 {
			s.sealer = &sealer{passphrase: passphrase}
		}
	}
}

// WithFileLogger sets the logger used by Watch.
func WithFileLogger(l logger.Logger) FileOption {
	return func(s *FileStore) { s.log = l }
}

// NewFileStore returns a store backed by path. Nothing touches the disk
// until the first Save.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the token file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A sealed file is opened with the passphrase; a
// plain file is accepted either way.
func (s *FileStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: read %s: %w", s.path, err)
	}

	if isSealed(data) {
		if s.sealer == nil {
			return "", ErrPassphraseRequired
		}
		data, err = s.sealer.open(data)
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements Store. The token is written to a temporary file in the
// same directory, synced, and renamed over the old file.
func (s *FileStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	data := []byte(token)
	if s.sealer != nil {
		sealed, err := s.sealer.seal(data)
		if err != nil {
			return err
		}
		data = sealed
	}
	return writeAtomic(s.path, data)
}

// Clear implements Store.
func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: remove %s: %w", s.path, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Watch implements Watcher. The parent directory is watched rather than the
// file, since Save replaces the file by rename.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("tokenstore: create %s: %w", dir, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tokenstore: new watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("tokenstore: watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	name := filepath.Base(s.path)
	go func() {
		defer close(changes)
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				s.log.Debug("token file changed", "file", ev.Name, "op", ev.Op.String())
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("token watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes, nil
}

// writeAtomic replaces path so readers see either the old token or the new
// one. The file is left owner-only even if a wider mode was set by hand.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("tokenstore: create %s: %w", dir, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("tokenstore: write %s: %w", path, err)
	}
	if err := os.Chmod(path, fileMode); err != nil {
		return fmt.Errorf("tokenstore: chmod %s: %w", path, err)
	}
	return nil
}
