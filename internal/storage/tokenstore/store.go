package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// TokenKey is the fixed storage key of the bearer token.
const TokenKey = "auth.token"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("tokenstore: store closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend.
	ErrUnknownBackend = errors.New("tokenstore: unknown backend")
)

// Store persists a single bearer token. Load returns "" and no error when
// nothing is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Watcher is implemented by stores that can report changes made by other
// processes.
type Watcher interface {
	// Watch sends on the returned channel after each external change until
	// ctx is done; the channel is then closed.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend    string `koanf:"backend" yaml:"backend"`
	Path       string `koanf:"path" yaml:"path"`
	Passphrase string `koanf:"passphrase" yaml:"passphrase,omitempty"`
}

// DefaultDir returns ~/.noteguard.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".noteguard"
	}
	return filepath.Join(home, ".noteguard")
}

// DefaultPath returns the default location for backend.
func DefaultPath(backend string) string {
	switch backend {
	case BackendBadger:
		return filepath.Join(DefaultDir(), "state")
	default:
		return filepath.Join(DefaultDir(), "token")
	}
}

// Open returns the store described by cfg.
func Open(cfg Config, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Default()
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendFile
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath(backend)
	}

	switch backend {
	case BackendFile:
		var opts []FileOption
		if cfg.Passphrase != "" {
			opts = append(opts, WithPassphrase([]byte(cfg.Passphrase)))
		}
		return NewFileStore(path, opts...), nil
	case BackendBadger:
		return OpenBadger(path, log)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
