package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// BadgerStore keeps the token in an embedded Badger database.
type BadgerStore struct {
	mu sync.Mutex
	db *badger.DB
}

// OpenBadger opens (or creates) the database at dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string, log logger.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLogger(&badgerLogger{log: log.With("component", "badger")}).
		WithNumVersionsToKeep(1)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open badger %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) handle() (*badger.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, ErrClosed
	}
	return b.db, nil
}

// Load implements Store.
func (b *BadgerStore) Load(context.Context) (string, error) {
	db, err := b.handle()
	if err != nil {
		return "", err
	}

	var token string
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(TokenKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: load: %w", err)
	}
	return token, nil
}

// Save implements Store.
func (b *BadgerStore) Save(_ context.Context, token string) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	if err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(TokenKey), []byte(token))
	}); err != nil {
		return fmt.Errorf("tokenstore: save: %w", err)
	}
	return nil
}

// Clear implements Store.
func (b *BadgerStore) Clear(context.Context) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	if err := db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(TokenKey))
	}); err != nil {
		return fmt.Errorf("tokenstore: clear: %w", err)
	}
	return nil
}

// Close implements Store.
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// badgerLogger adapts logger.Logger to Badger's Logger interface. Badger is
// chatty at info level, so its info output is demoted to debug.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
