package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitCode is the status used when a second signal forces an exit.
const ExitCode = 130

type config struct {
	signals []os.Signal
	force   func()
}

// Option configures WithSignals.
type Option func(*config)

// WithSignalSet replaces the default SIGINT and SIGTERM.
func WithSignalSet(sigs ...os.Signal) Option {
	return func(c *config) { c.signals = sigs }
}

// WithForce replaces what happens on the second signal. The default exits
// with ExitCode.
func WithForce(fn func()) Option {
	return func(c *config) { c.force = fn }
}

// WithSignals returns a context cancelled on the first signal. stop
// releases the signal handler and cancels the context; it is idempotent.
func WithSignals(parent context.Context, opts ...Option) (ctx context.Context, stop context.CancelFunc) {
	cfg := config{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		force:   func() { os.Exit(ExitCode) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, cfg.signals...)

	stopped := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-stopped:
			return
		}
		select {
		case <-sigCh:
			cfg.force()
		case <-stopped:
		}
	}()
	return ctx, stop
}
