package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Nurcan-altg/noteguard-app/internal/session"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// Session is the part of the session manager the loop depends on.
type Session interface {
	Snapshot() session.Snapshot
	Wait(ctx context.Context) error
	Sync(ctx context.Context) (bool, error)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	sess      Session
	watcher   tokenstore.Watcher
	completer *Completer
	history   *History
	log       logger.Logger
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithSession shows the signed-in user in the prompt.
func WithSession(s Session) Option {
	return func(r *REPL) { r.sess = s }
}

// WithWatcher resynchronises the session whenever the token storage
// changes underneath the loop.
func WithWatcher(w tokenstore.Watcher) Option {
	return func(r *REPL) { r.watcher = w }
}

// WithHistory replaces the default history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithCompleter replaces the default command set.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) { r.completer = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *REPL) { r.log = l }
}

// New creates a REPL that hands each line to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the loop and returns on exit, quit, EOF or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.sess != nil {
		if r.sess.Snapshot().Status == session.StatusLoading {
			fmt.Fprintln(r.output, "restoring session…")
			if err := r.sess.Wait(ctx); err != nil {
				return err
			}
		}
		r.watch(ctx, &wg)
	}

	if err := r.history.Load(); err != nil {
		r.log.Warn("load repl history failed", "error", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			r.log.Warn("save repl history failed", "error", err)
		}
	}()

	want, lines := r.readLines(ctx)
	for {
		fmt.Fprint(r.output, r.prompt())

		var (
			line string
			ok   = true
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case want <- struct{}{}:
			select {
			case <-ctx.Done():
				fmt.Fprintln(r.output)
				return nil
			case line, ok = <-lines:
			}
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(r.output)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

// readLines reads one input line per request on want, so that commands
// prompting for input are not raced by the loop. The lines channel is
// closed at EOF.
func (r *REPL) readLines(ctx context.Context) (chan<- struct{}, <-chan string) {
	want := make(chan struct{})
	lines := make(chan string)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(r.input)
		for {
			select {
			case <-ctx.Done():
				return
			case <-want:
			}

			line, err := reader.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.log.Warn("read repl input failed", "error", err)
				}
				return
			}
		}
	}()
	return want, lines
}

func (r *REPL) watch(ctx context.Context, wg *sync.WaitGroup) {
	if r.watcher == nil {
		return
	}
	events, err := r.watcher.Watch(ctx)
	if err != nil {
		r.log.Warn("token storage watch unavailable", "error", err)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range events {
			if _, err := r.sess.Sync(ctx); err != nil {
				r.log.Warn("session sync failed", "error", err)
			}
		}
	}()
}

func (r *REPL) prompt() string {
	if r.sess != nil {
		if snap := r.sess.Snapshot(); snap.Authenticated() && snap.User != nil {
			return fmt.Sprintf("noteguard(%s)> ", snap.User.Email)
		}
	}
	return "noteguard> "
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	if !r.completer.Known(args[0]) {
		msg := fmt.Sprintf("unknown command %q", args[0])
		if s := r.completer.Suggest(args[0]); len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(s, ", "))
		}
		return errors.New(msg)
	}
	return r.exec(ctx, args)
}
