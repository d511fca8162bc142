package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/Nurcan-altg/noteguard-app/internal/analysis"
	"github.com/Nurcan-altg/noteguard-app/internal/cli/config"
	"github.com/Nurcan-altg/noteguard-app/internal/cli/connection"
	"github.com/Nurcan-altg/noteguard-app/internal/cli/output"
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/history"
	"github.com/Nurcan-altg/noteguard-app/internal/infra/tlsroots"
	"github.com/Nurcan-altg/noteguard-app/internal/session"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/metric"
)

// Metadata keys on the cli.App.
const (
	envKey   = "noteguard.env"
	ownedKey = "noteguard.env.owned"
	// storeKey lets an embedding program (or a test) supply the token store.
	storeKey = "noteguard.tokenstore"
)

// refetchDelay is the wait before history is reloaded after deleting an
// analysis that was already gone.
var refetchDelay = history.DefaultRefetchDelay

// Env is everything a command needs, built once per run.
type Env struct {
	Config     *config.CLIConfig
	ConfigPath string
	Format     output.Format
	Wide       bool
	Verbose    bool

	Log      logger.Logger
	Metrics  *metric.Registry
	Client   *connection.HTTPClient
	Reject   *connection.AuthRejectInterceptor
	Store    tokenstore.Store
	Session  *session.Manager
	Analysis *analysis.Service

	in     io.Reader
	lines  *bufio.Reader
	out    io.Writer
	errOut io.Writer

	restoreOnce sync.Once
	restoreErr  error
	restoreDone chan struct{}

	historyOnce sync.Once
	view        *history.View

	closeOnce sync.Once
}

func newEnv(c *cli.Context) (*Env, error) {
	flags := ParseGlobalFlags(c)

	cfg, err := config.Load(flags.Config, overrides(c))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	env := &Env{
		Config:      cfg,
		ConfigPath:  flags.Config,
		Format:      format,
		Wide:        flags.Wide,
		Verbose:     flags.Verbose,
		Log:         log,
		Metrics:     metric.NewRegistry(),
		in:          c.App.Reader,
		out:         c.App.Writer,
		errOut:      c.App.ErrWriter,
		restoreDone: make(chan struct{}),
	}
	if env.ConfigPath == "" {
		env.ConfigPath = config.DefaultConfigPath()
	}
	if env.in == nil {
		env.in = os.Stdin
	}
	env.lines = bufio.NewReader(env.in)

	if store, ok := c.App.Metadata[storeKey].(tokenstore.Store); ok {
		env.Store = nopCloseStore{store}
	} else {
		tsCfg := cfg.TokenStore
		if tsCfg.Passphrase == "" {
			tsCfg.Passphrase = os.Getenv("NOTEGUARD_TOKEN_PASSPHRASE")
		}
		store, err := tokenstore.Open(tsCfg, log.With("component", "tokenstore"))
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		env.Store = store
	}

	tlsCfg, err := tlsroots.ClientConfig(cfg.TLS.CAFile)
	if err != nil {
		env.Store.Close()
		return nil, fmt.Errorf("load tls roots: %w", err)
	}

	env.Reject = connection.NewAuthRejectInterceptor(nil)
	opts := []connection.Option{
		connection.WithTimeout(cfg.Timeout),
		connection.WithTokenSource(connection.TokenFunc(func() string { return env.Session.Token() })),
		connection.WithInterceptors(env.Reject),
		connection.WithTransportWrapper(env.Metrics.InstrumentTransport),
		connection.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.Burst),
		connection.WithLogger(log.With("component", "http")),
	}
	if tlsCfg != nil {
		opts = append(opts, connection.WithTLSConfig(tlsCfg))
	}
	env.Client = connection.NewHTTPClient(cfg.Server, opts...)

	env.Session = session.New(env.Store, env.Client,
		session.WithLogger(log.With("component", "session")),
		session.WithMetrics(env.Metrics),
		session.WithOnSignedOut(env.signedOut),
	)
	env.Reject.SetHandler(env.Session.RejectHandler())
	env.Metrics.MustRegister(metric.NewSessionCollector(func() string {
		return env.Session.Status().String()
	}))

	env.Analysis = analysis.New(env.Client,
		analysis.WithLogger(log.With("component", "analysis")),
		analysis.WithMetrics(env.Metrics),
	)
	return env, nil
}

// getEnv returns the Env of the running application.
func getEnv(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, errors.New("command environment not initialised")
}

// signedOut tells the user that the session was ended by something other
// than their own logout.
func (e *Env) signedOut(reason string) {
	switch reason {
	case session.ReasonRejected:
		fmt.Fprintln(e.errOut, "Your session has expired or was revoked. You are now signed out.")
	case session.ReasonExternal:
		fmt.Fprintln(e.errOut, "You were signed out from another terminal.")
	}
}

// Restore restores the stored session once per Env.
func (e *Env) Restore(ctx context.Context) error {
	e.restoreOnce.Do(func() {
		defer close(e.restoreDone)
		if _, err := e.Session.Initialize(ctx); err != nil {
			e.Log.Warn("session restoration failed", "error", err)
			if k := domain.KindOf(err); k == domain.KindNetwork || k == domain.KindServer {
				e.restoreErr = err
			}
		}
	})
	<-e.restoreDone
	return e.restoreErr
}

// RequireUser restores the session and fails unless a user is logged in.
func (e *Env) RequireUser(ctx context.Context) (*domain.User, error) {
	if err := e.Restore(ctx); err != nil {
		return nil, err
	}
	snap := e.Session.Snapshot()
	if !snap.Authenticated() {
		return nil, domain.ErrNotAuthenticated.WithDetails("run 'noteguard-cli auth login' first")
	}
	return snap.User, nil
}

// History returns the history view shared by the history commands.
func (e *Env) History() *history.View {
	e.historyOnce.Do(func() {
		e.view = history.New(e.Analysis,
			history.WithPageSize(e.Config.History.PageSize),
			history.WithRefetchDelay(refetchDelay),
			history.WithLogger(e.Log.With("component", "history")),
		)
	})
	return e.view
}

// Print writes data in the selected output format.
func (e *Env) Print(data any) error {
	return output.NewFormatter(e.Format, e.Wide).Format(e.out, data)
}

// Structured reports whether output is machine-readable.
func (e *Env) Structured() bool {
	return e.Format == output.FormatJSON || e.Format == output.FormatYAML
}

// Interactive reports whether stderr is a terminal, which enables spinners.
func (e *Env) Interactive() bool {
	f, ok := e.errOut.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Spinner starts a spinner on stderr when it is a terminal; otherwise the
// returned spinner draws nothing.
func (e *Env) Spinner(message string) *output.Spinner {
	if !e.Interactive() {
		return output.NewSpinner(io.Discard, message)
	}
	s := output.NewSpinner(e.errOut, message)
	s.Start()
	return s
}

// Prompt reads a line for label. Secrets are read without echo from a
// terminal.
func (e *Env) Prompt(label string, secret bool) (string, error) {
	fmt.Fprintf(e.errOut, "%s: ", label)

	if f, ok := e.in.(*os.File); ok && secret && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.errOut)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}

	line, err := e.lines.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// stringOrPrompt returns the flag value, prompting when it is empty.
func (e *Env) stringOrPrompt(c *cli.Context, flag, label string, secret bool) (string, error) {
	if v := c.String(flag); v != "" {
		return v, nil
	}
	return e.Prompt(label, secret)
}

// Close releases the history view and the token store.
func (e *Env) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.view != nil {
			e.view.Close()
		}
		err = e.Store.Close()
	})
	return err
}

// nopCloseStore keeps an injected store open when the Env closes.
type nopCloseStore struct {
	tokenstore.Store
}

func (nopCloseStore) Close() error { return nil }

// Watch forwards to the wrapped store when it can watch.
func (s nopCloseStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := s.Store.(tokenstore.Watcher); ok {
		return w.Watch(ctx)
	}
	return nil, errors.ErrUnsupported
}
