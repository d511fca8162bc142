package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/connection"
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/metric"
)

// ErrSuperseded is returned when an operation completes after a newer
// session change; its result is discarded.
var ErrSuperseded = errors.New("session: superseded by a newer session change")

// Teardown reasons.
const (
	ReasonLogout   = "logout"
	ReasonRejected = "rejected"
	ReasonExternal = "external"
)

// Transport is the subset of the HTTP client the session needs.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*http.Response, error)
	Post(ctx context.Context, path string, body any) (*http.Response, error)
	PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error)
	Put(ctx context.Context, path string, body any) (*http.Response, error)
}

// Manager is the single owner of the session state.
type Manager struct {
	store       tokenstore.Store
	api         Transport
	log         logger.Logger
	onSignedOut func(reason string)
	metrics     *metric.Registry

	mu     sync.Mutex
	token  string
	user   *domain.User
	status Status
	gen    uint64

	ready     chan struct{}
	readyOnce sync.Once

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithOnSignedOut sets the callback run after a teardown ends an
// authenticated session, e.g. to return the UI to its login entry point.
func WithOnSignedOut(fn func(reason string)) Option {
	return func(m *Manager) { m.onSignedOut = fn }
}

// WithMetrics counts teardowns in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(m *Manager) { m.metrics = reg }
}

// New returns a Manager in the Loading state. Call Initialize to restore a
// persisted session.
func New(store tokenstore.Store, api Transport, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		api:    api,
		log:    logger.Default(),
		status: StatusLoading,
		ready:  make(chan struct{}),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the bearer token of the current session, or "". It makes
// Manager a connection.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Status returns the lifecycle status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{Status: m.status}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Ready is closed once Initialize has settled.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Wait blocks until Initialize has settled or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

// Subscribe registers fn to receive the new snapshot after every change.
// Calling the returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify(s Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Initialize restores the session from storage. A stored token is adopted
// only after GET /auth/me accepts it; any failure clears the stored token.
// It reports whether an authenticated session was restored.
func (m *Manager) Initialize(ctx context.Context) (bool, error) {
	defer m.markReady()

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	token, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn("load stored token failed", "error", err)
		m.settleAnonymous(gen)
		return false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		m.settleAnonymous(gen)
		return false, nil
	}
	return m.restore(ctx, gen, token)
}

// settleAnonymous leaves Loading when nothing could be restored.
func (m *Manager) settleAnonymous(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.status != StatusLoading {
		m.mu.Unlock()
		return
	}
	m.status = StatusAnonymous
	s := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(s)
}

// restore validates token and adopts it, or clears it from storage.
func (m *Manager) restore(ctx context.Context, gen uint64, token string) (bool, error) {
	user, err := m.fetchMe(connection.WithBearer(ctx, token))

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.log.Debug("discarding stale session restoration")
		if err != nil {
			return false, err
		}
		return false, ErrSuperseded
	}
	m.gen++
	if err != nil {
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.log.Warn("clear rejected token failed", "error", cerr)
		}
		m.token, m.user, m.status = "", nil, StatusAnonymous
		s := m.snapshotLocked()
		m.mu.Unlock()

		m.log.Info("stored session not restored", "error", err)
		m.notify(s)
		return false, err
	}
	m.token, m.user, m.status = token, user, StatusAuthenticated
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Debug("session restored", "user_id", user.ID)
	m.notify(s)
	return true, nil
}

func (m *Manager) fetchMe(ctx context.Context) (*domain.User, error) {
	resp, err := m.api.Get(ctx, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := connection.ParseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token. On success the token is stored
// first and then the user is taken from the login response. On failure the
// session is left unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, domain.ErrMissingArgument.WithDetails("email and password")
	}

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	form := url.Values{"username": {email}, "password": {password}}
	resp, err := m.api.PostForm(connection.Anonymous(ctx), "/auth/login", form)
	if err != nil {
		m.log.Warn("login request failed", "error", err)
		return false, err
	}
	var lr domain.LoginResponse
	if err := connection.ParseResponse(resp, &lr); err != nil {
		m.log.Info("login rejected", "email", email, "error", err)
		if domain.StatusOf(err) == http.StatusUnauthorized {
			return false, domain.ErrLoginFailed.WithCause(err)
		}
		return false, err
	}
	if lr.AccessToken == "" {
		return false, domain.ErrEmptyToken
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.log.Debug("discarding stale login")
		return false, ErrSuperseded
	}
	if err := m.store.Save(ctx, lr.AccessToken); err != nil {
		m.mu.Unlock()
		m.log.Error("persist token failed", "error", err)
		return false, fmt.Errorf("persist token: %w", err)
	}
	m.gen++
	user := lr.User()
	m.token, m.user, m.status = lr.AccessToken, &user, StatusAuthenticated
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Info("logged in", "user_id", user.ID)
	m.notify(s)
	return true, nil
}

// Logout ends the session. The stored token is cleared before memory. It
// is idempotent; a storage error is returned but memory is cleared anyway.
func (m *Manager) Logout() error {
	_, err := m.end(ReasonLogout)
	return err
}

// Teardown ends the session after the backend rejected its credentials, or
// after another process logged out. It is idempotent and safe to call from
// any goroutine. OnSignedOut runs only when an authenticated session ended.
func (m *Manager) Teardown(reason string) {
	wasAuthenticated, err := m.end(reason)
	if err != nil {
		m.log.Warn("teardown could not clear stored token", "reason", reason, "error", err)
	}
	if !wasAuthenticated {
		return
	}
	if m.metrics != nil {
		m.metrics.SessionTeardowns.WithLabelValues(reason).Inc()
	}
	if m.onSignedOut != nil {
		m.onSignedOut(reason)
	}
}

// RejectHandler adapts Teardown to the transport's auth-reject interceptor.
func (m *Manager) RejectHandler() func(*http.Request) {
	return func(req *http.Request) {
		m.log.Info("credentials rejected", "path", req.URL.Path)
		m.Teardown(ReasonRejected)
	}
}

func (m *Manager) end(reason string) (wasAuthenticated bool, err error) {
	m.mu.Lock()
	m.gen++
	err = m.store.Clear(context.Background())
	wasAuthenticated = m.status == StatusAuthenticated
	changed := m.status != StatusAnonymous || m.token != "" || m.user != nil
	m.token, m.user, m.status = "", nil, StatusAnonymous
	s := m.snapshotLocked()
	m.mu.Unlock()

	if changed {
		m.log.Debug("session ended", "reason", reason)
		m.notify(s)
	}
	return wasAuthenticated, err
}

// Sync re-derives the session from storage after another process changed
// it: a removed token ends the session, a new one is validated.
func (m *Manager) Sync(ctx context.Context) (bool, error) {
	stored, err := m.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}

	m.mu.Lock()
	current, gen := m.token, m.gen
	m.mu.Unlock()

	switch {
	case stored == current:
		return current != "", nil
	case stored == "":
		m.Teardown(ReasonExternal)
		return false, nil
	default:
		return m.restore(ctx, gen, stored)
	}
}

// Register creates an account. It does not log in; the account must be
// verified by email first.
func (m *Manager) Register(ctx context.Context, r domain.Registration, confirm string) (bool, error) {
	if err := domain.ValidateRegistration(r, confirm); err != nil {
		return false, err
	}
	return m.fire(ctx, "/auth/register", r)
}

// VerifyEmail confirms an email address with the token from the mail.
func (m *Manager) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, domain.ErrMissingArgument.WithDetails("token")
	}
	return m.fire(ctx, "/auth/verify-email", map[string]string{"token": token})
}

// ResendVerification asks for a new verification mail.
func (m *Manager) ResendVerification(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, domain.ErrMissingArgument.WithDetails("email")
	}
	return m.fire(ctx, "/auth/resend-verification", map[string]string{"email": email})
}

// ForgotPassword asks for a password reset mail.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, domain.ErrMissingArgument.WithDetails("email")
	}
	return m.fire(ctx, "/auth/forgot-password", map[string]string{"email": email})
}

// ResetPassword sets a new password with the token from the reset mail.
func (m *Manager) ResetPassword(ctx context.Context, token, password, confirm string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, domain.ErrMissingArgument.WithDetails("token")
	}
	if err := domain.ValidateNewPassword(password, confirm); err != nil {
		return false, err
	}
	return m.fire(ctx, "/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": password,
	})
}

// fire sends an anonymous POST whose only outcome is success or failure.
func (m *Manager) fire(ctx context.Context, path string, body any) (bool, error) {
	resp, err := m.api.Post(connection.Anonymous(ctx), path, body)
	if err == nil {
		err = connection.ParseResponse(resp, nil)
	}
	if err != nil {
		m.log.Info("request failed", "path", path, "error", err)
		return false, err
	}
	return true, nil
}

// UpdateProfile changes the profile and replaces the user with the copy
// returned by the server.
func (m *Manager) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (bool, error) {
	m.mu.Lock()
	gen, authenticated := m.gen, m.status == StatusAuthenticated
	m.mu.Unlock()
	if !authenticated {
		return false, domain.ErrNotAuthenticated
	}

	resp, err := m.api.Put(ctx, "/auth/profile", upd)
	if err != nil {
		return false, err
	}
	var pr domain.ProfileResponse
	if err := connection.ParseResponse(resp, &pr); err != nil {
		m.log.Info("profile update failed", "error", err)
		return false, err
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false, ErrSuperseded
	}
	user := pr.User
	m.user = &user
	s := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(s)
	return true, nil
}

// Claims is the unverified content of the bearer token, for display only.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims decodes the current token without verifying its signature. The
// result never decides whether the session is authenticated.
func (m *Manager) Claims() (*Claims, error) {
	token := m.Token()
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	c := &Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
