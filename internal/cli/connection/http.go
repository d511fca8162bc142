// Package connection provides the HTTP transport of the NoteGuard client.
package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/infra/buildinfo"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// APIPrefix is prepended to every request path.
const APIPrefix = "/api/v1"

// DefaultTimeout bounds every request; a request that exceeds it fails as a
// network error.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries the per-request ULID.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token at send time. An empty token means
// the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

type ctxKey int

const (
	anonymousKey ctxKey = iota
	bearerKey
)

// Anonymous marks requests made with ctx as unauthenticated: no bearer
// token is attached even when the session holds one.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey, true)
}

// WithBearer makes requests made with ctx use token instead of the
// TokenSource. Session restoration uses it to validate a stored token
// before the session adopts it.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey, token)
}

// HTTPClient provides HTTP communication with the backend.
type HTTPClient struct {
	baseURL      string
	client       *http.Client
	tokens       TokenSource
	limiter      *rate.Limiter
	userAgent    string
	log          logger.Logger
	base         http.RoundTripper
	tlsConfig    *tls.Config
	wrap         []func(http.RoundTripper) http.RoundTripper
	interceptors []Interceptor
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// WithRateLimit limits outbound requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *HTTPClient) {
		if r > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithTLSConfig sets the TLS configuration of the default transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) { c.tlsConfig = cfg }
}

// WithTransport replaces the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.base = rt }
}

// WithTransportWrapper adds a transport middleware, such as metrics
// instrumentation. Wrappers run inside the interceptors.
func WithTransportWrapper(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(c *HTTPClient) { c.wrap = append(c.wrap, wrap) }
}

// WithInterceptors registers response interceptors.
func WithInterceptors(is ...Interceptor) Option {
	return func(c *HTTPClient) { c.interceptors = append(c.interceptors, is...) }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient creates a new HTTP client for the backend at server.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   normalizeBaseURL(server),
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: buildinfo.UserAgent(),
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rt := c.base
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if c.tlsConfig != nil {
			t.TLSClientConfig = c.tlsConfig
		}
		rt = t
	}
	for _, wrap := range c.wrap {
		rt = wrap(rt)
	}
	if len(c.interceptors) > 0 {
		rt = &interceptTransport{next: rt, interceptors: c.interceptors}
	}
	c.client.Transport = rt

	return c
}

// normalizeBaseURL adds http:// when no scheme is given and strips a
// trailing slash or API prefix, so both "host:8009" and
// "https://host/api/v1/" work.
func normalizeBaseURL(server string) string {
	baseURL := strings.TrimSpace(server)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, APIPrefix)
	return baseURL
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *HTTPClient) Timeout() time.Duration {
	return c.client.Timeout
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	return c.send(ctx, http.MethodGet, path, query, nil, "")
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.send(ctx, http.MethodDelete, path, nil, nil, "")
}

// PostForm performs a POST request with a form-encoded body.
func (c *HTTPClient) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, path, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// PostMultipart uploads content as the multipart file field.
func (c *HTTPClient) PostMultipart(ctx context.Context, path string, query url.Values, field, filename string, content io.Reader) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, query, &buf, mw.FormDataContentType())
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if body == nil {
		return c.send(ctx, method, path, nil, nil, "")
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return c.send(ctx, method, path, nil, bytes.NewReader(data), "application/json")
}

func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + APIPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	requestID := ulid.Make().String()
	ctx = logger.WithRequestID(ctx, requestID)
	log := logger.L(logger.WithLogger(ctx, c.log))

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrNetwork.WithDetails("rate limit wait").WithCause(err)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, domain.ErrNetwork.WithDetails(method + " " + path).WithCause(err)
	}
	log.Debug("response received",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

func (c *HTTPClient) bearer(ctx context.Context) string {
	if anon, _ := ctx.Value(anonymousKey).(bool); anon {
		return ""
	}
	if token, ok := ctx.Value(bearerKey).(string); ok {
		return token
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}
