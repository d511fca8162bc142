package connection

import (
	"net/http"
	"sync"
)

// Interceptor observes every completed round trip before the caller sees
// it. err is the transport error, if any, in which case resp is nil.
type Interceptor interface {
	Intercept(req *http.Request, resp *http.Response, err error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(req *http.Request, resp *http.Response, err error)

// Intercept implements Interceptor.
func (f InterceptorFunc) Intercept(req *http.Request, resp *http.Response, err error) {
	f(req, resp, err)
}

type interceptTransport struct {
	next         http.RoundTripper
	interceptors []Interceptor
}

func (t *interceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	for _, i := range t.interceptors {
		i.Intercept(req, resp, err)
	}
	return resp, err
}

// AuthRejectInterceptor tears the session down when the backend answers an
// authenticated request with 401. Requests sent without credentials (login,
// registration) are ignored; their 401 is an ordinary failure.
type AuthRejectInterceptor struct {
	mu       sync.Mutex
	onReject func(req *http.Request)
	rejected int
}

// NewAuthRejectInterceptor returns an interceptor that calls onReject for
// every rejected authenticated request. onReject must be idempotent.
func NewAuthRejectInterceptor(onReject func(req *http.Request)) *AuthRejectInterceptor {
	return &AuthRejectInterceptor{onReject: onReject}
}

// SetHandler replaces the rejection callback. It exists so the transport
// can be built before the session that owns the callback.
func (a *AuthRejectInterceptor) SetHandler(onReject func(req *http.Request)) {
	a.mu.Lock()
	a.onReject = onReject
	a.mu.Unlock()
}

// Intercept implements Interceptor.
func (a *AuthRejectInterceptor) Intercept(req *http.Request, resp *http.Response, err error) {
	if err != nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return
	}
	if req.Header.Get("Authorization") == "" {
		return
	}

	a.mu.Lock()
	a.rejected++
	fn := a.onReject
	a.mu.Unlock()

	if fn != nil {
		fn(req)
	}
}

// Rejected returns how many authenticated requests were rejected.
func (a *AuthRejectInterceptor) Rejected() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rejected
}
