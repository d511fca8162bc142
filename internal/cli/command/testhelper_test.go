package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/storage/tokenstore"
)

const (
	testToken    = "token-abc"
	testEmail    = "ali@example.com"
	testPassword = "secret123"
	testID       = "7a0c2a8e-5d8f-4f0e-9a55-3f7d9c1b2e10"
	missingID    = "0b6f3c1d-2e4a-4b5c-8d9e-1f2a3b4c5d6e"
)

// fakeBackend is an in-memory NoteGuard API.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	analyses []domain.Analysis
	calls    map[string]int
	lastBody map[string]string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		t:        t,
		calls:    make(map[string]int),
		lastBody: make(map[string]string),
		analyses: []domain.Analysis{{
			ID:             testID,
			SourceType:     domain.SourceText,
			TextExcerpt:    "Ali okula gitti. Ali okula gitti.",
			FullText:       "Ali okula gitti. Ali okula gitti.",
			ReferenceTopic: "okul",
			OverallScore:   72.5,
			GrammarScore:   90,
			CreatedAt:      "2026-01-02T10:00:00",
		}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", b.login)
	mux.HandleFunc("/api/v1/auth/me", b.me)
	mux.HandleFunc("/api/v1/analyze", b.authed(b.analyze))
	mux.HandleFunc("/api/v1/analyze/demo", b.analyze)
	mux.HandleFunc("/api/v1/analyses", b.authed(b.list))
	mux.HandleFunc("/api/v1/analyses/", b.authed(b.analysis))
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "NoteGuard API"})
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) URL() string { return b.srv.URL }

func (b *fakeBackend) record(r *http.Request) {
	b.mu.Lock()
	b.calls[r.Method+" "+r.URL.Path]++
	b.mu.Unlock()
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *fakeBackend) body(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody[path]
}

// removeAnalysis drops an analysis as if another client deleted it.
func (b *fakeBackend) removeAnalysis(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.analyses[:0]
	for _, a := range b.analyses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	b.analyses = kept
}

func (b *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			b.record(r)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad form"})
		return
	}
	if r.PostForm.Get("username") != testEmail || r.PostForm.Get("password") != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, domain.LoginResponse{
		AccessToken: testToken,
		TokenType:   "bearer",
		UserID:      "u-1",
		Email:       testEmail,
		FirstName:   "Ali",
		LastName:    "Veli",
	})
}

func (b *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, domain.User{ID: "u-1", Email: testEmail, FirstName: "Ali", LastName: "Veli"})
}

func (b *fakeBackend) analyze(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	var req domain.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	b.mu.Lock()
	b.lastBody[r.URL.Path] = req.Text
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, domain.AnalyzeResponse{
		Success: true,
		Result: domain.AnalysisResult{
			GrammarScore:    100,
			RepetitionScore: 40,
			SemanticScore:   85,
			OverallScore:    75,
			RepetitionErrors: []domain.RepetitionError{
				{Word: "Ali", Count: 2, Positions: []int{0, 17}},
			},
			SemanticCoherence: domain.SemanticCoherence{Score: 0.85, Explanation: "Metin konuyla uyumlu."},
			Suggestions:       []string{"Tekrarlanan kelimeleri azaltın."},
		},
		ProcessingTime: 0.42,
	})
}

func (b *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	b.mu.Lock()
	items := append([]domain.Analysis(nil), b.analyses...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.AnalysisPage{Analyses: items, Total: len(items), Limit: 10})
}

func (b *fakeBackend) analysis(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/analyses/")

	b.mu.Lock()
	idx := -1
	for i, a := range b.analyses {
		if a.ID == id {
			idx = i
		}
	}
	var found domain.Analysis
	if idx >= 0 {
		found = b.analyses[idx]
		if r.Method == http.MethodDelete {
			b.analyses = append(b.analyses[:idx], b.analyses[idx+1:]...)
		}
	}
	b.mu.Unlock()

	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Analysis not found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, found)
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Analysis deleted successfully"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// runResult is the outcome of one CLI invocation.
type runResult struct {
	out    string
	errOut string
	err    error
}

// harness runs the CLI against a backend with an in-memory token store
// shared across runs.
type harness struct {
	t       *testing.T
	backend *fakeBackend
	store   *tokenstore.MemoryStore
	config  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:       t,
		backend: newFakeBackend(t),
		store:   tokenstore.NewMemoryStore(),
		config:  filepath.Join(t.TempDir(), "cli.yaml"),
	}
}

// login stores a valid token as if a previous run had logged in.
func (h *harness) login() {
	h.t.Helper()
	if err := h.store.Save(context.Background(), testToken); err != nil {
		h.t.Fatalf("seed token: %v", err)
	}
}

// run executes the CLI with the given stdin and arguments.
func (h *harness) run(stdin string, args ...string) runResult {
	h.t.Helper()
	var out, errOut bytes.Buffer

	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Metadata[storeKey] = h.store

	argv := append([]string{app.Name, "--server", h.backend.URL(), "--config", h.config}, args...)
	err := app.RunContext(context.Background(), argv)
	return runResult{out: out.String(), errOut: errOut.String(), err: err}
}
