package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

// DefaultPageSize is the number of analyses per page.
const DefaultPageSize = 20

// DefaultRefetchDelay is the wait before reconciling after a 404 delete.
const DefaultRefetchDelay = 1500 * time.Millisecond

var (
	// ErrClosed is returned by operations on a closed view.
	ErrClosed = errors.New("history: view closed")

	// ErrDeleteInFlight is returned when the same item is already being
	// deleted.
	ErrDeleteInFlight = errors.New("history: delete already in progress")
)

// Service is what the view needs from the analysis service.
type Service interface {
	List(ctx context.Context, opts domain.ListOptions) (*domain.AnalysisPage, error)
	Delete(ctx context.Context, id string) error
}

// View is the state of one history page.
type View struct {
	svc          Service
	clock        clockwork.Clock
	log          logger.Logger
	pageSize     int
	refetchDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	page     int
	items    []domain.Analysis
	total    int
	hasMore  bool
	filter   string
	closed   bool
	seq      uint64
	deleting map[string]bool
	timers   map[clockwork.Timer]struct{}
	pending  sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]func([]domain.Analysis)
	nextID int
}

// Option configures a View.
type Option func(*View)

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(v *View) { v.clock = c }
}

// WithPageSize sets the page size.
func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// WithRefetchDelay sets the delay of the reconciling refetch.
func WithRefetchDelay(d time.Duration) Option {
	return func(v *View) { v.refetchDelay = d }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(v *View) { v.log = l }
}

// New returns an empty view on the first page.
func New(svc Service, opts ...Option) *View {
	v := &View{
		svc:          svc,
		clock:        clockwork.NewRealClock(),
		log:          logger.Default(),
		pageSize:     DefaultPageSize,
		refetchDelay: DefaultRefetchDelay,
		deleting:     make(map[string]bool),
		timers:       make(map[clockwork.Timer]struct{}),
		subs:         make(map[int]func([]domain.Analysis)),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v
}

// Refresh loads the current page. A response overtaken by a newer Refresh
// is dropped.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.seq++
	seq := v.seq
	opts := domain.DefaultListOptions()
	opts.Limit = v.pageSize
	opts.Offset = v.page * v.pageSize
	v.mu.Unlock()

	page, err := v.svc.List(ctx, opts)

	v.mu.Lock()
	if v.closed || seq != v.seq {
		v.mu.Unlock()
		return nil
	}
	if err != nil {
		v.mu.Unlock()
		v.log.Warn("load history failed", "error", err)
		return err
	}
	v.items = append([]domain.Analysis(nil), page.Analyses...)
	v.total = page.Total
	v.hasMore = page.HasMore
	items := v.visibleLocked()
	v.mu.Unlock()

	v.notify(items)
	return nil
}

// Delete asks the backend to delete id. The item leaves the list only on
// success. On 404 it stays and a refetch is scheduled; any other failure
// leaves the list untouched. The error is returned for display.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.deleting[id] {
		v.mu.Unlock()
		return ErrDeleteInFlight
	}
	v.deleting[id] = true
	v.mu.Unlock()

	err := v.svc.Delete(ctx, id)

	v.mu.Lock()
	delete(v.deleting, id)
	if v.closed {
		v.mu.Unlock()
		return err
	}

	switch {
	case err == nil:
		v.removeLocked(id)
		items := v.visibleLocked()
		v.mu.Unlock()
		v.notify(items)
		return nil
	case domain.KindOf(err) == domain.KindNotFound:
		v.scheduleRefetchLocked()
	}
	v.mu.Unlock()

	v.log.Info("delete failed", "analysis_id", id, "kind", domain.KindOf(err).String(), "error", err)
	return err
}

func (v *View) removeLocked(id string) {
	for i, a := range v.items {
		if a.ID == id {
			v.items = append(v.items[:i], v.items[i+1:]...)
			if v.total > 0 {
				v.total--
			}
			return
		}
	}
}

func (v *View) scheduleRefetchLocked() {
	v.pending.Add(1)
	var timer clockwork.Timer
	timer = v.clock.AfterFunc(v.refetchDelay, func() {
		defer v.pending.Done()
		v.mu.Lock()
		delete(v.timers, timer)
		v.mu.Unlock()
		if err := v.Refresh(v.ctx); err != nil && !errors.Is(err, ErrClosed) {
			v.log.Warn("reconciling refetch failed", "error", err)
		}
	})
	v.timers[timer] = struct{}{}
}

// Wait blocks until every scheduled refetch has run or been cancelled.
func (v *View) Wait() {
	v.pending.Wait()
}

// Close disposes the view. Pending refetches are cancelled and results
// that arrive later are ignored.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	for t := range v.timers {
		if t.Stop() {
			v.pending.Done()
		}
		delete(v.timers, t)
	}
	v.mu.Unlock()
	v.cancel()
}

// Items returns the visible analyses, filtered by the search query.
func (v *View) Items() []domain.Analysis {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked()
}

func (v *View) visibleLocked() []domain.Analysis {
	out := make([]domain.Analysis, 0, len(v.items))
	for _, a := range v.items {
		if matches(a, v.filter) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a domain.Analysis, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.TextExcerpt), q) ||
		strings.Contains(strings.ToLower(a.ReferenceTopic), q)
}

// Search sets the client-side filter over excerpts and reference topics.
func (v *View) Search(query string) []domain.Analysis {
	v.mu.Lock()
	v.filter = strings.TrimSpace(query)
	items := v.visibleLocked()
	v.mu.Unlock()

	v.notify(items)
	return items
}

// Contains reports whether id is in the current page, ignoring the filter.
func (v *View) Contains(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.items {
		if a.ID == id {
			return true
		}
	}
	return false
}

// SetPage selects a zero-based page; call Refresh to load it.
func (v *View) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	v.mu.Lock()
	v.page = page
	v.mu.Unlock()
}

// Page returns the zero-based current page.
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Pages returns the page count for the last known total.
func (v *View) Pages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return domain.AnalysisPage{Total: v.total}.Pages(v.pageSize)
}

// Total returns the last known number of analyses.
func (v *View) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// HasMore reports whether pages follow the current one.
func (v *View) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

// Subscribe registers fn to receive the visible items after every change.
func (v *View) Subscribe(fn func([]domain.Analysis)) (unsubscribe func()) {
	v.subMu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.subMu.Unlock()

	return func() {
		v.subMu.Lock()
		delete(v.subs, id)
		v.subMu.Unlock()
	}
}

func (v *View) notify(items []domain.Analysis) {
	v.subMu.Lock()
	fns := make([]func([]domain.Analysis), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.subMu.Unlock()

	for _, fn := range fns {
		fn(items)
	}
}
