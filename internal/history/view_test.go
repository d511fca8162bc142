package history

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
)

const (
	idA = "00000000-0000-4000-8000-00000000000a"
	idB = "00000000-0000-4000-8000-00000000000b"
	idC = "00000000-0000-4000-8000-00000000000c"
)

// fakeService is an in-memory analysis backend.
type fakeService struct {
	mu        sync.Mutex
	stored    []domain.Analysis
	deleteErr error
	lists     []domain.ListOptions
	listGate  chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{stored: []domain.Analysis{
		{ID: idA, TextExcerpt: "Ali okula gitti", ReferenceTopic: "okul"},
		{ID: idB, TextExcerpt: "Deniz kenarında", ReferenceTopic: "tatil"},
		{ID: idC, TextExcerpt: "Kış geldi"},
	}}
}

func (f *fakeService) List(ctx context.Context, opts domain.ListOptions) (*domain.AnalysisPage, error) {
	f.mu.Lock()
	gate := f.listGate
	f.lists = append(f.lists, opts)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	end := opts.Offset + opts.Limit
	if end > len(f.stored) {
		end = len(f.stored)
	}
	var page []domain.Analysis
	if opts.Offset < len(f.stored) {
		page = append(page, f.stored[opts.Offset:end]...)
	}
	return &domain.AnalysisPage{
		Analyses: page, Total: len(f.stored), Limit: opts.Limit, Offset: opts.Offset,
		HasMore: end < len(f.stored),
	}, nil
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, a := range f.stored {
		if a.ID == id {
			f.stored = append(f.stored[:i], f.stored[i+1:]...)
			return nil
		}
	}
	return domain.ErrAnalysisNotFound.WithCause(&domain.APIError{Status: http.StatusNotFound})
}

func (f *fakeService) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.stored {
		if a.ID == id {
			f.stored = append(f.stored[:i], f.stored[i+1:]...)
			return
		}
	}
}

func (f *fakeService) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func ids(items []domain.Analysis) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func newView(t *testing.T, svc Service, clock clockwork.Clock) *View {
	t.Helper()
	v := New(svc, WithClock(clock), WithLogger(logger.Discard()))
	t.Cleanup(v.Close)
	require.NoError(t, v.Refresh(context.Background()))
	return v
}

func TestRefresh(t *testing.T) {
	svc := newFakeService()
	v := newView(t, svc, clockwork.NewFakeClock())

	assert.Equal(t, []string{idA, idB, idC}, ids(v.Items()))
	assert.Equal(t, 3, v.Total())
	assert.False(t, v.HasMore())
	assert.Equal(t, 1, v.Pages())

	opts := svc.lists[0]
	assert.Equal(t, DefaultPageSize, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, domain.OrderByCreatedAt, opts.OrderBy)
	assert.True(t, opts.OrderDesc)
}

func TestPaging(t *testing.T) {
	svc := newFakeService()
	v := New(svc, WithPageSize(2), WithClock(clockwork.NewFakeClock()), WithLogger(logger.Discard()))
	defer v.Close()

	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{idA, idB}, ids(v.Items()))
	assert.True(t, v.HasMore())
	assert.Equal(t, 2, v.Pages())

	v.SetPage(1)
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, []string{idC}, ids(v.Items()))
	assert.Equal(t, 2, svc.lists[1].Offset)

	v.SetPage(-4)
	assert.Equal(t, 0, v.Page())
}

func TestDelete_Success(t *testing.T) {
	svc := newFakeService()
	v := newView(t, svc, clockwork.NewFakeClock())

	var notified []string
	v.Subscribe(func(items []domain.Analysis) { notified = ids(items) })

	require.NoError(t, v.Delete(context.Background(), idB))
	assert.Equal(t, []string{idA, idC}, ids(v.Items()))
	assert.Equal(t, []string{idA, idC}, notified)
	assert.Equal(t, 2, v.Total())
}

func TestDelete_NotFoundKeepsItemUntilRefetch(t *testing.T) {
	svc := newFakeService()
	clock := clockwork.NewFakeClock()
	v := newView(t, svc, clock)

	// Another client already deleted A; this page still shows it.
	svc.remove(idA)

	err := v.Delete(context.Background(), idA)
	require.ErrorIs(t, err, domain.ErrAnalysisNotFound)
	assert.Equal(t, "analysis not found; it may already be deleted", domain.UserMessage(err))

	assert.True(t, v.Contains(idA), "not removed on the assumption that delete succeeded")
	assert.Equal(t, 1, svc.listCalls(), "no refetch before the delay")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(DefaultRefetchDelay - time.Millisecond)
	assert.True(t, v.Contains(idA))

	clock.Advance(time.Millisecond)
	v.Wait()

	assert.False(t, v.Contains(idA), "refetch reconciles with the server")
	assert.Equal(t, []string{idB, idC}, ids(v.Items()))
	assert.Equal(t, 2, svc.listCalls())
}

func TestDelete_OtherFailuresKeepItem(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    domain.Kind
		message string
	}{
		{"forbidden", domain.ErrAnalysisForbidden.WithCause(&domain.APIError{Status: 403}), domain.KindForbidden, "you are not allowed to perform this action"},
		{"server", &domain.APIError{Status: 500}, domain.KindServer, "the service is unavailable, please try again later"},
		{"network", domain.ErrNetwork.WithCause(context.DeadlineExceeded), domain.KindNetwork, "the service is unavailable, please try again later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			clock := clockwork.NewFakeClock()
			v := newView(t, svc, clock)
			svc.deleteErr = tt.err

			err := v.Delete(context.Background(), idA)
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			assert.Equal(t, tt.message, domain.UserMessage(err))
			assert.True(t, v.Contains(idA))

			clock.Advance(time.Hour)
			v.Wait()
			assert.Equal(t, 1, svc.listCalls(), "no refetch scheduled")
		})
	}
}

func TestClose_DropsLateResults(t *testing.T) {
	svc := newFakeService()
	clock := clockwork.NewFakeClock()
	v := newView(t, svc, clock)

	svc.remove(idA)
	require.Error(t, v.Delete(context.Background(), idA))
	v.Close()
	v.Wait()

	clock.Advance(time.Hour)
	assert.Equal(t, 1, svc.listCalls(), "pending refetch cancelled")
	assert.True(t, v.Contains(idA), "closed view is frozen")
	assert.ErrorIs(t, v.Refresh(context.Background()), ErrClosed)
	assert.ErrorIs(t, v.Delete(context.Background(), idB), ErrClosed)
}

func TestClose_DuringRefresh(t *testing.T) {
	svc := newFakeService()
	v := New(svc, WithClock(clockwork.NewFakeClock()), WithLogger(logger.Discard()))

	gate := make(chan struct{})
	svc.listGate = gate
	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()

	require.Eventually(t, func() bool { return svc.listCalls() == 1 }, time.Second, time.Millisecond)
	v.Close()
	close(gate)

	assert.NoError(t, <-done, "late completion ignored silently")
	assert.Empty(t, v.Items())
}

func TestSearch(t *testing.T) {
	v := newView(t, newFakeService(), clockwork.NewFakeClock())

	assert.Equal(t, []string{idA}, ids(v.Search("OKUL")))
	assert.Equal(t, []string{idB}, ids(v.Search("tatil")))
	assert.Empty(t, v.Search("yok"))
	assert.True(t, v.Contains(idA), "filter does not drop items")
	assert.Len(t, v.Search(""), 3)
}

func TestDelete_InFlight(t *testing.T) {
	svc := &blockingDelete{
		fakeService: newFakeService(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	v := newView(t, svc, clockwork.NewFakeClock())

	done := make(chan error, 1)
	go func() { done <- v.Delete(context.Background(), idA) }()
	<-svc.started

	assert.ErrorIs(t, v.Delete(context.Background(), idA), ErrDeleteInFlight)
	close(svc.release)
	assert.NoError(t, <-done)
}

type blockingDelete struct {
	*fakeService
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingDelete) Delete(ctx context.Context, id string) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.fakeService.Delete(ctx, id)
}
