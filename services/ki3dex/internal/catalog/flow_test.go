package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ki3mon/ki3dex/services/ki3dex/internal/domain"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/pokeapi"
	"github.com/ki3mon/ki3dex/services/ki3dex/internal/screen"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pagedLister serves pages keyed by cursor. A gate, when set for a cursor,
// blocks that fetch until the gate is closed or the context ends.
type pagedLister struct {
	mu    sync.Mutex
	pages map[domain.Cursor]pokeapi.Page
	errs  map[domain.Cursor]error
	gates map[domain.Cursor]chan struct{}
	calls atomic.Int32
}

func newPagedLister() *pagedLister {
	return &pagedLister{
		pages: map[domain.Cursor]pokeapi.Page{},
		errs:  map[domain.Cursor]error{},
		gates: map[domain.Cursor]chan struct{}{},
	}
}

func (l *pagedLister) ListPage(ctx context.Context, cursor domain.Cursor) (pokeapi.Page, error) {
	l.calls.Add(1)
	l.mu.Lock()
	gate := l.gates[cursor]
	l.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return pokeapi.Page{}, ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.errs[cursor]; err != nil {
		return pokeapi.Page{}, err
	}
	return l.pages[cursor], nil
}

func (l *pagedLister) set(cursor domain.Cursor, p pokeapi.Page) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pages[cursor] = p
}

func (l *pagedLister) gate(cursor domain.Cursor) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	l.gates[cursor] = ch
	return ch
}

func entries(from, n int) []domain.Entry {
	out := make([]domain.Entry, n)
	for i := range out {
		out[i] = domain.Entry{ID: from + i, Name: fmt.Sprintf("mon-%d", from+i)}
	}
	return out
}

func twoPages() *pagedLister {
	l := newPagedLister()
	l.set("", pokeapi.Page{Entries: entries(1, 20), Next: "c1"})
	l.set("c1", pokeapi.Page{Entries: entries(21, 20)})
	return l
}

func ids(es []domain.Entry) []int {
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestMount_LoadsFirstPage(t *testing.T) {
	f := New(twoPages(), nil)
	defer f.Close()

	require.Equal(t, StateEmpty, f.Snapshot().State)
	require.NoError(t, f.Mount(context.Background()))

	v := f.Snapshot()
	assert.Equal(t, StateReady, v.State)
	assert.Len(t, v.Entries, 20)
	assert.Equal(t, domain.Cursor("c1"), v.Cursor)
	assert.True(t, v.HasMore)
}

func TestMount_FailureStaysEmpty(t *testing.T) {
	l := newPagedLister()
	l.errs[""] = errors.New("offline")
	f := New(l, nil)
	defer f.Close()

	err := f.Mount(context.Background())
	require.Error(t, err)

	v := f.Snapshot()
	assert.Equal(t, StateEmpty, v.State)
	assert.Empty(t, v.Entries)
	assert.EqualError(t, v.Err, "offline")

	more, err := f.LoadMore(context.Background())
	assert.False(t, more)
	assert.NoError(t, err)
}

func TestMount_Once(t *testing.T) {
	l := twoPages()
	f := New(l, nil)
	defer f.Close()

	require.NoError(t, f.Mount(context.Background()))
	require.NoError(t, f.Mount(context.Background()))
	assert.Equal(t, int32(1), l.calls.Load())
}

func TestPagination_ConcatenatesInOrder(t *testing.T) {
	f := New(twoPages(), nil)
	defer f.Close()
	ctx := context.Background()

	require.NoError(t, f.Mount(ctx))
	more, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, more)

	v := f.Snapshot()
	want := make([]int, 40)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, ids(v.Entries))
	assert.Equal(t, domain.Cursor(""), v.Cursor)
	assert.False(t, v.HasMore)

	more, err = f.LoadMore(ctx)
	assert.NoError(t, err)
	assert.False(t, more, "exhausted cursor must suppress load-more")
}

func TestRefresh_ReplacesCollection(t *testing.T) {
	l := twoPages()
	f := New(l, nil)
	defer f.Close()
	ctx := context.Background()

	require.NoError(t, f.Mount(ctx))
	_, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, f.Snapshot().Entries, 40)

	require.NoError(t, f.Refresh(ctx))
	v := f.Snapshot()
	assert.Len(t, v.Entries, 20)
	assert.Equal(t, domain.Cursor("c1"), v.Cursor, "refresh resets the cursor")
	assert.True(t, v.HasMore)
}

func TestRefresh_FailureKeepsEntries(t *testing.T) {
	l := twoPages()
	f := New(l, nil)
	defer f.Close()
	ctx := context.Background()

	require.NoError(t, f.Mount(ctx))
	l.mu.Lock()
	l.errs[""] = errors.New("offline")
	l.mu.Unlock()

	require.Error(t, f.Refresh(ctx))
	v := f.Snapshot()
	assert.Equal(t, StateReady, v.State)
	assert.Len(t, v.Entries, 20)
}

func TestRefresh_Coalesced(t *testing.T) {
	l := twoPages()
	gate := l.gate("")
	f := New(l, nil)
	defer f.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.Refresh(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the second refresh join the in-flight one.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), l.calls.Load())
	assert.Len(t, f.Snapshot().Entries, 20)
}

func TestRefresh_DiscardsInFlightLoadMore(t *testing.T) {
	l := twoPages()
	f := New(l, nil)
	defer f.Close()
	ctx := context.Background()
	require.NoError(t, f.Mount(ctx))

	gate := l.gate("c1")
	result := make(chan bool, 1)
	go func() {
		more, _ := f.LoadMore(ctx)
		result <- more
	}()
	require.Eventually(t, func() bool { return f.Snapshot().State == StateLoadingMore }, time.Second, time.Millisecond)

	more, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, more, "only one load-more at a time")

	require.NoError(t, f.Refresh(ctx))
	close(gate)

	assert.False(t, <-result, "stale page must be discarded")
	assert.Len(t, f.Snapshot().Entries, 20)
}

func TestClose_CancelsAndDiscards(t *testing.T) {
	l := twoPages()
	l.gate("")
	f := New(l, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.Mount(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	f.Close()
	assert.Equal(t, StateLoading, f.Snapshot().State, "late completion must not be applied")
	assert.ErrorIs(t, f.Refresh(context.Background()), screen.ErrClosed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading_more", StateLoadingMore.String())
	assert.Equal(t, "unknown", State(99).String())
}
