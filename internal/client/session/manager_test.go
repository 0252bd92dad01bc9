package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRefresher hands out "access-N"/"refresh-N" and blocks until
// release is closed.
type countingRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	gotCtx  chan error
}

func newCountingRefresher() *countingRefresher {
	r := &countingRefresher{release: make(chan struct{}), gotCtx: make(chan error, 1)}
	return r
}

func (r *countingRefresher) refresh(ctx context.Context, refreshToken string) (string, string, error) {
	n := r.calls.Add(1)
	select {
	case <-r.release:
	case <-ctx.Done():
		return "", "", ctx.Err()
	}
	select {
	case r.gotCtx <- ctx.Err():
	default:
	}
	if r.err != nil {
		return "", "", r.err
	}
	return "access-" + string(rune('0'+n)), "refresh-" + string(rune('0'+n)), nil
}

func newTestManager(t *testing.T, r Refresher) (*Manager, *MemoryStore) {
	t.Helper()
	store := &MemoryStore{}
	m := NewManager(store, r, time.Second, nil)
	require.NoError(t, m.SetTokens(context.Background(), "stale", "refresh-0"))
	return m, store
}

func TestRefresh_ConcurrentCallersRotateOnce(t *testing.T) {
	r := newCountingRefresher()
	m, store := newTestManager(t, r.refresh)

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = m.Refresh(context.Background(), "stale")
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(r.release)
	wg.Wait()

	assert.Equal(t, int32(1), r.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "access-1", tokens[i])
	}

	refresh, _ := store.Get(context.Background())
	assert.Equal(t, "refresh-1", refresh)
	assert.Equal(t, "access-1", m.AccessToken())
}

func TestRefresh_StaleTokenAlreadyReplaced(t *testing.T) {
	r := newCountingRefresher()
	close(r.release)
	m, _ := newTestManager(t, r.refresh)

	tok, err := m.Refresh(context.Background(), "older")
	require.NoError(t, err)
	assert.Equal(t, "stale", tok)
	assert.Zero(t, r.calls.Load())
}

func TestRefresh_CancelledWaiterDoesNotStopFlight(t *testing.T) {
	r := newCountingRefresher()
	m, _ := newTestManager(t, r.refresh)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := m.Refresh(ctx, "stale")
		first <- err
	}()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	second := make(chan string, 1)
	go func() {
		tok, _ := m.Refresh(context.Background(), "stale")
		second <- tok
	}()
	close(r.release)

	assert.Equal(t, "access-1", <-second)
	assert.NoError(t, <-r.gotCtx)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRefresh_Timeout(t *testing.T) {
	r := newCountingRefresher()
	store := &MemoryStore{}
	m := NewManager(store, r.refresh, 20*time.Millisecond, nil)
	require.NoError(t, m.SetTokens(context.Background(), "stale", "refresh-0"))

	_, err := m.Refresh(context.Background(), "stale")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	refresh, _ := store.Get(context.Background())
	assert.Equal(t, "refresh-0", refresh, "a timeout must not clear the session")
}

func TestRefresh_RejectedClearsStore(t *testing.T) {
	for _, rejection := range []error{common.ErrTokenNotFound, common.ErrTokenInvalid} {
		t.Run(rejection.Error(), func(t *testing.T) {
			r := newCountingRefresher()
			r.err = rejection
			close(r.release)
			m, store := newTestManager(t, r.refresh)

			_, err := m.Refresh(context.Background(), "stale")
			require.ErrorIs(t, err, ErrUnauthorized)

			refresh, _ := store.Get(context.Background())
			assert.Empty(t, refresh)
			assert.Empty(t, m.AccessToken())
		})
	}
}

func TestRefresh_TransportFailureKeepsStore(t *testing.T) {
	unavailable := errors.New("connection refused")
	r := newCountingRefresher()
	r.err = unavailable
	close(r.release)
	m, store := newTestManager(t, r.refresh)

	_, err := m.Refresh(context.Background(), "stale")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, unavailable)

	ok, err := m.HasSession(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	refresh, _ := store.Get(context.Background())
	assert.Equal(t, "refresh-0", refresh)
}

func TestRefresh_NoStoredToken(t *testing.T) {
	r := newCountingRefresher()
	m := NewManager(&MemoryStore{}, r.refresh, 0, nil)

	_, err := m.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, r.calls.Load())
}

func TestClear(t *testing.T) {
	m, store := newTestManager(t, nil)

	require.NoError(t, m.Clear(context.Background()))
	assert.Empty(t, m.AccessToken())
	refresh, _ := store.Get(context.Background())
	assert.Empty(t, refresh)
}
