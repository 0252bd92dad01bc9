// Package session keeps a client authenticated: it holds the access token
// in memory, the refresh token in a durable store, and rotates them when the
// server answers unauthenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"golang.org/x/sync/singleflight"
)

// ErrUnauthorized is returned when the session cannot be refreshed.
var ErrUnauthorized = errors.New("unauthorized")

const DefaultRefreshTimeout = 10 * time.Second

// TokenStore persists the refresh token between client runs. Get returns ""
// when no token is stored.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Refresher trades a refresh token for a new pair. It must report a
// rejected token as common.ErrTokenNotFound or common.ErrTokenInvalid.
type Refresher func(ctx context.Context, refreshToken string) (access, refresh string, err error)

type Manager struct {
	mu     sync.RWMutex
	access string

	store     TokenStore
	refresher Refresher
	timeout   time.Duration
	group     singleflight.Group
	logger    logging.Logger
}

// NewManager builds a Manager. A non-positive timeout selects
// DefaultRefreshTimeout; logger may be nil.
func NewManager(store TokenStore, refresher Refresher, timeout time.Duration, logger logging.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Manager{
		store:     store,
		refresher: refresher,
		timeout:   timeout,
		logger:    logger.With("module", "session"),
	}
}

// SetRefresher replaces the refresher. It exists so the refresher can be
// bound to a connection that is itself built around the Manager.
func (m *Manager) SetRefresher(r Refresher) {
	m.mu.Lock()
	m.refresher = r
	m.mu.Unlock()
}

// AccessToken returns the cached access token, or "" before the first
// login or refresh.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

// SetTokens stores a pair handed out by login or registration.
func (m *Manager) SetTokens(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	m.access = access
	m.mu.Unlock()

	if err := m.store.Set(ctx, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// HasSession reports whether a refresh token is stored.
func (m *Manager) HasSession(ctx context.Context) (bool, error) {
	token, err := m.store.Get(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Clear forgets both tokens.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.access = ""
	m.mu.Unlock()

	return m.store.Clear(ctx)
}

// Refresh returns an access token newer than stale. Concurrent callers share
// one rotation, and a caller whose stale token was already replaced gets the
// current one without contacting the server. The rotation outlives a
// cancelled caller and is bounded by the refresh timeout instead.
func (m *Manager) Refresh(ctx context.Context, stale string) (string, error) {
	if current := m.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	ch := m.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.rotate(rctx, stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *Manager) rotate(ctx context.Context, stale string) (string, error) {
	// a flight that finished just before this one may already have rotated
	if current := m.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	refresh, err := m.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read refresh token: %w", ErrUnauthorized, err)
	}
	if refresh == "" {
		return "", ErrUnauthorized
	}

	m.mu.RLock()
	refresher := m.refresher
	m.mu.RUnlock()

	access, next, err := refresher(ctx, refresh)
	if err != nil {
		if errors.Is(err, common.ErrTokenNotFound) || errors.Is(err, common.ErrTokenInvalid) {
			m.logger.Warn(ctx, "refresh token rejected, session cleared", "error", err)
			if cerr := m.Clear(ctx); cerr != nil {
				m.logger.Error(ctx, "clear session", "error", cerr)
			}
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	m.mu.Lock()
	m.access = access
	m.mu.Unlock()

	// the server has already consumed the old token, so keep going with the
	// new access token even if persisting fails
	if err := m.store.Set(ctx, next); err != nil {
		m.logger.Error(ctx, "store refresh token", "error", err)
	}

	m.logger.Debug(ctx, "tokens refreshed")
	return access, nil
}

// MemoryStore is a TokenStore that lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	return s.Set(context.Background(), "")
}
