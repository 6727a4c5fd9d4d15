package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// maxAttempts caps the guarded call at one refresh-and-retry after a 401.
const maxAttempts = 2

var ErrEmptyToken = errors.New("token endpoint returned an empty token")

// RequestBuilder produces the guarded request for a given bearer token.
type RequestBuilder func(token string) directory.Request

// Manager owns the cached bearer token. All reads and writes of the token go
// through mu; concurrent acquisitions collapse into one GetToken call.
type Manager struct {
	client directory.Executor
	store  Store

	mu     sync.Mutex
	token  string
	loaded bool

	group singleflight.Group
}

// NewManager creates a Manager. store may be nil, in which case the token
// lives only in memory.
func NewManager(client directory.Executor, store Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
	}
}

// CallWithAuth executes the request built by build with a valid token. A 401
// answer discards the token and retries exactly once with a fresh one; a
// second 401 is returned to the caller.
func (m *Manager) CallWithAuth(ctx context.Context, build RequestBuilder, out any) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var token string
		token, err = m.Token(ctx)
		if err != nil {
			return err
		}

		err = m.client.Execute(ctx, build(token), out)
		fail, ok := directory.AsFailResponse(err)
		if !ok || fail.StatusCode != http.StatusUnauthorized {
			return err
		}

		slog.Info("Token rejected", "message", fail.Message, "attempt", attempt)
		m.Invalidate(ctx, token)
		metrics.RecordTokenRefresh()
	}
	return err
}

// Token returns the cached token, acquiring one from the token endpoint when
// none is cached.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	if !m.loaded {
		m.loadLocked(ctx)
	}
	token := m.token
	m.mu.Unlock()

	if token != "" {
		return token, nil
	}

	// The fetch is shared, so it must outlive any single caller. The client
	// timeout still bounds it.
	ch := m.group.DoChan("token", func() (any, error) {
		return m.acquire(context.WithoutCancel(ctx))
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

// Invalidate clears the cached token if it is still the given one. A token
// acquired concurrently by another caller is left alone.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != token {
		return
	}
	m.token = ""
	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			slog.Warn("Failed to clear persisted token", "error", err)
		}
	}
}

// HasToken reports whether a token is currently cached.
func (m *Manager) HasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

func (m *Manager) acquire(ctx context.Context) (string, error) {
	m.mu.Lock()
	cached := m.token
	m.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	slog.Debug("Getting new token")

	var resp directory.TokenResponse
	if err := m.client.Execute(ctx, directory.GetToken(), &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: %w", directory.ErrDecodingFailed, ErrEmptyToken)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = resp.Token
	m.loaded = true
	if m.store != nil {
		if err := m.store.Save(ctx, resp.Token); err != nil {
			// The in-memory token is still usable; only persistence is lost.
			slog.Warn("Failed to persist token", "error", err)
		}
	}
	return resp.Token, nil
}

func (m *Manager) loadLocked(ctx context.Context) {
	m.loaded = true
	if m.store == nil {
		return
	}
	token, err := m.store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load persisted token", "error", err)
		return
	}
	m.token = token
}
