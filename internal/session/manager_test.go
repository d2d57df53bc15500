package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/api"
	"github.com/fakturo/fakturo/internal/models"
	"github.com/fakturo/fakturo/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "session.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.New(api.Config{BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func testUser() *models.User {
	return &models.User{UserID: "u1", Email: "ivan@mail.bg", Name: "Иван", Role: "owner"}
}

func authBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"user": {"user_id": "u1", "email": "ivan@mail.bg", "name": "Иван", "role": "owner"},
			"session_token": "tok-abc"
		}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Невалидна сесия"}`))
			return
		}
		w.Write([]byte(`{"user_id": "u1", "email": "ivan@mail.bg", "name": "Иван", "role": "owner"}`))
	})
	mux.HandleFunc("POST /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		var req models.SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "Невалидни данни"}`))
			return
		}
		w.Write([]byte(`{
			"user": {"user_id": "u1", "email": "ivan@mail.bg", "name": "Иван", "role": "owner"},
			"session_token": "tok-abc"
		}`))
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Сървърна грешка"}`))
	})
	return mux
}

func TestLoginInstallsTokenAndPersists(t *testing.T) {
	client, _ := newTestClient(t, authBackend(t))
	store := newTestStore(t)
	manager := NewManager(client, store, zap.NewNop())

	require.NoError(t, manager.Login(context.Background(), "ivan@mail.bg", "secret"))

	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, "tok-abc", client.Token())
	assert.Equal(t, "owner", manager.CurrentRole())

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, "u1", user.UserID)
}

func TestLoginWithSessionExchangesRedirectID(t *testing.T) {
	client, _ := newTestClient(t, authBackend(t))
	store := newTestStore(t)
	manager := NewManager(client, store, zap.NewNop())

	require.NoError(t, manager.LoginWithSession(context.Background(), "sess-123"))

	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, "tok-abc", client.Token())
	assert.Equal(t, "u1", manager.CurrentUser().UserID)

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, "owner", user.Role)
}

func TestLoginWithSessionRejectsEmptyID(t *testing.T) {
	client, _ := newTestClient(t, authBackend(t))
	manager := NewManager(client, nil, zap.NewNop())

	err := manager.LoginWithSession(context.Background(), "")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.False(t, manager.IsAuthenticated())
	assert.Empty(t, client.Token())
}

func TestLoginFailureWrapsAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Грешен имейл или парола"}`))
	}))
	manager := NewManager(client, nil, zap.NewNop())

	err := manager.Login(context.Background(), "ivan@mail.bg", "wrong")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok, "the backend rejection must stay reachable through the wrap")
	assert.Equal(t, "Грешен имейл или парола", apiErr.Message)

	assert.False(t, manager.IsAuthenticated())
	assert.Empty(t, client.Token())
}

func TestLogoutClearsStateEvenWhenServerFails(t *testing.T) {
	client, _ := newTestClient(t, authBackend(t))
	store := newTestStore(t)
	manager := NewManager(client, store, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, manager.Login(ctx, "ivan@mail.bg", "secret"))

	// The stub backend 500s on logout; local state must clear anyway.
	manager.Logout(ctx)

	assert.False(t, manager.IsAuthenticated())
	assert.Nil(t, manager.CurrentUser())
	assert.Empty(t, client.Token())

	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreResumesPersistedSession(t *testing.T) {
	backend := authBackend(t)
	client, _ := newTestClient(t, backend)
	store := newTestStore(t)

	first := NewManager(client, store, zap.NewNop())
	require.NoError(t, first.Login(context.Background(), "ivan@mail.bg", "secret"))

	// Simulate a fresh process: new client, same store.
	client2, _ := newTestClient(t, backend)
	second := NewManager(client2, store, zap.NewNop())
	second.Restore(context.Background())

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "tok-abc", client2.Token())
	assert.Equal(t, "u1", second.CurrentUser().UserID)
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stale-token", testUser()))

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Невалидна сесия"}`))
	}))
	manager := NewManager(client, store, zap.NewNop())

	manager.Restore(context.Background())

	assert.False(t, manager.IsAuthenticated(), "a rejected token must not look authenticated")
	assert.Empty(t, client.Token())
	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreKeepsSessionWhenOffline(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("tok-abc", testUser()))

	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	manager := NewManager(client, store, zap.NewNop())
	manager.Restore(context.Background())

	assert.True(t, manager.IsAuthenticated(), "offline start trusts the persisted session")
	assert.Equal(t, "u1", manager.CurrentUser().UserID)
	assert.Equal(t, "tok-abc", client.Token())
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	client, _ := newTestClient(t, authBackend(t))
	manager := NewManager(client, nil, zap.NewNop())
	require.NoError(t, manager.Login(context.Background(), "ivan@mail.bg", "secret"))

	user := manager.CurrentUser()
	user.Role = "staff"

	assert.Equal(t, "owner", manager.CurrentRole(), "mutating the returned copy must not touch the cache")
}
