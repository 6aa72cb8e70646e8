package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// grant injects a verified credential carrying the given permission tokens,
// standing in for the bearer middleware the full router runs first.
func grant(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.ContextWithCredential(r.Context(), auth.Credential{UserID: 1, Permissions: perms})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newGuardedRouter(repo *fakeRepo, perms ...string) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, newTestService(repo), auth.Middleware{Logger: logger})
	r := chi.NewRouter()
	r.Use(grant(perms...))
	h.MountRoutes(r)
	return r
}

func newTestRouter(repo *fakeRepo) http.Handler {
	return newGuardedRouter(repo, "users.view", "users.edit")
}

func TestCreateUserEndpoint(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/",
		bytes.NewBufferString(`{"username":"alice","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var view struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
		Enabled  bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Equal(t, int64(1), view.UserID)
	require.Equal(t, "alice", view.Username)
	require.True(t, view.Enabled)
}

func TestCreateUserEndpointRejectsDuplicate(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	body := `{"username":"alice","password":"hunter2"}`
	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, want, rr.Code, "request %d", i)
	}
}

func TestGetUserEndpoint(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	user, err := newTestService(repo).Create(t.Context(), "alice", "hunter2")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%d", user.ID), nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/999", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMountRoutesEnforcePermissionTokens(t *testing.T) {
	repo := newFakeRepo()
	viewer := newGuardedRouter(repo, "users.view")

	user, err := newTestService(repo).Create(t.Context(), "alice", "hunter2")
	require.NoError(t, err)

	// The view token reads but never writes.
	rr := httptest.NewRecorder()
	viewer.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%d", user.ID), nil))
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/",
		bytes.NewBufferString(`{"username":"bob","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	viewer.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	viewer.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/%d", user.ID), nil))
	require.Equal(t, http.StatusForbidden, rr.Code)

	// No tokens at all: every route is forbidden.
	nobody := newGuardedRouter(repo)
	rr = httptest.NewRecorder()
	nobody.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%d", user.ID), nil))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDisableUserEndpointIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	user, err := newTestService(repo).Create(t.Context(), "alice", "hunter2")
	require.NoError(t, err)

	target := fmt.Sprintf("/%d", user.ID)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, target, nil))
		require.Equal(t, http.StatusNoContent, rr.Code, "delete %d", i)
	}
}
