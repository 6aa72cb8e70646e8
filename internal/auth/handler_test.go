package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/observability"
)

func newTestHandler(t *testing.T, repo *fakeRepo) (*Handler, *TokenCodec) {
	t.Helper()
	h, codec, _ := newInstrumentedHandler(t, repo)
	return h, codec
}

func newInstrumentedHandler(t *testing.T, repo *fakeRepo) (*Handler, *TokenCodec, *observability.Metrics) {
	t.Helper()
	hasher := NewHasher(1)
	if repo.hash == "" {
		hash, err := hasher.Hash(t.Context(), "hunter2")
		require.NoError(t, err)
		repo.hash = hash
	}
	codec := newTestCodec(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	return NewHandler(logger, NewService(logger, repo, hasher, codec), metrics), codec, metrics
}

func mountTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestSignInEndpointReturnsToken(t *testing.T) {
	username := "alice-" + uuid.NewString()
	repo := &fakeRepo{
		users: map[string]int64{username: 42},
		perms: map[int64][]string{42: {"ADMIN"}},
	}
	h, codec := newTestHandler(t, repo)
	router := mountTestRouter(h)

	body := fmt.Sprintf(`{"username":%q,"password":"hunter2"}`, username)
	req := httptest.NewRequest(http.MethodPost, "/users/sign_in", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		UserID int64  `json:"user_id"`
		Token  string `json:"jwt_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, int64(42), resp.UserID)

	credential, err := codec.Decode(resp.Token)
	require.NoError(t, err)
	require.Equal(t, []string{"ADMIN"}, credential.Permissions)
}

func TestSignInEndpointRejectsBadCredentials(t *testing.T) {
	repo := &fakeRepo{users: map[string]int64{"alice": 42}}
	h, _ := newTestHandler(t, repo)
	router := mountTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/users/sign_in",
		bytes.NewBufferString(`{"username":"alice","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.NotContains(t, rr.Body.String(), "alice")
}

func TestSignInEndpointValidatesBody(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRepo{})
	router := mountTestRouter(h)

	for name, body := range map[string]string{
		"malformed json":   `{"username":`,
		"missing password": `{"username":"alice"}`,
		"missing username": `{"password":"hunter2"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/sign_in", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestSignInEndpointCountsOutcomes(t *testing.T) {
	username := "alice-" + uuid.NewString()
	repo := &fakeRepo{
		users: map[string]int64{username: 42},
		perms: map[int64][]string{42: {"ADMIN"}},
	}
	h, _, metrics := newInstrumentedHandler(t, repo)
	router := mountTestRouter(h)

	good := fmt.Sprintf(`{"username":%q,"password":"hunter2"}`, username)
	bad := fmt.Sprintf(`{"username":%q,"password":"wrong"}`, username)
	for body, want := range map[string]int{good: http.StatusOK, bad: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/users/sign_in", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, want, rr.Code)
	}

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `gatewarden_sign_ins_total{outcome="ok"} 1`)
	require.Contains(t, rr.Body.String(), `gatewarden_sign_ins_total{outcome="denied"} 1`)
}

func TestVerifyTokenEndpointReturnsLivePermissions(t *testing.T) {
	repo := &fakeRepo{
		users: map[string]int64{"alice": 42},
		perms: map[int64][]string{42: {"ADMIN", "users.view"}},
	}
	h, codec := newTestHandler(t, repo)
	router := mountTestRouter(h)

	token, _, err := codec.Encode(42, []string{"ADMIN"})
	require.NoError(t, err)

	// Grants changed since issuance; the endpoint must report the live set.
	repo.perms[42] = []string{"users.view"}

	body := fmt.Sprintf(`{"jwt_token":%q}`, token)
	req := httptest.NewRequest(http.MethodPost, "/tokens/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		UserID      int64    `json:"user_id"`
		ExpiredAt   string   `json:"expired_at"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, int64(42), resp.UserID)
	require.Equal(t, []string{"users.view"}, resp.Permissions)

	expiredAt, err := time.Parse(time.RFC3339, resp.ExpiredAt)
	require.NoError(t, err)
	require.True(t, expiredAt.After(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestVerifyTokenEndpointRejectsForgedToken(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRepo{})
	router := mountTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/tokens/verify",
		bytes.NewBufferString(`{"jwt_token":"forged"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}
