package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/internal/platform/httpx"
)

// Handler wires the credential endpoints: sign-in and slow-path token
// re-validation.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler. A nil metrics disables sign-in counters.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validator: validator.New()}
}

// MountRoutes registers the credential routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/users/sign_in", h.signIn)
	r.Post("/tokens/verify", h.verifyToken)
}

type signInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyTokenRequest struct {
	Token string `json:"jwt_token" validate:"required"`
}

type credentialResponse struct {
	UserID      int64    `json:"user_id"`
	ExpiredAt   string   `json:"expired_at"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	signed, err := h.service.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrVerification) {
			h.metrics.ObserveSignIn("denied")
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
			return
		}
		h.metrics.ObserveSignIn("error")
		h.logger.Error("sign in", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveSignIn("ok")
	httpx.JSON(w, http.StatusOK, signed)
}

func (h *Handler) verifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "jwt_token is required")
		return
	}

	credential, err := h.service.Revalidate(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrVerification) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
			return
		}
		h.logger.Error("revalidate token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, credentialResponse{
		UserID:      credential.UserID,
		ExpiredAt:   credential.ExpiresAt.Format(time.RFC3339),
		Permissions: credential.Permissions,
	})
}
