package roles

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/binding"
	"github.com/gatewarden/gatewarden/internal/platform/httpx"
)

// Handler wires role endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers role routes behind the permission guards. Binding
// mutations sit under the same edit token as the catalog writes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny("roles.view"))
		r.Get("/{role_id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll("roles.edit"))
		r.Post("/", h.create)
		r.Delete("/{role_id}", h.disable)
		r.Post("/{role_id}/permissions/{permission_id}", h.bindPermission)
		r.Delete("/{role_id}/permissions/{permission_id}", h.unbindPermission)
		r.Post("/{role_id}/members/{user_id}", h.bindMember)
		r.Delete("/{role_id}/members/{user_id}", h.unbindMember)
	})
}

type createRoleRequest struct {
	Name string `json:"role_name" validate:"required,min=1"`
}

type roleView struct {
	RoleID    int64  `json:"role_id"`
	Name      string `json:"role_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsDeleted bool   `json:"is_deleted"`
}

type permissionBindingView struct {
	PermissionID int64  `json:"permission_id"`
	RoleID       int64  `json:"role_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	IsDeleted    bool   `json:"is_deleted"`
}

type memberBindingView struct {
	UserID    int64  `json:"user_id"`
	RoleID    int64  `json:"role_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsDeleted bool   `json:"is_deleted"`
}

func toView(role Role) roleView {
	return roleView{
		RoleID:    role.ID,
		Name:      role.Name,
		CreatedAt: role.CreatedAt.Format(time.RFC3339),
		UpdatedAt: role.UpdatedAt.Format(time.RFC3339),
		IsDeleted: role.Deleted,
	}
}

func toPermissionBindingView(b binding.Binding) permissionBindingView {
	return permissionBindingView{
		PermissionID: b.GranteeID,
		RoleID:       b.PrincipalID,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
		IsDeleted:    b.State.Deleted(),
	}
}

func toMemberBindingView(b binding.Binding) memberBindingView {
	return memberBindingView{
		UserID:    b.GranteeID,
		RoleID:    b.PrincipalID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
		IsDeleted: b.State.Deleted(),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role_name is required")
		return
	}
	role, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(role))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "role_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "role_id must be an integer")
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(role))
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "role_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "role_id must be an integer")
		return
	}
	if err := h.service.Disable(r.Context(), id); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("disable role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) bindPermission(w http.ResponseWriter, r *http.Request) {
	roleID, okRole := pathID(r, "role_id")
	permissionID, okPerm := pathID(r, "permission_id")
	if !okRole || !okPerm {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	bound, err := h.service.BindPermission(r.Context(), roleID, permissionID)
	if err != nil {
		h.logger.Error("bind permission to role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPermissionBindingView(bound))
}

func (h *Handler) unbindPermission(w http.ResponseWriter, r *http.Request) {
	roleID, okRole := pathID(r, "role_id")
	permissionID, okPerm := pathID(r, "permission_id")
	if !okRole || !okPerm {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	if _, err := h.service.UnbindPermission(r.Context(), roleID, permissionID); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("unbind permission from role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	// Unbinding something never bound is success to the caller.
	httpx.NoContent(w)
}

func (h *Handler) bindMember(w http.ResponseWriter, r *http.Request) {
	roleID, okRole := pathID(r, "role_id")
	userID, okUser := pathID(r, "user_id")
	if !okRole || !okUser {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	bound, err := h.service.BindMember(r.Context(), roleID, userID)
	if err != nil {
		h.logger.Error("bind member to role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberBindingView(bound))
}

func (h *Handler) unbindMember(w http.ResponseWriter, r *http.Request) {
	roleID, okRole := pathID(r, "role_id")
	userID, okUser := pathID(r, "user_id")
	if !okRole || !okUser {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	if _, err := h.service.UnbindMember(r.Context(), roleID, userID); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("unbind member from role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func pathID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
