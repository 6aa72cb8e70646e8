package groups

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

// Handler wires group endpoints.
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

// MountRoutes registers group routes behind the permission guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny("groups.view"))
		r.Get("/{group_id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll("groups.edit"))
		r.Post("/", h.create)
		r.Delete("/{group_id}", h.disable)
		r.Post("/{group_id}/permissions/{permission_id}", h.bindPermission)
		r.Delete("/{group_id}/permissions/{permission_id}", h.unbindPermission)
		r.Post("/{group_id}/members/{user_id}", h.bindMember)
		r.Delete("/{group_id}/members/{user_id}", h.unbindMember)
	})
}

type createGroupRequest struct {
	Name string `json:"group_name" validate:"required,min=1"`
}

type groupView struct {
	GroupID   int64  `json:"group_id"`
	Name      string `json:"group_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsDeleted bool   `json:"is_deleted"`
}

type permissionBindingView struct {
	PermissionID int64  `json:"permission_id"`
	GroupID      int64  `json:"group_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	IsDeleted    bool   `json:"is_deleted"`
}

type memberBindingView struct {
	UserID    int64  `json:"user_id"`
	GroupID   int64  `json:"group_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsDeleted bool   `json:"is_deleted"`
}

func toView(group Group) groupView {
	return groupView{
		GroupID:   group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt.Format(time.RFC3339),
		UpdatedAt: group.UpdatedAt.Format(time.RFC3339),
		IsDeleted: group.Deleted,
	}
}

func toPermissionBindingView(b binding.Binding) permissionBindingView {
	return permissionBindingView{
		PermissionID: b.GranteeID,
		GroupID:      b.PrincipalID,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
		IsDeleted:    b.State.Deleted(),
	}
}

func toMemberBindingView(b binding.Binding) memberBindingView {
	return memberBindingView{
		UserID:    b.GranteeID,
		GroupID:   b.PrincipalID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
		IsDeleted: b.State.Deleted(),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "group_name is required")
		return
	}
	group, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(group))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "group_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "group_id must be an integer")
		return
	}
	group, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(group))
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "group_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "group_id must be an integer")
		return
	}
	if err := h.service.Disable(r.Context(), id); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("disable group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) bindPermission(w http.ResponseWriter, r *http.Request) {
	groupID, okGroup := pathID(r, "group_id")
	permissionID, okPerm := pathID(r, "permission_id")
	if !okGroup || !okPerm {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	bound, err := h.service.BindPermission(r.Context(), groupID, permissionID)
	if err != nil {
		h.logger.Error("bind permission to group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPermissionBindingView(bound))
}

func (h *Handler) unbindPermission(w http.ResponseWriter, r *http.Request) {
	groupID, okGroup := pathID(r, "group_id")
	permissionID, okPerm := pathID(r, "permission_id")
	if !okGroup || !okPerm {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	if _, err := h.service.UnbindPermission(r.Context(), groupID, permissionID); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("unbind permission from group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) bindMember(w http.ResponseWriter, r *http.Request) {
	groupID, okGroup := pathID(r, "group_id")
	userID, okUser := pathID(r, "user_id")
	if !okGroup || !okUser {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	bound, err := h.service.BindMember(r.Context(), groupID, userID)
	if err != nil {
		h.logger.Error("bind member to group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberBindingView(bound))
}

func (h *Handler) unbindMember(w http.ResponseWriter, r *http.Request) {
	groupID, okGroup := pathID(r, "group_id")
	userID, okUser := pathID(r, "user_id")
	if !okGroup || !okUser {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids must be integers")
		return
	}
	if _, err := h.service.UnbindMember(r.Context(), groupID, userID); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("unbind member from group", slog.Any("error", err))
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
