package permissions

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/platform/httpx"
)

// Handler wires permission endpoints.
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

// MountRoutes registers permission routes behind the permission guards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny("permissions.view"))
		r.Get("/", h.list)
		r.Get("/{permission_id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll("permissions.edit"))
		r.Post("/", h.create)
		r.Delete("/{permission_id}", h.disable)
	})
}

type createPermissionRequest struct {
	Name string `json:"permission_name" validate:"required,min=1"`
}

type permissionView struct {
	PermissionID int64  `json:"permission_id"`
	Name         string `json:"permission_name"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	IsDeleted    bool   `json:"is_deleted"`
}

func toView(permission Permission) permissionView {
	return permissionView{
		PermissionID: permission.ID,
		Name:         permission.Name,
		CreatedAt:    permission.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    permission.UpdatedAt.Format(time.RFC3339),
		IsDeleted:    permission.Deleted,
	}
}

type permissionListView struct {
	Permissions []permissionView `json:"permissions"`
	Total       int64            `json:"total"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, ok := listFilterFromQuery(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "role_id, offset and limit must be non-negative integers")
		return
	}
	perms, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]permissionView, len(perms))
	for i, permission := range perms {
		views[i] = toView(permission)
	}
	httpx.JSON(w, http.StatusOK, permissionListView{Permissions: views, Total: total})
}

func listFilterFromQuery(r *http.Request) (ListFilter, bool) {
	query := r.URL.Query()
	filter := ListFilter{Name: query.Get("permission_name")}
	for param, dst := range map[string]*int64{
		"role_id": &filter.RoleID,
		"offset":  &filter.Offset,
		"limit":   &filter.Limit,
	} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value < 0 {
			return ListFilter{}, false
		}
		*dst = value
	}
	return filter, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "permission_name is required")
		return
	}
	permission, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create permission", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(permission))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "permission_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "permission_id must be an integer")
		return
	}
	permission, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(permission))
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "permission_id")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "permission_id must be an integer")
		return
	}
	if err := h.service.Disable(r.Context(), id); err != nil && !httpx.IsNotFound(err) {
		h.logger.Error("disable permission", slog.Any("error", err))
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
