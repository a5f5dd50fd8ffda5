package roles

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Handler manages role management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRoleView, shared.PermRoleManage))
		r.Get("/", h.listRoles)
		r.Get("/{id}", h.getRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRoleManage))
		r.Post("/", h.createRole)
		r.Put("/{id}", h.updateRole)
		r.Delete("/{id}", h.deleteRole)
	})
}

type roleRequest struct {
	Name           string   `json:"name" validate:"required"`
	Permissions    []string `json:"permissions"`
	CanCreateUsers bool     `json:"canCreateUsers"`
	CanCreateRoles bool     `json:"canCreateRoles"`
	BaseSalary     float64  `json:"baseSalary" validate:"gte=0"`
}

type roleResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Permissions    []string `json:"permissions"`
	CanCreateUsers bool     `json:"canCreateUsers"`
	CanCreateRoles bool     `json:"canCreateRoles"`
	BaseSalary     float64  `json:"baseSalary"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	responses := make([]roleResponse, len(roles))
	for i, role := range roles {
		responses[i] = toResponse(role)
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(role))
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateRole(r.Context(), actorID, toInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdateRole(r.Context(), id, toInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (roleRequest, bool) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return roleRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required and baseSalary must not be negative")
		return roleRequest{}, false
	}
	return req, true
}

func toInput(req roleRequest) Input {
	return Input{
		Name:           req.Name,
		Permissions:    req.Permissions,
		CanCreateUsers: req.CanCreateUsers,
		CanCreateRoles: req.CanCreateRoles,
		BaseSalary:     req.BaseSalary,
	}
}

func toResponse(role Role) roleResponse {
	return roleResponse{
		ID:             role.ID,
		Name:           role.Name,
		Permissions:    role.Permissions,
		CanCreateUsers: role.CanCreateUsers,
		CanCreateRoles: role.CanCreateRoles,
		BaseSalary:     role.BaseSalary,
		CreatedAt:      role.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      role.UpdatedAt.Format(time.RFC3339),
	}
}
