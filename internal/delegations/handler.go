package delegations

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Handler manages delegation endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers delegation routes. Authorization for creation is
// enforced in the service so the rejection carries the documented error
// taxonomy; the routes only require an authenticated caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createDelegation)
	r.Patch("/{id}/deactivate", h.deactivateDelegation)
	r.Get("/granted", h.listGranted)
	r.Get("/received", h.listReceived)
}

type createRequest struct {
	ToUserID    int64    `json:"toUserId" validate:"required,gt=0"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	ExpiresAt   string   `json:"expiresAt" validate:"omitempty"`
}

type delegationResponse struct {
	ID          int64    `json:"id"`
	FromUserID  int64    `json:"fromUserId"`
	ToUserID    int64    `json:"toUserId"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
	ExpiresAt   string   `json:"expiresAt,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

func (h *Handler) createDelegation(w http.ResponseWriter, r *http.Request) {
	grantorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "toUserId and a non-empty permissions list are required")
		return
	}
	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "expiresAt must be RFC3339")
			return
		}
		expiresAt = parsed
	}
	created, err := h.service.Create(r.Context(), grantorID, CreateInput{
		ToUserID:    req.ToUserID,
		Permissions: req.Permissions,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		h.logger.Warn("create delegation", slog.Int64("grantor_id", grantorID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) deactivateDelegation(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "delegation id must be numeric")
		return
	}
	delegation, err := h.service.Deactivate(r.Context(), id, actorID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(delegation))
}

func (h *Handler) listGranted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListGranted)
}

func (h *Handler) listReceived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListReceived)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID int64) ([]Delegation, error)) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	delegations, err := fetch(r.Context(), userID)
	if err != nil {
		h.logger.Error("list delegations", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	responses := make([]delegationResponse, len(delegations))
	for i, d := range delegations {
		responses[i] = toResponse(d)
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func toResponse(d Delegation) delegationResponse {
	resp := delegationResponse{
		ID:          d.ID,
		FromUserID:  d.FromUserID,
		ToUserID:    d.ToUserID,
		Permissions: d.Permissions,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if !d.ExpiresAt.IsZero() {
		resp.ExpiresAt = d.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}
