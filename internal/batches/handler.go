package batches

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

// Handler manages batch endpoints.
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

// MountRoutes registers batch routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBatchView, shared.PermBatchManage))
		r.Get("/", h.listBatches)
		r.Get("/{id}", h.getBatch)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermBatchManage))
		r.Post("/", h.createBatch)
		r.Patch("/{id}/close", h.closeBatch)
	})
}

type createBatchRequest struct {
	SectionID    int64  `json:"sectionId" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required"`
	InitialCount int    `json:"initialCount" validate:"required,gt=0"`
	StartedAt    string `json:"startedAt"`
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	var sectionID int64
	if raw := r.URL.Query().Get("sectionId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sectionId must be numeric")
			return
		}
		sectionID = parsed
	}
	batches, err := h.service.ListBatches(r.Context(), sectionID)
	if err != nil {
		h.logger.Error("list batches", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if batches == nil {
		batches = []Batch{}
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sectionId, name and a positive initialCount are required")
		return
	}
	in := CreateInput{
		SectionID:    req.SectionID,
		Name:         req.Name,
		InitialCount: req.InitialCount,
	}
	if req.StartedAt != "" {
		startedAt, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "startedAt must be RFC3339")
			return
		}
		in.StartedAt = startedAt
	}
	created, err := h.service.CreateBatch(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) closeBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	closed, err := h.service.CloseBatch(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, closed)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "batch id must be numeric")
		return 0, false
	}
	return id, true
}
