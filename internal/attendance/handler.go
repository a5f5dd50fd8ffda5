package attendance

import (
	"context"
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

// Handler manages attendance endpoints.
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

// MountRoutes registers attendance routes. Check-in and check-out always act
// on the calling user; the history listings require the view permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAttendanceCreate))
		r.Post("/check-in", h.checkIn)
		r.Post("/check-out", h.checkOut)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAttendanceView))
		r.Get("/users/{id}", h.userHistory)
		r.Get("/sections/{id}", h.sectionHistory)
	})
	r.Get("/me", h.ownHistory)
}

type checkRequest struct {
	SectionID int64   `json:"sectionId" validate:"required,gt=0"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, h.service.CheckIn)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, h.service.CheckOut)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, in CheckInput) (Record, error)) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req checkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sectionId and valid coordinates are required")
		return
	}
	rec, err := fn(r.Context(), CheckInput{
		UserID:    userID,
		SectionID: req.SectionID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) ownHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	h.respondHistory(w, r, func(from, to time.Time) ([]Record, error) {
		return h.service.History(r.Context(), userID, from, to)
	})
}

func (h *Handler) userHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.respondHistory(w, r, func(from, to time.Time) ([]Record, error) {
		return h.service.History(r.Context(), id, from, to)
	})
}

func (h *Handler) sectionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.respondHistory(w, r, func(from, to time.Time) ([]Record, error) {
		return h.service.SectionHistory(r.Context(), id, from, to)
	})
}

func (h *Handler) respondHistory(w http.ResponseWriter, r *http.Request, list func(from, to time.Time) ([]Record, error)) {
	from, ok := h.parseTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.parseTime(w, r, "to")
	if !ok {
		return
	}
	records, err := list(from, to)
	if err != nil {
		h.logger.Error("list attendance", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if records == nil {
		records = []Record{}
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseTime(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", key+" must be RFC3339")
		return time.Time{}, false
	}
	return t, true
}
