package prices

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Handler manages price endpoints.
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

// MountRoutes registers price routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPriceView, shared.PermPriceManage))
		r.Get("/", h.listProducts)
		r.Get("/{product}", h.currentPrice)
		r.Get("/{product}/history", h.priceHistory)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPriceManage))
		r.Post("/", h.setPrice)
	})
}

type setPriceRequest struct {
	Product     string  `json:"product" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency"`
	EffectiveAt string  `json:"effectiveAt"`
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req setPriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product and a positive amount are required")
		return
	}
	in := SetInput{
		Product:  req.Product,
		Amount:   req.Amount,
		Currency: req.Currency,
		SetBy:    userID,
	}
	if req.EffectiveAt != "" {
		effectiveAt, err := time.Parse(time.RFC3339, req.EffectiveAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "effectiveAt must be RFC3339")
			return
		}
		in.EffectiveAt = effectiveAt
	}
	created, err := h.service.SetPrice(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if products == nil {
		products = []string{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) currentPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.service.CurrentPrice(r.Context(), chi.URLParam(r, "product"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, price)
}

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.PriceHistory(r.Context(), chi.URLParam(r, "product"))
	if err != nil {
		h.logger.Error("price history", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if history == nil {
		history = []Price{}
	}
	httpx.JSON(w, http.StatusOK, history)
}
