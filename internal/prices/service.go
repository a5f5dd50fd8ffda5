package prices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for price history.
type RepositoryPort interface {
	Insert(ctx context.Context, p Price) (Price, error)
	Current(ctx context.Context, product string) (Price, error)
	History(ctx context.Context, product string) ([]Price, error)
	Products(ctx context.Context) ([]string, error)
}

// SetInput carries the fields accepted when recording a new price.
type SetInput struct {
	Product     string
	Amount      float64
	Currency    string
	SetBy       int64
	EffectiveAt time.Time
}

// Service handles price business logic. Prices are never edited in place;
// a correction is just another entry.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// SetPrice appends a new price entry for a product.
func (s *Service) SetPrice(ctx context.Context, in SetInput) (Price, error) {
	product := strings.ToLower(strings.TrimSpace(in.Product))
	if product == "" {
		return Price{}, fmt.Errorf("%w: product required", httpx.ErrValidation)
	}
	if in.Amount <= 0 {
		return Price{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "UZS"
	}
	effectiveAt := in.EffectiveAt
	if effectiveAt.IsZero() {
		effectiveAt = time.Now()
	}
	created, err := s.repo.Insert(ctx, Price{
		Product:     product,
		Amount:      in.Amount,
		Currency:    currency,
		SetBy:       in.SetBy,
		EffectiveAt: effectiveAt,
	})
	if err != nil {
		return Price{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.SetBy,
			Action:   "price.set",
			Entity:   "price",
			EntityID: fmt.Sprintf("%d", created.ID),
			Meta:     map[string]any{"product": product, "amount": in.Amount, "currency": currency},
		})
	}
	return created, nil
}

// CurrentPrice returns the latest effective price for a product.
func (s *Service) CurrentPrice(ctx context.Context, product string) (Price, error) {
	p, err := s.repo.Current(ctx, strings.ToLower(strings.TrimSpace(product)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Price{}, fmt.Errorf("%w: no price for product", httpx.ErrNotFound)
		}
		return Price{}, err
	}
	return p, nil
}

// PriceHistory returns the full history for a product, newest first.
func (s *Service) PriceHistory(ctx context.Context, product string) ([]Price, error) {
	return s.repo.History(ctx, strings.ToLower(strings.TrimSpace(product)))
}

// Products lists products that have at least one recorded price.
func (s *Service) Products(ctx context.Context) ([]string, error) {
	return s.repo.Products(ctx)
}
