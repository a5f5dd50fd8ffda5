package prices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Repository provides PostgreSQL backed persistence. The price_history table
// is append-only; rows are never updated or deleted.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const priceColumns = `id, product, amount, currency, set_by, effective_at, created_at`

// Insert appends a new price entry.
func (r *Repository) Insert(ctx context.Context, p Price) (Price, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO price_history (product, amount, currency, set_by, effective_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+priceColumns,
		p.Product, p.Amount, p.Currency, p.SetBy, p.EffectiveAt)
	return scanPrice(row)
}

// Current returns the latest effective price for a product.
func (r *Repository) Current(ctx context.Context, product string) (Price, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+priceColumns+` FROM price_history
		 WHERE product = $1 AND effective_at <= NOW()
		 ORDER BY effective_at DESC, id DESC
		 LIMIT 1`,
		product)
	return scanPrice(row)
}

// History returns the full price history for a product, newest first.
func (r *Repository) History(ctx context.Context, product string) ([]Price, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+priceColumns+` FROM price_history
		 WHERE product = $1
		 ORDER BY effective_at DESC, id DESC`,
		product)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Price
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Products lists the distinct products that have at least one price.
func (r *Repository) Products(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product FROM price_history ORDER BY product`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanPrice(row pgx.Row) (Price, error) {
	var p Price
	err := row.Scan(&p.ID, &p.Product, &p.Amount, &p.Currency, &p.SetBy, &p.EffectiveAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Price{}, shared.ErrNotFound
		}
		return Price{}, err
	}
	return p, nil
}
