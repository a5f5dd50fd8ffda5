package batches

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// ErrUnknownSection indicates the referenced section does not exist.
var ErrUnknownSection = errors.New("batches: unknown section")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const batchColumns = `id, section_id, name, initial_count, status, started_at, closed_at, created_at`

// ListBatches returns batches, optionally filtered by section.
func (r *Repository) ListBatches(ctx context.Context, sectionID int64) ([]Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY started_at DESC`
	args := []any{}
	if sectionID > 0 {
		query = `SELECT ` + batchColumns + ` FROM batches WHERE section_id = $1 ORDER BY started_at DESC`
		args = append(args, sectionID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}

// GetBatch fetches a batch by ID.
func (r *Repository) GetBatch(ctx context.Context, id int64) (Batch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
	return scanBatch(row)
}

// CreateBatch inserts a new active batch.
func (r *Repository) CreateBatch(ctx context.Context, b Batch) (Batch, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO batches (section_id, name, initial_count, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+batchColumns,
		b.SectionID, b.Name, b.InitialCount, StatusActive, b.StartedAt)
	created, err := scanBatch(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Batch{}, ErrUnknownSection
		}
		return Batch{}, err
	}
	return created, nil
}

// CloseBatch marks a batch closed. Closing an already-closed batch leaves
// the original closed_at untouched.
func (r *Repository) CloseBatch(ctx context.Context, id int64) (Batch, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE batches
		 SET status = $2, closed_at = COALESCE(closed_at, NOW())
		 WHERE id = $1
		 RETURNING `+batchColumns,
		id, StatusClosed)
	return scanBatch(row)
}

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	var closedAt *time.Time
	err := row.Scan(&b.ID, &b.SectionID, &b.Name, &b.InitialCount, &b.Status, &b.StartedAt, &closedAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Batch{}, shared.ErrNotFound
		}
		return Batch{}, err
	}
	if closedAt != nil {
		b.ClosedAt = *closedAt
	}
	return b, nil
}
