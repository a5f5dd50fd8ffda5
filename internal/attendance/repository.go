package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, user_id, section_id, kind, latitude, longitude, occurred_at`

// Insert stores a new attendance record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO attendance (user_id, section_id, kind, latitude, longitude, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+recordColumns,
		rec.UserID, rec.SectionID, rec.Kind, rec.Latitude, rec.Longitude, rec.At)
	return scanRecord(row)
}

// LastFor returns the most recent record for a user, shared.ErrNotFound when none.
func (r *Repository) LastFor(ctx context.Context, userID int64) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE user_id = $1 ORDER BY occurred_at DESC LIMIT 1`,
		userID)
	return scanRecord(row)
}

// ListFor returns a user's records in the given window, newest first.
func (r *Repository) ListFor(ctx context.Context, userID int64, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance
		 WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		 ORDER BY occurred_at DESC`,
		userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListForSection returns a section's records in the given window, newest first.
func (r *Repository) ListForSection(ctx context.Context, sectionID int64, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance
		 WHERE section_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		 ORDER BY occurred_at DESC`,
		sectionID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.SectionID, &rec.Kind, &rec.Latitude, &rec.Longitude, &rec.At)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}
