package sections

import (
	"context"
	"errors"

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

const sectionColumns = `id, name, capacity, latitude, longitude, geofence_radius_m, created_at, updated_at`

// ListSections returns all sections ordered by name.
func (r *Repository) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sectionColumns+` FROM sections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// GetSection fetches a section by ID.
func (r *Repository) GetSection(ctx context.Context, id int64) (Section, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id)
	return scanSection(row)
}

// CreateSection inserts a new section.
func (r *Repository) CreateSection(ctx context.Context, s Section) (Section, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sections (name, capacity, latitude, longitude, geofence_radius_m)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+sectionColumns,
		s.Name, s.Capacity, s.Latitude, s.Longitude, s.GeofenceRadiusM)
	return scanSection(row)
}

// UpdateSection applies changes to an existing section.
func (r *Repository) UpdateSection(ctx context.Context, s Section) (Section, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE sections
		 SET name = $2, capacity = $3, latitude = $4, longitude = $5, geofence_radius_m = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+sectionColumns,
		s.ID, s.Name, s.Capacity, s.Latitude, s.Longitude, s.GeofenceRadiusM)
	return scanSection(row)
}

func scanSection(row pgx.Row) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.Name, &s.Capacity, &s.Latitude, &s.Longitude, &s.GeofenceRadiusM, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Section{}, shared.ErrNotFound
		}
		return Section{}, err
	}
	return s, nil
}
