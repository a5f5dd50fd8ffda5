package delegations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
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

const delegationColumns = `id, from_user_id, to_user_id, permissions, is_active, expires_at, created_at`

// Insert persists a new delegation with is_active = true.
func (r *Repository) Insert(ctx context.Context, d Delegation) (Delegation, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO delegations (from_user_id, to_user_id, permissions, is_active, expires_at)
		 VALUES ($1, $2, $3, TRUE, $4)
		 RETURNING `+delegationColumns,
		d.FromUserID, d.ToUserID, d.Permissions, nullableTime(d.ExpiresAt))
	return scanDelegation(row)
}

// Get fetches a delegation by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Delegation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE id = $1`, id)
	return scanDelegation(row)
}

// Deactivate flips is_active off in a single statement so a concurrent
// create/deactivate race cannot resurrect the grant.
func (r *Repository) Deactivate(ctx context.Context, id int64) (Delegation, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE delegations SET is_active = FALSE WHERE id = $1 RETURNING `+delegationColumns, id)
	return scanDelegation(row)
}

// DeactivateExpired flips is_active off for every active delegation whose
// expiry has passed. Returns the number of rows affected.
func (r *Repository) DeactivateExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE delegations SET is_active = FALSE WHERE is_active AND expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListReceived returns delegations targeting the user, newest first.
func (r *Repository) ListReceived(ctx context.Context, userID int64) ([]Delegation, error) {
	return r.list(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE to_user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListGranted returns delegations issued by the user, newest first.
func (r *Repository) ListGranted(ctx context.Context, userID int64) ([]Delegation, error) {
	return r.list(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE from_user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListActiveFor returns the active, unexpired delegations targeting the
// user. This is the read path the authorization evaluator depends on.
func (r *Repository) ListActiveFor(ctx context.Context, userID int64) ([]Delegation, error) {
	return r.list(ctx,
		`SELECT `+delegationColumns+` FROM delegations
		 WHERE to_user_id = $1 AND is_active AND (expires_at IS NULL OR expires_at > NOW())
		 ORDER BY created_at DESC`, userID)
}

// ActiveGrantsFor implements rbac.GrantSource.
func (r *Repository) ActiveGrantsFor(ctx context.Context, userID int64) ([]rbac.Grant, error) {
	delegations, err := r.ListActiveFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	grants := make([]rbac.Grant, len(delegations))
	for i, d := range delegations {
		grants[i] = rbac.Grant{DelegationID: d.ID, Permissions: d.Permissions, ExpiresAt: d.ExpiresAt}
	}
	return grants, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var delegations []Delegation
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, err
		}
		delegations = append(delegations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return delegations, nil
}

func scanDelegation(row pgx.Row) (Delegation, error) {
	var d Delegation
	var expiresAt *time.Time
	err := row.Scan(&d.ID, &d.FromUserID, &d.ToUserID, &d.Permissions, &d.IsActive, &expiresAt, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Delegation{}, shared.ErrNotFound
		}
		return Delegation{}, err
	}
	if expiresAt != nil {
		d.ExpiresAt = *expiresAt
	}
	return d, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
