package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

// ErrDuplicateName indicates a unique constraint violation on the role name.
var ErrDuplicateName = errors.New("roles: duplicate name")

// ErrInUse indicates the role is still referenced by at least one user.
var ErrInUse = errors.New("roles: role in use")

const roleColumns = `id, name, permissions, can_create_users, can_create_roles, base_salary, created_at, updated_at`

// ListRoles returns all roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, permissions, can_create_users, can_create_roles, base_salary)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roleColumns,
		role.Name, role.Permissions, role.CanCreateUsers, role.CanCreateRoles, role.BaseSalary)
	created, err := scanRole(row)
	if err != nil {
		return Role{}, mapConstraint(err)
	}
	return created, nil
}

// UpdateRole replaces the mutable fields of an existing role.
func (r *Repository) UpdateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE roles
		 SET name = $2, permissions = $3, can_create_users = $4, can_create_roles = $5, base_salary = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+roleColumns,
		role.ID, role.Name, role.Permissions, role.CanCreateUsers, role.CanCreateRoles, role.BaseSalary)
	updated, err := scanRole(row)
	if err != nil {
		return Role{}, mapConstraint(err)
	}
	return updated, nil
}

// DeleteRole removes a role. Referencing users make the delete fail with
// ErrInUse through the foreign key constraint.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RolePermissions implements rbac.RoleSource: it resolves the permission
// set of the role the user currently references.
func (r *Repository) RolePermissions(ctx context.Context, userID int64) ([]string, error) {
	var perms []string
	err := r.pool.QueryRow(ctx,
		`SELECT r.permissions FROM roles r JOIN users u ON u.role_id = r.id WHERE u.id = $1`,
		userID).Scan(&perms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return perms, nil
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Permissions, &role.CanCreateUsers, &role.CanCreateRoles, &role.BaseSalary, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateName
		case "23503":
			return ErrInUse
		}
	}
	return err
}
