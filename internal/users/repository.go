package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// ErrDuplicateUsername indicates a unique constraint violation on username.
var ErrDuplicateUsername = errors.New("users: duplicate username")

// ErrUnknownRole indicates the referenced role does not exist.
var ErrUnknownRole = errors.New("users: unknown role")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, full_name, is_active, role_id, created_at, updated_at`

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new user with the given bcrypt password hash.
func (r *Repository) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, full_name, password_hash, is_active, role_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.Username, user.FullName, passwordHash, user.IsActive, user.RoleID)
	created, err := scanUser(row)
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return created, nil
}

// UpdateUser applies changes to full name, active flag and role.
func (r *Repository) UpdateUser(ctx context.Context, user User) (User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET full_name = $2, is_active = $3, role_id = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		user.ID, user.FullName, user.IsActive, user.RoleID)
	updated, err := scanUser(row)
	if err != nil {
		return User{}, mapConstraint(err)
	}
	return updated, nil
}

// IsActiveUser implements the delegation recipient check.
func (r *Repository) IsActiveUser(ctx context.Context, userID int64) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx, `SELECT is_active FROM users WHERE id = $1`, userID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

// CanCreateUsers reports the capability flag on the user's role.
func (r *Repository) CanCreateUsers(ctx context.Context, userID int64) (bool, error) {
	return r.capability(ctx, userID, "can_create_users")
}

// CanCreateRoles reports the capability flag on the user's role.
func (r *Repository) CanCreateRoles(ctx context.Context, userID int64) (bool, error) {
	return r.capability(ctx, userID, "can_create_roles")
}

func (r *Repository) capability(ctx context.Context, userID int64, column string) (bool, error) {
	var allowed bool
	// column is one of two compile-time constants, never user input.
	err := r.pool.QueryRow(ctx,
		`SELECT r.`+column+` FROM roles r JOIN users u ON u.role_id = r.id WHERE u.id = $1`,
		userID).Scan(&allowed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return allowed, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.FullName, &user.IsActive, &user.RoleID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateUsername
		case "23503":
			return ErrUnknownRole
		}
	}
	return err
}
