package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	CanCreateUsers(ctx context.Context, userID int64) (bool, error)
}

// CreateInput carries the fields accepted on user creation.
type CreateInput struct {
	Username string
	FullName string
	Password string
	RoleID   int64
}

// UpdateInput carries the fields accepted on user update.
type UpdateInput struct {
	FullName string
	IsActive bool
	RoleID   int64
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// CreateUser hashes the password and inserts a new active user. Besides the
// USER_CREATE permission enforced at the route, the actor's role must carry
// the canCreateUsers capability flag.
func (s *Service) CreateUser(ctx context.Context, actorID int64, in CreateInput) (User, error) {
	allowed, err := s.repo.CanCreateUsers(ctx, actorID)
	if err != nil {
		return User{}, err
	}
	if !allowed {
		return User{}, fmt.Errorf("%w: your role may not create users", httpx.ErrForbidden)
	}

	username := strings.TrimSpace(strings.ToLower(in.Username))
	if username == "" {
		return User{}, fmt.Errorf("%w: username required", httpx.ErrValidation)
	}
	if len(in.Password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", httpx.ErrValidation)
	}
	if in.RoleID <= 0 {
		return User{}, fmt.Errorf("%w: role required", httpx.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.CreateUser(ctx, User{
		Username: username,
		FullName: strings.TrimSpace(in.FullName),
		IsActive: true,
		RoleID:   in.RoleID,
	}, string(hash))
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return created, nil
}

// UpdateUser applies changes to an existing user.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error) {
	if in.RoleID <= 0 {
		return User{}, fmt.Errorf("%w: role required", httpx.ErrValidation)
	}
	updated, err := s.repo.UpdateUser(ctx, User{
		ID:       id,
		FullName: strings.TrimSpace(in.FullName),
		IsActive: in.IsActive,
		RoleID:   in.RoleID,
	})
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return updated, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateUsername):
		return fmt.Errorf("%w: username already taken", httpx.ErrDuplicate)
	case errors.Is(err, ErrUnknownRole):
		return fmt.Errorf("%w: role does not exist", httpx.ErrValidation)
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	default:
		return err
	}
}
