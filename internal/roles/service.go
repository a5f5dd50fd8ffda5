package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, role Role) (Role, error)
	UpdateRole(ctx context.Context, role Role) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

// CapabilitySource answers whether the acting user's role allows creating
// roles. Mirrors the canCreateRoles flag carried on roles.
type CapabilitySource interface {
	CanCreateRoles(ctx context.Context, userID int64) (bool, error)
}

// Input carries the fields accepted on role create and update.
type Input struct {
	Name           string
	Permissions    []string
	CanCreateUsers bool
	CanCreateRoles bool
	BaseSalary     float64
}

// Service handles role business logic. Permission strings are validated
// against the catalog here so an unknown permission is never stored.
type Service struct {
	repo         RepositoryPort
	capabilities CapabilitySource
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, capabilities CapabilitySource) *Service {
	return &Service{repo: repo, capabilities: capabilities}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, mapRepoError(err)
	}
	return role, nil
}

// CreateRole validates and inserts a new role.
func (s *Service) CreateRole(ctx context.Context, actorID int64, in Input) (Role, error) {
	if err := s.requireCreateCapability(ctx, actorID); err != nil {
		return Role{}, err
	}
	role, err := validateInput(in)
	if err != nil {
		return Role{}, err
	}
	created, err := s.repo.CreateRole(ctx, role)
	if err != nil {
		return Role{}, mapRepoError(err)
	}
	return created, nil
}

// UpdateRole validates and applies changes to an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, in Input) (Role, error) {
	role, err := validateInput(in)
	if err != nil {
		return Role{}, err
	}
	role.ID = id
	updated, err := s.repo.UpdateRole(ctx, role)
	if err != nil {
		return Role{}, mapRepoError(err)
	}
	return updated, nil
}

// DeleteRole removes a role that no user references.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func (s *Service) requireCreateCapability(ctx context.Context, actorID int64) error {
	allowed, err := s.capabilities.CanCreateRoles(ctx, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: your role may not create roles", httpx.ErrForbidden)
	}
	return nil
}

func validateInput(in Input) (Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", httpx.ErrValidation)
	}
	if in.BaseSalary < 0 {
		return Role{}, fmt.Errorf("%w: base salary must not be negative", httpx.ErrValidation)
	}
	perms := shared.NormalizePermissions(in.Permissions)
	if unknown := shared.UnknownPermissions(perms); len(unknown) > 0 {
		return Role{}, fmt.Errorf("%w: unknown permissions: %s", httpx.ErrValidation, strings.Join(unknown, ", "))
	}
	return Role{
		Name:           name,
		Permissions:    perms,
		CanCreateUsers: in.CanCreateUsers,
		CanCreateRoles: in.CanCreateRoles,
		BaseSalary:     in.BaseSalary,
	}, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return fmt.Errorf("%w: role name already taken", httpx.ErrDuplicate)
	case errors.Is(err, ErrInUse):
		return fmt.Errorf("%w: role is referenced by users", httpx.ErrValidation)
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: role", httpx.ErrNotFound)
	default:
		return err
	}
}
