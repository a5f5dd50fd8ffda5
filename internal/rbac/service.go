package rbac

import (
	"context"
	"fmt"
)

// RoleSource resolves a user's role permission set.
type RoleSource interface {
	RolePermissions(ctx context.Context, userID int64) ([]string, error)
}

// GrantSource resolves the active delegation grants targeting a user.
type GrantSource interface {
	ActiveGrantsFor(ctx context.Context, userID int64) ([]Grant, error)
}

// Service assembles identities from the role and delegation stores. It is
// read-only; evaluation itself never mutates state.
type Service struct {
	roles  RoleSource
	grants GrantSource
}

// NewService constructs a Service.
func NewService(roles RoleSource, grants GrantSource) *Service {
	return &Service{roles: roles, grants: grants}
}

// LoadIdentity reads the user's role permissions and active delegation
// grants. Deactivation takes effect on the next load; there is no caching
// beyond the database.
func (s *Service) LoadIdentity(ctx context.Context, userID int64) (Identity, error) {
	rolePerms, err := s.roles.RolePermissions(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("rbac: load role permissions: %w", err)
	}
	grants, err := s.grants.ActiveGrantsFor(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("rbac: load delegation grants: %w", err)
	}
	return Identity{UserID: userID, RolePermissions: rolePerms, Grants: grants}, nil
}
