package delegations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Store defines the persistence surface for delegations.
type Store interface {
	Insert(ctx context.Context, d Delegation) (Delegation, error)
	Get(ctx context.Context, id int64) (Delegation, error)
	Deactivate(ctx context.Context, id int64) (Delegation, error)
	ListReceived(ctx context.Context, userID int64) ([]Delegation, error)
	ListGranted(ctx context.Context, userID int64) ([]Delegation, error)
}

// UserDirectory answers whether a prospective recipient exists and is active.
type UserDirectory interface {
	IsActiveUser(ctx context.Context, userID int64) (bool, error)
}

// CreateInput carries the grantor's request to delegate permissions.
type CreateInput struct {
	ToUserID    int64
	Permissions []string
	ExpiresAt   time.Time
}

// Service is the delegation lifecycle manager. All grant provenance and
// least-privilege rules live here; handlers only decode and respond.
type Service struct {
	store      Store
	identities rbac.IdentityLoader
	users      UserDirectory
	audit      *shared.AuditLogger
	logger     *slog.Logger
}

// NewService builds a Service instance. audit may be nil in tests.
func NewService(store Store, identities rbac.IdentityLoader, users UserDirectory, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, identities: identities, users: users, audit: audit, logger: logger}
}

// Create validates and persists a new delegation from the grantor.
//
// The grantor must effectively hold DELEGATE_PERMISSIONS (SYSTEM_ALL
// implies it), and every delegated permission must be one the grantor
// effectively holds, unless the grantor holds SYSTEM_ALL. Nothing persists
// when any check fails.
func (s *Service) Create(ctx context.Context, grantorID int64, in CreateInput) (Delegation, error) {
	grantor, err := s.identities.LoadIdentity(ctx, grantorID)
	if err != nil {
		return Delegation{}, err
	}
	if !rbac.HasPermission(grantor, shared.PermDelegate) {
		return Delegation{}, fmt.Errorf("%w: delegating requires %s", httpx.ErrForbidden, shared.PermDelegate)
	}

	perms := shared.NormalizePermissions(in.Permissions)
	if len(perms) == 0 {
		return Delegation{}, fmt.Errorf("%w: permissions must not be empty", httpx.ErrValidation)
	}
	if unknown := shared.UnknownPermissions(perms); len(unknown) > 0 {
		return Delegation{}, fmt.Errorf("%w: unknown permissions: %s", httpx.ErrValidation, strings.Join(unknown, ", "))
	}
	if in.ToUserID == grantorID {
		return Delegation{}, fmt.Errorf("%w: cannot delegate to yourself", httpx.ErrValidation)
	}
	if !in.ExpiresAt.IsZero() && !in.ExpiresAt.After(time.Now()) {
		return Delegation{}, fmt.Errorf("%w: expiry must lie in the future", httpx.ErrValidation)
	}

	if !rbac.HasPermission(grantor, shared.PermSystemAll) {
		for _, p := range perms {
			if !rbac.HasPermission(grantor, p) {
				return Delegation{}, fmt.Errorf("%w: cannot delegate %s without holding it", httpx.ErrValidation, p)
			}
		}
	}

	active, err := s.users.IsActiveUser(ctx, in.ToUserID)
	if err != nil {
		return Delegation{}, err
	}
	if !active {
		return Delegation{}, fmt.Errorf("%w: recipient not found or inactive", httpx.ErrValidation)
	}

	created, err := s.store.Insert(ctx, Delegation{
		FromUserID:  grantorID,
		ToUserID:    in.ToUserID,
		Permissions: perms,
		ExpiresAt:   in.ExpiresAt,
	})
	if err != nil {
		return Delegation{}, err
	}
	s.recordAudit(ctx, grantorID, "delegation.create", created)
	return created, nil
}

// Deactivate revokes a delegation. Only the original grantor or a
// SYSTEM_ALL holder may revoke. Deactivating an already-inactive
// delegation succeeds and returns the record unchanged.
func (s *Service) Deactivate(ctx context.Context, delegationID, actorID int64) (Delegation, error) {
	delegation, err := s.store.Get(ctx, delegationID)
	if err != nil {
		return Delegation{}, mapNotFound(err)
	}
	if delegation.FromUserID != actorID {
		actor, err := s.identities.LoadIdentity(ctx, actorID)
		if err != nil {
			return Delegation{}, err
		}
		if !rbac.HasPermission(actor, shared.PermSystemAll) {
			return Delegation{}, fmt.Errorf("%w: only the grantor or an administrator may revoke", httpx.ErrForbidden)
		}
	}
	if !delegation.IsActive {
		return delegation, nil
	}
	deactivated, err := s.store.Deactivate(ctx, delegationID)
	if err != nil {
		return Delegation{}, mapNotFound(err)
	}
	s.recordAudit(ctx, actorID, "delegation.deactivate", deactivated)
	return deactivated, nil
}

// ListReceived returns all delegations targeting the user.
func (s *Service) ListReceived(ctx context.Context, userID int64) ([]Delegation, error) {
	return s.store.ListReceived(ctx, userID)
}

// ListGranted returns all delegations issued by the user.
func (s *Service) ListGranted(ctx context.Context, userID int64) ([]Delegation, error) {
	return s.store.ListGranted(ctx, userID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, d Delegation) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "delegation",
		EntityID: fmt.Sprintf("%d", d.ID),
		Meta: map[string]any{
			"from_user_id": d.FromUserID,
			"to_user_id":   d.ToUserID,
			"permissions":  d.Permissions,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("delegation audit", slog.Any("error", err))
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: delegation", httpx.ErrNotFound)
	}
	return err
}
