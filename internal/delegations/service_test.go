package delegations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

type memoryStore struct {
	delegations map[int64]Delegation
	nextID      int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{delegations: make(map[int64]Delegation)}
}

func (s *memoryStore) Insert(ctx context.Context, d Delegation) (Delegation, error) {
	s.nextID++
	d.ID = s.nextID
	d.IsActive = true
	d.CreatedAt = time.Now()
	s.delegations[d.ID] = d
	return d, nil
}

func (s *memoryStore) Get(ctx context.Context, id int64) (Delegation, error) {
	if d, ok := s.delegations[id]; ok {
		return d, nil
	}
	return Delegation{}, shared.ErrNotFound
}

func (s *memoryStore) Deactivate(ctx context.Context, id int64) (Delegation, error) {
	d, ok := s.delegations[id]
	if !ok {
		return Delegation{}, shared.ErrNotFound
	}
	d.IsActive = false
	s.delegations[id] = d
	return d, nil
}

func (s *memoryStore) ListReceived(ctx context.Context, userID int64) ([]Delegation, error) {
	var out []Delegation
	for _, d := range s.delegations {
		if d.ToUserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memoryStore) ListGranted(ctx context.Context, userID int64) ([]Delegation, error) {
	var out []Delegation
	for _, d := range s.delegations {
		if d.FromUserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// testDirectory doubles as the identity loader so delegation state is
// reflected immediately, the way the real repositories behave.
type testDirectory struct {
	store     *memoryStore
	rolePerms map[int64][]string
	active    map[int64]bool
}

func (d *testDirectory) IsActiveUser(ctx context.Context, userID int64) (bool, error) {
	return d.active[userID], nil
}

func (d *testDirectory) LoadIdentity(ctx context.Context, userID int64) (rbac.Identity, error) {
	var grants []rbac.Grant
	now := time.Now()
	for _, del := range d.store.delegations {
		if del.ToUserID != userID || !del.IsActive {
			continue
		}
		if !del.ExpiresAt.IsZero() && !del.ExpiresAt.After(now) {
			continue
		}
		grants = append(grants, rbac.Grant{DelegationID: del.ID, Permissions: del.Permissions, ExpiresAt: del.ExpiresAt})
	}
	return rbac.Identity{UserID: userID, RolePermissions: d.rolePerms[userID], Grants: grants}, nil
}

const (
	directorID  = int64(1)
	workerID    = int64(2)
	otherUserID = int64(3)
)

func newTestService() (*Service, *memoryStore, *testDirectory) {
	store := newMemoryStore()
	dir := &testDirectory{
		store: store,
		rolePerms: map[int64][]string{
			directorID: {shared.PermSystemAll},
			workerID:   {shared.PermAttendanceCreate},
		},
		active: map[int64]bool{directorID: true, workerID: true, otherUserID: true},
	}
	return NewService(store, dir, dir, nil, nil), store, dir
}

func TestCreateRequiresDelegatePermission(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), workerID, CreateInput{
		ToUserID:    otherUserID,
		Permissions: []string{shared.PermSectionView},
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSystemAllHolderMayDelegateAnySubset(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermDelegate, shared.PermSectionView},
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)
	require.Equal(t, directorID, created.FromUserID)
	require.Equal(t, workerID, created.ToUserID)
}

func TestDelegationChainAndRevocation(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()

	// The worker cannot delegate on their own.
	identity, err := dir.LoadIdentity(ctx, workerID)
	require.NoError(t, err)
	require.False(t, rbac.HasPermission(identity, shared.PermDelegate))

	// The director delegates DELEGATE_PERMISSIONS to the worker.
	granted, err := svc.Create(ctx, directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermDelegate},
	})
	require.NoError(t, err)

	identity, err = dir.LoadIdentity(ctx, workerID)
	require.NoError(t, err)
	require.True(t, rbac.HasPermission(identity, shared.PermDelegate))

	// The worker can now delegate a permission they hold through their role.
	_, err = svc.Create(ctx, workerID, CreateInput{
		ToUserID:    otherUserID,
		Permissions: []string{shared.PermAttendanceCreate},
	})
	require.NoError(t, err)

	// But still not a permission they do not hold.
	_, err = svc.Create(ctx, workerID, CreateInput{
		ToUserID:    otherUserID,
		Permissions: []string{shared.PermSectionView},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	// Revoking the chain's root takes effect immediately.
	_, err = svc.Deactivate(ctx, granted.ID, directorID)
	require.NoError(t, err)

	identity, err = dir.LoadIdentity(ctx, workerID)
	require.NoError(t, err)
	require.False(t, rbac.HasPermission(identity, shared.PermDelegate))

	_, err = svc.Create(ctx, workerID, CreateInput{
		ToUserID:    otherUserID,
		Permissions: []string{shared.PermAttendanceCreate},
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCreateRejectsEmptyPermissions(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), directorID, CreateInput{ToUserID: workerID})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{"  ", ""},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownPermission(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermSectionView, "REPORT_EXPORT"},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, store.delegations, "nothing may persist on validation failure")
}

func TestCreateRejectsSelfDelegation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    directorID,
		Permissions: []string{shared.PermSectionView},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsMissingOrInactiveRecipient(t *testing.T) {
	svc, _, dir := newTestService()

	_, err := svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    99,
		Permissions: []string{shared.PermSectionView},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	dir.active[workerID] = false
	_, err = svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermSectionView},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsPastExpiry(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermSectionView},
		ExpiresAt:   time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeactivateAuthorization(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermSectionView},
	})
	require.NoError(t, err)

	// A bystander may not revoke someone else's grant.
	_, err = svc.Deactivate(ctx, created.ID, otherUserID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// The grantor may.
	deactivated, err := svc.Deactivate(ctx, created.ID, directorID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermSectionView},
	})
	require.NoError(t, err)

	first, err := svc.Deactivate(ctx, created.ID, directorID)
	require.NoError(t, err)
	require.False(t, first.IsActive)

	second, err := svc.Deactivate(ctx, created.ID, directorID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeactivateUnknownDelegation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Deactivate(context.Background(), 404, directorID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAdministratorMayRevokeForeignGrant(t *testing.T) {
	svc, store, dir := newTestService()
	ctx := context.Background()

	// Give the worker delegation rights, then let them grant something.
	_, err := svc.Create(ctx, directorID, CreateInput{
		ToUserID:    workerID,
		Permissions: []string{shared.PermDelegate},
	})
	require.NoError(t, err)

	workerGrant, err := svc.Create(ctx, workerID, CreateInput{
		ToUserID:    otherUserID,
		Permissions: []string{shared.PermAttendanceCreate},
	})
	require.NoError(t, err)

	// The director is not the grantor but holds SYSTEM_ALL.
	deactivated, err := svc.Deactivate(ctx, workerGrant.ID, directorID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	// Role downgrades do not retroactively revoke grants already made.
	dir.rolePerms[workerID] = nil
	require.True(t, store.delegations[workerGrant.ID].FromUserID == workerID)
}
