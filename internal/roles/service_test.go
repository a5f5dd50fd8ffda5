package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

type memoryRepo struct {
	roles  map[int64]Role
	byName map[string]int64
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{roles: make(map[int64]Role), byName: make(map[string]int64)}
}

func (r *memoryRepo) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return Role{}, shared.ErrNotFound
}

func (r *memoryRepo) CreateRole(ctx context.Context, role Role) (Role, error) {
	if _, taken := r.byName[role.Name]; taken {
		return Role{}, ErrDuplicateName
	}
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = role
	r.byName[role.Name] = role.ID
	return role, nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, role Role) (Role, error) {
	existing, ok := r.roles[role.ID]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	if id, taken := r.byName[role.Name]; taken && id != role.ID {
		return Role{}, ErrDuplicateName
	}
	delete(r.byName, existing.Name)
	r.roles[role.ID] = role
	r.byName[role.Name] = role.ID
	return role, nil
}

func (r *memoryRepo) DeleteRole(ctx context.Context, id int64) error {
	role, ok := r.roles[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(r.roles, id)
	delete(r.byName, role.Name)
	return nil
}

type allowAll struct{}

func (allowAll) CanCreateRoles(ctx context.Context, userID int64) (bool, error) {
	return true, nil
}

type denyAll struct{}

func (denyAll) CanCreateRoles(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}

func TestCreateRoleValidatesCatalog(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAll{})

	_, err := svc.CreateRole(context.Background(), 1, Input{
		Name:        "DIRECTOR",
		Permissions: []string{shared.PermSystemAll, "NOT_A_PERMISSION"},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	created, err := svc.CreateRole(context.Background(), 1, Input{
		Name:        "DIRECTOR",
		Permissions: []string{shared.PermSystemAll},
		BaseSalary:  9000000,
	})
	require.NoError(t, err)
	require.Equal(t, []string{shared.PermSystemAll}, created.Permissions)
}

func TestCreateRoleRejectsDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAll{})
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, 1, Input{Name: "E2E_WORKER", Permissions: []string{shared.PermAttendanceCreate}})
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, 1, Input{Name: "E2E_WORKER", Permissions: []string{shared.PermSectionView}})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateRoleRejectsNegativeSalary(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAll{})

	_, err := svc.CreateRole(context.Background(), 1, Input{Name: "KEEPER", BaseSalary: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRoleRequiresCapability(t *testing.T) {
	svc := NewService(newMemoryRepo(), denyAll{})

	_, err := svc.CreateRole(context.Background(), 1, Input{Name: "KEEPER"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateRoleNormalizesPermissions(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, allowAll{})
	ctx := context.Background()

	created, err := svc.CreateRole(ctx, 1, Input{Name: "KEEPER", Permissions: []string{shared.PermSectionView}})
	require.NoError(t, err)

	updated, err := svc.UpdateRole(ctx, created.ID, Input{
		Name:        "KEEPER",
		Permissions: []string{" section_view ", "SECTION_VIEW", "batch_view"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{shared.PermSectionView, shared.PermBatchView}, updated.Permissions)
}

func TestDeleteMissingRole(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAll{})
	err := svc.DeleteRole(context.Background(), 42)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
