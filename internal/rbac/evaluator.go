package rbac

import (
	"sort"
	"time"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// HasPermission reports whether the identity holds the permission, either
// through its role or through an active delegation grant. SYSTEM_ALL
// short-circuits at both levels. A false result is a value, never an error.
func HasPermission(id Identity, permission string) bool {
	return hasPermissionAt(id, permission, time.Now())
}

// HasAnyPermission reports whether the identity holds at least one of the
// given permissions.
func HasAnyPermission(id Identity, permissions ...string) bool {
	now := time.Now()
	for _, p := range permissions {
		if hasPermissionAt(id, p, now) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the identity holds every one of the
// given permissions.
func HasAllPermissions(id Identity, permissions ...string) bool {
	now := time.Now()
	for _, p := range permissions {
		if !hasPermissionAt(id, p, now) {
			return false
		}
	}
	return true
}

func hasPermissionAt(id Identity, permission string, now time.Time) bool {
	if setSatisfies(id.RolePermissions, permission) {
		return true
	}
	for _, g := range id.Grants {
		if !g.Active(now) {
			continue
		}
		if setSatisfies(g.Permissions, permission) {
			return true
		}
	}
	return false
}

func setSatisfies(granted []string, required string) bool {
	for _, p := range granted {
		if p == shared.PermSystemAll || p == required {
			return true
		}
	}
	return false
}

// EffectivePermissions returns the deduplicated, sorted union of the role's
// permissions and every active grant's permissions. When the union contains
// SYSTEM_ALL the whole catalog is returned. Read endpoints expose this for
// UI gating; it is never an enforcement point.
func EffectivePermissions(id Identity) []string {
	now := time.Now()
	union := make(map[string]struct{}, len(id.RolePermissions))
	for _, p := range id.RolePermissions {
		union[p] = struct{}{}
	}
	for _, g := range id.Grants {
		if !g.Active(now) {
			continue
		}
		for _, p := range g.Permissions {
			union[p] = struct{}{}
		}
	}
	if _, all := union[shared.PermSystemAll]; all {
		for _, p := range shared.AllPermissions() {
			union[p] = struct{}{}
		}
	}
	perms := make([]string, 0, len(union))
	for p := range union {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}
