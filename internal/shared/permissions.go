package shared

import "strings"

// Farm platform permissions. The catalog is fixed at build time; every
// write path validating permission strings checks against this set.
const (
	// PermSystemAll is the wildcard permission. Holding it satisfies
	// every permission check.
	PermSystemAll = "SYSTEM_ALL"

	// PermDelegate allows a user to delegate a subset of their own
	// permissions to another user.
	PermDelegate = "DELEGATE_PERMISSIONS"

	PermSectionView   = "SECTION_VIEW"
	PermSectionManage = "SECTION_MANAGE"

	PermBatchView   = "BATCH_VIEW"
	PermBatchManage = "BATCH_MANAGE"

	PermAttendanceCreate = "ATTENDANCE_CREATE"
	PermAttendanceView   = "ATTENDANCE_VIEW"

	PermUserView   = "USER_VIEW"
	PermUserCreate = "USER_CREATE"
	PermUserUpdate = "USER_UPDATE"

	PermRoleView   = "ROLE_VIEW"
	PermRoleManage = "ROLE_MANAGE"

	PermPriceView   = "PRICE_VIEW"
	PermPriceManage = "PRICE_MANAGE"
)

var catalog = map[string]struct{}{
	PermSystemAll:        {},
	PermDelegate:         {},
	PermSectionView:      {},
	PermSectionManage:    {},
	PermBatchView:        {},
	PermBatchManage:      {},
	PermAttendanceCreate: {},
	PermAttendanceView:   {},
	PermUserView:         {},
	PermUserCreate:       {},
	PermUserUpdate:       {},
	PermRoleView:         {},
	PermRoleManage:       {},
	PermPriceView:        {},
	PermPriceManage:      {},
}

// IsValidPermission reports whether p is a catalog permission.
func IsValidPermission(p string) bool {
	_, ok := catalog[p]
	return ok
}

// AllPermissions lists every catalog permission.
func AllPermissions() []string {
	perms := make([]string, 0, len(catalog))
	for p := range catalog {
		perms = append(perms, p)
	}
	return perms
}

// NormalizePermissions trims, uppercases and deduplicates permission names.
// Empty entries are dropped. Membership in the catalog is not checked here.
func NormalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, seen := unique[p]; seen {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}

// UnknownPermissions returns the entries of perms that are not in the catalog.
func UnknownPermissions(perms []string) []string {
	var unknown []string
	for _, p := range perms {
		if !IsValidPermission(p) {
			unknown = append(unknown, p)
		}
	}
	return unknown
}
