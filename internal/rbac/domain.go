// Package rbac is the single source of truth for "does user U hold
// permission P". Both the HTTP middleware and domain services evaluate
// permissions through this package; no other code inspects permission sets.
package rbac

import "time"

// Grant is the slice of a delegation the evaluator cares about: the
// delegated permission names and the optional expiry.
type Grant struct {
	DelegationID int64
	Permissions  []string
	ExpiresAt    time.Time
}

// Active reports whether the grant still applies at the given instant.
// A zero ExpiresAt means the grant never expires on its own.
func (g Grant) Active(now time.Time) bool {
	return g.ExpiresAt.IsZero() || g.ExpiresAt.After(now)
}

// Identity describes the authenticated actor as the evaluator sees it:
// the role's permission set plus currently active delegation grants.
// Effective permissions are always the union of exactly these two sources.
type Identity struct {
	UserID          int64
	RolePermissions []string
	Grants          []Grant
}
