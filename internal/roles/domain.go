package roles

import "time"

// Role is a named, reusable bundle of permissions assigned to users.
// Editing a role's permission set takes effect immediately for every user
// referencing it; there is no snapshotting.
type Role struct {
	ID             int64
	Name           string
	Permissions    []string
	CanCreateUsers bool
	CanCreateRoles bool
	BaseSalary     float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
