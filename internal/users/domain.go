package users

import "time"

// User represents a user account for management. Each user references
// exactly one role; the role is shared, not owned.
type User struct {
	ID        int64
	Username  string
	FullName  string
	IsActive  bool
	RoleID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
