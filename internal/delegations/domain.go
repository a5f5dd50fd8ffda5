// Package delegations manages time-boxed permission grants between users.
// A delegation is a point-in-time grant: it records what the grantor held
// when it was created and is not revalidated against later role changes.
package delegations

import "time"

// Delegation is a revocable grant of a permission subset from one user to
// another. ExpiresAt is optional; the zero value means no automatic expiry.
type Delegation struct {
	ID          int64
	FromUserID  int64
	ToUserID    int64
	Permissions []string
	IsActive    bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
