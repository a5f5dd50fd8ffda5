package auth

import "time"

// User is an account able to authenticate against the API.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	IsActive     bool
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
