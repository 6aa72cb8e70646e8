// Package users manages user accounts: creation with password hashing,
// lookup and soft-disable.
package users

import "time"

// User represents an account. The password hash never leaves the storage
// layer except for the equality match during sign-in.
type User struct {
	ID        int64
	Username  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
