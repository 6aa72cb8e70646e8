// Package permissions manages the permission catalog.
package permissions

import "time"

// Permission is an atomic capability name granted to roles and groups
// through bindings.
type Permission struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}
