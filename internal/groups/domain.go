// Package groups manages the group catalog and its grants: permission
// bindings and user memberships.
package groups

import "time"

// Group is a named grant holder, structurally identical to a role but kept
// as a separate catalog so coarse group-level and role-level checks stay
// distinguishable.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}
