// Package roles manages the role catalog and the grants a role holds:
// permission bindings and user memberships.
package roles

import "time"

// Role is a named grant holder. Disabled roles stay in storage and keep
// their bindings; the permission aggregation filters them at read time.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}
