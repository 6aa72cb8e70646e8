// Package binding implements the grant reconciliation shared by every
// many-to-many binding kind: role permissions, role members, group
// permissions and group members. A binding records that a principal (role or
// group) currently holds a grantee (permission or user membership) and is
// soft-deleted rather than removed.
package binding

import "time"

// State is the lifecycle tag of a stored binding.
type State int

const (
	// StateActive marks a binding that currently grants.
	StateActive State = iota
	// StateInactive marks a soft-deleted binding that may be re-enabled.
	StateInactive
)

// Deleted reports whether the state maps to the stored is_deleted flag.
func (s State) Deleted() bool {
	return s == StateInactive
}

// StateFromDeleted converts the stored flag into a State.
func StateFromDeleted(deleted bool) State {
	if deleted {
		return StateInactive
	}
	return StateActive
}

// Binding is one grant row identified by its composite natural key
// (grantee, principal). CreatedAt is immutable after the first insert;
// UpdatedAt bumps on every enable/disable flip.
type Binding struct {
	GranteeID   int64
	PrincipalID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	State       State
}
