package binding

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatewarden/gatewarden/internal/store"
)

// PGStore implements Store for one binding table. The four binding kinds
// share this implementation; table and key column names are data, not code.
type PGStore struct {
	db *store.DB

	findQuery    string
	insertQuery  string
	enableQuery  string
	disableQuery string
}

type bindingRow struct {
	GranteeID   int64
	PrincipalID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsDeleted   bool
}

// NewPGStore constructs a PGStore over the given table. Identifier arguments
// are compile-time constants supplied by the feature packages, never user
// input.
func NewPGStore(db *store.DB, table, granteeCol, principalCol string) *PGStore {
	columns := fmt.Sprintf("%s, %s, created_at, updated_at, is_deleted", granteeCol, principalCol)
	return &PGStore{
		db: db,
		findQuery: fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s=$1 AND %s=$2",
			columns, table, granteeCol, principalCol),
		insertQuery: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES ($1, $2, $3, $3, FALSE) RETURNING %s",
			table, columns, columns),
		enableQuery: fmt.Sprintf(
			"UPDATE %s SET is_deleted=FALSE, updated_at=$3 WHERE %s=$1 AND %s=$2 RETURNING %s",
			table, granteeCol, principalCol, columns),
		disableQuery: fmt.Sprintf(
			"UPDATE %s SET is_deleted=TRUE, updated_at=$3 WHERE %s=$1 AND %s=$2 AND is_deleted=FALSE RETURNING %s",
			table, granteeCol, principalCol, columns),
	}
}

// NewRolePermissions builds the store for permission grants to roles.
func NewRolePermissions(db *store.DB) *PGStore {
	return NewPGStore(db, "role_permissions", "permission_id", "role_id")
}

// NewRoleMembers builds the store for user memberships in roles.
func NewRoleMembers(db *store.DB) *PGStore {
	return NewPGStore(db, "role_members", "user_id", "role_id")
}

// NewGroupPermissions builds the store for permission grants to groups.
func NewGroupPermissions(db *store.DB) *PGStore {
	return NewPGStore(db, "group_permissions", "permission_id", "group_id")
}

// NewGroupMembers builds the store for user memberships in groups.
func NewGroupMembers(db *store.DB) *PGStore {
	return NewPGStore(db, "group_members", "user_id", "group_id")
}

// Find fetches the binding by its composite key.
func (s *PGStore) Find(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	row, err := store.GetItem(ctx, s.db, s.findQuery, pgx.RowToStructByPos[bindingRow], granteeID, principalID)
	if err != nil {
		return Binding{}, err
	}
	return toBinding(row), nil
}

// Insert creates a fresh active binding.
func (s *PGStore) Insert(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	now := time.Now().UTC()
	row, err := store.InsertItem(ctx, s.db, s.insertQuery, pgx.RowToStructByPos[bindingRow], granteeID, principalID, now)
	if err != nil {
		return Binding{}, err
	}
	return toBinding(row), nil
}

// Enable flips an existing binding back to active and bumps updated_at.
func (s *PGStore) Enable(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	now := time.Now().UTC()
	row, err := store.UpdateItem(ctx, s.db, s.enableQuery, pgx.RowToStructByPos[bindingRow], granteeID, principalID, now)
	if err != nil {
		return Binding{}, err
	}
	return toBinding(row), nil
}

// Disable soft-deletes an active binding. The conditional update matches
// zero rows for both never-bound and already-inactive pairs.
func (s *PGStore) Disable(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	now := time.Now().UTC()
	row, err := store.UpdateItem(ctx, s.db, s.disableQuery, pgx.RowToStructByPos[bindingRow], granteeID, principalID, now)
	if err != nil {
		return Binding{}, err
	}
	return toBinding(row), nil
}

func toBinding(row bindingRow) Binding {
	return Binding{
		GranteeID:   row.GranteeID,
		PrincipalID: row.PrincipalID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		State:       StateFromDeleted(row.IsDeleted),
	}
}

var _ Store = (*PGStore)(nil)
