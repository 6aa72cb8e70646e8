package auth

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Repository defines the storage lookups the sign-in flow needs.
type Repository interface {
	// VerifyCredentials returns the id of the enabled user matching the
	// (username, password hash) pair exactly. The equality match happens in
	// storage, not here.
	VerifyCredentials(ctx context.Context, username, passwordHash string) (int64, error)
	// PermissionTokens returns the deduplicated permission-token set
	// currently granted to the user: permission names reachable through
	// active role and group bindings, plus the role and group names
	// themselves. Disabled entities and disabled bindings are filtered in
	// the query.
	PermissionTokens(ctx context.Context, userID int64) ([]string, error)
}

const verifyCredentialsQuery = `SELECT user_id FROM users
	WHERE username=$1 AND password_hash=$2 AND enabled=TRUE AND is_deleted=FALSE`

const permissionTokensQuery = `SELECT p.permission_name
	FROM permissions p
	JOIN role_permissions rp ON rp.permission_id = p.permission_id AND rp.is_deleted=FALSE
	JOIN roles r ON r.role_id = rp.role_id AND r.is_deleted=FALSE
	JOIN role_members rm ON rm.role_id = r.role_id AND rm.is_deleted=FALSE
	WHERE rm.user_id=$1 AND p.is_deleted=FALSE
UNION
SELECT p.permission_name
	FROM permissions p
	JOIN group_permissions gp ON gp.permission_id = p.permission_id AND gp.is_deleted=FALSE
	JOIN groups g ON g.group_id = gp.group_id AND g.is_deleted=FALSE
	JOIN group_members gm ON gm.group_id = g.group_id AND gm.is_deleted=FALSE
	WHERE gm.user_id=$1 AND p.is_deleted=FALSE
UNION
SELECT r.role_name
	FROM roles r
	JOIN role_members rm ON rm.role_id = r.role_id AND rm.is_deleted=FALSE
	WHERE rm.user_id=$1 AND r.is_deleted=FALSE
UNION
SELECT g.group_name
	FROM groups g
	JOIN group_members gm ON gm.group_id = g.group_id AND gm.is_deleted=FALSE
	WHERE gm.user_id=$1 AND g.is_deleted=FALSE
ORDER BY 1`

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db *store.DB
}

// NewRepository constructs a PGRepository.
func NewRepository(db *store.DB) *PGRepository {
	return &PGRepository{db: db}
}

// VerifyCredentials fetches the user id for an exact credentials match.
func (r *PGRepository) VerifyCredentials(ctx context.Context, username, passwordHash string) (int64, error) {
	return store.GetItem(ctx, r.db, verifyCredentialsQuery, pgx.RowTo[int64], username, passwordHash)
}

// PermissionTokens aggregates the user's current permission-token set.
func (r *PGRepository) PermissionTokens(ctx context.Context, userID int64) ([]string, error) {
	return store.ListItems(ctx, r.db, permissionTokensQuery, pgx.RowTo[string], userID)
}

var _ Repository = (*PGRepository)(nil)
