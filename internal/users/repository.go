package users

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	Insert(ctx context.Context, username, passwordHash string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	DisableByID(ctx context.Context, id int64) error
}

const (
	insertUserQuery = `INSERT INTO users (username, password_hash, enabled, created_at, updated_at, is_deleted)
	VALUES ($1, $2, TRUE, $3, $3, FALSE)
	RETURNING user_id, username, enabled, created_at, updated_at`

	findUserQuery = `SELECT user_id, username, enabled, created_at, updated_at
	FROM users WHERE user_id=$1`

	disableUserQuery = `UPDATE users SET is_deleted=TRUE, updated_at=$1
	WHERE user_id=$2 AND is_deleted=FALSE`
)

type userRow struct {
	ID        int64
	Username  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db *store.DB
}

// NewRepository constructs a PGRepository.
func NewRepository(db *store.DB) *PGRepository {
	return &PGRepository{db: db}
}

// Insert creates an enabled user. A duplicate username surfaces as
// store.ErrAlreadyExists.
func (r *PGRepository) Insert(ctx context.Context, username, passwordHash string) (User, error) {
	now := time.Now().UTC()
	row, err := store.InsertItem(ctx, r.db, insertUserQuery, pgx.RowToStructByPos[userRow], username, passwordHash, now)
	if err != nil {
		return User{}, err
	}
	return toUser(row), nil
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row, err := store.GetItem(ctx, r.db, findUserQuery, pgx.RowToStructByPos[userRow], id)
	if err != nil {
		return User{}, err
	}
	return toUser(row), nil
}

// DisableByID soft-deletes a user. Rows already disabled match nothing and
// surface as store.ErrNotFound.
func (r *PGRepository) DisableByID(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return store.ExecItem(ctx, r.db, disableUserQuery, now, id)
}

func toUser(row userRow) User {
	return User{
		ID:        row.ID,
		Username:  row.Username,
		Enabled:   row.Enabled,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

var _ Repository = (*PGRepository)(nil)
