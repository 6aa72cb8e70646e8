// Package entity provides the shared persistence shape for the named
// catalog entities (roles, groups, permissions): a surrogate id, a unique
// name and the soft-delete lifecycle. Table and column names are data so the
// three catalogs share one implementation.
package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Record is one catalog row.
type Record struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// Repo is a table-parameterized repository for one catalog.
type Repo struct {
	db *store.DB

	findQuery    string
	insertQuery  string
	disableQuery string
}

// NewRepo constructs a Repo over the given table. Identifier arguments are
// compile-time constants supplied by the feature packages.
func NewRepo(db *store.DB, table, idCol, nameCol string) *Repo {
	columns := fmt.Sprintf("%s, %s, created_at, updated_at, is_deleted", idCol, nameCol)
	return &Repo{
		db: db,
		findQuery: fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s=$1",
			columns, table, idCol),
		insertQuery: fmt.Sprintf(
			"INSERT INTO %s (%s, created_at, updated_at, is_deleted) VALUES ($1, $2, $2, FALSE) RETURNING %s",
			table, nameCol, columns),
		disableQuery: fmt.Sprintf(
			"UPDATE %s SET is_deleted=TRUE, updated_at=$1 WHERE %s=$2 AND is_deleted=FALSE",
			table, idCol),
	}
}

type record struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

func toRecord(row record) Record {
	return Record{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Deleted:   row.IsDeleted,
	}
}

// FindByID fetches a row by id, deleted or not; readers decide what a
// deleted row means.
func (r *Repo) FindByID(ctx context.Context, id int64) (Record, error) {
	row, err := store.GetItem(ctx, r.db, r.findQuery, pgx.RowToStructByPos[record], id)
	if err != nil {
		return Record{}, err
	}
	return toRecord(row), nil
}

// Insert creates an active row. Duplicate names surface as
// store.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, name string) (Record, error) {
	now := time.Now().UTC()
	row, err := store.InsertItem(ctx, r.db, r.insertQuery, pgx.RowToStructByPos[record], name, now)
	if err != nil {
		return Record{}, err
	}
	return toRecord(row), nil
}

// DisableByID soft-deletes a row. There is no re-enable for catalog
// entities; only bindings flip back.
func (r *Repo) DisableByID(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return store.ExecItem(ctx, r.db, r.disableQuery, now, id)
}
