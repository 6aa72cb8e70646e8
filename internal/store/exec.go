package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool the primitives need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DB wraps a connection pool with the per-call deadline applied to every
// round-trip. Deadline expiry surfaces as ErrTemporary.
type DB struct {
	querier Querier
	timeout time.Duration
}

// NewDB constructs a DB. A non-positive timeout disables the per-call
// deadline.
func NewDB(querier Querier, timeout time.Duration) *DB {
	return &DB{querier: querier, timeout: timeout}
}

// NewPoolDB constructs a DB backed by a pgx pool.
func NewPoolDB(pool *pgxpool.Pool, timeout time.Duration) *DB {
	return NewDB(pool, timeout)
}

func (db *DB) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.timeout)
}

// GetItem runs a query expected to yield exactly one row. Zero rows is
// ErrNotFound; more than one is ErrFatal.
func GetItem[T any](ctx context.Context, db *DB, query string, scan pgx.RowToFunc[T], args ...any) (T, error) {
	var zero T
	ctx, cancel := db.deadline(ctx)
	defer cancel()

	rows, err := db.querier.Query(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("store: get: %w", classify(err))
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return zero, fmt.Errorf("store: get scan: %w", classify(err))
	}
	switch len(items) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return items[0], nil
	default:
		return zero, fmt.Errorf("store: get returned %d rows: %w", len(items), ErrFatal)
	}
}

// InsertItem runs an INSERT ... RETURNING expected to yield exactly one row.
// A uniqueness violation is ErrAlreadyExists.
func InsertItem[T any](ctx context.Context, db *DB, query string, scan pgx.RowToFunc[T], args ...any) (T, error) {
	var zero T
	ctx, cancel := db.deadline(ctx)
	defer cancel()

	rows, err := db.querier.Query(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("store: insert: %w", classify(err))
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return zero, fmt.Errorf("store: insert scan: %w", classify(err))
	}
	if len(items) != 1 {
		return zero, fmt.Errorf("store: insert returned %d rows: %w", len(items), ErrFatal)
	}
	return items[0], nil
}

// UpdateItem runs a conditional UPDATE ... RETURNING. Zero matched rows is
// ErrNotFound.
func UpdateItem[T any](ctx context.Context, db *DB, query string, scan pgx.RowToFunc[T], args ...any) (T, error) {
	var zero T
	ctx, cancel := db.deadline(ctx)
	defer cancel()

	rows, err := db.querier.Query(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("store: update: %w", classify(err))
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return zero, fmt.Errorf("store: update scan: %w", classify(err))
	}
	switch len(items) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return items[0], nil
	default:
		return zero, fmt.Errorf("store: update returned %d rows: %w", len(items), ErrFatal)
	}
}

// ListItems runs a query returning any number of rows.
func ListItems[T any](ctx context.Context, db *DB, query string, scan pgx.RowToFunc[T], args ...any) ([]T, error) {
	ctx, cancel := db.deadline(ctx)
	defer cancel()

	rows, err := db.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", classify(err))
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("store: list scan: %w", classify(err))
	}
	return items, nil
}

// ExecItem runs a write without RETURNING. Zero affected rows is ErrNotFound.
func ExecItem(ctx context.Context, db *DB, query string, args ...any) error {
	ctx, cancel := db.deadline(ctx)
	defer cancel()

	tag, err := db.querier.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("store: exec: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
