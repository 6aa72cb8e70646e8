// Package store implements the access model port shared by every repository:
// generic single-row query primitives over pgx plus the four-kind error
// taxonomy the use cases distinguish.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors every storage outcome collapses into. Use cases and
// transport only ever branch on these four.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists indicates a uniqueness constraint rejected an insert.
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrTemporary indicates a retryable infrastructure fault.
	ErrTemporary = errors.New("store: temporary fault")
	// ErrFatal indicates a non-retryable fault.
	ErrFatal = errors.New("store: fatal fault")
)

const uniqueViolationCode = "23505"

// classify collapses a pgx error into the port taxonomy. Uniqueness
// violations map to ErrAlreadyExists, connection-level and deadline faults to
// ErrTemporary, everything else to ErrFatal. pgx.ErrNoRows is handled by the
// callers because its meaning depends on the operation.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTemporary
	case pgconn.Timeout(err), pgconn.SafeToRetry(err):
		return ErrTemporary
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrAlreadyExists
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return ErrFatal
}
