package binding

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Store defines persistence operations for one binding kind, keyed by the
// composite (principal, grantee) pair.
type Store interface {
	Find(ctx context.Context, principalID, granteeID int64) (Binding, error)
	Insert(ctx context.Context, principalID, granteeID int64) (Binding, error)
	Enable(ctx context.Context, principalID, granteeID int64) (Binding, error)
	Disable(ctx context.Context, principalID, granteeID int64) (Binding, error)
}

// Reconciler decides, per (principal, grantee) pair, whether a bind is a
// no-op, a re-enable or a fresh insert, and soft-disables on unbind. One
// Reconciler is instantiated per binding kind over a kind-specific Store.
type Reconciler struct {
	store Store
}

// NewReconciler constructs a Reconciler over the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Bind ensures an active binding exists for the pair and returns it.
// Binding an already-active pair returns the row unchanged. The lookup and
// the write are not atomic: two concurrent Binds on an absent pair race on
// the insert, and the loser resolves the uniqueness rejection by re-reading
// the winner's row so both callers observe the same active binding.
func (r *Reconciler) Bind(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	current, err := r.store.Find(ctx, principalID, granteeID)
	switch {
	case err == nil:
		if current.State == StateActive {
			return current, nil
		}
		return r.enable(ctx, principalID, granteeID)
	case errors.Is(err, store.ErrNotFound):
		return r.insert(ctx, principalID, granteeID)
	default:
		return Binding{}, fmt.Errorf("binding: bind lookup: %w", propagate(err))
	}
}

// Unbind soft-disables the binding and returns the now-inactive row. A pair
// that was never bound and a pair already inactive are indistinguishable:
// both return store.ErrNotFound.
func (r *Reconciler) Unbind(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	disabled, err := r.store.Disable(ctx, principalID, granteeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Binding{}, store.ErrNotFound
		}
		return Binding{}, fmt.Errorf("binding: unbind: %w", propagate(err))
	}
	return disabled, nil
}

func (r *Reconciler) insert(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	inserted, err := r.store.Insert(ctx, principalID, granteeID)
	if err == nil {
		return inserted, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return Binding{}, fmt.Errorf("binding: bind insert: %w", propagate(err))
	}

	// Lost the insert race; the row exists now.
	current, err := r.store.Find(ctx, principalID, granteeID)
	if err != nil {
		return Binding{}, fmt.Errorf("binding: bind race lookup: %w", propagate(err))
	}
	if current.State == StateActive {
		return current, nil
	}
	return r.enable(ctx, principalID, granteeID)
}

func (r *Reconciler) enable(ctx context.Context, principalID, granteeID int64) (Binding, error) {
	enabled, err := r.store.Enable(ctx, principalID, granteeID)
	if err != nil {
		return Binding{}, fmt.Errorf("binding: bind enable: %w", propagate(err))
	}
	return enabled, nil
}

// propagate keeps temporary faults retryable and collapses everything else
// to fatal.
func propagate(err error) error {
	if errors.Is(err, store.ErrTemporary) {
		return store.ErrTemporary
	}
	return store.ErrFatal
}
