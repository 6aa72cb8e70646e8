package binding_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/binding"
	"github.com/gatewarden/gatewarden/internal/store"
)

type pairKey struct {
	principalID int64
	granteeID   int64
}

// fakeStore is an in-memory Store with per-operation fault injection and a
// monotonic clock so updated_at ordering is observable.
type fakeStore struct {
	rows map[pairKey]binding.Binding
	now  time.Time

	findErr    error
	findMisses int
	insertErr  error
	enableErr  error
	disableErr error

	inserts int
	enables int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: make(map[pairKey]binding.Binding),
		now:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeStore) Find(ctx context.Context, principalID, granteeID int64) (binding.Binding, error) {
	if f.findErr != nil {
		return binding.Binding{}, f.findErr
	}
	if f.findMisses > 0 {
		f.findMisses--
		return binding.Binding{}, store.ErrNotFound
	}
	row, ok := f.rows[pairKey{principalID, granteeID}]
	if !ok {
		return binding.Binding{}, store.ErrNotFound
	}
	return row, nil
}

func (f *fakeStore) Insert(ctx context.Context, principalID, granteeID int64) (binding.Binding, error) {
	if f.insertErr != nil {
		return binding.Binding{}, f.insertErr
	}
	key := pairKey{principalID, granteeID}
	if _, ok := f.rows[key]; ok {
		return binding.Binding{}, store.ErrAlreadyExists
	}
	now := f.tick()
	row := binding.Binding{
		GranteeID:   granteeID,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
		State:       binding.StateActive,
	}
	f.rows[key] = row
	f.inserts++
	return row, nil
}

func (f *fakeStore) Enable(ctx context.Context, principalID, granteeID int64) (binding.Binding, error) {
	if f.enableErr != nil {
		return binding.Binding{}, f.enableErr
	}
	key := pairKey{principalID, granteeID}
	row, ok := f.rows[key]
	if !ok {
		return binding.Binding{}, store.ErrNotFound
	}
	row.State = binding.StateActive
	row.UpdatedAt = f.tick()
	f.rows[key] = row
	f.enables++
	return row, nil
}

func (f *fakeStore) Disable(ctx context.Context, principalID, granteeID int64) (binding.Binding, error) {
	if f.disableErr != nil {
		return binding.Binding{}, f.disableErr
	}
	key := pairKey{principalID, granteeID}
	row, ok := f.rows[key]
	if !ok || row.State != binding.StateActive {
		return binding.Binding{}, store.ErrNotFound
	}
	row.State = binding.StateInactive
	row.UpdatedAt = f.tick()
	f.rows[key] = row
	return row, nil
}

func TestBindAbsentInserts(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)

	got, err := rec.Bind(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, binding.StateActive, got.State)
	require.Equal(t, int64(1), got.PrincipalID)
	require.Equal(t, int64(1), got.GranteeID)
	require.Equal(t, got.CreatedAt, got.UpdatedAt)
	require.Equal(t, 1, fs.inserts)
}

func TestBindActiveIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)

	first, err := rec.Bind(context.Background(), 7, 3)
	require.NoError(t, err)

	second, err := rec.Bind(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Equal(t, first, second, "repeated bind of an active pair must not touch the row")
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)
	require.Equal(t, 1, fs.inserts)
	require.Equal(t, 0, fs.enables)
}

func TestBindAfterUnbindReactivates(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)
	ctx := context.Background()

	bound, err := rec.Bind(ctx, 1, 1)
	require.NoError(t, err)

	unbound, err := rec.Unbind(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, binding.StateInactive, unbound.State)
	require.True(t, unbound.UpdatedAt.After(bound.UpdatedAt))
	require.Equal(t, bound.CreatedAt, unbound.CreatedAt)

	rebound, err := rec.Bind(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, binding.StateActive, rebound.State)
	require.True(t, rebound.UpdatedAt.After(unbound.UpdatedAt))
	require.Equal(t, bound.CreatedAt, rebound.CreatedAt, "created_at is immutable across the lifecycle")
	require.Len(t, fs.rows, 1, "rebind must reactivate, not duplicate")
	require.Equal(t, 1, fs.inserts)
}

func TestUnbindAbsentIsNotFound(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)

	_, err := rec.Unbind(context.Background(), 9, 9)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnbindInactiveIsNotFound(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)
	ctx := context.Background()

	_, err := rec.Bind(ctx, 2, 4)
	require.NoError(t, err)
	_, err = rec.Unbind(ctx, 2, 4)
	require.NoError(t, err)

	_, err = rec.Unbind(ctx, 2, 4)
	require.ErrorIs(t, err, store.ErrNotFound, "double unbind and never-bound are indistinguishable")
}

func TestBindInsertRaceResolvesToActive(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)
	ctx := context.Background()

	// The winner inserted between our lookup and our insert: the first Find
	// misses, the insert is rejected, the second Find sees the winner's row.
	winner, err := fs.Insert(ctx, 5, 5)
	require.NoError(t, err)
	fs.findMisses = 1
	fs.insertErr = store.ErrAlreadyExists

	got, err := rec.Bind(ctx, 5, 5)
	require.NoError(t, err, "losing the insert race must not surface a conflict")
	require.Equal(t, binding.StateActive, got.State)
	require.Equal(t, winner, got)
}

func TestBindInsertRaceEnablesInactiveRow(t *testing.T) {
	fs := newFakeStore()
	rec := binding.NewReconciler(fs)
	ctx := context.Background()

	_, err := fs.Insert(ctx, 5, 5)
	require.NoError(t, err)
	_, err = fs.Disable(ctx, 5, 5)
	require.NoError(t, err)
	fs.findMisses = 1
	fs.insertErr = store.ErrAlreadyExists

	got, err := rec.Bind(ctx, 5, 5)
	require.NoError(t, err)
	require.Equal(t, binding.StateActive, got.State)
	require.Equal(t, 1, fs.enables)
}

func TestBindPropagatesTemporaryFault(t *testing.T) {
	fs := newFakeStore()
	fs.findErr = store.ErrTemporary
	rec := binding.NewReconciler(fs)

	_, err := rec.Bind(context.Background(), 1, 2)
	require.ErrorIs(t, err, store.ErrTemporary)
}

func TestBindCollapsesUnknownFaultToFatal(t *testing.T) {
	fs := newFakeStore()
	fs.insertErr = errors.New("row count mismatch")
	rec := binding.NewReconciler(fs)

	_, err := rec.Bind(context.Background(), 1, 2)
	require.ErrorIs(t, err, store.ErrFatal)
	require.NotErrorIs(t, err, store.ErrTemporary)
}

func TestUnbindPropagatesTemporaryFault(t *testing.T) {
	fs := newFakeStore()
	fs.disableErr = store.ErrTemporary
	rec := binding.NewReconciler(fs)

	_, err := rec.Unbind(context.Background(), 1, 2)
	require.ErrorIs(t, err, store.ErrTemporary)
}
