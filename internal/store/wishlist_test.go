package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

func newTestWishlistStore() *WishlistStore {
	return NewWishlistStore(NewMemoryStore(), newTestLogger())
}

func cuticleOil() WishlistItemInput {
	return WishlistItemInput{
		ProductID: "p-oil",
		Name:      "Cuticle Oil",
		Price:     120_00,
		Slug:      "cuticle-oil",
	}
}

func TestWishlistAdd_FirstTime(t *testing.T) {
	s := newTestWishlistStore()

	added, err := s.Add(context.Background(), "sess-1", cuticleOil())

	require.NoError(t, err)
	assert.True(t, added)

	count, err := s.Count(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWishlistAdd_DuplicateIsNoOp(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)

	added, err := s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	assert.False(t, added)

	count, err := s.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWishlistAdd_MissingProductID(t *testing.T) {
	s := newTestWishlistStore()

	_, err := s.Add(context.Background(), "sess-1", WishlistItemInput{Name: "x"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestWishlistRemove_Missing(t *testing.T) {
	s := newTestWishlistStore()

	removed, err := s.Remove(context.Background(), "sess-1", "p-oil")

	require.NoError(t, err)
	assert.False(t, removed)
}

func TestWishlistToggle_Idempotence(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	// Toggling twice always returns to the starting state.
	saved, err := s.Toggle(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.Toggle(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	assert.False(t, saved)

	count, err := s.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	saved, err = s.Toggle(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestWishlistContains(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	present, err := s.Contains(ctx, "sess-1", "p-oil")
	require.NoError(t, err)
	assert.False(t, present)

	_, err = s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)

	present, err = s.Contains(ctx, "sess-1", "p-oil")
	require.NoError(t, err)
	assert.True(t, present)
}

func TestWishlistClear(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	other := cuticleOil()
	other.ProductID = "p-polish"
	_, err = s.Add(ctx, "sess-1", other)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, "sess-1"))

	items, err := s.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlistRoundTripPersistence(t *testing.T) {
	backend := NewMemoryStore()
	ctx := context.Background()

	first := NewWishlistStore(backend, newTestLogger())
	_, err := first.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)

	second := NewWishlistStore(backend, newTestLogger())
	items, err := second.Items(ctx, "sess-1")
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "p-oil", items[0].ProductID)
	assert.Equal(t, "cuticle-oil", items[0].Slug)
}

func TestWishlistSessionsAreIsolated(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	_, err := s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)

	count, err := s.Count(ctx, "sess-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWishlistListenersNotifiedOnMutation(t *testing.T) {
	s := newTestWishlistStore()
	ctx := context.Background()

	var events []int
	unsubscribe := s.Subscribe(func(ctx context.Context, wl *domain.Wishlist) {
		events = append(events, len(wl.Items))
	})
	defer unsubscribe()

	_, err := s.Add(ctx, "sess-1", cuticleOil())
	require.NoError(t, err)
	_, err = s.Remove(ctx, "sess-1", "p-oil")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, events)
}

func TestWishlistBackendFailureDoesNotFailMutations(t *testing.T) {
	s := NewWishlistStore(failingStore{}, newTestLogger())

	added, err := s.Add(context.Background(), "sess-1", cuticleOil())

	require.NoError(t, err)
	assert.True(t, added)
}
