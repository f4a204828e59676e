package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

func newMiniRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	s, _ := newMiniRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "cart:sess-1", []byte(`{"id":"c-1"}`)))

	data, err := s.Load(ctx, "cart:sess-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c-1"}`, string(data))
}

func TestRedisStore_LoadMissingKey(t *testing.T) {
	s, _ := newMiniRedisStore(t, time.Hour)

	_, err := s.Load(context.Background(), "cart:absent")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	s, _ := newMiniRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "cart:sess-1", []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, "cart:sess-1"))

	_, err := s.Load(ctx, "cart:sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, s.Delete(ctx, "cart:sess-1"))
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	s, mr := newMiniRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "cart:sess-1", []byte(`{}`)))

	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "cart:sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartStore_OverRedisBackend(t *testing.T) {
	backend, _ := newMiniRedisStore(t, time.Hour)
	ctx := context.Background()

	first := NewCartStore(backend, newTestLogger())
	cart, err := first.AddItem(ctx, "sess-1", polishInput("p-1", 150_00, 2))
	require.NoError(t, err)

	second := NewCartStore(backend, newTestLogger())
	restored, err := second.Snapshot(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, cart.ID, restored.ID)
	assert.Equal(t, cart.SubtotalAmount, restored.SubtotalAmount)
	require.Len(t, restored.Items, 1)
	assert.Equal(t, 2, restored.Items[0].Quantity)
}
