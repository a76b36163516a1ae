package wallet

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/logging"
)

type countingStore struct {
	Store
	finds atomic.Int32
}

func (s *countingStore) FindByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	s.finds.Add(1)
	return s.Store.FindByOwner(ctx, ownerID)
}

func newCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func buildAt(owner string) BuildFunc {
	return func(idx int64) (Wallet, error) {
		return Wallet{
			ID:        uuid.NewString(),
			OwnerID:   owner,
			PathIndex: idx,
			Address:   "0xabc",
			CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}, nil
	}
}

func TestCachedStoreServesFromRedisAfterFirstRead(t *testing.T) {
	ctx := context.Background()
	mr, client := newCache(t)
	inner := &countingStore{Store: NewMemoryRepository()}
	owner := uuid.NewString()

	_, err := inner.Store.CreateNext(ctx, owner, buildAt(owner))
	require.NoError(t, err)

	cached := NewCachedStore(inner, client, time.Minute, logging.Discard())
	first, err := cached.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cachePrefix+owner))

	second, err := cached.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.finds.Load())
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	mr, client := newCache(t)
	cached := NewCachedStore(NewMemoryRepository(), client, time.Minute, logging.Discard())
	owner := uuid.NewString()

	_, err := cached.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, mr.Exists(cachePrefix+owner))
}

func TestCachedStorePrimesOnCreate(t *testing.T) {
	ctx := context.Background()
	mr, client := newCache(t)
	cached := NewCachedStore(NewMemoryRepository(), client, time.Minute, logging.Discard())
	owner := uuid.NewString()

	w, err := cached.CreateNext(ctx, owner, buildAt(owner))
	require.NoError(t, err)
	assert.True(t, mr.Exists(cachePrefix+owner))
	assert.Equal(t, time.Minute, mr.TTL(cachePrefix+owner))

	got, err := cached.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestCachedStoreFailsOpen(t *testing.T) {
	ctx := context.Background()
	mr, client := newCache(t)
	inner := &countingStore{Store: NewMemoryRepository()}
	owner := uuid.NewString()
	_, err := inner.Store.CreateNext(ctx, owner, buildAt(owner))
	require.NoError(t, err)

	cached := NewCachedStore(inner, client, time.Minute, logging.Discard())
	mr.Close()

	w, err := cached.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, w.OwnerID)
	assert.Equal(t, int32(1), inner.finds.Load())
}

func TestCachedStoreDropsUndecodableEntries(t *testing.T) {
	ctx := context.Background()
	mr, client := newCache(t)
	inner := &countingStore{Store: NewMemoryRepository()}
	owner := uuid.NewString()
	_, err := inner.Store.CreateNext(ctx, owner, buildAt(owner))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cachePrefix+owner, "{not json"))

	cached := NewCachedStore(inner, client, time.Minute, logging.Discard())
	w, err := cached.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, w.OwnerID)
	assert.Equal(t, int32(1), inner.finds.Load())
}
