package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "wallet:owner:"

type cachedWallet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	PathIndex int64     `json:"path_index"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CachedStore is a read-through Redis cache in front of a Store. Wallets are
// immutable so entries never need invalidation. Misses are not cached and
// Redis failures fall back to the wrapped store.
type CachedStore struct {
	Store
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps inner with a Redis cache.
func NewCachedStore(inner Store, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{Store: inner, cache: cache, ttl: ttl, logger: logger}
}

// FindByOwner serves from Redis when possible.
func (s *CachedStore) FindByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	raw, err := s.cache.Get(ctx, cachePrefix+ownerID).Bytes()
	if err == nil {
		var cw cachedWallet
		if jerr := json.Unmarshal(raw, &cw); jerr == nil {
			return Wallet(cw), nil
		}
		s.logger.Warn("discarding undecodable cached wallet", slog.String("owner_id", ownerID))
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("wallet cache lookup failed", slog.String("owner_id", ownerID), slog.Any("error", err))
	}

	w, err := s.Store.FindByOwner(ctx, ownerID)
	if err != nil {
		return Wallet{}, err
	}
	s.put(ctx, w)
	return w, nil
}

// CreateNext delegates and primes the cache with the new wallet.
func (s *CachedStore) CreateNext(ctx context.Context, ownerID string, build BuildFunc) (Wallet, error) {
	w, err := s.Store.CreateNext(ctx, ownerID, build)
	if err != nil {
		return Wallet{}, err
	}
	s.put(ctx, w)
	return w, nil
}

func (s *CachedStore) put(ctx context.Context, w Wallet) {
	payload, err := json.Marshal(cachedWallet(w))
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cachePrefix+w.OwnerID, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("wallet cache write failed", slog.String("owner_id", w.OwnerID), slog.Any("error", err))
	}
}
