package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider caches resolved identities in Redis in front of an inner
// provider. Only successful resolutions are cached; unknown keys always fall
// through so a freshly registered participant authenticates immediately.
//
// A deleted or disabled participant may keep authenticating for up to one TTL;
// keep the TTL short. Redis failures degrade to the inner provider and are
// logged, never surfaced to the caller.
type CachedProvider struct {
	inner  ClaimsProvider
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProvider(inner ClaimsProvider, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (p *CachedProvider) GetIdentity(ctx context.Context, apiKey string) (*Identity, error) {
	if apiKey == "" {
		return p.inner.GetIdentity(ctx, apiKey)
	}

	cacheKey := identityCacheKey(apiKey)
	if raw, err := p.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var identity Identity
		if err := json.Unmarshal(raw, &identity); err == nil {
			return &identity, nil
		}
		// Corrupt entry; drop it and resolve fresh.
		p.rdb.Del(ctx, cacheKey)
	} else if !errors.Is(err, redis.Nil) {
		p.logger.WarnContext(ctx, "identity cache read failed", "error", err)
	}

	identity, err := p.inner.GetIdentity(ctx, apiKey)
	if err != nil || identity == nil {
		return identity, err
	}

	if raw, err := json.Marshal(identity); err == nil {
		if err := p.rdb.Set(ctx, cacheKey, raw, p.ttl).Err(); err != nil {
			p.logger.WarnContext(ctx, "identity cache write failed", "error", err)
		}
	}
	return identity, nil
}

// identityCacheKey hashes the API key so raw credentials never land in Redis.
func identityCacheKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return "botregistry:identity:" + hex.EncodeToString(sum[:])
}
