package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenCacheRepository handles Redis operations for caching verified bearer
// tokens, so repeat requests with the same session token skip signature
// verification. Entries expire well before any sane token lifetime.
type TokenCacheRepository struct {
	redis     *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewTokenCacheRepository(rdb *redis.Client, ttl time.Duration) *TokenCacheRepository {
	return &TokenCacheRepository{
		redis:     rdb,
		keyPrefix: "auth_token",
		ttl:       ttl,
	}
}

// tokenKey derives the cache key from the raw token. Only a digest is
// stored so the token itself never lands in Redis.
func (r *TokenCacheRepository) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(sum[:]))
}

// GetUserID retrieves the user id a token was previously verified for.
// Returns empty string without error on a cache miss.
func (r *TokenCacheRepository) GetUserID(ctx context.Context, token string) (string, error) {
	userID, err := r.redis.Get(ctx, r.tokenKey(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token cache: %w", err)
	}
	return userID, nil
}

// SetUserID records a verified token -> user id mapping with the cache TTL.
func (r *TokenCacheRepository) SetUserID(ctx context.Context, token string, userID string) error {
	return r.redis.Set(ctx, r.tokenKey(token), userID, r.ttl).Err()
}

// DeleteToken drops a cached token, e.g. after it failed re-verification.
func (r *TokenCacheRepository) DeleteToken(ctx context.Context, token string) error {
	return r.redis.Del(ctx, r.tokenKey(token)).Err()
}
