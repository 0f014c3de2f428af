// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// generationKey counts invalidations. It sits outside responseKeyPrefix
	// so InvalidateAll's scan never removes it.
	generationKey = "respgen"

	// DefaultResponseTTL bounds staleness if an invalidation is missed.
	DefaultResponseTTL = time.Minute
)

// ResponseCache stores serialized JSON bodies of public listing endpoints
// keyed by generation and request URI. Every content write bumps the
// generation before clearing old entries, so a body built before a write
// can only land under a generation nobody reads anymore.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get returns the cached body for key. Errors count as misses.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return val, true
}

// Generation returns the current invalidation counter. ok is false when
// Valkey cannot be reached, in which case callers should bypass the cache.
func (rc *ResponseCache) Generation(ctx context.Context) (string, bool) {
	n, err := rc.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return "0", true
	}
	if err != nil {
		slog.Warn("response cache generation error", "error", err)
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// Set stores body under key with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := rc.client.Set(ctx, responseKeyPrefix+key, body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidateAll bumps the generation, then removes every cached response
// by scanning for the prefix.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	if err := rc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("response cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("response cache cleared", "deleted", deleted)
	}
}
