// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// group.go provides a Valkey-backed read-through cache (L2) in front of a
// content group repository. Query results are stored as JSON so loaders in
// other processes skip the database entirely. Any write clears every
// cached entry, since a saved group can match any earlier query.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"contentcms/internal/models"
	"contentcms/internal/store"
)

const (
	// groupKeyPrefix is the Valkey key prefix for cached content groups.
	groupKeyPrefix = "content:"

	// DefaultGroupTTL is how long a cached query result is kept.
	DefaultGroupTTL = 5 * time.Minute

	// opTimeout bounds every Valkey round trip.
	opTimeout = 2 * time.Second
)

// GroupCache wraps a store.Repository with a Valkey read-through cache.
// Cache errors are logged and the call falls through to the repository.
type GroupCache struct {
	repo   store.Repository
	client *redis.Client
	ttl    time.Duration
}

// NewGroupCache creates a cache in front of repo backed by the given Valkey client.
func NewGroupCache(repo store.Repository, client *redis.Client, ttl time.Duration) *GroupCache {
	if ttl == 0 {
		ttl = DefaultGroupTTL
	}
	return &GroupCache{repo: repo, client: client, ttl: ttl}
}

// MatchingKey returns the cache key of a query.
func MatchingKey(c store.Criteria) string {
	return groupKeyPrefix + "match:" + c.String()
}

// IDKey returns the cache key of a single group.
func IDKey(id int64) string {
	return fmt.Sprintf("%sid:%d", groupKeyPrefix, id)
}

// Matching serves the query from the cache, loading and storing it on a miss.
func (gc *GroupCache) Matching(c store.Criteria) ([]*models.ContentGroup, error) {
	key := MatchingKey(c)
	var groups []*models.ContentGroup
	if gc.get(key, &groups) {
		return groups, nil
	}

	groups, err := gc.repo.Matching(c)
	if err != nil {
		return nil, err
	}
	gc.set(key, groups)
	return groups, nil
}

// Get serves a group by ID from the cache, loading and storing it on a miss.
func (gc *GroupCache) Get(id int64) (*models.ContentGroup, error) {
	key := IDKey(id)
	var g *models.ContentGroup
	if gc.get(key, &g) && g != nil {
		return g, nil
	}

	g, err := gc.repo.Get(id)
	if err != nil {
		return nil, err
	}
	gc.set(key, g)
	return g, nil
}

// SaveAll writes through to the repository and clears the cache.
func (gc *GroupCache) SaveAll(groups []*models.ContentGroup) error {
	if err := gc.repo.SaveAll(groups); err != nil {
		return err
	}
	gc.InvalidateAll()
	return nil
}

// RemoveAll writes through to the repository and clears the cache.
func (gc *GroupCache) RemoveAll(groups []*models.ContentGroup) error {
	if err := gc.repo.RemoveAll(groups); err != nil {
		return err
	}
	gc.InvalidateAll()
	return nil
}

// InTransaction runs fn in a transaction of the wrapped repository when it
// supports one. Writes inside fn bypass the cache, which is cleared once
// the transaction is over.
func (gc *GroupCache) InTransaction(fn func(store.Repository) error) error {
	tx, ok := gc.repo.(store.Transactor)
	if !ok {
		return fn(gc)
	}
	defer gc.InvalidateAll()
	return tx.InTransaction(fn)
}

func (gc *GroupCache) get(key string, dest any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := gc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("content cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.Warn("content cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("content cache hit", "key", key)
	return true
}

func (gc *GroupCache) set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("content cache encode error", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := gc.client.Set(ctx, key, data, gc.ttl).Err(); err != nil {
		slog.Warn("content cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached content by scanning for the prefix.
func (gc *GroupCache) InvalidateAll() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := gc.client.Scan(ctx, cursor, groupKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("content cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := gc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("content cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("content cache cleared", "deleted", deleted)
	}
}
