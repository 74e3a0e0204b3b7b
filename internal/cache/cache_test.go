// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"contentcms/internal/models"
	"contentcms/internal/store"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	flush := func() {
		keys, _ := client.Keys(ctx, groupKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// countingRepo counts the reads that reach the wrapped repository.
type countingRepo struct {
	*store.MemoryStore
	matching int
	gets     int
}

func (r *countingRepo) Matching(c store.Criteria) ([]*models.ContentGroup, error) {
	r.matching++
	return r.MemoryStore.Matching(c)
}

func (r *countingRepo) Get(id int64) (*models.ContentGroup, error) {
	r.gets++
	return r.MemoryStore.Get(id)
}

func seededRepo(t *testing.T) (*countingRepo, *models.ContentGroup) {
	t.Helper()
	repo := &countingRepo{MemoryStore: store.NewMemoryStore()}
	g := models.NewContentGroup("pages", "home")
	g.HTML = []models.HTMLArea{{Name: "info", HTML: "<p>X</p>"}}
	g.Images = []models.ImageArea{{Name: "banner", Image: models.NewImage("/img/a.png", "a.png")}}
	if err := repo.SaveAll([]*models.ContentGroup{g}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	return repo, g
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(ValkeyOptions{
		Host:     envOr("VALKEY_HOST", "localhost"),
		Port:     envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey(ValkeyOptions{Host: "127.0.0.1", Port: "1"}); err == nil {
		t.Error("expected an error for an unreachable server")
	}
}

func TestValkeyOptionsAddr(t *testing.T) {
	tests := []struct {
		opts ValkeyOptions
		want string
	}{
		{ValkeyOptions{Host: "localhost", Port: "6379"}, "localhost:6379"},
		{ValkeyOptions{Host: "::1", Port: "6380"}, "[::1]:6380"},
	}
	for _, tt := range tests {
		if got := tt.opts.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestGroupCacheMatchingReadThrough(t *testing.T) {
	client := testValkeyClient(t)
	repo, _ := seededRepo(t)
	gc := NewGroupCache(repo, client, time.Minute)

	c := store.Where().Eq(store.FieldNamespace, "pages").Eq(store.FieldName, "home")
	first, err := gc.Matching(c)
	if err != nil {
		t.Fatalf("Matching: %v", err)
	}
	second, err := gc.Matching(c)
	if err != nil {
		t.Fatalf("Matching: %v", err)
	}

	if repo.matching != 1 {
		t.Errorf("repository queried %d times, want 1", repo.matching)
	}
	if len(second) != 1 || second[0].Hash() != first[0].Hash() {
		t.Fatal("cached result differs from repository result")
	}
	if !second[0].HasImage("banner") {
		t.Error("image validity lost in the cache")
	}
}

func TestGroupCacheGet(t *testing.T) {
	client := testValkeyClient(t)
	repo, g := seededRepo(t)
	gc := NewGroupCache(repo, client, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := gc.Get(g.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Key() != "pages.home" {
			t.Errorf("Get returned %s", got.Key())
		}
	}
	if repo.gets != 1 {
		t.Errorf("repository queried %d times, want 1", repo.gets)
	}

	if _, err := gc.Get(999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGroupCacheWritesInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	repo, g := seededRepo(t)
	gc := NewGroupCache(repo, client, time.Minute)

	c := store.Where().Eq(store.FieldNamespace, "pages")
	if _, err := gc.Matching(c); err != nil {
		t.Fatalf("Matching: %v", err)
	}

	g.Texts = []models.TextArea{{Name: "tagline", Text: "new"}}
	if err := gc.SaveAll([]*models.ContentGroup{g}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err := gc.Matching(c)
	if err != nil {
		t.Fatalf("Matching: %v", err)
	}
	if !got[0].HasText("tagline") {
		t.Error("stale group served after save")
	}

	err = gc.InTransaction(func(r store.Repository) error {
		return r.RemoveAll([]*models.ContentGroup{g})
	})
	if err != nil {
		t.Fatalf("InTransaction: %v", err)
	}
	got, err = gc.Matching(c)
	if err != nil {
		t.Fatalf("Matching: %v", err)
	}
	if len(got) != 0 {
		t.Error("removed group still served after transaction")
	}
	if repo.matching != 3 {
		t.Errorf("repository queried %d times, want 3", repo.matching)
	}
}

func TestInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	gc := NewGroupCache(store.NewMemoryStore(), client, 0)
	if gc.ttl != DefaultGroupTTL {
		t.Errorf("expected DefaultGroupTTL (%v), got %v", DefaultGroupTTL, gc.ttl)
	}

	ctx := context.Background()
	client.Set(ctx, MatchingKey(store.Where()), "[]", time.Minute)
	client.Set(ctx, IDKey(1), "{}", time.Minute)
	client.Set(ctx, "unrelated", "x", time.Minute)
	t.Cleanup(func() { client.Del(ctx, "unrelated") })

	gc.InvalidateAll()

	if n, _ := client.Exists(ctx, MatchingKey(store.Where()), IDKey(1)).Result(); n != 0 {
		t.Errorf("%d content keys survived InvalidateAll", n)
	}
	if n, _ := client.Exists(ctx, "unrelated").Result(); n != 1 {
		t.Error("InvalidateAll removed a key outside its prefix")
	}
}

func TestKeys(t *testing.T) {
	if got := MatchingKey(store.Where().Eq(store.FieldNamespace, "pages")); got != "content:match:namespace=pages" {
		t.Errorf("MatchingKey = %q", got)
	}
	if got := IDKey(7); got != "content:id:7" {
		t.Errorf("IDKey = %q", got)
	}
}
