package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewFromClient(client), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := cache.Set(ctx, "k1", payload{Name: "pine", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	ok, err := cache.Get(ctx, "k1", &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected hit for existing key")
	}
	if got.Name != "pine" || got.Count != 3 {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	cache, _ := newTestCache(t)

	var got string
	ok, err := cache.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("Get returned error on miss: %v", err)
	}
	if ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", "value", 30*time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	mr.FastForward(time.Minute)

	var got string
	ok, err := cache.Get(ctx, "short", &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCacheDel(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("Del returned error: %v", err)
	}

	var got int
	if ok, _ := cache.Get(ctx, "k", &got); ok {
		t.Fatal("expected miss after delete")
	}
}
