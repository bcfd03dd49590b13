package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	return &Cache{
		client: client,
		ctx:    context.Background(),
	}
}

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"leaderboard"},
		},
		{
			name:  "multiple parts",
			parts: []string{"trust", "leaderboard", "50"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}

	if HashKey("a", "b") == HashKey("a:b:c") {
		t.Error("HashKey() should distinguish different part sets")
	}
}

func TestCacheJSONRoundTrip(t *testing.T) {
	c := newTestCache(t)

	type entry struct {
		UserID     int64 `json:"user_id"`
		TrustScore int64 `json:"trust_score"`
	}

	stored := []entry{{UserID: 1, TrustScore: 80}, {UserID: 2, TrustScore: 64}}
	if err := c.SetJSON("leaderboard", stored, time.Minute); err != nil {
		t.Fatalf("SetJSON() error: %v", err)
	}

	var loaded []entry
	if err := c.GetJSON("leaderboard", &loaded); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}

	if len(loaded) != 2 || loaded[0].UserID != 1 || loaded[1].TrustScore != 64 {
		t.Errorf("GetJSON() returned %+v, want %+v", loaded, stored)
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := c.Delete("key"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, err := c.Exists("key")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("key should not exist after Delete()")
	}
}

func TestDisabledCache(t *testing.T) {
	var c *Cache

	if _, err := c.Get("key"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("nil cache Get() = %v, want ErrCacheDisabled", err)
	}
	if err := c.SetJSON("key", 1, time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("nil cache SetJSON() = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache Close() = %v, want nil", err)
	}
}
