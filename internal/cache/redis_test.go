// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("DIZI_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: DIZI_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Basic(t *testing.T) {
	url := skipIfNoRedis(t)

	cache, err := NewRedisCacheFromURL(url, "dizi-test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_ = cache.Clear(ctx)

	if err := cache.Set(ctx, StarKey("can-yaman"), []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, StarKey("can-yaman"))
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := cache.DeleteByPrefix(ctx, PrefixStar); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, err := cache.Get(ctx, StarKey("can-yaman")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after prefix delete err = %v, want ErrCacheMiss", err)
	}

	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if s := cache.Stats(); s.Backend != "redis" || s.Hits != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	if _, err := NewRedisCache(RedisCacheOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
