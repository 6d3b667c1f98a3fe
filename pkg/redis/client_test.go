package redis

import (
	"testing"
	"time"

	"github.com/skybooklabs/skybook-backend/pkg/config"
)

func TestBuildKeyNamespacing(t *testing.T) {
	c := &Client{}

	if got := c.IdempotencyKey("orders", "abc"); got != "skybook:idempotency:orders:abc" {
		t.Fatalf("unexpected idempotency key: %s", got)
	}
	if got := c.OrderCacheKey("o-1"); got != "skybook:cache:order:o-1" {
		t.Fatalf("unexpected cache key: %s", got)
	}
	if got := c.IdempotencyKey("  orders  ", ""); got != "skybook:idempotency:orders" {
		t.Fatalf("expected blank parts dropped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("requires url or address", func(t *testing.T) {
		if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
			t.Fatal("expected error for empty config")
		}
	})

	t.Run("address based", func(t *testing.T) {
		opts, err := optionsFromConfig(config.RedisConfig{
			Address:     "localhost:6379",
			Password:    "secret",
			DB:          2,
			PoolSize:    10,
			DialTimeout: 2 * time.Second,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Addr != "localhost:6379" || opts.Password != "secret" || opts.DB != 2 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		if opts.PoolSize != 10 || opts.DialTimeout != 2*time.Second {
			t.Fatalf("expected pool settings applied, got %+v", opts)
		}
	})

	t.Run("url based", func(t *testing.T) {
		opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache.internal:6380/3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Addr != "cache.internal:6380" || opts.DB != 3 || opts.Password != "pw" {
			t.Fatalf("unexpected options: %+v", opts)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := optionsFromConfig(config.RedisConfig{URL: "http://nope"}); err == nil {
			t.Fatal("expected error for invalid url")
		}
	})
}
