package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewBucketRejectsInvalidConfig(t *testing.T) {
	cases := map[string]Config{
		"ZeroCapacity":   {Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		"ZeroRefillRate": {Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		"ZeroInterval":   {Capacity: 1, RefillRate: 1, RefillInterval: 0},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewBucket(NewMemoryStore(WithCleanupInterval(0)), cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected invalid config error, got %v", err)
			}
		})
	}
}

func TestBucketAllowAndDeny(t *testing.T) {
	store := NewMemoryStore(WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := NewBucket(store, Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Hour})
	if err != nil {
		t.Fatalf("new bucket failed: %v", err)
	}

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("allow failed: %v", err)
		}
		if !res.Allowed() {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
		if res.Limit != 3 {
			t.Fatalf("expected limit 3, got %d", res.Limit)
		}
	}

	res, err := limiter.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if res.Allowed() {
		t.Fatalf("expected fourth request to be denied")
	}
	if res.RetryAfter() <= 0 {
		t.Fatalf("expected positive retry-after on denial, got %v", res.RetryAfter())
	}

	// an exhausted bucket must not affect other keys
	other, err := limiter.Allow(ctx, "client-b")
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !other.Allowed() {
		t.Fatalf("expected a fresh key to be allowed")
	}
}

func TestBucketRefill(t *testing.T) {
	store := NewMemoryStore(WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := NewBucket(store, Config{Capacity: 1, RefillRate: 1, RefillInterval: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new bucket failed: %v", err)
	}

	ctx := context.Background()

	if res, _ := limiter.Allow(ctx, "k"); !res.Allowed() {
		t.Fatalf("expected first request to be allowed")
	}
	if res, _ := limiter.Allow(ctx, "k"); res.Allowed() {
		t.Fatalf("expected second request to be denied")
	}

	time.Sleep(60 * time.Millisecond)

	if res, _ := limiter.Allow(ctx, "k"); !res.Allowed() {
		t.Fatalf("expected request to be allowed after refill")
	}
}

func TestBucketReset(t *testing.T) {
	store := NewMemoryStore(WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := NewBucket(store, Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	if err != nil {
		t.Fatalf("new bucket failed: %v", err)
	}

	ctx := context.Background()

	if res, _ := limiter.Allow(ctx, "k"); !res.Allowed() {
		t.Fatalf("expected first request to be allowed")
	}
	if err := limiter.Reset(ctx, "k"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if res, _ := limiter.Allow(ctx, "k"); !res.Allowed() {
		t.Fatalf("expected request to be allowed after reset")
	}
}

func TestAllowNRejectsNonPositive(t *testing.T) {
	store := NewMemoryStore(WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := NewBucket(store, Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	if err != nil {
		t.Fatalf("new bucket failed: %v", err)
	}

	if _, err := limiter.AllowN(context.Background(), "k", 0); !errors.Is(err, ErrInvalidTokenCount) {
		t.Fatalf("expected token count error, got %v", err)
	}
}
