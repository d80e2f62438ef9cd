package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/facet"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	result := &facet.ApplyResult{Total: 4}

	// Miss
	if _, ok := c.Get(ctx, "t1", "u1", "dept-1{}"); ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "t1", "u1", "dept-1{}", result)
	got, ok := c.Get(ctx, "t1", "u1", "dept-1{}")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Total != 4 {
		t.Fatalf("expected total 4, got %d", got.Total)
	}

	// A different fingerprint is a different entry.
	if _, ok := c.Get(ctx, "t1", "u1", "dept-1{status:is:approved}"); ok {
		t.Fatal("expected miss for a different fingerprint")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.Set(ctx, "t1", "u1", "fp", &facet.ApplyResult{})
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, "t1", "u1", "fp"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	c.Set(ctx, "t1", "u1", "a", &facet.ApplyResult{})
	c.Set(ctx, "t1", "u1", "b", &facet.ApplyResult{})
	c.Set(ctx, "t1", "u10", "a", &facet.ApplyResult{})
	c.Set(ctx, "t2", "u1", "a", &facet.ApplyResult{})

	c.InvalidateUser(ctx, "t1", "u1")
	if _, ok := c.Get(ctx, "t1", "u1", "a"); ok {
		t.Fatal("expected u1 entries removed")
	}
	if _, ok := c.Get(ctx, "t1", "u10", "a"); !ok {
		t.Fatal("u10 must survive invalidation of u1")
	}

	c.InvalidateTenant(ctx, "t1")
	if _, ok := c.Get(ctx, "t1", "u10", "a"); ok {
		t.Fatal("expected tenant t1 cleared")
	}
	if _, ok := c.Get(ctx, "t2", "u1", "a"); !ok {
		t.Fatal("tenant t2 must survive")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute), WithMaxSize(2))

	c.Set(ctx, "t1", "u1", "a", &facet.ApplyResult{})
	c.Set(ctx, "t1", "u1", "b", &facet.ApplyResult{})
	c.Set(ctx, "t1", "u1", "c", &facet.ApplyResult{})

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok := c.Get(ctx, "t1", "u1", "c"); !ok {
		t.Fatal("newest entry must be kept")
	}
}
