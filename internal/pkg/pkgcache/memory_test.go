package pkgcache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	cache := NewMemory(nil)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	cache.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := cache.Get(ctx, "k")
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if string(got) != "v" {
		t.Fatalf("expected value v, got %q", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := NewMemory(func() time.Time { return now })
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(30 * time.Second)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	now = now.Add(31 * time.Second)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}

	// The expired entry must have been dropped, not just hidden.
	cache.mu.RLock()
	_, exists := cache.entries["k"]
	cache.mu.RUnlock()
	if exists {
		t.Fatalf("expected expired entry to be deleted")
	}
}

func TestMemoryIgnoresNonPositiveTTL(t *testing.T) {
	cache := NewMemory(nil)
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), 0)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected zero ttl set to be skipped")
	}
}

func TestMemoryClose(t *testing.T) {
	cache := NewMemory(nil)
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"), time.Minute)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected entries dropped after close")
	}
	if got := cache.Name(); got != "memory" {
		t.Fatalf("expected backend name memory, got %q", got)
	}
}
