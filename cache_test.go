package petango

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

const testCacheKey = "adoptable_pets_dog"

func TestInMemoryCacheGetSet(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, testCacheKey); ok || err != nil {
		t.Fatalf("Get on empty cache = %v, %v; want miss", ok, err)
	}

	if err := cache.Set(ctx, testCacheKey, []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok, err := cache.Get(ctx, testCacheKey)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(got) != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}
}

func TestInMemoryCacheEmptyValueIsAHit(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, testCacheKey, []byte{}, time.Minute)

	got, ok, err := cache.Get(ctx, testCacheKey)
	if err != nil || !ok {
		t.Fatalf("stored empty value reported as miss: %v, %v", ok, err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestInMemoryCacheExpiry(t *testing.T) {
	cache := NewInMemoryCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cache.Set(ctx, testCacheKey, []byte("value"), 15*time.Minute)

	now = now.Add(14 * time.Minute)
	if _, ok, _ := cache.Get(ctx, testCacheKey); !ok {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, testCacheKey); ok {
		t.Error("entry still served after its TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry not purged, Len() = %d", cache.Len())
	}
}

func TestInMemoryCacheNoTTL(t *testing.T) {
	cache := NewInMemoryCache()
	now := time.Now()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cache.Set(ctx, testCacheKey, []byte("value"), 0)
	now = now.Add(365 * 24 * time.Hour)

	if _, ok, _ := cache.Get(ctx, testCacheKey); !ok {
		t.Error("entry without TTL expired")
	}
}

func TestInMemoryCacheCopiesValue(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	value := []byte("value")
	_ = cache.Set(ctx, testCacheKey, value, time.Minute)
	value[0] = 'X'

	got, _, _ := cache.Get(ctx, testCacheKey)
	if string(got) != "value" {
		t.Errorf("cache shares caller's buffer: %q", got)
	}
}

func TestInMemoryCacheDeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("pet_details_%d", i), []byte("v"), time.Minute)
	}
	if cache.Len() != 40 {
		t.Fatalf("Len() = %d, want 40", cache.Len())
	}

	_ = cache.Delete(ctx, "pet_details_3")
	if _, ok, _ := cache.Get(ctx, "pet_details_3"); ok {
		t.Error("deleted key still present")
	}
	if cache.Len() != 39 {
		t.Errorf("Len() after Delete = %d, want 39", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", cache.Len())
	}
}

func TestInMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key_%d", i%5)
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, key, []byte("v"), time.Minute)
				_, _, _ = cache.Get(ctx, key)
				if j%10 == 0 {
					_ = cache.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}
