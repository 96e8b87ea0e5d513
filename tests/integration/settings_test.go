package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/settings"
)

// mapCache stands in for redis so the settings read-through path can be
// exercised against the real database.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	value, ok := c.data[key]
	if ok {
		c.hits++
	}
	return value, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestSettingsReadThrough(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cache := newMapCache()
	svc := settings.NewService(db, cache, time.Minute)

	if _, err := svc.Get(ctx, settings.KeySiteTitle); !errors.Is(err, database.ErrSettingNotFound) {
		t.Fatalf("Expected setting not found, got: %v", err)
	}

	if err := svc.Put(ctx, settings.KeySiteTitle, "Digistore"); err != nil {
		t.Fatalf("Put setting: %v", err)
	}

	value, err := svc.Get(ctx, settings.KeySiteTitle)
	if err != nil {
		t.Fatalf("Get setting: %v", err)
	}
	if value != "Digistore" {
		t.Errorf("Expected Digistore, got %q", value)
	}

	// Second read is served from the cache.
	hitsBefore := cache.hits
	if _, err := svc.Get(ctx, settings.KeySiteTitle); err != nil {
		t.Fatalf("Get setting again: %v", err)
	}
	if cache.hits != hitsBefore+1 {
		t.Errorf("Expected a cache hit, hits went %d -> %d", hitsBefore, cache.hits)
	}
}

func TestSettingsInvalidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cache := newMapCache()
	svc := settings.NewService(db, cache, time.Minute)

	if err := svc.Put(ctx, settings.KeyTheme, "dark"); err != nil {
		t.Fatalf("Put setting: %v", err)
	}
	if _, err := svc.Get(ctx, settings.KeyTheme); err != nil {
		t.Fatalf("Warm cache: %v", err)
	}

	// A write invalidates; the next read observes the new value.
	if err := svc.Put(ctx, settings.KeyTheme, "light"); err != nil {
		t.Fatalf("Update setting: %v", err)
	}

	value, err := svc.Get(ctx, settings.KeyTheme)
	if err != nil {
		t.Fatalf("Get setting: %v", err)
	}
	if value != "light" {
		t.Errorf("Expected light after invalidation, got %q", value)
	}
}

func TestTaxRateSetting(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := settings.NewService(db, newMapCache(), time.Minute)

	if rate := svc.TaxRate(ctx); !rate.IsZero() {
		t.Errorf("Absent tax rate should be zero, got %s", rate)
	}

	if err := svc.Put(ctx, settings.KeyTaxRate, "0.19"); err != nil {
		t.Fatalf("Put tax rate: %v", err)
	}
	if rate := svc.TaxRate(ctx); rate.String() != "0.19" {
		t.Errorf("Expected 0.19, got %s", rate)
	}

	if err := svc.Put(ctx, settings.KeyTaxRate, "garbage"); err != nil {
		t.Fatalf("Put tax rate: %v", err)
	}
	if rate := svc.TaxRate(ctx); !rate.IsZero() {
		t.Errorf("Malformed tax rate should fall back to zero, got %s", rate)
	}
}
