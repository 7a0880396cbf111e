package storage

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *UserCache {
	t.Helper()
	cache, err := OpenUserCache(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("OpenUserCache() error: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestUserCache(t *testing.T) {
	cache := openTestCache(t)

	t.Run("miss on empty cache", func(t *testing.T) {
		_, found, err := cache.Get("U123")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if found {
			t.Error("Get() found entry in empty cache")
		}
	})

	t.Run("put then get", func(t *testing.T) {
		if err := cache.Put("U123", "kanta"); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		name, found, err := cache.Get("U123")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !found || name != "kanta" {
			t.Errorf("Get() = %q, %v; want kanta, true", name, found)
		}
	})

	t.Run("put replaces existing name", func(t *testing.T) {
		if err := cache.Put("U123", "kanta-renamed"); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		name, _, err := cache.Get("U123")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if name != "kanta-renamed" {
			t.Errorf("Get() = %q, want kanta-renamed", name)
		}
	})
}

func TestUserCachePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	cache, err := OpenUserCache(path)
	if err != nil {
		t.Fatalf("OpenUserCache() error: %v", err)
	}
	if err := cache.Put("U456", "taro"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	cache.Close()

	reopened, err := OpenUserCache(path)
	if err != nil {
		t.Fatalf("reopening cache: %v", err)
	}
	defer reopened.Close()

	name, found, err := reopened.Get("U456")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !found || name != "taro" {
		t.Errorf("Get() = %q, %v; want taro, true", name, found)
	}
}
