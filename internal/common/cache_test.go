package common

import "testing"

func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	cache := NewCache(0, 0)

	cleanup := func() {
		cache.Flush()
	}

	return cache, cleanup
}

func TestCache_SetGet(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}

func TestCache_Flush(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Flush()

	if _, ok := cache.Get("key"); ok {
		t.Error("expected cache to be flushed")
	}
}

func TestCacheKeys(t *testing.T) {
	hash := []byte{0xde, 0xad, 0xbe, 0xef}

	if got := CacheKeySession(hash); got != "session:deadbeef" {
		t.Errorf("CacheKeySession = %q", got)
	}

	if got := CacheKeyIntroSeen(hash); got != "intro_seen:deadbeef" {
		t.Errorf("CacheKeyIntroSeen = %q", got)
	}
}
