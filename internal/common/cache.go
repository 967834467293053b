package common

import (
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache holds session-scoped state: logins without remember-me and the
// one-shot intro flag. Everything here is lost when the process exits, which
// is the session-storage tier's contract.
type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeySession(tokenHash []byte) string {
	return "session:" + hex.EncodeToString(tokenHash)
}

func CacheKeyIntroSeen(tokenHash []byte) string {
	return "intro_seen:" + hex.EncodeToString(tokenHash)
}
