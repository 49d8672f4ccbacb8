package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/repository"
)

// CacheEntry represents a parsed dataset with the time it was cached
type CacheEntry struct {
	Dataset   *entity.Dataset
	Timestamp time.Time
}

// DatasetCache provides a thread-safe in-memory cache of parsed uploads.
// Entries are keyed by file name, size and modification time, so a
// re-upload never serves stale content.
type DatasetCache struct {
	cache      map[string]CacheEntry
	expiration time.Duration
	mutex      sync.RWMutex
}

// NewDatasetCache creates a cache whose entries expire after ttl
func NewDatasetCache(ttl time.Duration) *DatasetCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &DatasetCache{
		cache:      make(map[string]CacheEntry),
		expiration: ttl,
	}
}

func generateCacheKey(file repository.FileInfo) string {
	return file.Name + ":" + strconv.FormatInt(file.Size, 10) + ":" + strconv.FormatInt(file.ModTime.UnixNano(), 10)
}

// Get returns the cached dataset for the file if present and not expired
func (c *DatasetCache) Get(file repository.FileInfo) *entity.Dataset {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[generateCacheKey(file)]
	if !exists || time.Since(entry.Timestamp) > c.expiration {
		return nil
	}

	return entry.Dataset
}

// Put stores a parsed dataset, evicting older versions of the same file
func (c *DatasetCache) Put(file repository.FileInfo, dataset *entity.Dataset) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prefix := file.Name + ":"
	for key := range c.cache {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(c.cache, key)
		}
	}

	c.cache[generateCacheKey(file)] = CacheEntry{
		Dataset:   dataset,
		Timestamp: time.Now(),
	}
}

// Clear clears all entries from the cache
func (c *DatasetCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]CacheEntry)
}

// SetExpiration sets the cache expiration duration
func (c *DatasetCache) SetExpiration(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = duration
}

// Size returns the number of items in the cache
func (c *DatasetCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CleanExpired removes expired entries from the cache
func (c *DatasetCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := time.Now()

	for key, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, key)
			count++
		}
	}

	return count
}
