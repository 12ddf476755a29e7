package providers

import (
	"bibled/internal/models"
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// CacheKeyPrefix namespaces every cache entry inside the key/value store.
const CacheKeyPrefix = "bible_cache_"

// ErrCacheUnavailable marks storage or serialization failures inside the cache
// store. It is only ever logged; callers see a miss or a no-op.
var ErrCacheUnavailable = errors.New("cache unavailable")

type CacheStoreInterface interface {
	Get(key string, maxAge time.Duration) ([]byte, bool)
	Set(key string, value []byte)
	Clear(prefix string) int
}

// CacheProvider is a timestamped read-through cache over a KeyValueStore.
// Stale entries are evicted lazily on read; there is no background sweeper.
type CacheProvider struct {
	store  KeyValueStore
	clock  Clock
	logger Logger
}

func NewCacheProvider(store KeyValueStore, clock Clock, logger Logger) *CacheProvider {
	return &CacheProvider{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

func (c *CacheProvider) Get(key string, maxAge time.Duration) ([]byte, bool) {
	storageKey := CacheKeyPrefix + key
	raw, err := c.store.GetItem(storageKey)
	if err != nil {
		if !errors.Is(err, ErrItemNotFound) {
			c.logger.Warnf(TypeApp, "%s: read %s: %s", ErrCacheUnavailable, storageKey, err)
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err = json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warnf(TypeApp, "%s: corrupt entry %s: %s", ErrCacheUnavailable, storageKey, err)
		c.remove(storageKey)
		return nil, false
	}

	if !entry.Fresh(c.clock.Now(), maxAge) {
		c.remove(storageKey)
		return nil, false
	}
	return entry.Data, true
}

// Set stores value under key with the current timestamp. value must be valid JSON.
func (c *CacheProvider) Set(key string, value []byte) {
	storageKey := CacheKeyPrefix + key
	raw, err := json.Marshal(models.NewCacheEntry(value, c.clock.Now()))
	if err != nil {
		c.logger.Warnf(TypeApp, "%s: encode %s: %s", ErrCacheUnavailable, storageKey, err)
		return
	}
	if err = c.store.SetItem(storageKey, raw); err != nil {
		c.logger.Warnf(TypeApp, "%s: write %s: %s", ErrCacheUnavailable, storageKey, err)
	}
}

// Clear removes every entry whose key starts with prefix and returns how many were removed.
// An empty prefix clears the whole cache namespace.
func (c *CacheProvider) Clear(prefix string) int {
	keys, err := c.store.Keys()
	if err != nil {
		c.logger.Warnf(TypeApp, "%s: list keys: %s", ErrCacheUnavailable, err)
		return 0
	}

	full := CacheKeyPrefix + prefix
	removed := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, full) {
			continue
		}
		if c.remove(k) {
			removed++
		}
	}
	return removed
}

func (c *CacheProvider) remove(storageKey string) bool {
	if err := c.store.RemoveItem(storageKey); err != nil {
		c.logger.Warnf(TypeApp, "%s: remove %s: %s", ErrCacheUnavailable, storageKey, err)
		return false
	}
	return true
}

// NewCacheStoreProvider builds the cache store used by the rest of the daemon,
// instrumented with hit/miss counters.
func NewCacheStoreProvider(store KeyValueStore, clock Clock, logger Logger, metrics MetricsProviderInterface) CacheStoreInterface {
	return &MetricsCacheProvider{
		inner:   NewCacheProvider(store, clock, logger),
		metrics: metrics,
	}
}
