package providers

import "time"

// MetricsCacheProvider wraps a CacheStoreInterface and increments
// hit/miss counters on every Get call.
type MetricsCacheProvider struct {
	inner   CacheStoreInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string, maxAge time.Duration) ([]byte, bool) {
	val, ok := c.inner.Get(key, maxAge)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Clear(prefix string) int {
	return c.inner.Clear(prefix)
}
