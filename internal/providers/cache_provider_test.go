package providers

import (
	"bibled/internal/models"
	"errors"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local fakes to avoid import cycle with testutil
type cacheTestLogger struct {
	mu    sync.Mutex
	warns int
}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{}) {
	m.mu.Lock()
	m.warns++
	m.mu.Unlock()
}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// failingStore fails every operation.
type failingStore struct{}

var errDiskFull = errors.New("disk full")

func (failingStore) GetItem(_ string) ([]byte, error) { return nil, errDiskFull }
func (failingStore) SetItem(_ string, _ []byte) error  { return errDiskFull }
func (failingStore) RemoveItem(_ string) error         { return errDiskFull }
func (failingStore) Keys() ([]string, error)           { return nil, errDiskFull }

var cacheEpoch = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestCache() (*CacheProvider, *MemoryKeyValueStore, *testClock, *cacheTestLogger) {
	store := NewMemoryKeyValueStore()
	clock := &testClock{now: cacheEpoch}
	logger := &cacheTestLogger{}
	return NewCacheProvider(store, clock, logger), store, clock, logger
}

func TestCacheProvider_SetAndGet(t *testing.T) {
	c, _, _, _ := newTestCache()

	c.Set("KJV:GEN:1", []byte(`{"number":1}`))
	val, ok := c.Get("KJV:GEN:1", time.Hour)
	assert.True(t, ok)
	assert.JSONEq(t, `{"number":1}`, string(val))
}

func TestCacheProvider_Miss(t *testing.T) {
	c, _, _, logger := newTestCache()

	val, ok := c.Get("nonexistent", time.Hour)
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Zero(t, logger.warns)
}

func TestCacheProvider_Overwrite(t *testing.T) {
	c, _, _, _ := newTestCache()

	c.Set("key1", []byte(`"v1"`))
	c.Set("key1", []byte(`"v2"`))

	val, ok := c.Get("key1", time.Hour)
	assert.True(t, ok)
	assert.Equal(t, `"v2"`, string(val))
}

func TestCacheProvider_EnvelopeFormat(t *testing.T) {
	c, store, _, _ := newTestCache()

	c.Set("KJV:books", []byte(`[{"id":"GEN"}]`))

	raw, err := store.GetItem(CacheKeyPrefix + "KJV:books")
	require.NoError(t, err)

	var entry models.CacheEntry
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, cacheEpoch.UnixMilli(), entry.Timestamp)
	assert.JSONEq(t, `[{"id":"GEN"}]`, string(entry.Data))
}

func TestCacheProvider_ExpiryBoundaryIsInclusive(t *testing.T) {
	c, _, clock, _ := newTestCache()

	c.Set("k", []byte(`1`))
	clock.now = cacheEpoch.Add(time.Hour)

	_, ok := c.Get("k", time.Hour)
	assert.True(t, ok, "entry exactly maxAge old is still fresh")
}

func TestCacheProvider_StaleEntryRemoved(t *testing.T) {
	c, store, clock, _ := newTestCache()

	c.Set("k", []byte(`1`))
	clock.now = cacheEpoch.Add(time.Hour + time.Millisecond)

	_, ok := c.Get("k", time.Hour)
	assert.False(t, ok)

	_, err := store.GetItem(CacheKeyPrefix + "k")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCacheProvider_MaxAgeIsPerRead(t *testing.T) {
	c, _, clock, _ := newTestCache()

	c.Set("k", []byte(`1`))
	clock.now = cacheEpoch.Add(2 * time.Hour)

	_, ok := c.Get("k", 3*time.Hour)
	assert.True(t, ok)
	_, ok = c.Get("k", time.Hour)
	assert.False(t, ok)
}

func TestCacheProvider_CorruptEntryIsMissAndRemoved(t *testing.T) {
	c, store, _, logger := newTestCache()
	require.NoError(t, store.SetItem(CacheKeyPrefix+"bad", []byte("not json")))

	_, ok := c.Get("bad", time.Hour)
	assert.False(t, ok)
	assert.Equal(t, 1, logger.warns)

	_, err := store.GetItem(CacheKeyPrefix + "bad")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCacheProvider_InvalidJSONValueIsNoop(t *testing.T) {
	c, store, _, logger := newTestCache()

	c.Set("k", []byte("{broken"))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, 1, logger.warns)
}

func TestCacheProvider_ClearPrefix(t *testing.T) {
	c, store, _, _ := newTestCache()
	require.NoError(t, store.SetItem("unrelated", []byte("x")))

	c.Set("KJV:books", []byte(`1`))
	c.Set("KJV:GEN:1", []byte(`1`))
	c.Set("WEB:GEN:1", []byte(`1`))

	assert.Equal(t, 2, c.Clear("KJV:"))

	_, ok := c.Get("WEB:GEN:1", time.Hour)
	assert.True(t, ok)
	_, ok = c.Get("KJV:GEN:1", time.Hour)
	assert.False(t, ok)

	_, err := store.GetItem("unrelated")
	assert.NoError(t, err, "keys outside the cache namespace are untouched")
}

func TestCacheProvider_ClearAll(t *testing.T) {
	c, store, _, _ := newTestCache()
	require.NoError(t, store.SetItem("unrelated", []byte("x")))

	c.Set("a", []byte(`1`))
	c.Set("b", []byte(`2`))

	assert.Equal(t, 2, c.Clear(""))
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated"}, keys)
}

func TestCacheProvider_StorageFailuresDegrade(t *testing.T) {
	logger := &cacheTestLogger{}
	c := NewCacheProvider(failingStore{}, &testClock{now: cacheEpoch}, logger)

	assert.NotPanics(t, func() { c.Set("k", []byte(`1`)) })
	_, ok := c.Get("k", time.Hour)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Clear(""))
	assert.Equal(t, 3, logger.warns)
}

func TestCacheProvider_ConcurrentAccess(t *testing.T) {
	c, _, _, _ := newTestCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("shared", []byte(`"v"`))
			c.Get("shared", time.Hour)
		}()
	}
	wg.Wait()

	val, ok := c.Get("shared", time.Hour)
	assert.True(t, ok)
	assert.Equal(t, `"v"`, string(val))
}

func TestNewCacheStoreProvider_CountsHitsAndMisses(t *testing.T) {
	metrics := &cacheMetricsTestMetrics{}
	c := NewCacheStoreProvider(NewMemoryKeyValueStore(), &testClock{now: cacheEpoch}, &cacheTestLogger{}, metrics)

	c.Get("missing", time.Hour)
	c.Set("k", []byte(`1`))
	c.Get("k", time.Hour)

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}
