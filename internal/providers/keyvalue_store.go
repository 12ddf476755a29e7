package providers

import (
	"bibled/internal/structures"
	"errors"
	"sort"
	"sync"
	"unsafe"

	"github.com/coocood/freecache"
)

var ErrItemNotFound = errors.New("item not found")

// KeyValueStore is the device-storage facade the cache store persists into.
type KeyValueStore interface {
	GetItem(key string) ([]byte, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
	Keys() ([]string, error)
}

// MemoryKeyValueStore keeps items in a plain map. It is used when the
// freecache tier is disabled and as a fake in tests.
type MemoryKeyValueStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{items: make(map[string][]byte)}
}

func (m *MemoryKeyValueStore) GetItem(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	return v, nil
}

func (m *MemoryKeyValueStore) SetItem(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = stored
	return nil
}

func (m *MemoryKeyValueStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryKeyValueStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// FreecacheKeyValueStore is a size-bounded store on top of freecache.
// Items never expire inside freecache; freshness is decided by the cache
// envelope timestamp. Under memory pressure freecache may drop items, which
// the cache store sees as plain misses.
type FreecacheKeyValueStore struct {
	cache *freecache.Cache
}

func NewFreecacheKeyValueStore(sizeMB int) *FreecacheKeyValueStore {
	return &FreecacheKeyValueStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never mutated.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (f *FreecacheKeyValueStore) GetItem(key string) ([]byte, error) {
	val, err := f.cache.Get(unsafeStringToBytes(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	return val, err
}

func (f *FreecacheKeyValueStore) SetItem(key string, value []byte) error {
	return f.cache.Set(unsafeStringToBytes(key), value, 0)
}

func (f *FreecacheKeyValueStore) RemoveItem(key string) error {
	f.cache.Del(unsafeStringToBytes(key))
	return nil
}

func (f *FreecacheKeyValueStore) Keys() ([]string, error) {
	keys := make([]string, 0, f.cache.EntryCount())
	it := f.cache.NewIterator()
	for entry := it.Next(); entry != nil; entry = it.Next() {
		keys = append(keys, string(entry.Key))
	}
	sort.Strings(keys)
	return keys, nil
}

type noopKeyValueStore struct{}

func (n *noopKeyValueStore) GetItem(_ string) ([]byte, error) { return nil, ErrItemNotFound }
func (n *noopKeyValueStore) SetItem(_ string, _ []byte) error  { return nil }
func (n *noopKeyValueStore) RemoveItem(_ string) error         { return nil }
func (n *noopKeyValueStore) Keys() ([]string, error)           { return nil, nil }

// NewKeyValueStoreProvider picks the backing store from config.
func NewKeyValueStoreProvider(conf *structures.Config, logger Logger) KeyValueStore {
	if !conf.Cache.Enabled {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopKeyValueStore{}
	}
	if conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache size not set, using unbounded in-memory store")
		return NewMemoryKeyValueStore()
	}
	logger.Infof(TypeApp, "Freecache store initialized: %dMB", conf.Cache.Size)
	return NewFreecacheKeyValueStore(conf.Cache.Size)
}
