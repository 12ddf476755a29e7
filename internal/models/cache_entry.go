package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// CacheEntry is the persisted envelope around a cached payload.
// Timestamp is the fetch time in unix milliseconds.
type CacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func NewCacheEntry(data []byte, now time.Time) *CacheEntry {
	return &CacheEntry{Data: data, Timestamp: now.UnixMilli()}
}

// Fresh reports whether the entry is still valid at now for the given max age.
// The boundary is inclusive: an entry exactly maxAge old is still served.
func (e *CacheEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	age := now.UnixMilli() - e.Timestamp
	return age <= maxAge.Milliseconds()
}

// CacheSnapshot is the on-disk format of the whole key/value namespace.
type CacheSnapshot struct {
	Version int               `json:"version"`
	Items   map[string][]byte `json:"items"`
}

const CacheSnapshotVersion = 1
