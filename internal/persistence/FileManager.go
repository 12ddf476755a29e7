package persistence

import (
	"bibled/internal/models"
	"bibled/internal/persistence/interfaces"
	"bibled/internal/providers"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileManager dumps the cache key/value namespace to a compressed snapshot
// file and loads it back. Entries keep their original timestamps, so expiry
// still applies to restored data.
type FileManager struct {
	store      providers.KeyValueStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store providers.KeyValueStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// NewFileManagerProvider builds a FileManager whose cleanup releases the compressor.
func NewFileManagerProvider(compressor interfaces.CompressorInterface, store providers.KeyValueStore, logger providers.Logger) (*FileManager, func()) {
	fm := NewFileManager(compressor, store, logger)
	return fm, fm.Close
}

func (f *FileManager) snapshot() (*models.CacheSnapshot, error) {
	keys, err := f.store.Keys()
	if err != nil {
		return nil, err
	}
	snap := &models.CacheSnapshot{
		Version: models.CacheSnapshotVersion,
		Items:   make(map[string][]byte, len(keys)),
	}
	for _, key := range keys {
		value, err := f.store.GetItem(key)
		if err != nil {
			// evicted between Keys and GetItem
			if errors.Is(err, providers.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		snap.Items[key] = value
	}
	return snap, nil
}

// SaveToFile writes the snapshot atomically and returns the number of entries written.
func (f *FileManager) SaveToFile(fileName string) (int, error) {
	snap, err := f.snapshot()
	if err != nil {
		return 0, err
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return 0, err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return 0, err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return 0, err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return 0, err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return 0, err
	}

	return len(snap.Items), os.Rename(tmpFile, fileName)
}

// LoadFromFile restores a snapshot into the store. A missing file is not an error.
func (f *FileManager) LoadFromFile(fileName string) (int, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return 0, err
	}

	var snap models.CacheSnapshot
	if err = json.Unmarshal(decompressedData, &snap); err != nil {
		return 0, err
	}
	if snap.Version > models.CacheSnapshotVersion {
		return 0, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, models.CacheSnapshotVersion)
	}

	restored := 0
	for key, value := range snap.Items {
		if err = f.store.SetItem(key, value); err != nil {
			f.logger.Warnf(providers.TypeApp, "%s: restore %s: %s", providers.ErrCacheUnavailable, key, err)
			continue
		}
		restored++
	}
	return restored, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
