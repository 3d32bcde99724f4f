package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// seenFile is the on-disk wrapper shape. A legacy file holding a bare JSON
// array of identifiers (no wrapper object) is also accepted on load.
type seenFile struct {
	SeenListings []string `json:"seen_listings"`
	LastUpdated  string   `json:"last_updated"`
	TotalURLs    int      `json:"total_urls"`
}

// FileStore persists the seen-set as a single JSON file. Saves are atomic:
// the new content is written to a temp file in the same directory and renamed
// over the old one, so a crash mid-save leaves the prior state untouched.
type FileStore struct {
	path   string
	logger *utils.Logger
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string, logger *utils.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the seen-set from disk. A missing, corrupt, or unreadable file
// yields an empty set with the cause logged.
func (f *FileStore) Load() *models.SeenSet {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Info("[store] No seen-set file at %s — starting fresh", f.path)
		} else {
			f.logger.Error("[store] Read %s failed: %v — starting with empty set", f.path, err)
		}
		return models.NewSeenSet()
	}

	ids, meta, err := decodeSeenFile(data)
	if err != nil {
		f.logger.Error("[store] Parse %s failed: %v — starting with empty set", f.path, err)
		return models.NewSeenSet()
	}

	set := models.NewSeenSet(ids...)
	if meta != nil {
		if t, terr := time.Parse(time.RFC3339, meta.LastUpdated); terr == nil {
			set.LastUpdated = t
		}
		set.SourceCount = meta.TotalURLs
	}

	f.logger.Info("[store] Loaded %d previously seen listings from %s", set.Len(), f.path)
	return set
}

// Save writes the seen-set atomically in the wrapped-object format.
func (f *FileStore) Save(set *models.SeenSet) error {
	payload := seenFile{
		SeenListings: set.IDs(),
		LastUpdated:  set.LastUpdated.Format(time.RFC3339),
		TotalURLs:    set.SourceCount,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal seen-set: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: replace %s: %w", f.path, err)
	}

	f.logger.Info("[store] Saved %d seen listings to %s", set.Len(), f.path)
	return nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error { return nil }

// decodeSeenFile accepts both the wrapped-object format and the legacy bare
// list of identifiers.
func decodeSeenFile(data []byte) ([]string, *seenFile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, nil, err
		}
		return ids, nil, nil
	}

	var wrapped seenFile
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, nil, err
	}
	return wrapped.SeenListings, &wrapped, nil
}
