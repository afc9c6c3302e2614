package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileCache persists keyed JSON payloads with per-entry timestamps so
// expensive per-player splits survive restarts. Entries older than the
// max age are dropped on load.
type FileCache struct {
	dir    string
	maxAge time.Duration
	logger *logrus.Logger
}

type fileCacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

func NewFileCache(dir string, maxAgeDays int, logger *logrus.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{
		dir:    dir,
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		logger: logger,
	}, nil
}

// Load reads one named cache file into a map of key to raw payload.
// A missing or corrupt file yields an empty map rather than an error;
// stale entries are filtered out.
func (fc *FileCache) Load(name string) map[string]json.RawMessage {
	result := make(map[string]json.RawMessage)

	raw, err := os.ReadFile(fc.path(name))
	if err != nil {
		return result
	}

	var entries map[string]fileCacheEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		fc.logger.WithFields(logrus.Fields{
			"cache": name,
			"error": err,
		}).Warn("Corrupt cache file, starting fresh")
		return result
	}

	cutoff := time.Now().Add(-fc.maxAge)
	for key, entry := range entries {
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		result[key] = entry.Data
	}

	return result
}

// LoadInto loads one entry and unmarshals it into target. The second
// return is false when the entry is absent or expired.
func (fc *FileCache) LoadInto(name, key string, target interface{}) (bool, error) {
	entries := fc.Load(name)
	raw, ok := entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s/%s: %w", name, key, err)
	}
	return true, nil
}

// Save writes the full key set for one named cache, stamping every
// entry with the current time.
func (fc *FileCache) Save(name string, data map[string]interface{}) error {
	now := time.Now().UTC().Format(time.RFC3339)

	entries := make(map[string]fileCacheEntry, len(data))
	for key, value := range data {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode cache entry %s/%s: %w", name, key, err)
		}
		entries[key] = fileCacheEntry{Data: raw, Timestamp: now}
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", name, err)
	}

	if err := os.WriteFile(fc.path(name), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", name, err)
	}
	return nil
}

// SaveEntry upserts a single key, preserving other unexpired entries
// and their timestamps.
func (fc *FileCache) SaveEntry(name, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s/%s: %w", name, key, err)
	}

	var entries map[string]fileCacheEntry
	if existing, readErr := os.ReadFile(fc.path(name)); readErr == nil {
		if json.Unmarshal(existing, &entries) != nil {
			entries = nil
		}
	}
	if entries == nil {
		entries = make(map[string]fileCacheEntry)
	}

	entries[key] = fileCacheEntry{
		Data:      raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", name, err)
	}
	if err := os.WriteFile(fc.path(name), out, 0o644); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", name, err)
	}
	return nil
}

// Prune rewrites every cache file without its expired entries and
// removes files left empty. Returns the number of entries dropped.
func (fc *FileCache) Prune() (int, error) {
	paths, err := filepath.Glob(filepath.Join(fc.dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list cache files: %w", err)
	}

	dropped := 0
	cutoff := time.Now().Add(-fc.maxAge)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var entries map[string]fileCacheEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			// Corrupt files load as empty anyway.
			dropped++
			os.Remove(path)
			continue
		}

		kept := make(map[string]fileCacheEntry, len(entries))
		for key, entry := range entries {
			ts, err := time.Parse(time.RFC3339, entry.Timestamp)
			if err != nil || ts.Before(cutoff) {
				dropped++
				continue
			}
			kept[key] = entry
		}
		if len(kept) == len(entries) {
			continue
		}
		if len(kept) == 0 {
			os.Remove(path)
			continue
		}

		out, err := json.MarshalIndent(kept, "", "  ")
		if err != nil {
			continue
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			fc.logger.WithFields(logrus.Fields{
				"cache": filepath.Base(path),
				"error": err,
			}).Warn("Failed to rewrite pruned cache file")
		}
	}

	return dropped, nil
}

func (fc *FileCache) path(name string) string {
	return filepath.Join(fc.dir, name+".json")
}
