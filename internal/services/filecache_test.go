package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileCache(t *testing.T, maxAgeDays int) *FileCache {
	t.Helper()
	fc, err := NewFileCache(t.TempDir(), maxAgeDays, logrus.New())
	require.NoError(t, err)
	return fc
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := newTestFileCache(t, 30)

	payload := map[string]interface{}{
		"player_a": map[string]float64{"Slider": 0.210, "4-Seam Fastball": 0.305},
		"player_b": map[string]float64{"Changeup": 0.180},
	}
	require.NoError(t, fc.Save("iso_splits", payload))

	loaded := fc.Load("iso_splits")
	require.Len(t, loaded, 2)

	var splits map[string]float64
	ok, err := fc.LoadInto("iso_splits", "player_a", &splits)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.305, splits["4-Seam Fastball"], 1e-9)
}

func TestFileCacheTTLExpiry(t *testing.T) {
	fc := newTestFileCache(t, 30)

	// Write an entry stamped beyond the max age directly.
	stale := map[string]fileCacheEntry{
		"old": {
			Data:      json.RawMessage(`{"v":1}`),
			Timestamp: time.Now().UTC().AddDate(0, 0, -31).Format(time.RFC3339),
		},
		"fresh": {
			Data:      json.RawMessage(`{"v":2}`),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fc.dir, "mixed.json"), raw, 0o644))

	loaded := fc.Load("mixed")
	assert.Len(t, loaded, 1)
	assert.Contains(t, loaded, "fresh")
	assert.NotContains(t, loaded, "old")
}

func TestFileCacheCorruptFile(t *testing.T) {
	fc := newTestFileCache(t, 30)

	require.NoError(t, os.WriteFile(filepath.Join(fc.dir, "bad.json"), []byte("{not json"), 0o644))

	loaded := fc.Load("bad")
	assert.Empty(t, loaded)
}

func TestFileCacheMissingFile(t *testing.T) {
	fc := newTestFileCache(t, 30)
	assert.Empty(t, fc.Load("never_written"))

	var target map[string]float64
	ok, err := fc.LoadInto("never_written", "key", &target)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCacheSaveEntryPreservesOthers(t *testing.T) {
	fc := newTestFileCache(t, 30)

	require.NoError(t, fc.SaveEntry("splits", "a", map[string]float64{"Slider": 0.2}))
	require.NoError(t, fc.SaveEntry("splits", "b", map[string]float64{"Sinker": 0.1}))

	loaded := fc.Load("splits")
	assert.Len(t, loaded, 2)
}

func TestFileCacheBadTimestampDropped(t *testing.T) {
	fc := newTestFileCache(t, 30)

	entries := map[string]fileCacheEntry{
		"mangled": {Data: json.RawMessage(`1`), Timestamp: "yesterday-ish"},
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fc.dir, "ts.json"), raw, 0o644))

	assert.Empty(t, fc.Load("ts"))
}

func TestFileCachePrune(t *testing.T) {
	fc := newTestFileCache(t, 30)

	mixed := map[string]fileCacheEntry{
		"old": {
			Data:      json.RawMessage(`{"v":1}`),
			Timestamp: time.Now().UTC().AddDate(0, 0, -31).Format(time.RFC3339),
		},
		"fresh": {
			Data:      json.RawMessage(`{"v":2}`),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	raw, err := json.Marshal(mixed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fc.dir, "mixed.json"), raw, 0o644))

	allStale := map[string]fileCacheEntry{
		"old": {
			Data:      json.RawMessage(`{"v":3}`),
			Timestamp: time.Now().UTC().AddDate(0, 0, -60).Format(time.RFC3339),
		},
	}
	raw, err = json.Marshal(allStale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fc.dir, "stale.json"), raw, 0o644))

	dropped, err := fc.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	// The mixed file keeps its fresh entry; the all-stale file is gone.
	loaded := fc.Load("mixed")
	require.Len(t, loaded, 1)
	assert.Contains(t, loaded, "fresh")

	_, err = os.Stat(filepath.Join(fc.dir, "stale.json"))
	assert.True(t, os.IsNotExist(err))
}
