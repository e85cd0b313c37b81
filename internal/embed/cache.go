package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	dgerrors "github.com/docground/docground/internal/errors"
	"github.com/docground/docground/internal/index"
)

// Cache persists section embeddings keyed by section ID, tagged with the
// provider and model that produced them.
//
// Readers access the vector map through an atomic pointer; Build and Reindex
// compute a complete replacement map and publish it in one swap, so a
// concurrent search never observes a half-migrated cache. In-process rebuilds
// are serialized by a mutex, cross-process rebuilds by a file lock.
type Cache struct {
	path     string
	provider string
	model    string

	mu      sync.Mutex // serializes Build/Reindex/Persist
	entries atomic.Pointer[map[string][]float32]
}

// BuildStats reports the outcome of a cache build.
type BuildStats struct {
	Cached       int `json:"cached"`
	New          int `json:"new"`
	StaleRemoved int `json:"stale_removed"`
	Total        int `json:"total"`
}

// cacheFile is the on-disk JSON representation.
type cacheFile struct {
	Provider      string               `json:"provider"`
	Model         string               `json:"model"`
	SectionsCount int                  `json:"sections_count"`
	Embeddings    map[string][]float32 `json:"embeddings"`
}

// NewCache creates an empty cache bound to the given file path and provider
// identity.
func NewCache(path, provider, model string) *Cache {
	c := &Cache{path: path, provider: provider, model: model}
	empty := make(map[string][]float32)
	c.entries.Store(&empty)
	return c
}

// Load reads a persisted cache from path.
//
// A missing file yields an empty cache. A stored identity that does not match
// the configured provider+model also yields an empty cache: vectors from a
// different model are useless at best and silently wrong at worst, so they
// are discarded and rebuilt. Corrupt files are logged and treated as empty.
func Load(path, provider, model string) *Cache {
	c := NewCache(path, provider, model)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c
	}
	if err != nil {
		slog.Warn("embed_cache_unreadable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return c
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("embed_cache_corrupt",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return c
	}

	if file.Provider != provider || file.Model != model {
		slog.Info("embed_cache_identity_mismatch",
			slog.String("stored_provider", file.Provider),
			slog.String("stored_model", file.Model),
			slog.String("configured_provider", provider),
			slog.String("configured_model", model))
		return c
	}

	if file.Embeddings != nil {
		c.entries.Store(&file.Embeddings)
	}
	slog.Info("embed_cache_loaded",
		slog.String("path", path),
		slog.Int("entries", c.Len()))
	return c
}

// Snapshot returns the current vector map. Callers must treat it as
// read-only; it is shared with concurrent readers.
func (c *Cache) Snapshot() map[string][]float32 {
	return *c.entries.Load()
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	return len(c.Snapshot())
}

// Provider returns the provider identity this cache is bound to.
func (c *Cache) Provider() string { return c.provider }

// Model returns the model identity this cache is bound to.
func (c *Cache) Model() string { return c.model }

// Build aligns the cache with the current section set.
//
// Only sections missing from the cache are embedded (incremental); entries
// whose section ID no longer exists are pruned. The resulting map is
// published atomically and persisted before Build returns.
func (c *Cache) Build(ctx context.Context, sections []*index.Section, e Embedder) (BuildStats, error) {
	if e == nil {
		return BuildStats{}, fmt.Errorf("no embedding provider configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	flock := NewFileLock(c.path)
	if err := flock.Lock(); err != nil {
		return BuildStats{}, err
	}
	defer func() { _ = flock.Unlock() }()

	return c.buildLocked(ctx, sections, e)
}

// Reindex clears all entries and rebuilds from scratch, ignoring any
// previously cached vectors.
func (c *Cache) Reindex(ctx context.Context, sections []*index.Section, e Embedder) (BuildStats, error) {
	if e == nil {
		return BuildStats{}, fmt.Errorf("no embedding provider configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	flock := NewFileLock(c.path)
	if err := flock.Lock(); err != nil {
		return BuildStats{}, err
	}
	defer func() { _ = flock.Unlock() }()

	empty := make(map[string][]float32)
	c.entries.Store(&empty)

	return c.buildLocked(ctx, sections, e)
}

// buildLocked does the incremental build. Caller holds c.mu and the file lock.
func (c *Cache) buildLocked(ctx context.Context, sections []*index.Section, e Embedder) (BuildStats, error) {
	old := c.Snapshot()
	next := make(map[string][]float32, len(sections))

	var stats BuildStats
	var missingIDs []string
	var missingTexts []string

	for _, sec := range sections {
		if vec, ok := old[sec.ID]; ok {
			next[sec.ID] = vec
			stats.Cached++
			continue
		}
		missingIDs = append(missingIDs, sec.ID)
		missingTexts = append(missingTexts, sec.EmbeddingText())
	}

	if len(missingTexts) > 0 {
		vectors, err := e.EmbedDocuments(ctx, missingTexts)
		if err != nil {
			return stats, dgerrors.Wrap(err, dgerrors.ErrCodeProviderUnavailable,
				dgerrors.CategoryNetwork, "embedding build failed")
		}
		if len(vectors) != len(missingIDs) {
			return stats, dgerrors.Newf(dgerrors.ErrCodeProviderResponse,
				dgerrors.CategoryNetwork, dgerrors.SeverityError,
				"expected %d vectors, got %d", len(missingIDs), len(vectors))
		}
		for i, id := range missingIDs {
			next[id] = vectors[i]
		}
		stats.New = len(missingIDs)
	}

	// Everything in the old map that didn't make it into next is stale.
	for id := range old {
		if _, ok := next[id]; !ok {
			stats.StaleRemoved++
		}
	}
	stats.Total = len(next)

	c.entries.Store(&next)

	if err := c.persistLocked(); err != nil {
		return stats, err
	}

	slog.Info("embed_cache_rebuilt",
		slog.Int("cached", stats.Cached),
		slog.Int("new", stats.New),
		slog.Int("stale_removed", stats.StaleRemoved),
		slog.Int("total", stats.Total))

	return stats, nil
}

// Persist writes the cache to disk. No-op when the cache has no provider
// identity or no entries to save.
func (c *Cache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

// persistLocked writes the on-disk representation. Caller holds c.mu.
func (c *Cache) persistLocked() error {
	if c.provider == "" || c.Len() == 0 {
		return nil
	}

	file := cacheFile{
		Provider:      c.provider,
		Model:         c.model,
		SectionsCount: c.Len(),
		Embeddings:    c.Snapshot(),
	}

	data, err := json.Marshal(file)
	if err != nil {
		return dgerrors.Wrap(err, dgerrors.ErrCodeCacheWriteFailed,
			dgerrors.CategoryIO, "marshal embedding cache")
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dgerrors.Wrap(err, dgerrors.ErrCodeCacheWriteFailed,
				dgerrors.CategoryIO, "create cache directory")
		}
	}

	// Write-then-rename so a crash mid-write never leaves a torn cache.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return dgerrors.Wrap(err, dgerrors.ErrCodeCacheWriteFailed,
			dgerrors.CategoryIO, "write embedding cache")
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return dgerrors.Wrap(err, dgerrors.ErrCodeCacheWriteFailed,
			dgerrors.CategoryIO, "replace embedding cache")
	}
	return nil
}
