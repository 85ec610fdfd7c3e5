// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache is the content-addressed artifact store. Artifacts are
// keyed by a hash of their source URL, and the index lives in a single
// metadata.json rewritten whole on every mutation, so two Manager
// instances over the same directory see each other's committed writes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

const metadataFile = "metadata.json"

// timeNow is swapped in tests that exercise age-based cleanup.
var timeNow = time.Now

// ContentKey derives the cache key for a source URL: the first eight
// bytes of its SHA-256, hex encoded.
func ContentKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// Manager owns one cache directory. All methods are safe for
// concurrent use within a process.
type Manager struct {
	dir string

	mu      sync.Mutex
	entries map[string]*types.CacheEntry
}

// Open loads (or initializes) the cache at dir. A missing or corrupt
// metadata file yields an empty index; corruption is reported as a
// warning on warnW rather than an error, so a damaged index never
// blocks the pipeline.
func Open(dir string, warnW io.Writer) (*Manager, error) {
	if warnW == nil {
		warnW = io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	m := &Manager{
		dir:     dir,
		entries: make(map[string]*types.CacheEntry),
	}

	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache metadata: %w", err)
	}
	if err := json.Unmarshal(data, &m.entries); err != nil {
		fmt.Fprintf(warnW, "warning: cache metadata unreadable, starting empty: %v\n", err)
		m.entries = make(map[string]*types.CacheEntry)
	}
	return m, nil
}

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.dir }

// ArtifactPath returns where the artifact for key lives on disk.
func (m *Manager) ArtifactPath(key string) string {
	return filepath.Join(m.dir, key+".pdf")
}

// persist rewrites the whole metadata file. Caller holds m.mu.
func (m *Manager) persist() error {
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache metadata: %w", err)
	}

	path := filepath.Join(m.dir, metadataFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing cache metadata: %w", err)
	}
	return nil
}

// Has reports whether key is present in the index.
func (m *Manager) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// Get returns a copy of the entry for key, or nil if absent.
func (m *Manager) Get(key string) *types.CacheEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// Register records a freshly downloaded artifact under its content key
// with status cached. The content hash is computed from the file bytes.
// Registering an existing key overwrites the previous entry.
func (m *Manager) Register(sourceURL, localPath string) (*types.CacheEntry, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	hash, err := hashFile(localPath)
	if err != nil {
		return nil, err
	}

	entry := &types.CacheEntry{
		ContentKey:   ContentKey(sourceURL),
		SourceURL:    sourceURL,
		LocalPath:    localPath,
		SizeBytes:    info.Size(),
		ContentHash:  hash,
		DownloadedAt: timeNow().UTC(),
		Status:       types.StatusCached,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ContentKey] = entry
	if err := m.persist(); err != nil {
		return nil, err
	}
	cp := *entry
	return &cp, nil
}

// UpdateStatus advances the entry's status. Transitions only move
// forward; moving to extracted requires a payload and stamps
// ExtractedAt.
func (m *Manager) UpdateStatus(key string, status types.CacheStatus, extra *types.ExtraPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("no cache entry for key %q", key)
	}
	if !e.Status.CanAdvanceTo(status) {
		return fmt.Errorf("illegal status transition %s -> %s for key %q", e.Status, status, key)
	}
	if status == types.StatusExtracted {
		if extra == nil || extra.ExtractedInfo == nil {
			return fmt.Errorf("extracted status requires an extraction payload for key %q", key)
		}
		now := timeNow().UTC()
		e.ExtractedAt = &now
	}
	e.Status = status
	if extra != nil {
		e.Extra = extra
	}
	return m.persist()
}

// Delete removes the entry and its artifact. Deleting an absent key is
// a no-op.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(key)
}

func (m *Manager) deleteLocked(key string) error {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if e.LocalPath != "" {
		if err := os.Remove(e.LocalPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing artifact for key %q: %w", key, err)
		}
	}
	delete(m.entries, key)
	return m.persist()
}

// Stats summarizes the index.
func (m *Manager) Stats() types.CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s types.CacheStats
	for _, e := range m.entries {
		s.TotalEntries++
		s.TotalSizeBytes += e.SizeBytes
		switch e.Status {
		case types.StatusCached:
			s.CachedCount++
		case types.StatusExtracted:
			s.ExtractedCount++
		}
	}
	return s
}

// Entries returns copies of all entries, newest download first.
func (m *Manager) Entries() []types.CacheEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.CacheEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DownloadedAt.After(out[j].DownloadedAt)
	})
	return out
}

// Cleanup evicts entries in two passes: first everything downloaded
// more than maxAge ago, then, if maxSizeBytes > 0 and the remainder
// still exceeds it, oldest entries until the total fits. Evicted
// artifacts are removed from disk. Returns the number of evicted
// entries.
func (m *Manager) Cleanup(maxAge time.Duration, maxSizeBytes int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	if maxAge > 0 {
		cutoff := timeNow().Add(-maxAge)
		for key, e := range m.entries {
			if e.DownloadedAt.Before(cutoff) {
				if err := m.deleteLocked(key); err != nil {
					return evicted, err
				}
				evicted++
			}
		}
	}

	if maxSizeBytes > 0 {
		var total int64
		keys := make([]string, 0, len(m.entries))
		for key, e := range m.entries {
			total += e.SizeBytes
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			return m.entries[keys[i]].DownloadedAt.Before(m.entries[keys[j]].DownloadedAt)
		})
		for _, key := range keys {
			if total <= maxSizeBytes {
				break
			}
			total -= m.entries[key].SizeBytes
			if err := m.deleteLocked(key); err != nil {
				return evicted, err
			}
			evicted++
		}
	}
	return evicted, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
