// Package cache stores compilation results on disk, keyed by the content
// and options that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const indexVersion = "1"

// Cache is a directory of result files plus a JSON index. It is safe for
// concurrent use within one process.
type Cache struct {
	mu         sync.RWMutex
	dir        string
	index      *Index
	maxEntries int
	tick       uint64
	stats      Stats
}

// Index tracks all cached entries.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is a single cached result.
type Entry struct {
	Key      string    `json:"key"`
	File     string    `json:"file"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	LastUsed uint64    `json:"last_used"`
	Hits     int       `json:"hits"`
}

// Stats tracks cache effectiveness.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// Config holds cache configuration.
type Config struct {
	Dir        string // Cache directory (default: user cache dir/vuec)
	MaxEntries int    // Entries kept before evicting least recently used; 0 means unlimited
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		Dir:        filepath.Join(dir, "vuec"),
		MaxEntries: 256,
	}
}

// New opens the cache in config.Dir, creating it if needed. A missing or
// unreadable index starts the cache empty.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}
	if config.MaxEntries < 0 {
		return nil, fmt.Errorf("invalid max entries %d", config.MaxEntries)
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "results"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:        config.Dir,
		maxEntries: config.MaxEntries,
		index:      newIndex(),
	}
	if err := c.loadIndex(); err != nil {
		c.index = newIndex()
	}
	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the data stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	data, err := os.ReadFile(c.path(entry))
	if err != nil {
		// Result file vanished underneath the index.
		_ = c.dropLocked(key, entry)
		c.stats.Misses++
		return nil, false
	}

	c.tick++
	entry.LastUsed = c.tick
	entry.Hits++
	c.stats.Hits++
	return data, true
}

// Put stores data under key, replacing any previous value.
func (c *Cache) Put(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &Entry{
		Key:     key,
		File:    fileName(key),
		Size:    int64(len(data)),
		Created: time.Now(),
	}
	if err := os.WriteFile(c.path(entry), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if old, ok := c.index.Entries[key]; ok {
		c.stats.TotalSize -= old.Size
	}
	c.tick++
	entry.LastUsed = c.tick
	c.index.Entries[key] = entry
	c.stats.TotalSize += entry.Size

	c.evictLocked()
	return c.saveIndexLocked()
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return nil
	}
	if err := c.dropLocked(key, entry); err != nil {
		return err
	}
	return c.saveIndexLocked()
}

// Clear removes every entry and resets statistics.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := filepath.Join(c.dir, "results")
	if err := os.RemoveAll(results); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	if err := os.MkdirAll(results, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	c.index = newIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}

// GetStats returns cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.index.Entries)
	return s
}

// Close persists the index, including access counts gathered by Get.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndexLocked()
}

// Key derives a cache key from inputs. Inputs are length-prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		fmt.Fprintf(h, "%d:", len(input))
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + ".json"
}

func (c *Cache) path(e *Entry) string {
	return filepath.Join(c.dir, "results", e.File)
}

// evictLocked drops least recently used entries above the size limit.
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.index.Entries) > c.maxEntries {
		var victim *Entry
		for _, e := range c.index.Entries {
			if victim == nil || e.LastUsed < victim.LastUsed {
				victim = e
			}
		}
		_ = c.dropLocked(victim.Key, victim)
		c.stats.Evictions++
	}
}

func (c *Cache) dropLocked(key string, e *Entry) error {
	delete(c.index.Entries, key)
	c.stats.TotalSize -= e.Size
	if err := os.Remove(c.path(e)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return fmt.Errorf("unsupported index version %q", index.Version)
	}

	c.index = &index
	for _, e := range index.Entries {
		c.stats.TotalSize += e.Size
		if e.LastUsed > c.tick {
			c.tick = e.LastUsed
		}
	}
	return nil
}

func (c *Cache) saveIndexLocked() error {
	c.index.Updated = time.Now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0o644)
}
