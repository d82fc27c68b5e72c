package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestCache(t *testing.T, maxEntries int) *Cache {
	t.Helper()
	c, err := New(Config{Dir: t.TempDir(), MaxEntries: maxEntries})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestCache_GetPut(t *testing.T) {
	cache := newTestCache(t, 0)

	key := Key("page.vir.yaml", "body: []")
	data := []byte(`{"helpers":[]}`)

	if err := cache.Put(key, data); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}

	retrieved, found := cache.Get(key)
	if !found {
		t.Fatal("Data not found in cache")
	}
	if !bytes.Equal(retrieved, data) {
		t.Errorf("Retrieved data doesn't match: got %s, want %s", retrieved, data)
	}

	if _, found := cache.Get("non-existent"); found {
		t.Error("Found non-existent key")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
	if stats.Entries != 1 || stats.TotalSize != int64(len(data)) {
		t.Errorf("Unexpected size stats: %+v", stats)
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := newTestCache(t, 0)

	if err := cache.Put("k", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("k", []byte("second!")); err != nil {
		t.Fatal(err)
	}

	got, _ := cache.Get("k")
	if string(got) != "second!" {
		t.Errorf("got %q, want %q", got, "second!")
	}
	if s := cache.GetStats(); s.Entries != 1 || s.TotalSize != 7 {
		t.Errorf("Unexpected stats after overwrite: %+v", s)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(t, 0)

	key := "delete-test"
	if err := cache.Put(key, []byte("data to delete")); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}
	if err := cache.Delete(key); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found := cache.Get(key); found {
		t.Error("Data found after delete")
	}
	if err := cache.Delete(key); err != nil {
		t.Errorf("Delete of non-existent key failed: %v", err)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newTestCache(t, 2)

	cache.Put("key1", []byte("a"))
	cache.Put("key2", []byte("b"))

	// Touch key1 so key2 becomes the oldest.
	cache.Get("key1")

	cache.Put("key3", []byte("c"))

	if _, found := cache.Get("key1"); !found {
		t.Error("key1 was evicted but shouldn't have been")
	}
	if _, found := cache.Get("key2"); found {
		t.Error("key2 was not evicted but should have been")
	}
	if _, found := cache.Get("key3"); !found {
		t.Error("key3 not found")
	}

	stats := cache.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", cache.Len())
	}
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache(t, 0)

	for i := 0; i < 5; i++ {
		if err := cache.Put(fmt.Sprintf("key%d", i), []byte("data")); err != nil {
			t.Fatal(err)
		}
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
	if _, found := cache.Get("key0"); found {
		t.Error("Entry found after clear")
	}
	if err := cache.Put("again", []byte("x")); err != nil {
		t.Errorf("Put after clear failed: %v", err)
	}
}

func TestCache_MissingResultFile(t *testing.T) {
	cache := newTestCache(t, 0)

	if err := cache.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(cache.Dir(), "results")); err != nil {
		t.Fatal(err)
	}

	if _, found := cache.Get("k"); found {
		t.Error("Expected miss for entry without result file")
	}
	if cache.Len() != 0 {
		t.Error("Stale entry was not dropped")
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()

	cache1, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := cache1.Put("persist", []byte("persistent data")); err != nil {
		t.Fatal(err)
	}
	if err := cache1.Close(); err != nil {
		t.Fatal(err)
	}

	cache2, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	got, found := cache2.Get("persist")
	if !found {
		t.Fatal("Data not persisted across instances")
	}
	if string(got) != "persistent data" {
		t.Errorf("got %q", got)
	}
	if s := cache2.GetStats(); s.TotalSize != int64(len("persistent data")) {
		t.Errorf("Total size not restored: %+v", s)
	}
}

func TestCache_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Corrupt index should start fresh, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
}

func TestCache_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Dir: t.TempDir(), MaxEntries: -1}); err == nil {
		t.Error("Expected error for negative max entries")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := newTestCache(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				data := []byte(key)
				if err := cache.Put(key, data); err != nil {
					t.Errorf("Put failed: %v", err)
					return
				}
				got, found := cache.Get(key)
				if !found || !bytes.Equal(got, data) {
					t.Errorf("Get %s returned %q, %v", key, got, found)
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 160 {
		t.Errorf("Expected 160 entries, got %d", cache.Len())
	}
}

func TestCache_KeyGeneration(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		same bool
	}{
		{"identical inputs", []string{"a", "b"}, []string{"a", "b"}, true},
		{"different inputs", []string{"a"}, []string{"b"}, false},
		{"split point matters", []string{"ab", "c"}, []string{"a", "bc"}, false},
		{"order matters", []string{"a", "b"}, []string{"b", "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := Key(tt.a...), Key(tt.b...)
			if len(ka) != 64 {
				t.Errorf("Expected 64 hex chars, got %d", len(ka))
			}
			if (ka == kb) != tt.same {
				t.Errorf("Key(%v) == Key(%v) is %v, want %v", tt.a, tt.b, ka == kb, tt.same)
			}
		})
	}
}

func BenchmarkCache_Put(b *testing.B) {
	cache, err := New(Config{Dir: b.TempDir(), MaxEntries: 64})
	if err != nil {
		b.Fatal(err)
	}
	data := bytes.Repeat([]byte("x"), 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Put(fmt.Sprintf("key%d", i), data)
	}
}

func BenchmarkCache_KeyGeneration(b *testing.B) {
	input := string(bytes.Repeat([]byte("body: []\n"), 100))
	for i := 0; i < b.N; i++ {
		Key("page.vir.yaml", input, "merge")
	}
}
