package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/antiplagiat/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("search", "\"query\"", "3")
	b := Key("search", "\"query\"", "3")
	c := Key("search", "\"query\"3")

	if a != b {
		t.Error("Expected identical parts to give identical keys")
	}
	if a == c {
		t.Error("Expected part boundaries to matter")
	}
	if !strings.HasPrefix(a, "antiplagiat:v1:search:") {
		t.Errorf("Unexpected key prefix: %s", a)
	}
}

func testCacheContract(t *testing.T, c Cache) {
	t.Helper()

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected 'v', got %q (found=%v)", got, ok)
	}

	if err := c.Delete("k"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
	if err := c.Delete("never-set"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestMemoryCache(t *testing.T) {
	testCacheContract(t, NewMemoryCache(time.Minute, time.Minute))
}

func TestDiskCache(t *testing.T) {
	testCacheContract(t, NewDiskCache(t.TempDir(), time.Minute))
}

func TestLayeredCache(t *testing.T) {
	testCacheContract(t, NewLayeredCache(NewMemoryCache(time.Minute, time.Minute), NewDiskCache(t.TempDir(), time.Minute)))
}

func TestLayeredCache_PromotesHits(t *testing.T) {
	front := NewMemoryCache(time.Minute, time.Minute)
	back := NewDiskCache(t.TempDir(), time.Minute)
	c := NewLayeredCache(front, nil, back)

	if err := back.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Expected hit from back tier, got %q (found=%v)", got, ok)
	}
	if got, ok := front.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected hit to be promoted to front tier, got %q (found=%v)", got, ok)
	}
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	buf := []byte("abc")
	_ = c.Set("k", buf, 0)
	buf[0] = 'x'

	if got, _ := c.Get("k"); string(got) != "abc" {
		t.Errorf("Expected stored copy to be unaffected, got %q", got)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 item, got %d", c.Len())
	}
}

func TestDiskCache_ClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	_ = c.Set("k", []byte("v"), 0)

	foreign := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(foreign, []byte("keep"), 0644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("Expected foreign file to survive: %v", err)
	}
}

func TestLRUCache(t *testing.T) {
	c, err := NewLRUCache(16, time.Minute)
	if err != nil {
		t.Fatalf("Failed to create LRU cache: %v", err)
	}
	testCacheContract(t, c)
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c, err := NewLRUCache(2, 0)
	if err != nil {
		t.Fatalf("Failed to create LRU cache: %v", err)
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	c.Get("a") // a is now most recently used
	_ = c.Set("c", []byte("3"), 0)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected least recently used entry to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected recently used entry to survive")
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, _ := NewLRUCache(4, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set("k", []byte("v"), 0)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to expire after default TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, got %d entries", c.Len())
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected expired disk entry to be a miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Errorf("Expected expired file to be removed, stat err = %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.CacheConfig
		wantNil bool
		wantErr bool
	}{
		{"disabled", model.CacheConfig{Enabled: false}, true, false},
		{"memory", model.CacheConfig{Enabled: true, Kind: "memory", TTL: time.Minute}, false, false},
		{"lru", model.CacheConfig{Enabled: true, Kind: "lru", Size: 8}, false, false},
		{"lru invalid size", model.CacheConfig{Enabled: true, Kind: "lru", Size: 0}, true, true},
		{"disk without dir", model.CacheConfig{Enabled: true, Kind: "disk"}, true, true},
		{"layered", model.CacheConfig{Enabled: true, Kind: "layered", Dir: t.TempDir()}, false, false},
		{"unknown", model.CacheConfig{Enabled: true, Kind: "redis"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if (c == nil) != tt.wantNil {
				t.Errorf("Expected nil=%v, got %T", tt.wantNil, c)
			}
		})
	}
}
