package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil || hit {
		t.Fatalf("Get before Set: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("data = %q, want %q", data, "value")
	}

	// Expired entries are treated as misses
	if err := c.Set(ctx, "expired", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, _ = c.Get(ctx, "expired")
	if hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("deleted entry should be a miss")
	}

	// Deleting an absent key is fine
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Entries live sharded under the digest of their key.
	sum := Hash([]byte("key"))
	path := filepath.Join(dir, sum[:2], sum[2:]+".json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("entry not at expected path: %v", err)
	}

	// Damage the entry on disk: the next read must report a miss and
	// remove the file so a rebuild can replace it.
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("corrupt entry should be a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// NetworkKey should include options in hash
	nk1 := k.NetworkKey("batchhash", NetworkKeyOpts{})
	nk2 := k.NetworkKey("batchhash", NetworkKeyOpts{NamesMapHash: "nmhash"})
	if nk1 == nk2 {
		t.Error("Different NetworkKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(nk1, "network:") {
		t.Errorf("NetworkKey should carry the network prefix: %s", nk1)
	}

	// ProjectionKey
	pk1 := k.ProjectionKey(nk1, ProjectionKeyOpts{Partition: "collectors", Rule: "simple"})
	pk2 := k.ProjectionKey(nk1, ProjectionKeyOpts{Partition: "collectors", Rule: "cosine"})
	if pk1 == pk2 {
		t.Error("Different ProjectionKeyOpts should produce different keys")
	}
	pk3 := k.ProjectionKey(nk1, ProjectionKeyOpts{Partition: "collectors", Rule: "simple", Threshold: 2, HasThresh: true})
	if pk1 == pk3 {
		t.Error("Threshold should affect the projection key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "dataset:ufrn:")

	// All keys should be prefixed
	key := scoped.NetworkKey("batchhash", NetworkKeyOpts{})
	if !strings.HasPrefix(key, "dataset:ufrn:network:") {
		t.Errorf("ScopedKeyer NetworkKey should be prefixed: %s", key)
	}

	pk := scoped.ProjectionKey(key, ProjectionKeyOpts{Partition: "species", Rule: "simple"})
	if !strings.HasPrefix(pk, "dataset:ufrn:projection:") {
		t.Errorf("ScopedKeyer ProjectionKey should be prefixed: %s", pk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.NetworkKey("h", NetworkKeyOpts{})
	if !strings.HasPrefix(key, "prefix:network:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
