package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected hit")
	}
	if string(data) != "payload" {
		t.Errorf("data = %q, want %q", data, "payload")
	}
}

func TestFileCacheMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	_, found, err := c.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss for absent key")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	_, found, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	hash := Hash([]byte("bad"))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, found, err := c.Get(ctx, "bad")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("corrupt entry should be a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := c.Get(ctx, "key"); found {
		t.Error("deleted key should be a miss")
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found, _ := c.Get(ctx, "key"); found {
		t.Error("null cache should always miss")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	src := k.SourceKey([]byte("PIN, LEFT, 1, VCC"))
	if src != k.SourceKey([]byte("PIN, LEFT, 1, VCC")) {
		t.Error("source key is not deterministic")
	}
	if src == k.SourceKey([]byte("PIN, LEFT, 2, GND")) {
		t.Error("different sources share a key")
	}

	opts := ArtifactKeyOpts{Format: "svg", Page: "A4-L", DPI: 300}
	art := k.ArtifactKey(src, opts)
	if art != k.ArtifactKey(src, opts) {
		t.Error("artifact key is not deterministic")
	}

	for name, changed := range map[string]ArtifactKeyOpts{
		"format":     {Format: "png", Page: "A4-L", DPI: 300},
		"page":       {Format: "svg", Page: "A5-P", DPI: 300},
		"dpi":        {Format: "svg", Page: "A4-L", DPI: 600},
		"background": {Format: "svg", Page: "A4-L", DPI: 300, Background: "ivory"},
		"font":       {Format: "svg", Page: "A4-L", DPI: 300, FontFamily: "Inter"},
	} {
		if k.ArtifactKey(src, changed) == art {
			t.Errorf("changing %s did not change the artifact key", name)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "proj1:")

	src := k.SourceKey([]byte("source"))
	if src != "proj1:"+inner.SourceKey([]byte("source")) {
		t.Errorf("scoped source key = %q", src)
	}

	other := NewScopedKeyer(nil, "proj2:")
	if other.SourceKey([]byte("source")) == src {
		t.Error("different scopes share a key")
	}
}
