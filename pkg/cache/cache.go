// Package cache provides artifact caching for rendered diagrams.
//
// Rendering a document is deterministic, so the cache key of an artifact is
// derived from the source bytes plus the render options. A warm cache lets
// repeated renders of an unchanged source skip parsing and layout entirely.
package cache

import (
	"context"
	"time"
)

// TTLArtifact bounds how long rendered artifacts live on disk. Rendering is
// deterministic, so expiry only limits disk usage, never correctness.
const TTLArtifact = 30 * 24 * time.Hour

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives cache keys for the render pipeline.
type Keyer interface {
	// SourceKey identifies a parsed command list by its source bytes.
	SourceKey(source []byte) string

	// ArtifactKey identifies a rendered artifact: the source identity plus
	// every option that changes the output bytes.
	ArtifactKey(sourceKey string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that participate in artifact keys.
type ArtifactKeyOpts struct {
	Format     string
	Page       string
	DPI        int
	Background string
	FontFamily string
}

// DefaultKeyer hashes keys with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SourceKey implements Keyer.
func (DefaultKeyer) SourceKey(source []byte) string {
	return "src:" + Hash(source)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sourceKey string, opts ArtifactKeyOpts) string {
	return hashKey("art", sourceKey, opts.Format, opts.Page, opts.DPI, opts.Background, opts.FontFamily)
}

// ScopedKeyer prefixes every key, isolating cache namespaces when one cache
// directory is shared between projects.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps a keyer with a prefix. A nil inner keyer defaults to
// the standard one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SourceKey generates a prefixed source key.
func (k *ScopedKeyer) SourceKey(source []byte) string {
	return k.prefix + k.inner.SourceKey(source)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sourceKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sourceKey, opts)
}
