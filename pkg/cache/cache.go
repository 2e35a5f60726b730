// Package cache stores rendered mat artifacts between runs.
//
// Rendering a reference mat at print resolution takes long enough that the
// CLI and the HTTP server both keep encoded artifacts keyed by a hash of
// the configuration. Only deterministic renders are cached; a render with
// random speckle is never looked up or stored.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// servers sharing a cache, and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys for pipeline artifacts.
type Keyer interface {
	// ArtifactKey returns the key of one encoded artifact of a configuration.
	ArtifactKey(configHash string, opts ArtifactKeyOpts) string
	// ReportKey returns the key of the text specification of a configuration.
	ReportKey(configHash string) string
}

// ArtifactKeyOpts holds everything besides the configuration that changes
// an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Quality int    `json:"quality,omitempty"`
	Speckle bool   `json:"speckle"`
	Seed    uint64 `json:"seed,omitempty"`
}

// KeyVersion is bumped whenever rendering changes in a way that makes old
// artifacts stale.
const KeyVersion = "v1"

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(configHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", KeyVersion, configHash, opts)
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(configHash string) string {
	return hashKey("report", KeyVersion, configHash)
}

// TTLs for cached entries.
const (
	// TTLArtifact applies to encoded images and meshes.
	TTLArtifact = 30 * 24 * time.Hour
	// TTLReport applies to text specifications.
	TTLReport = 30 * 24 * time.Hour
)
