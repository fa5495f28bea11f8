// Package cache stores solved scenes and rendered artifacts.
//
// Solving a scene is deterministic: the same scene bytes, tuning and frame
// count always produce the same snapshot. The pipeline therefore keys the
// snapshot by a hash of its inputs and the artifacts by a hash of the
// snapshot, so re-rendering a sketch in another format skips the solve.
//
// Backends:
//   - [FileCache]: JSON entry files under the user cache directory (CLI)
//   - [RedisCache]: a shared redis instance
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values per entry type.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Keys
// =============================================================================

// SnapshotKeyOpts holds everything besides the scene bytes that changes the
// solved positions.
type SnapshotKeyOpts struct {
	Frames     int     `json:"frames"`
	FrameRate  int     `json:"frame_rate"`
	TuningHash string  `json:"tuning"`
	Settle     bool    `json:"settle"`
	Epsilon    float64 `json:"epsilon,omitempty"`
}

// ArtifactKeyOpts holds the render settings of one artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Labels  bool    `json:"labels"`
	Overlay bool    `json:"overlay"`
	Scale   float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	SnapshotKey(sceneHash string, opts SnapshotKeyOpts) string
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "snapshot:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns the key for a solved scene.
func (DefaultKeyer) SnapshotKey(sceneHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", sceneHash, opts)
}

// ArtifactKey returns the key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
