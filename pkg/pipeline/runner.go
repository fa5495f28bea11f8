package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/modelsketch/pkg/cache"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeSnapshot = "snapshot"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.Logger = opts.Logger.With("run", result.RunID[:8])
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stages 1 and 2: Parse and solve
	snap, stats, hit, err := r.SolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	result.Stats = stats
	result.CacheInfo.SnapshotHit = hit

	opts.Logger.Info("solved scene",
		"scene", snap.Scene,
		"nodes", stats.NodeCount,
		"constraints", stats.ConstraintCount,
		"frames", stats.Frames,
		"cached", hit,
		"duration", stats.ParseTime+stats.SolveTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.renderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.SnapshotHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo parses and solves the scene with caching and returns
// cache hit info. The snapshot key covers the scene bytes, the effective
// tuning and the solve settings.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, opts Options) (*graph.Snapshot, Stats, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, Stats{}, false, err
	}
	if err := opts.ValidateForSolve(); err != nil {
		return nil, Stats{}, false, err
	}
	hooks := observability.Cache()

	// Stage 1: Parse
	parseStart := time.Now()
	s, data, err := Parse(opts)
	if err != nil {
		return nil, Stats{}, false, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	tuningHash, err := cache.HashJSON(s.Tuning.WithDefaults())
	if err != nil {
		return nil, Stats{}, false, fmt.Errorf("hash tuning: %w", err)
	}
	sceneHash := cache.Hash(append([]byte(s.Name+"\x00"), data...))
	cacheKey := r.Keyer.SnapshotKey(sceneHash, opts.SnapshotKeyOpts(tuningHash))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := graph.UnmarshalSnapshot(cached); err == nil {
				hooks.OnCacheHit(ctx, keyTypeSnapshot)
				stats := statsFromSnapshot(snap)
				stats.ParseTime = parseTime
				return snap, stats, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeSnapshot)
	}

	// Stage 2: Solve
	snap, stats, err := Solve(ctx, s, opts)
	if err != nil {
		return nil, Stats{}, false, fmt.Errorf("solve: %w", err)
	}
	stats.ParseTime = parseTime

	// Cache the result
	if encoded, err := graph.MarshalSnapshot(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLSnapshot); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeSnapshot, len(encoded))
		}
	}

	return snap, stats, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, opts Options) (*graph.Snapshot, error) {
	snap, _, _, err := r.SolveWithCacheInfo(ctx, opts)
	return snap, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *graph.Snapshot, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, snap, opts)
	return artifacts, hit, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, snap *graph.Snapshot, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	hooks := observability.Cache()

	// Compute cache key from snapshot data
	encoded, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	snapshotHash := cache.Hash(encoded)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, snapshotHash, true, nil
	}

	// Render the missing formats
	solver := observability.Solver()
	start := time.Now()
	solver.OnRenderStart(ctx, missing)
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, snap, renderOpts)
	solver.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	// Cache each format
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
	}

	return artifacts, snapshotHash, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snap *graph.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
