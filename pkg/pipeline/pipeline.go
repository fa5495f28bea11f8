// Package pipeline provides the solve and render pipeline for modelsketch.
//
// This package implements the complete parse → solve → render pipeline used
// by every CLI command. By centralizing this logic, the commands share
// caching, defaults and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read and decode a TOML scene, applying tuning overrides
//  2. Solve: Build the solver model, replay scripted drags and run frames
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Solved snapshots are cached by scene content and solve settings; artifacts
// are cached by snapshot content and render settings.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ScenePath: "triangle.toml",
//	    Settle:    true,
//	    Formats:   []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Solve only
//	snap, err := runner.Solve(ctx, opts)
//
//	// Render an existing snapshot
//	artifacts, err := runner.Render(ctx, snap, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelsketch/pkg/cache"
	"github.com/matzehuels/modelsketch/pkg/construction"
	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for every command
// =============================================================================

const (
	// DefaultFrames is the number of frames simulated after scripted drags.
	// With Settle it is the upper bound.
	DefaultFrames = scene.DefaultFrames

	// DefaultFrameRate is the simulated display refresh rate.
	DefaultFrameRate = scene.DefaultFrameRate

	// DefaultEpsilon is the kinetic energy below which a settling run stops.
	DefaultEpsilon = scene.DefaultEpsilon

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// supportedFormats lists ValidFormats in display order.
var supportedFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Parse options
	ScenePath string `json:"scene_path,omitempty"`
	SceneData []byte `json:"-"`    // Inline scene; takes precedence over ScenePath
	SceneName string `json:"name"` // Overrides the scene's own name

	// Tuning replaces the non-zero fields of the scene's [tuning] table.
	Tuning construction.Tuning `json:"tuning"`

	// Solve options
	Frames    int     `json:"frames,omitempty"`
	FrameRate int     `json:"frame_rate,omitempty"`
	Settle    bool    `json:"settle,omitempty"`
	Epsilon   float64 `json:"epsilon,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`  // 0 draws at 1:1
	Height  float64  `json:"height,omitempty"` // 0 draws at 1:1
	Labels  bool     `json:"labels,omitempty"`
	Overlay bool     `json:"overlay,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs.
	RunID string

	// Snapshot is the solved sketch.
	Snapshot *graph.Snapshot

	// SnapshotHash is the content hash of the encoded snapshot.
	SnapshotHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConstraintCount int
	SpringCount     int // 0 when the snapshot came from cache
	Frames          int
	Energy          float64
	Settled         bool
	ParseTime       time.Duration
	SolveTime       time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // Whether the snapshot came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.ValidateFormat(format, supportedFormats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForSolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for loading a scene.
func (o *Options) ValidateForParse() error {
	if len(o.SceneData) == 0 && o.ScenePath == "" {
		return apperr.New(apperr.ErrCodeInvalidInput, "scene path or data is required")
	}
	if o.SceneName != "" {
		if err := apperr.ValidateName(o.SceneName); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetSolveDefaults sets default values for simulation.
func (o *Options) SetSolveDefaults() {
	if o.Frames == 0 {
		o.Frames = DefaultFrames
	}
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSolve validates and sets defaults for simulation.
func (o *Options) ValidateForSolve() error {
	o.SetSolveDefaults()
	if o.Frames < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "frames must not be negative")
	}
	if o.FrameRate < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "frame rate must be positive")
	}
	if o.Epsilon < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "epsilon must not be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "width and height must not be negative")
	}
	if (o.Width == 0) != (o.Height == 0) {
		return apperr.New(apperr.ErrCodeInvalidInput, "width and height must be set together")
	}
	return ValidateFormats(o.Formats)
}

// RunOptions returns the scene run settings.
func (o *Options) RunOptions() scene.RunOptions {
	return scene.RunOptions{
		Frames:    o.Frames,
		FrameRate: o.FrameRate,
		Settle:    o.Settle,
		Epsilon:   o.Epsilon,
	}
}

// SnapshotKeyOpts returns cache key options for a solve.
func (o *Options) SnapshotKeyOpts(tuningHash string) cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		Frames:     o.Frames,
		FrameRate:  o.FrameRate,
		TuningHash: tuningHash,
		Settle:     o.Settle,
		Epsilon:    o.Epsilon,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// The scale only affects PNG output and is left out of other keys.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:  format,
		Width:   o.Width,
		Height:  o.Height,
		Labels:  o.Labels,
		Overlay: o.Overlay,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
