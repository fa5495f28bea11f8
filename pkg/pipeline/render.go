package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/render/nodelink"
	"github.com/matzehuels/modelsketch/pkg/render/sketch"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, snap *graph.Snapshot, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := RenderFormat(ctx, snap, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat renders a single format.
func RenderFormat(ctx context.Context, snap *graph.Snapshot, format string, opts Options) ([]byte, error) {
	svgOpts := buildSVGOptions(opts)

	switch format {
	case FormatSVG:
		return sketch.RenderSVG(snap, svgOpts...), nil
	case FormatPNG:
		return sketch.RenderPNG(ctx, snap, sketch.WithPNGSVGOptions(svgOpts...), sketch.WithScale(opts.Scale))
	case FormatPDF:
		return sketch.RenderPDF(ctx, snap, svgOpts...)
	case FormatJSON:
		return graph.MarshalSnapshot(snap)
	case FormatDOT:
		return []byte(nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.Overlay})), nil
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sketch.SVGOption {
	var svgOpts []sketch.SVGOption
	if opts.Width > 0 && opts.Height > 0 {
		svgOpts = append(svgOpts, sketch.WithSize(opts.Width, opts.Height))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sketch.WithLabels())
	}
	if opts.Overlay {
		svgOpts = append(svgOpts, sketch.WithOverlay())
	}
	return svgOpts
}
