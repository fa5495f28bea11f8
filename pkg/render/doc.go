// Package render turns solved sketches into images.
//
// # Overview
//
// Renderers read a [graph.Snapshot], never the live solver, so a snapshot
// loaded from cache renders exactly like a fresh one. The package provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Sketch drawings (in [sketch] subpackage)
//   - Constraint topology diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both renderers use them.
//
//	svg := sketch.RenderSVG(snap, sketch.WithLabels())
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage lays out which constraint measures which node
// with Graphviz:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [graph.Snapshot]: github.com/matzehuels/modelsketch/pkg/graph
// [sketch]: github.com/matzehuels/modelsketch/pkg/render/sketch
// [nodelink]: github.com/matzehuels/modelsketch/pkg/render/nodelink
package render
