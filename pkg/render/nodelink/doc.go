// Package nodelink renders the constraint topology of a sketch as a
// node-link diagram.
//
// # Overview
//
// A sketch drawing shows where nodes are; this diagram shows what holds
// them there. Sketch nodes appear as circles, constraints as boxes with an
// edge to each node they measure, and bound references as dashed edges
// between constraints. Layout is left to Graphviz.
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, constraint labels include kind, value and bounds
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
