package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes quantities and bounds in constraint labels.
	// When false, only the constraint ID is shown.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT format. Sketch nodes become
// circles, constraints become boxes with an edge to every node they measure,
// and a constraint whose bound follows another gets a dashed edge to it.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Violated constraints are filled red.
func ToDOT(s *graph.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.ID), "shape=circle"}
		if n.Fixed {
			attrs = append(attrs, "style=filled", "fillcolor=black", "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n.ID), strings.Join(attrs, ", "))
	}
	for _, c := range s.Constraints {
		fmt.Fprintf(&buf, "  %q [%s];\n", constraintID(c.ID), strings.Join(fmtAttrs(c, fmtLabel(c, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, c := range s.Constraints {
		for i, id := range c.Nodes {
			attrs := ""
			switch {
			case c.Kind == graph.KindAngle && i == 2:
				attrs = " [label=\"pivot\", style=bold]"
			case c.Kind == graph.KindRail && i >= 2:
				attrs = " [label=\"captive\", style=dotted]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", constraintID(c.ID), nodeID(id), attrs)
		}
		for _, ref := range refs(c) {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false];\n", constraintID(c.ID), constraintID(ref))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Graphviz ids are namespaced so a node and a constraint may share a name.
func nodeID(id string) string       { return "n:" + id }
func constraintID(id string) string { return "c:" + id }

func refs(c graph.Constraint) []string {
	switch {
	case c.MinRef != "" && c.MinRef == c.MaxRef:
		return []string{c.MinRef}
	case c.MinRef != "" && c.MaxRef != "":
		return []string{c.MinRef, c.MaxRef}
	case c.MinRef != "":
		return []string{c.MinRef}
	case c.MaxRef != "":
		return []string{c.MaxRef}
	}
	return nil
}

func fmtLabel(c graph.Constraint, detailed bool) string {
	if !detailed {
		return c.ID
	}

	parts := []string{c.Kind, fmt.Sprintf("value: %.2f", c.Quantity)}
	if c.Min != nil {
		parts = append(parts, fmt.Sprintf("min: %.2f", *c.Min))
	}
	if c.Max != nil {
		parts = append(parts, fmt.Sprintf("max: %.2f", *c.Max))
	}
	return c.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(c graph.Constraint, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label), "shape=box", "style=\"rounded,filled\""}
	switch {
	case !c.Satisfied():
		attrs = append(attrs, "fillcolor=\"#e63946\"", "fontcolor=white")
	case c.Kind == graph.KindRail:
		attrs = append(attrs, "fillcolor=lightgrey")
	default:
		attrs = append(attrs, "fillcolor=white")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeRender, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
