package sketch

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/modelsketch/pkg/geom"
	"github.com/matzehuels/modelsketch/pkg/graph"
)

const (
	nodeRadius    = 7.0
	defaultMargin = 40.0
	arcRadius     = 22.0
	railOverhang  = 0.15

	colorInk   = "#222222"
	colorOK    = "#2a9d8f"
	colorBad   = "#e63946"
	colorRail  = "#8d99ae"
	colorPaper = "#ffffff"
)

const sketchCSS = `
    .edge { stroke: ` + colorInk + `; stroke-width: 2; stroke-linecap: round; }
    .rail { stroke: ` + colorRail + `; stroke-width: 1.5; stroke-dasharray: 2 4; }
    .node { stroke: ` + colorInk + `; stroke-width: 2; fill: ` + colorPaper + `; }
    .node.fixed { fill: ` + colorInk + `; }
    .dim { stroke-width: 1; stroke-dasharray: 5 3; fill: none; }
    text { font-family: ui-monospace, monospace; font-size: 11px; }
    .label { font-size: 13px; font-weight: bold; fill: ` + colorInk + `; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	margin        float64
	labels        bool
	overlay       bool
}

// WithSize scales the drawing to fit a width x height frame. Without it the
// sketch is drawn at 1:1 around its bounding box.
func WithSize(w, h float64) SVGOption { return func(r *svgRenderer) { r.width, r.height = w, h } }
func WithMargin(m float64) SVGOption  { return func(r *svgRenderer) { r.margin = m } }
func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithOverlay() SVGOption          { return func(r *svgRenderer) { r.overlay = true } }

// frame maps snapshot coordinates into the SVG viewport.
type frame struct {
	minX, minY float64
	scale      float64
	margin     float64
	w, h       float64
}

func (f frame) at(x, y float64) geom.Point {
	return geom.Pt((x-f.minX)*f.scale+f.margin, (y-f.minY)*f.scale+f.margin)
}

func RenderSVG(s *graph.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{margin: defaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	f := r.frame(s)

	pos := make(map[string]geom.Point, len(s.Nodes))
	for _, n := range s.Nodes {
		pos[n.ID] = f.at(n.X, n.Y)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.w, f.h, f.w, f.h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", sketchCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", colorPaper)

	for _, c := range s.Constraints {
		if c.Kind == graph.KindRail && len(c.Nodes) >= 2 {
			renderRail(&buf, c, pos)
		}
	}
	for _, e := range s.Edges {
		a, okA := pos[e.From]
		b, okB := pos[e.To]
		if !okA || !okB {
			continue
		}
		fmt.Fprintf(&buf, `  <line class="edge" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", a.X, a.Y, b.X, b.Y)
	}
	if r.overlay {
		for _, c := range s.Constraints {
			switch c.Kind {
			case graph.KindDistance:
				renderDistance(&buf, c, pos)
			case graph.KindAngle:
				renderAngle(&buf, c, pos)
			}
		}
	}
	for _, n := range s.Nodes {
		p := pos[n.ID]
		class := "node"
		if n.Fixed {
			class = "node fixed"
		}
		fmt.Fprintf(&buf, `  <circle id="node-%s" class="%s" cx="%.2f" cy="%.2f" r="%.1f"/>`+"\n",
			escape(n.ID), class, p.X, p.Y, nodeRadius)
		if r.labels {
			fmt.Fprintf(&buf, `  <text class="label" x="%.2f" y="%.2f">%s</text>`+"\n",
				p.X+nodeRadius+3, p.Y-nodeRadius-3, escape(n.ID))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) frame(s *graph.Snapshot) frame {
	minX, minY, maxX, maxY, ok := s.Bounds()
	if !ok {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	bw, bh := math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	f := frame{minX: minX, minY: minY, scale: 1, margin: r.margin}
	if r.width > 0 && r.height > 0 {
		avail := geom.Pt(math.Max(r.width-2*r.margin, 1), math.Max(r.height-2*r.margin, 1))
		f.scale = math.Min(avail.X/bw, avail.Y/bh)
		f.w, f.h = r.width, r.height
		// Center the drawing in the frame.
		f.minX -= (avail.X/f.scale - bw) / 2
		f.minY -= (avail.Y/f.scale - bh) / 2
		return f
	}
	f.w, f.h = bw+2*r.margin, bh+2*r.margin
	return f
}

func renderRail(buf *bytes.Buffer, c graph.Constraint, pos map[string]geom.Point) {
	a, okA := pos[c.Nodes[0]]
	b, okB := pos[c.Nodes[1]]
	if !okA || !okB {
		return
	}
	d := b.Sub(a).Scale(railOverhang)
	p, q := a.Sub(d), b.Add(d)
	fmt.Fprintf(buf, `  <line id="rail-%s" class="rail" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		escape(c.ID), p.X, p.Y, q.X, q.Y)
}

func renderDistance(buf *bytes.Buffer, c graph.Constraint, pos map[string]geom.Point) {
	if len(c.Nodes) < 2 {
		return
	}
	a, okA := pos[c.Nodes[0]]
	b, okB := pos[c.Nodes[1]]
	if !okA || !okB {
		return
	}
	// Offset the dimension line to the left of a->b so it does not hide
	// the edge itself.
	off := b.Sub(a).Unit().Perp().Scale(-12)
	p, q := a.Add(off), b.Add(off)
	mid := p.Lerp(q, 0.5).Add(off.Unit().Scale(4))
	color := stateColor(c)
	fmt.Fprintf(buf, `  <g id="constraint-%s">`+"\n", escape(c.ID))
	fmt.Fprintf(buf, `    <line class="dim" stroke="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		color, p.X, p.Y, q.X, q.Y)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" fill="%s" text-anchor="middle">%s</text>`+"\n",
		mid.X, mid.Y, color, escape(dimension(c, "")))
	buf.WriteString("  </g>\n")
}

func renderAngle(buf *bytes.Buffer, c graph.Constraint, pos map[string]geom.Point) {
	pivotID, ok := c.Pivot()
	if !ok {
		return
	}
	a, okA := pos[c.Nodes[0]]
	b, okB := pos[c.Nodes[1]]
	p, okP := pos[pivotID]
	if !okA || !okB || !okP {
		return
	}
	ua, ub := a.Sub(p).Unit(), b.Sub(p).Unit()
	if ua.IsZero() || ub.IsZero() {
		return
	}
	from, to := p.Add(ua.Scale(arcRadius)), p.Add(ub.Scale(arcRadius))
	sweep := 0
	if ua.X*ub.Y-ua.Y*ub.X > 0 {
		sweep = 1
	}
	mid := ua.Add(ub).Unit()
	if mid.IsZero() {
		mid = ua.Perp()
	}
	text := p.Add(mid.Scale(arcRadius + 14))
	color := stateColor(c)
	fmt.Fprintf(buf, `  <g id="constraint-%s">`+"\n", escape(c.ID))
	fmt.Fprintf(buf, `    <path class="dim" stroke="%s" d="M %.2f %.2f A %.1f %.1f 0 0 %d %.2f %.2f"/>`+"\n",
		color, from.X, from.Y, arcRadius, arcRadius, sweep, to.X, to.Y)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" fill="%s" text-anchor="middle">%s</text>`+"\n",
		text.X, text.Y, color, escape(dimension(c, "°")))
	buf.WriteString("  </g>\n")
}

// dimension formats a constraint's value and, when they differ from it,
// its bounds.
func dimension(c graph.Constraint, unit string) string {
	s := fmt.Sprintf("%.1f%s", c.Quantity, unit)
	switch {
	case c.Min != nil && c.Max != nil && *c.Min == *c.Max:
		return s + fmt.Sprintf(" (=%.1f)", *c.Min)
	case c.Min != nil && c.Max != nil:
		return s + fmt.Sprintf(" [%.1f, %.1f]", *c.Min, *c.Max)
	case c.Min != nil:
		return s + fmt.Sprintf(" (≥%.1f)", *c.Min)
	case c.Max != nil:
		return s + fmt.Sprintf(" (≤%.1f)", *c.Max)
	}
	return s
}

func stateColor(c graph.Constraint) string {
	if c.Satisfied() {
		return colorOK
	}
	return colorBad
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
