package sketch

import (
	"strings"
	"testing"

	"github.com/matzehuels/modelsketch/pkg/graph"
)

func ptr(v float64) *float64 { return &v }

func snapshot() *graph.Snapshot {
	return &graph.Snapshot{
		Scene: "t",
		Nodes: []graph.Node{
			{ID: "A", X: 0, Y: 0, Fixed: true},
			{ID: "B", X: 100, Y: 0},
			{ID: "C", X: 50, Y: 50},
			{ID: "M", X: 40, Y: 0},
		},
		Edges: []graph.Edge{{From: "A", To: "B"}, {From: "C", To: "A"}, {From: "C", To: "B"}},
		Constraints: []graph.Constraint{
			{ID: "base", Kind: graph.KindDistance, Nodes: []string{"A", "B"}, Quantity: 100, Min: ptr(100), Max: ptr(100)},
			{ID: "apex", Kind: graph.KindAngle, Nodes: []string{"A", "B", "C"}, Quantity: 90, Max: ptr(60)},
			{ID: "track", Kind: graph.KindRail, Nodes: []string{"A", "B", "M"}, Quantity: 100},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(snapshot()))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="node-A" class="node fixed"`,
		`id="node-B" class="node"`,
		`class="edge"`,
		`id="rail-track"`,
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(svg, "constraint-") {
		t.Error("overlay drawn without WithOverlay")
	}
	if strings.Contains(svg, `class="label"`) {
		t.Error("labels drawn without WithLabels")
	}
	if got := strings.Count(svg, `class="edge"`); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestRenderSVGOverlay(t *testing.T) {
	svg := string(RenderSVG(snapshot(), WithOverlay(), WithLabels()))

	for _, want := range []string{
		`id="constraint-base"`,
		"100.0 (=100.0)",
		`id="constraint-apex"`,
		"90.0° (≤60.0)",
		`<text class="label"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// apex is violated, base holds.
	if !strings.Contains(svg, colorBad) || !strings.Contains(svg, colorOK) {
		t.Error("expected both satisfied and violated colors")
	}
}

func TestRenderSVGSize(t *testing.T) {
	svg := string(RenderSVG(snapshot(), WithSize(800, 600)))
	if !strings.Contains(svg, `viewBox="0 0 800.0 600.0" width="800" height="600"`) {
		t.Errorf("size not applied:\n%s", svg[:120])
	}

	// Without a size the frame is the bounding box plus margins.
	svg = string(RenderSVG(snapshot(), WithMargin(10)))
	if !strings.Contains(svg, `viewBox="0 0 120.0 70.0"`) {
		t.Errorf("unexpected frame:\n%s", svg[:120])
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(&graph.Snapshot{}))
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("empty snapshot should still produce a document")
	}
}

func TestDimension(t *testing.T) {
	tests := []struct {
		c    graph.Constraint
		want string
	}{
		{graph.Constraint{Quantity: 5}, "5.0"},
		{graph.Constraint{Quantity: 5, Min: ptr(3), Max: ptr(8)}, "5.0 [3.0, 8.0]"},
		{graph.Constraint{Quantity: 5, Min: ptr(3)}, "5.0 (≥3.0)"},
	}
	for _, tt := range tests {
		if got := dimension(tt.c, ""); got != tt.want {
			t.Errorf("dimension(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`a<b&"c"`); got != "a&lt;b&amp;&#34;c&#34;" {
		t.Errorf("escape = %q", got)
	}
}
