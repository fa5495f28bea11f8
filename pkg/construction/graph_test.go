package construction

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/modelsketch/pkg/geom"
)

const frame = time.Second / 60

func run(g *Graph, frames int) {
	for range frames {
		g.Update(frame)
	}
}

func expectPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		if msg, _ := r.(string); !strings.Contains(msg, substr) {
			t.Fatalf("panic = %v, want message containing %q", r, substr)
		}
	}()
	fn()
}

func TestCreateNodeIDs(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(1, 0))
	g.RemoveNode(b)
	c := g.CreateNode(geom.Pt(2, 0))

	if a != 0 || b != 1 || c != 2 {
		t.Errorf("ids = %d, %d, %d, want 0, 1, 2 (never reused)", a, b, c)
	}

	other := New(Tuning{})
	if id := other.CreateNode(geom.Pt(0, 0)); id != 0 {
		t.Errorf("independent graph first id = %d, want 0", id)
	}
}

func TestConnect(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(10, 0))

	g.Connect(a, b)
	g.Connect(b, a)
	g.Connect(a, a)

	if got := len(g.Connections()); got != 1 {
		t.Fatalf("connections = %d, want 1", got)
	}
	if g.SpringCount() != 0 {
		t.Error("Connect must not create springs")
	}
}

func TestProgrammerErrorsPanic(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(10, 0))

	expectPanic(t, "itself", func() { NewConnection(a, a) })
	expectPanic(t, "itself", func() { NewDistance(a, a) })
	expectPanic(t, "no literal point", func() {
		s := NewDistance(a, b)
		g.AddSpring(s)
		s.SetPoint(geom.Pt(1, 1))
	})
	expectPanic(t, "not in this graph", func() { g.AddSpring(NewAffix(99, geom.Pt(0, 0))) })
	expectPanic(t, "not rail", func() { NewAffix(a, geom.Pt(0, 0)).SetRailDirection(geom.Pt(1, 0)) })
}

func TestAddSpringFillsTuning(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(10, 0))

	d := NewDistance(a, b)
	g.AddSpring(d)
	if d.Stiffness != DefaultStiffness || d.Damping != DefaultDamping {
		t.Errorf("distance spring k=%v c=%v, want soft defaults", d.Stiffness, d.Damping)
	}

	p := NewAffix(a, geom.Pt(0, 0))
	g.AddSpring(p)
	if p.Stiffness != DefaultRigidStiffness || p.Damping != DefaultRigidDamping {
		t.Errorf("affix spring k=%v c=%v, want rigid defaults", p.Stiffness, p.Damping)
	}

	custom := NewDistance(a, b)
	custom.Stiffness = 1
	g.AddSpring(custom)
	if custom.Stiffness != 1 {
		t.Error("explicit stiffness must be kept")
	}
}

func TestDistanceSpringConverges(t *testing.T) {
	tests := []struct {
		name  string
		start float64
	}{
		{"stretched", 180},
		{"compressed", 50},
		{"far", 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Tuning{})
			a := g.CreateNode(geom.Pt(0, 0))
			b := g.CreateNode(geom.Pt(tt.start, 0))
			s := NewDistance(a, b)
			s.SetLength(100)
			g.AddSpring(s)

			run(g, 600)

			d := g.Position(a).Dist(g.Position(b))
			if math.Abs(d-100) > 0.1 {
				t.Errorf("distance = %.4f, want 100 ± 0.1", d)
			}
		})
	}
}

func TestIdempotentAtRest(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(30, 40))
	s := NewDistance(a, b)
	s.SetLength(100)
	g.AddSpring(s)
	g.AddSpring(NewAffix(a, geom.Pt(0, 0)))

	run(g, 600)
	before := g.Position(b)
	run(g, 120)
	after := g.Position(b)

	if moved := before.Dist(after); moved > 0.1 {
		t.Errorf("node moved %.4f at rest, want < 0.1", moved)
	}
	if e := g.KineticEnergy(); e > 1e-3 {
		t.Errorf("kinetic energy = %v at rest", e)
	}
}

func TestDistanceSpringSlackInsideRange(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(100, 0))
	s := NewDistance(a, b)
	s.SetMin(50)
	s.SetMax(150)
	g.AddSpring(s)

	run(g, 10)

	if g.Position(a) != geom.Pt(0, 0) || g.Position(b) != geom.Pt(100, 0) {
		t.Errorf("slack spring moved nodes: %v %v", g.Position(a), g.Position(b))
	}
	if s.Force() != 0 {
		t.Errorf("force inside range = %v, want 0", s.Force())
	}
}

func TestOneSidedBound(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(300, 0))
	g.AddSpring(NewAffix(a, geom.Pt(0, 0)))
	s := NewDistance(a, b)
	s.SetMax(120)
	g.AddSpring(s)

	run(g, 600)

	// A max-only spring goes slack once inside the bound, so the node may
	// coast a little short of it but never rests beyond it.
	if d := g.Position(b).Dist(g.Position(a)); d > 120.1 || d < 120-DefaultLengthSlack {
		t.Errorf("distance = %.3f, want within [%v, 120.1]", d, 120-DefaultLengthSlack)
	}
}

func TestAffixPinsNode(t *testing.T) {
	g := New(Tuning{})
	n := g.CreateNode(geom.Pt(40, -30))
	g.AddSpring(NewAffix(n, geom.Pt(0, 0)))

	run(g, 300)

	if d := g.Position(n).Len(); d > 0.1 {
		t.Errorf("affixed node is %.4f from its point", d)
	}
}

func TestAffixHoldsAtLowFrameRate(t *testing.T) {
	g := New(Tuning{})
	n := g.CreateNode(geom.Pt(0, 0))
	g.AddSpring(NewAffix(n, geom.Pt(50, 0)))

	for range 20 {
		g.Update(time.Second)
	}

	if p := g.Position(n); p.Dist(geom.Pt(50, 0)) > 0.5 {
		t.Errorf("affixed node at %v after 1s frames, want (50, 0)", p)
	}
}

func TestSameEndpoints(t *testing.T) {
	tests := []struct {
		name string
		a, b *Spring
		want bool
	}{
		{"same point and node", NewAffix(1, geom.Pt(1, 2)), NewAffix(1, geom.Pt(1, 2)), true},
		{"kind ignored", NewAffix(1, geom.Pt(1, 2)), NewFollowPencil(1, geom.Pt(1, 2)), true},
		{"other point", NewAffix(1, geom.Pt(1, 2)), NewAffix(1, geom.Pt(2, 1)), false},
		{"other node", NewAffix(1, geom.Pt(1, 2)), NewAffix(2, geom.Pt(1, 2)), false},
		{"same pair", NewDistance(1, 2), NewDistance(1, 2), true},
		{"reversed pair", NewDistance(1, 2), NewDistance(2, 1), false},
		{"other pair", NewDistance(1, 2), NewDistance(1, 3), false},
		{"point vs node", NewAffix(2, geom.Pt(0, 0)), NewDistance(1, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SameEndpoints(tt.b); got != tt.want {
				t.Errorf("SameEndpoints = %v, want %v", got, tt.want)
			}
			if got := tt.b.SameEndpoints(tt.a); got != tt.want {
				t.Errorf("reversed SameEndpoints = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoincidentEndpointsProduceNoForce(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(5, 5))
	b := g.CreateNode(geom.Pt(5, 5))
	s := NewDistance(a, b)
	s.SetMin(20)
	g.AddSpring(s)

	run(g, 5)

	for _, id := range []NodeID{a, b} {
		p := g.Position(id)
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("node %d position is NaN", id)
		}
		if p != geom.Pt(5, 5) {
			t.Errorf("node %d moved to %v", id, p)
		}
	}
}

func TestRailSpringIsPerpendicularOnly(t *testing.T) {
	g := New(Tuning{})
	n := g.CreateNode(geom.Pt(50, 20))
	// The target deliberately sits off to the side along the rail.
	g.AddSpring(NewRail(n, geom.Pt(40, 0), geom.Pt(1, 0)))

	run(g, 300)

	p := g.Position(n)
	if p.X != 50 {
		t.Errorf("x = %v, want 50 (no force along the rail)", p.X)
	}
	if math.Abs(p.Y) > 0.1 {
		t.Errorf("y = %v, want ≈0", p.Y)
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(10, 0))
	c := g.CreateNode(geom.Pt(20, 0))
	g.Connect(a, b)
	g.Connect(b, c)
	g.AddSpring(NewDistance(a, b))
	g.AddSpring(NewDistance(b, c))
	g.AddSpring(NewAffix(b, geom.Pt(10, 0)))
	keep := g.AddSpring(NewAffix(a, geom.Pt(0, 0)))

	g.RemoveNode(b)

	if g.Has(b) || g.NodeCount() != 2 {
		t.Fatalf("node %d still present", b)
	}
	for _, s := range g.Springs() {
		if s.Contains(b) {
			t.Errorf("spring %v still references removed node", s)
		}
	}
	if g.SpringCount() != 1 || g.Spring(keep) == nil {
		t.Errorf("springs = %d, want only the affix on a", g.SpringCount())
	}
	for _, id := range []NodeID{a, c} {
		for _, sid := range g.Node(id).Springs() {
			if g.Spring(sid) == nil {
				t.Errorf("node %d holds dangling spring %d", id, sid)
			}
		}
	}
	if len(g.Node(c).Springs()) != 0 {
		t.Errorf("node c springs = %v, want none", g.Node(c).Springs())
	}
	if len(g.Connections()) != 0 {
		t.Errorf("connections = %v, want none", g.Connections())
	}

	g.RemoveNode(b) // no-op
}

func TestDragLifecycle(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(100, 0))
	g.AddSpring(NewDistance(a, b))
	before := g.SpringCount()

	drag := g.BeginDrag(b, geom.Pt(100, 0))
	for i := range 60 {
		g.Drag(drag, geom.Pt(100, float64(i)))
		g.Update(frame)
	}
	if g.Position(b).Y < 40 {
		t.Errorf("dragged node y = %v, want it to follow the pencil", g.Position(b).Y)
	}

	g.EndDrag(drag)
	if g.SpringCount() != before+1 {
		t.Error("released spring should survive until the next update")
	}
	g.Update(frame)

	if g.SpringCount() != before {
		t.Errorf("spring count = %d, want %d after drag", g.SpringCount(), before)
	}
	if len(g.Node(b).Springs()) != 1 {
		t.Errorf("node springs = %v, want only the distance spring", g.Node(b).Springs())
	}
}

func TestDragOutlivedByNodeRemoval(t *testing.T) {
	g := New(Tuning{})
	n := g.CreateNode(geom.Pt(0, 0))
	drag := g.BeginDrag(n, geom.Pt(5, 5))
	g.RemoveNode(n)

	if g.SpringCount() != 0 {
		t.Fatal("drag spring must not outlive its node")
	}
	g.Drag(drag, geom.Pt(1, 1))
	g.EndDrag(drag)
	g.Update(frame)
}

func TestSubstepPolicy(t *testing.T) {
	if got := DefaultTuning().substeps(frame); got != DefaultSubsteps {
		t.Errorf("fixed substeps = %d, want %d", got, DefaultSubsteps)
	}
	tn := DefaultTuning()
	tn.MaxSubstep = time.Millisecond
	if got := tn.substeps(16 * time.Millisecond); got != 16 {
		t.Errorf("max-duration substeps = %d, want 16", got)
	}
	if got := tn.substeps(16*time.Millisecond + 1); got != 17 {
		t.Errorf("max-duration substeps = %d, want 17", got)
	}

	// Long frames are split further than either policy asks.
	if got := DefaultTuning().substeps(time.Second); got != 200 {
		t.Errorf("fixed substeps for a 1s frame = %d, want 200", got)
	}
	tn.MaxSubstep = 20 * time.Millisecond
	if got := tn.substeps(100 * time.Millisecond); got != 20 {
		t.Errorf("max-duration substeps above the stable limit = %d, want 20", got)
	}
}

func TestTuningValidate(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Errorf("default tuning invalid: %v", err)
	}
	bad := DefaultTuning()
	bad.Friction = -1
	if err := bad.Validate(); err == nil {
		t.Error("negative friction should be rejected")
	}
}

func TestTuningMerge(t *testing.T) {
	base := DefaultTuning()
	got := base.Merge(Tuning{Stiffness: 400, Substeps: 10})
	if got.Stiffness != 400 || got.Substeps != 10 {
		t.Errorf("override not applied: %+v", got)
	}
	if got.Damping != base.Damping || got.Friction != base.Friction {
		t.Errorf("zero fields should keep the base: %+v", got)
	}
}

func TestSatisfied(t *testing.T) {
	g := New(Tuning{})
	a := g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(100, 0))
	s := NewDistance(a, b)
	s.SetMax(90)
	g.AddSpring(s)
	g.AddSpring(NewAffix(a, geom.Pt(50, 50))) // point springs are ignored

	if g.Satisfied(1) {
		t.Error("graph should be unsatisfied")
	}
	if !g.Satisfied(10) {
		t.Error("graph should be satisfied within tolerance 10")
	}
}

func TestNodeAt(t *testing.T) {
	g := New(Tuning{})
	g.CreateNode(geom.Pt(0, 0))
	b := g.CreateNode(geom.Pt(20, 0))

	id, ok := g.NodeAt(geom.Pt(18, 1), NodeRadius*TouchTargetScale)
	if !ok || id != b {
		t.Errorf("NodeAt = %d (%v), want %d", id, ok, b)
	}
	if _, ok := g.NodeAt(geom.Pt(10, 30), NodeRadius); ok {
		t.Error("NodeAt should miss")
	}
}
