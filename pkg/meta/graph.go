package meta

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/modelsketch/pkg/construction"
	"github.com/matzehuels/modelsketch/pkg/geom"
)

// Graph owns the meta nodes and the construction graph they configure.
type Graph struct {
	cg     *construction.Graph
	nodes  []*Node
	nextID ID
}

// New returns an empty meta graph over cg. It panics if cg is nil.
func New(cg *construction.Graph) *Graph {
	if cg == nil {
		panic("meta: nil construction graph")
	}
	return &Graph{cg: cg}
}

// Construction returns the underlying construction graph.
func (g *Graph) Construction() *construction.Graph { return g.cg }

// Node returns the meta node with the given id, or nil.
func (g *Graph) Node(id ID) *Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// MustNode returns the meta node with the given id, or panics.
func (g *Graph) MustNode(id ID) *Node {
	n := g.Node(id)
	if n == nil {
		panic(fmt.Sprintf("meta: node m%d is not in this graph", id))
	}
	return n
}

// Nodes returns the meta nodes in creation order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Len returns the number of meta nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Quantity returns the current quantity of meta node id.
func (g *Graph) Quantity(id ID) float64 {
	return g.MustNode(id).Quantity(g.cg)
}

// =============================================================================
// Constructors
// =============================================================================

// AddDistance declares a bounded distance between a and b.
func (g *Graph) AddDistance(a, b construction.NodeID, lo, hi Bound) ID {
	g.checkNodes(a, b)
	n := g.add(KindDistance, lo, hi)
	n.a, n.b = a, b
	n.springs = []construction.SpringID{g.cg.AddSpring(construction.NewDistance(a, b))}
	g.updateNode(n)
	return n.ID
}

// AddAngle declares a bounded angle a-pivot-b, in degrees.
func (g *Graph) AddAngle(a, b, pivot construction.NodeID, lo, hi Bound) ID {
	g.checkNodes(a, b, pivot)
	if pivot == a || pivot == b {
		panic("meta: angle pivot must differ from its arm ends")
	}
	n := g.add(KindAngle, lo, hi)
	n.a, n.b, n.pivot = a, b, pivot
	n.springs = []construction.SpringID{g.cg.AddSpring(construction.NewDistance(a, b))}
	g.updateNode(n)
	return n.ID
}

// AddRail declares a line through a and b and holds every captive on it.
// Captives stay free to slide along the line.
func (g *Graph) AddRail(a, b construction.NodeID, captives ...construction.NodeID) ID {
	g.checkNodes(a, b)
	g.checkNodes(captives...)
	if a == b {
		panic("meta: rail needs two distinct nodes")
	}
	n := g.add(KindRail, Bound{}, Bound{})
	n.a, n.b = a, b
	for _, c := range captives {
		if c == a || c == b || slices.Contains(n.captives, c) {
			continue
		}
		p := g.cg.Position(c)
		sid := g.cg.AddSpring(construction.NewRail(c, p, g.cg.Position(b).Sub(g.cg.Position(a))))
		n.captives = append(n.captives, c)
		n.springs = append(n.springs, sid)
	}
	g.updateNode(n)
	return n.ID
}

// SetBounds replaces the bounds of meta node id.
func (g *Graph) SetBounds(id ID, lo, hi Bound) {
	n := g.MustNode(id)
	g.checkBounds(lo, hi)
	n.Min, n.Max = lo, hi
}

func (g *Graph) add(kind Kind, lo, hi Bound) *Node {
	g.checkBounds(lo, hi)
	n := &Node{ID: g.nextID, Kind: kind, Min: lo, Max: hi}
	g.nextID++
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) checkNodes(ids ...construction.NodeID) {
	for _, id := range ids {
		g.cg.MustNode(id)
	}
}

func (g *Graph) checkBounds(bounds ...Bound) {
	for _, b := range bounds {
		if r, ok := b.Reference(); ok {
			g.MustNode(r)
		}
	}
}

// =============================================================================
// Removal
// =============================================================================

// Remove deletes meta node id and its springs, and unsets every bound of
// another meta node that referenced it. Removing an unknown node is a no-op.
func (g *Graph) Remove(id ID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	for _, sid := range n.springs {
		g.cg.RemoveSpring(sid)
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(m *Node) bool { return m.ID == id })
	for _, m := range g.nodes {
		m.clearRefs(id)
	}
}

// RemoveConstructionNode deletes a construction node across both layers.
// Meta nodes measured on it are removed; a rail merely releases it if it was
// one of the captives.
func (g *Graph) RemoveConstructionNode(id construction.NodeID) {
	var doomed []ID
	for _, n := range g.nodes {
		if !n.Uses(id) {
			continue
		}
		if i := slices.Index(n.captives, id); i >= 0 && n.a != id && n.b != id {
			g.cg.RemoveSpring(n.springs[i])
			n.captives = slices.Delete(n.captives, i, i+1)
			n.springs = slices.Delete(n.springs, i, i+1)
			continue
		}
		doomed = append(doomed, n.ID)
	}
	for _, mid := range doomed {
		g.Remove(mid)
	}
	g.cg.RemoveNode(id)
}

// Dependents returns the meta nodes whose bounds reference id.
func (g *Graph) Dependents(id ID) []ID {
	var out []ID
	for _, n := range g.nodes {
		if n.refersTo(id) {
			out = append(out, n.ID)
		}
	}
	return out
}

// =============================================================================
// Frame loop
// =============================================================================

// Update pushes the resolved bounds of every meta node into its springs.
func (g *Graph) Update() {
	for _, n := range g.nodes {
		g.updateNode(n)
	}
}

// Step runs one frame: Update, then the construction graph's Update(dt).
func (g *Graph) Step(dt time.Duration) {
	g.Update()
	g.cg.Update(dt)
}

// Settle steps frames of length dt until the kinetic energy of the
// construction graph drops below epsilon or maxFrames have run. It returns
// the number of frames run and whether the graph came to rest.
func (g *Graph) Settle(dt time.Duration, maxFrames int, epsilon float64) (int, bool) {
	for i := 1; i <= maxFrames; i++ {
		g.Step(dt)
		if g.cg.KineticEnergy() < epsilon {
			return i, true
		}
	}
	return maxFrames, false
}

// Resolve returns the current value of b: the literal, or the referenced
// node's quantity. ok is false for an unset bound or a dangling reference.
func (g *Graph) Resolve(b Bound) (float64, bool) {
	if v, ok := b.Literal(); ok {
		return v, true
	}
	if r, ok := b.Reference(); ok {
		if m := g.Node(r); m != nil {
			return m.Quantity(g.cg), true
		}
	}
	return 0, false
}

func (g *Graph) updateNode(n *Node) {
	switch n.Kind {
	case KindDistance:
		s := g.cg.Spring(n.springs[0])
		if s == nil {
			return
		}
		lo, hasLo := g.Resolve(n.Min)
		hi, hasHi := g.Resolve(n.Max)
		applyBounds(s, lo, hasLo, hi, hasHi)

	case KindAngle:
		s := g.cg.Spring(n.springs[0])
		if s == nil {
			return
		}
		pivot := g.cg.Position(n.pivot)
		armA := pivot.Dist(g.cg.Position(n.a))
		armB := pivot.Dist(g.cg.Position(n.b))
		if armA < geom.Epsilon || armB < geom.Epsilon {
			return
		}
		chord := func(deg float64) float64 {
			return geom.Chord(armA, armB, geom.Radians(geom.Clamp(deg, 0, 180)))
		}
		lo, hasLo := g.Resolve(n.Min)
		hi, hasHi := g.Resolve(n.Max)
		applyBounds(s, chord(lo), hasLo, chord(hi), hasHi)

	case KindRail:
		pa, pb := g.cg.Position(n.a), g.cg.Position(n.b)
		dir := pb.Sub(pa)
		for i, c := range n.captives {
			s := g.cg.Spring(n.springs[i])
			if s == nil {
				continue
			}
			pos := g.cg.Position(c)
			target := pos
			if !dir.IsZero() {
				target, _ = geom.ProjectOntoLine(pos, pa, pb)
			}
			s.SetPoint(target)
			s.SetRailDirection(dir)
		}
	}
}

func applyBounds(s *construction.Spring, lo float64, hasLo bool, hi float64, hasHi bool) {
	if hasLo {
		s.SetMin(lo)
	} else {
		s.ClearMin()
	}
	if hasHi {
		s.SetMax(hi)
	} else {
		s.ClearMax()
	}
}
