package construction

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/modelsketch/pkg/geom"
)

// Default hit-test radius around a node, in sketch units.
const (
	NodeRadius       = 7.0
	TouchTargetScale = 1.5
)

// Graph owns nodes, springs and connections and integrates them.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	Tuning Tuning

	nodes       []*Node
	byID        map[NodeID]*Node
	springs     []*Spring
	connections []Connection

	nextNode   NodeID
	nextSpring SpringID
}

// New returns an empty graph using t. Zero fields of t take their defaults.
func New(t Tuning) *Graph {
	return &Graph{
		Tuning: t.WithDefaults(),
		byID:   make(map[NodeID]*Node),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// CreateNode adds a node at p and returns its id.
func (g *Graph) CreateNode(at geom.Point) NodeID {
	n := &Node{ID: g.nextNode, Pos: at}
	g.nextNode++
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n.ID
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node {
	return g.byID[id]
}

// MustNode returns the node with the given id, or panics.
func (g *Graph) MustNode(id NodeID) *Node {
	n := g.byID[id]
	if n == nil {
		panic(fmt.Sprintf("construction: node %d is not in this graph", id))
	}
	return n
}

// Has reports whether node id belongs to the graph.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.byID[id]
	return ok
}

// Position returns the current position of node id. It panics if the node
// is not in the graph.
func (g *Graph) Position(id NodeID) geom.Point {
	return g.MustNode(id).Pos
}

// Nodes returns the nodes in creation order.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// MoveNode places node id at p and stops it. This is the explicit external
// affix; the integrator is the only other writer of node positions.
func (g *Graph) MoveNode(id NodeID, p geom.Point) {
	n := g.MustNode(id)
	n.Pos = p
	n.Vel = geom.Point{}
}

// RemoveNode deletes a node together with every spring and connection that
// touches it. Removing an unknown node is a no-op.
func (g *Graph) RemoveNode(id NodeID) {
	if !g.Has(id) {
		return
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return n.ID == id })
	delete(g.byID, id)
	g.connections = slices.DeleteFunc(g.connections, func(c Connection) bool { return c.Contains(id) })

	var doomed []SpringID
	for _, s := range g.springs {
		if s.Contains(id) {
			doomed = append(doomed, s.ID)
		}
	}
	for _, sid := range doomed {
		g.RemoveSpring(sid)
	}
}

// NodeAt returns the node closest to p within radius, if any.
func (g *Graph) NodeAt(p geom.Point, radius float64) (NodeID, bool) {
	best, found := NodeID(0), false
	bestDist := radius
	for _, n := range g.nodes {
		if d := n.Pos.Dist(p); d <= bestDist {
			best, bestDist, found = n.ID, d, true
		}
	}
	return best, found
}

// =============================================================================
// Connections
// =============================================================================

// Connect records a drawn line between a and b. Self connections and
// duplicates are ignored. Connections carry no force.
func (g *Graph) Connect(a, b NodeID) {
	g.MustNode(a)
	g.MustNode(b)
	if a == b {
		return
	}
	c := NewConnection(a, b)
	if slices.ContainsFunc(g.connections, c.Equal) {
		return
	}
	g.connections = append(g.connections, c)
}

// Connections returns the recorded connections.
func (g *Graph) Connections() []Connection {
	return slices.Clone(g.connections)
}

// =============================================================================
// Springs
// =============================================================================

// AddSpring adds s to the graph and to the spring lists of its nodes, and
// returns its id. Zero stiffness or damping are filled from the tuning.
// It panics if an endpoint node is not in the graph or if s was already
// added to a graph.
func (g *Graph) AddSpring(s *Spring) SpringID {
	if slices.Contains(g.springs, s) {
		panic(fmt.Sprintf("construction: spring %d already added", s.ID))
	}
	g.MustNode(s.b)
	if !s.hasPoint {
		g.MustNode(s.a)
	}

	if s.Stiffness == 0 {
		s.Stiffness = g.Tuning.Stiffness
		if s.Kind.rigid() {
			s.Stiffness = g.Tuning.RigidStiffness
		}
	}
	if s.Damping == 0 {
		s.Damping = g.Tuning.Damping
		if s.Kind.rigid() {
			s.Damping = g.Tuning.RigidDamping
		}
	}

	s.ID = g.nextSpring
	g.nextSpring++
	g.springs = append(g.springs, s)

	g.byID[s.b].attach(s.ID)
	if !s.hasPoint {
		g.byID[s.a].attach(s.ID)
	}
	return s.ID
}

// Spring returns the spring with the given id, or nil.
func (g *Graph) Spring(id SpringID) *Spring {
	for _, s := range g.springs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Springs returns the springs in insertion order.
func (g *Graph) Springs() []*Spring {
	return slices.Clone(g.springs)
}

// SpringCount returns the number of springs.
func (g *Graph) SpringCount() int { return len(g.springs) }

// RemoveSpring removes a spring from the graph and from every node.
// Removing an unknown spring is a no-op.
func (g *Graph) RemoveSpring(id SpringID) {
	idx := slices.IndexFunc(g.springs, func(s *Spring) bool { return s.ID == id })
	if idx < 0 {
		return
	}
	g.springs = slices.Delete(g.springs, idx, idx+1)
	for _, n := range g.nodes {
		n.detach(id)
	}
}

// =============================================================================
// Drag sessions
// =============================================================================

// BeginDrag attaches a follow-pencil spring from p to node and returns its id.
func (g *Graph) BeginDrag(node NodeID, p geom.Point) SpringID {
	return g.AddSpring(NewFollowPencil(node, p))
}

// Drag moves the target of an active drag.
func (g *Graph) Drag(id SpringID, p geom.Point) {
	s := g.Spring(id)
	if s == nil {
		return
	}
	s.SetPoint(p)
}

// EndDrag releases a drag. The spring keeps acting until the end of the next
// Update, then it is removed. Cancelling a drag is the same operation.
func (g *Graph) EndDrag(id SpringID) {
	if s := g.Spring(id); s != nil {
		s.Release()
	}
}

// =============================================================================
// Integration
// =============================================================================

// Update advances the simulation by dt.
//
// The frame is split into sub-steps (see [Tuning]). Each sub-step computes
// every spring force first and then integrates every node, so the order of
// springs and nodes does not matter. Temporary springs are swept afterwards.
func (g *Graph) Update(dt time.Duration) {
	if dt > 0 {
		steps := g.Tuning.substeps(dt)
		h := dt.Seconds() / float64(steps)

		for _, s := range g.springs {
			s.reset()
		}
		for range steps {
			g.substep(h)
		}
	}
	g.sweep()
}

func (g *Graph) substep(h float64) {
	for _, s := range g.springs {
		pa, pb := g.endpoints(s)
		s.update(pa, pb, g.Tuning.LengthSlack, h)
	}
	for _, n := range g.nodes {
		var total geom.Point
		for _, sid := range n.springs {
			s := g.Spring(sid)
			total = total.Add(s.forceOn(n.Pos, g.otherEnd(s, n.ID)))
		}
		n.integrate(total, g.Tuning.Friction, h)
	}
}

// sweep removes springs released during the frame.
func (g *Graph) sweep() {
	var doomed []SpringID
	for _, s := range g.springs {
		if s.temporary {
			doomed = append(doomed, s.ID)
		}
	}
	for _, id := range doomed {
		g.RemoveSpring(id)
	}
}

func (g *Graph) endpoints(s *Spring) (geom.Point, geom.Point) {
	pb := g.byID[s.b].Pos
	if s.hasPoint {
		return s.point, pb
	}
	return g.byID[s.a].Pos, pb
}

// otherEnd returns the position of the endpoint of s that is not node id.
func (g *Graph) otherEnd(s *Spring, id NodeID) geom.Point {
	pa, pb := g.endpoints(s)
	if s.b == id {
		return pa
	}
	return pb
}

// =============================================================================
// Diagnostics
// =============================================================================

// Satisfied reports whether every node-to-node spring is within its bounds,
// allowing tol slack on each side.
func (g *Graph) Satisfied(tol float64) bool {
	for _, s := range g.springs {
		if s.hasPoint {
			continue
		}
		pa, pb := g.endpoints(s)
		if !s.within(pa.Dist(pb), tol) {
			return false
		}
	}
	return true
}

// KineticEnergy returns Σ ½|v|² over all nodes.
func (g *Graph) KineticEnergy() float64 {
	var e float64
	for _, n := range g.nodes {
		e += 0.5 * n.Vel.Dot(n.Vel)
	}
	return e
}

// Bounds returns the axis-aligned box around all nodes. ok is false for an
// empty graph.
func (g *Graph) Bounds() (lo, hi geom.Point, ok bool) {
	if len(g.nodes) == 0 {
		return lo, hi, false
	}
	lo, hi = g.nodes[0].Pos, g.nodes[0].Pos
	for _, n := range g.nodes[1:] {
		lo = geom.Pt(min(lo.X, n.Pos.X), min(lo.Y, n.Pos.Y))
		hi = geom.Pt(max(hi.X, n.Pos.X), max(hi.Y, n.Pos.Y))
	}
	return lo, hi, true
}
