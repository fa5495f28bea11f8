package scene

import (
	"github.com/matzehuels/modelsketch/pkg/construction"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/meta"
)

// Model is a built scene: the solver graphs plus the names the scene used.
type Model struct {
	Name string

	graph *meta.Graph
	fixed map[construction.NodeID]bool

	nodeOrder []construction.NodeID
	nodeIDs   map[string]construction.NodeID
	nodeNames map[construction.NodeID]string

	constraintIDs   map[string]meta.ID
	constraintNames map[meta.ID]string

	drags    []DragDef
	replayed bool
	frame    int
	settled  bool
}

func newModel(name string, g *meta.Graph) *Model {
	return &Model{
		Name:            name,
		graph:           g,
		fixed:           make(map[construction.NodeID]bool),
		nodeIDs:         make(map[string]construction.NodeID),
		nodeNames:       make(map[construction.NodeID]string),
		constraintIDs:   make(map[string]meta.ID),
		constraintNames: make(map[meta.ID]string),
	}
}

func (m *Model) addNode(name string, id construction.NodeID) {
	m.nodeOrder = append(m.nodeOrder, id)
	m.nodeIDs[name] = id
	m.nodeNames[id] = name
}

func (m *Model) addConstraint(name string, id meta.ID) {
	m.constraintIDs[name] = id
	m.constraintNames[id] = name
}

func (m *Model) ref(name string) meta.Bound { return meta.Ref(m.constraintIDs[name]) }

func (m *Model) bound(v *float64, ref string) meta.Bound {
	switch {
	case v != nil:
		return meta.Value(*v)
	case ref != "":
		return m.ref(ref)
	}
	return meta.Bound{}
}

// Meta returns the meta graph.
func (m *Model) Meta() *meta.Graph { return m.graph }

// Construction returns the construction graph.
func (m *Model) Construction() *construction.Graph { return m.graph.Construction() }

// NodeID returns the construction node with the given scene name.
func (m *Model) NodeID(name string) (construction.NodeID, bool) {
	id, ok := m.nodeIDs[name]
	return id, ok && m.Construction().Has(id)
}

// NodeName returns the scene name of a construction node.
func (m *Model) NodeName(id construction.NodeID) string { return m.nodeNames[id] }

// ConstraintID returns the meta node with the given scene name.
func (m *Model) ConstraintID(name string) (meta.ID, bool) {
	id, ok := m.constraintIDs[name]
	return id, ok && m.graph.Node(id) != nil
}

// ConstraintName returns the scene name of a meta node.
func (m *Model) ConstraintName(id meta.ID) string { return m.constraintNames[id] }

// Fixed reports whether the scene pinned node id.
func (m *Model) Fixed(id construction.NodeID) bool { return m.fixed[id] }

// Frame returns the number of frames stepped so far.
func (m *Model) Frame() int { return m.frame }

// Quantity returns the live quantity of the named constraint.
func (m *Model) Quantity(name string) (float64, bool) {
	id, ok := m.ConstraintID(name)
	if !ok {
		return 0, false
	}
	return m.graph.Quantity(id), true
}

// RemoveNode deletes the named node together with every constraint measured
// on it. It reports whether the node existed.
func (m *Model) RemoveNode(name string) bool {
	id, ok := m.NodeID(name)
	if !ok {
		return false
	}
	m.graph.RemoveConstructionNode(id)
	delete(m.fixed, id)
	return true
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot captures the current state in wire form.
func (m *Model) Snapshot() *graph.Snapshot {
	cg := m.Construction()
	s := &graph.Snapshot{
		Scene:   m.Name,
		Frame:   m.frame,
		Energy:  cg.KineticEnergy(),
		Settled: m.settled,
	}
	for _, id := range m.nodeOrder {
		n := cg.Node(id)
		if n == nil {
			continue
		}
		s.Nodes = append(s.Nodes, graph.Node{
			ID:    m.nodeNames[id],
			X:     n.Pos.X,
			Y:     n.Pos.Y,
			Fixed: m.fixed[id],
		})
	}
	for _, c := range cg.Connections() {
		s.Edges = append(s.Edges, graph.Edge{From: m.nodeNames[c.A], To: m.nodeNames[c.B]})
	}
	for _, n := range m.graph.Nodes() {
		s.Constraints = append(s.Constraints, m.constraint(n))
	}
	return s
}

func (m *Model) constraint(n *meta.Node) graph.Constraint {
	a, b := n.Endpoints()
	c := graph.Constraint{
		ID:       m.constraintNames[n.ID],
		Nodes:    []string{m.nodeNames[a], m.nodeNames[b]},
		Quantity: n.Quantity(m.Construction()),
	}
	switch n.Kind {
	case meta.KindDistance:
		c.Kind = graph.KindDistance
	case meta.KindAngle:
		c.Kind = graph.KindAngle
		p, _ := n.Pivot()
		c.Nodes = append(c.Nodes, m.nodeNames[p])
	case meta.KindRail:
		c.Kind = graph.KindRail
		for _, id := range n.Captives() {
			c.Nodes = append(c.Nodes, m.nodeNames[id])
		}
	}
	if v, ok := m.graph.Resolve(n.Min); ok {
		c.Min = &v
	}
	if v, ok := m.graph.Resolve(n.Max); ok {
		c.Max = &v
	}
	if r, ok := n.Min.Reference(); ok {
		c.MinRef = m.constraintNames[r]
	}
	if r, ok := n.Max.Reference(); ok {
		c.MaxRef = m.constraintNames[r]
	}
	return c
}
