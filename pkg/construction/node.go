package construction

import (
	"slices"

	"github.com/matzehuels/modelsketch/pkg/geom"
)

// NodeID identifies a node within its graph.
type NodeID int

// Node is a point mass with position and velocity.
//
// Pos and Vel are exported for reading. They are changed only by
// [Graph.Update] and [Graph.MoveNode].
type Node struct {
	ID  NodeID
	Pos geom.Point
	Vel geom.Point

	springs []SpringID
}

// Springs returns the ids of the springs attached to the node.
func (n *Node) Springs() []SpringID {
	return slices.Clone(n.springs)
}

func (n *Node) attach(id SpringID) {
	if !slices.Contains(n.springs, id) {
		n.springs = append(n.springs, id)
	}
}

func (n *Node) detach(id SpringID) {
	n.springs = slices.DeleteFunc(n.springs, func(s SpringID) bool { return s == id })
}

// integrate advances the node one sub-step given the net spring force.
func (n *Node) integrate(force geom.Point, friction, dt float64) {
	force = force.Add(n.Vel.Scale(-friction))
	n.Vel = n.Vel.Add(force.Scale(dt))
	n.Pos = n.Pos.Add(n.Vel.Scale(dt))
}

// Connection records a drawn line between two nodes. It has no physical
// effect. Connections are unordered: A–B equals B–A.
type Connection struct {
	A NodeID `json:"a"`
	B NodeID `json:"b"`
}

// NewConnection returns a connection between a and b. It panics if a == b.
func NewConnection(a, b NodeID) Connection {
	if a == b {
		panic("construction: can't connect a node to itself")
	}
	return Connection{A: a, B: b}
}

// Equal reports whether c and o join the same pair of nodes.
func (c Connection) Equal(o Connection) bool {
	return (c.A == o.A && c.B == o.B) || (c.A == o.B && c.B == o.A)
}

// Contains reports whether the connection touches node id.
func (c Connection) Contains(id NodeID) bool {
	return c.A == id || c.B == id
}
