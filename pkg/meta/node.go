package meta

import (
	"slices"

	"github.com/matzehuels/modelsketch/pkg/construction"
	"github.com/matzehuels/modelsketch/pkg/geom"
)

// ID identifies a meta node within its graph.
type ID int

// Kind enumerates the meta quantity variants.
type Kind int

const (
	KindDistance Kind = iota
	KindAngle
	KindRail
)

func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindAngle:
		return "angle"
	case KindRail:
		return "rail"
	default:
		return "unknown"
	}
}

// Node is a declared quantity over construction nodes.
//
// For KindAngle, Min and Max are in degrees. Rail nodes ignore their bounds.
type Node struct {
	ID   ID
	Kind Kind
	Min  Bound
	Max  Bound

	a, b     construction.NodeID
	pivot    construction.NodeID
	captives []construction.NodeID
	springs  []construction.SpringID
}

// Endpoints returns the two construction nodes the quantity is measured
// between. For angles these are the arm ends; for rails the line ends.
func (n *Node) Endpoints() (a, b construction.NodeID) { return n.a, n.b }

// Pivot returns the vertex of an angle node.
func (n *Node) Pivot() (construction.NodeID, bool) { return n.pivot, n.Kind == KindAngle }

// Captives returns the nodes held on a rail.
func (n *Node) Captives() []construction.NodeID { return slices.Clone(n.captives) }

// Springs returns the construction springs owned by the node.
func (n *Node) Springs() []construction.SpringID { return slices.Clone(n.springs) }

// Uses reports whether the node depends on construction node id.
func (n *Node) Uses(id construction.NodeID) bool {
	if n.a == id || n.b == id {
		return true
	}
	if n.Kind == KindAngle && n.pivot == id {
		return true
	}
	return slices.Contains(n.captives, id)
}

// Quantity reads the current value of the quantity from the positions in cg.
// Angles are reported in degrees; an angle with a zero-length arm reads 0.
func (n *Node) Quantity(cg *construction.Graph) float64 {
	pa, pb := cg.Position(n.a), cg.Position(n.b)
	switch n.Kind {
	case KindAngle:
		theta, ok := geom.AngleAt(pa, cg.Position(n.pivot), pb)
		if !ok {
			return 0
		}
		return geom.Degrees(theta)
	default:
		return pa.Dist(pb)
	}
}

// refersTo reports whether either bound references id.
func (n *Node) refersTo(id ID) bool {
	if r, ok := n.Min.Reference(); ok && r == id {
		return true
	}
	if r, ok := n.Max.Reference(); ok && r == id {
		return true
	}
	return false
}

// clearRefs unsets any bound that references id.
func (n *Node) clearRefs(id ID) {
	if r, ok := n.Min.Reference(); ok && r == id {
		n.Min = Bound{}
	}
	if r, ok := n.Max.Reference(); ok && r == id {
		n.Max = Bound{}
	}
}
