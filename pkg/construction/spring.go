package construction

import (
	"fmt"

	"github.com/matzehuels/modelsketch/pkg/geom"
)

// SpringID identifies a spring within its graph.
type SpringID int

// SpringKind enumerates the closed set of spring variants.
type SpringKind int

const (
	KindAffix        SpringKind = iota // point to node, pinned
	KindDistance                       // node to node, slack inside [min, max]
	KindFollowPencil                   // point to node, follows a live drag
	KindRail                           // point to node, perpendicular force only
)

func (k SpringKind) String() string {
	switch k {
	case KindAffix:
		return "affix"
	case KindDistance:
		return "distance"
	case KindFollowPencil:
		return "follow-pencil"
	case KindRail:
		return "rail"
	default:
		return "unknown"
	}
}

// rigid reports whether the kind uses the rigid stiffness/damping pair.
func (k SpringKind) rigid() bool { return k != KindDistance }

// Spring is a damped spring between either a literal point and a node or two
// nodes. It only pulls when its length lies outside [min, max].
//
// Zero Stiffness and Damping are filled from the graph's [Tuning] when the
// spring is added with [Graph.AddSpring].
type Spring struct {
	ID        SpringID
	Kind      SpringKind
	Stiffness float64
	Damping   float64

	min, max       float64
	hasMin, hasMax bool

	point    geom.Point
	hasPoint bool
	a, b     NodeID
	railDir  geom.Point

	temporary bool

	// per sub-step state
	length       float64
	displacement float64
	prevDisp     float64
	velocity     float64
	force        float64
	primed       bool
}

// NewAffix returns a spring pinning node to p.
func NewAffix(node NodeID, p geom.Point) *Spring {
	return pointSpring(KindAffix, node, p)
}

// NewFollowPencil returns a spring pulling node toward a drag point.
// Prefer [Graph.BeginDrag], which also manages the spring's lifetime.
func NewFollowPencil(node NodeID, p geom.Point) *Spring {
	return pointSpring(KindFollowPencil, node, p)
}

// NewRail returns a spring pulling node toward p, restricted to the
// component perpendicular to dir.
func NewRail(node NodeID, p, dir geom.Point) *Spring {
	s := pointSpring(KindRail, node, p)
	s.railDir = dir
	return s
}

// NewDistance returns an unbounded (always slack) spring between a and b.
// It panics if a == b.
func NewDistance(a, b NodeID) *Spring {
	if a == b {
		panic("construction: can't connect a node to itself")
	}
	return &Spring{Kind: KindDistance, a: a, b: b}
}

func pointSpring(kind SpringKind, node NodeID, p geom.Point) *Spring {
	return &Spring{
		Kind:     kind,
		point:    p,
		hasPoint: true,
		b:        node,
		min:      0,
		max:      0,
		hasMin:   true,
		hasMax:   true,
	}
}

func (s *Spring) String() string {
	if s.hasPoint {
		return fmt.Sprintf("%s[%d] %v→n%d", s.Kind, s.ID, s.point, s.b)
	}
	return fmt.Sprintf("%s[%d] n%d↔n%d", s.Kind, s.ID, s.a, s.b)
}

// Min returns the minimum free length, if set.
func (s *Spring) Min() (float64, bool) { return s.min, s.hasMin }

// Max returns the maximum free length, if set.
func (s *Spring) Max() (float64, bool) { return s.max, s.hasMax }

// SetMin sets the minimum free length.
func (s *Spring) SetMin(v float64) { s.min, s.hasMin = v, true }

// SetMax sets the maximum free length.
func (s *Spring) SetMax(v float64) { s.max, s.hasMax = v, true }

// ClearMin removes the minimum free length.
func (s *Spring) ClearMin() { s.min, s.hasMin = 0, false }

// ClearMax removes the maximum free length.
func (s *Spring) ClearMax() { s.max, s.hasMax = 0, false }

// SetLength pins both bounds to v.
func (s *Spring) SetLength(v float64) {
	s.SetMin(v)
	s.SetMax(v)
}

// Point returns the literal endpoint, if the spring has one.
func (s *Spring) Point() (geom.Point, bool) { return s.point, s.hasPoint }

// SetPoint moves the literal endpoint. It panics on a node-to-node spring.
func (s *Spring) SetPoint(p geom.Point) {
	if !s.hasPoint {
		panic(fmt.Sprintf("construction: spring %d has no literal point", s.ID))
	}
	s.point = p
}

// RailDirection returns the direction a rail spring leaves unconstrained.
func (s *Spring) RailDirection() geom.Point { return s.railDir }

// SetRailDirection updates the rail direction. It panics unless the spring
// is a rail spring.
func (s *Spring) SetRailDirection(dir geom.Point) {
	if s.Kind != KindRail {
		panic(fmt.Sprintf("construction: spring %d is %s, not rail", s.ID, s.Kind))
	}
	s.railDir = dir
}

// Nodes returns the node endpoints. For point springs only b is meaningful
// and ok is false.
func (s *Spring) Nodes() (a, b NodeID, ok bool) {
	return s.a, s.b, !s.hasPoint
}

// Contains reports whether the spring is attached to node id.
func (s *Spring) Contains(id NodeID) bool {
	return s.b == id || (!s.hasPoint && s.a == id)
}

// SameEndpoints reports structural equality: same literal point and node, or
// the same ordered pair of nodes.
func (s *Spring) SameEndpoints(o *Spring) bool {
	if s.hasPoint != o.hasPoint || s.b != o.b {
		return false
	}
	if s.hasPoint {
		return s.point == o.point
	}
	return s.a == o.a
}

// Temporary reports whether the spring will be removed at the end of the
// next update.
func (s *Spring) Temporary() bool { return s.temporary }

// Release marks the spring temporary.
func (s *Spring) Release() { s.temporary = true }

// Length returns the length measured in the last sub-step.
func (s *Spring) Length() float64 { return s.length }

// Displacement returns the signed distance past the violated bound measured
// in the last sub-step.
func (s *Spring) Displacement() float64 { return s.displacement }

// Force returns the scalar force computed in the last sub-step.
func (s *Spring) Force() float64 { return s.force }

// displacementAt returns how far length lies outside [min, max]. Lengths
// beyond a bound are capped at bound±slack so a distant endpoint cannot
// produce an explosive impulse.
func (s *Spring) displacementAt(length, slack float64) float64 {
	switch {
	case s.hasMax && length > s.max:
		return min(length, s.max+slack) - s.max
	case s.hasMin && length < s.min:
		return max(length, s.min-slack) - s.min
	}
	return 0
}

// within reports whether length lies inside [min-tol, max+tol].
func (s *Spring) within(length, tol float64) bool {
	if s.hasMax && length > s.max+tol {
		return false
	}
	if s.hasMin && length < s.min-tol {
		return false
	}
	return true
}

// reset clears the finite-difference history at the start of a frame.
func (s *Spring) reset() {
	s.primed = false
	s.velocity = 0
}

// update recomputes the scalar force from the endpoint positions.
func (s *Spring) update(pa, pb geom.Point, slack, dt float64) {
	s.length = pa.Dist(pb)
	disp := s.displacementAt(s.length, slack)
	if s.primed {
		s.velocity = (disp - s.prevDisp) / dt
	} else {
		s.velocity = 0
		s.primed = true
	}
	s.prevDisp = disp
	s.displacement = disp
	s.force = -s.Damping*s.velocity - s.Stiffness*disp
}

// forceOn returns the force vector the spring exerts on a node at pos whose
// opposite endpoint is at other.
func (s *Spring) forceOn(pos, other geom.Point) geom.Point {
	if s.force == 0 || pos.Sub(other).IsZero() {
		return geom.Point{}
	}
	f := geom.Polar(s.force, other.AngleTo(pos))
	if s.Kind == KindRail {
		f = geom.RejectFrom(f, s.railDir)
	}
	return f
}
