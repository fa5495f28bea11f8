package scene

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/modelsketch/pkg/construction"
	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/geom"
	"github.com/matzehuels/modelsketch/pkg/meta"
)

// Constraint kinds as they appear in scene files.
const (
	kindDistance = "distance"
	kindAngle    = "angle"
	kindRail     = "rail"
)

// Build validates s and creates the solver model it describes. Nothing is
// created unless the whole scene is valid; the returned error is an
// [apperr.List] holding every problem found.
func Build(s *Scene) (*Model, error) {
	if s == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidScene, "nil scene")
	}
	b := newBuilder(s)
	b.checkNodes()
	b.checkNames()
	b.checkConnections()
	b.checkDistances()
	b.checkAngles()
	b.checkRails()
	b.checkDrags()
	tuning := s.Tuning.WithDefaults()
	if err := tuning.Validate(); err != nil {
		b.add(apperr.GetCode(err), "%s", apperr.UserMessage(err))
	}
	if err := b.errs.Err(); err != nil {
		return nil, err
	}
	return b.build(tuning), nil
}

// =============================================================================
// Validation
// =============================================================================

type builder struct {
	s    *Scene
	errs apperr.List

	nodes map[string]bool
	kinds map[string]string // constraint name -> kind

	distanceNames []string
	angleNames    []string
	railNames     []string
}

func newBuilder(s *Scene) *builder {
	return &builder{
		s:     s,
		nodes: make(map[string]bool, len(s.Nodes)),
		kinds: make(map[string]string),
	}
}

func (b *builder) add(code apperr.Code, format string, args ...any) {
	b.errs = append(b.errs, apperr.New(code, format, args...))
}

func (b *builder) checkNodes() {
	if len(b.s.Nodes) == 0 {
		b.add(apperr.ErrCodeInvalidScene, "scene has no nodes")
	}
	for _, n := range b.s.Nodes {
		if err := apperr.ValidateName(n.Name); err != nil {
			b.add(apperr.ErrCodeInvalidName, "node: %s", apperr.UserMessage(err))
			continue
		}
		if b.nodes[n.Name] {
			b.add(apperr.ErrCodeInvalidScene, "duplicate node %q", n.Name)
		}
		b.nodes[n.Name] = true
		if !finite(n.X) || !finite(n.Y) {
			b.add(apperr.ErrCodeInvalidScene, "node %q: position must be finite", n.Name)
		}
	}
}

// checkNames assigns default names to unnamed constraints and checks that
// every constraint name is valid and unique.
func (b *builder) checkNames() {
	name := func(kind, given string, i int) string {
		n := given
		if n == "" {
			n = fmt.Sprintf("%s%d", kind, i+1)
		}
		if err := apperr.ValidateName(n); err != nil {
			b.add(apperr.ErrCodeInvalidName, "%s: %s", kind, apperr.UserMessage(err))
			return n
		}
		if _, dup := b.kinds[n]; dup {
			b.add(apperr.ErrCodeInvalidScene, "duplicate constraint %q", n)
			return n
		}
		b.kinds[n] = kind
		return n
	}
	for i, d := range b.s.Distances {
		b.distanceNames = append(b.distanceNames, name(kindDistance, d.Name, i))
	}
	for i, a := range b.s.Angles {
		b.angleNames = append(b.angleNames, name(kindAngle, a.Name, i))
	}
	for i, r := range b.s.Rails {
		b.railNames = append(b.railNames, name(kindRail, r.Name, i))
	}
}

func (b *builder) checkNode(owner, ref string) bool {
	if !b.nodes[ref] {
		b.add(apperr.ErrCodeInvalidNodeRef, "%s: unknown node %q", owner, ref)
		return false
	}
	return true
}

// checkRef validates a bound reference from constraint owner. Distances may
// follow distances or rails; angles may only follow angles.
func (b *builder) checkRef(owner, ownerKind, ref string) {
	if ref == "" {
		return
	}
	kind, ok := b.kinds[ref]
	switch {
	case !ok:
		b.add(apperr.ErrCodeInvalidConstraint, "%s: unknown constraint %q", owner, ref)
	case ref == owner:
		b.add(apperr.ErrCodeInvalidConstraint, "%s: references itself", owner)
	case ownerKind == kindAngle && kind != kindAngle,
		ownerKind == kindDistance && kind == kindAngle:
		b.add(apperr.ErrCodeInvalidConstraint, "%s: %s cannot follow %s %q", owner, ownerKind, kind, ref)
	}
}

func (b *builder) checkRange(owner string, lo, hi *float64) {
	for _, v := range []*float64{lo, hi} {
		if v != nil && !finite(*v) {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: bounds must be finite", owner)
			return
		}
	}
	if lo != nil && hi != nil && *lo > *hi {
		b.add(apperr.ErrCodeInvalidConstraint, "%s: min %g > max %g", owner, *lo, *hi)
	}
}

func (b *builder) checkConnections() {
	for _, c := range b.s.Connections {
		owner := fmt.Sprintf("connection %s-%s", c.A, c.B)
		okA, okB := b.checkNode(owner, c.A), b.checkNode(owner, c.B)
		if okA && okB && c.A == c.B {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: can't connect a node to itself", owner)
		}
	}
}

func (b *builder) checkDistances() {
	for i, d := range b.s.Distances {
		owner := b.distanceNames[i]
		okA, okB := b.checkNode(owner, d.A), b.checkNode(owner, d.B)
		if okA && okB && d.A == d.B {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: endpoints must differ", owner)
		}

		modes := 0
		if d.Length != nil {
			modes++
		}
		if d.Equal != "" {
			modes++
		}
		if d.Min != nil || d.Max != nil || d.MinRef != "" || d.MaxRef != "" {
			modes++
		}
		if modes > 1 {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: use one of length, equal, or min/max", owner)
		}
		if d.Min != nil && d.MinRef != "" {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: both min and min_ref set", owner)
		}
		if d.Max != nil && d.MaxRef != "" {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: both max and max_ref set", owner)
		}

		for _, v := range []*float64{d.Length, d.Min, d.Max} {
			if v != nil && *v < 0 {
				b.add(apperr.ErrCodeInvalidConstraint, "%s: distance bounds must not be negative", owner)
				break
			}
		}
		if d.Length != nil {
			b.checkRange(owner, d.Length, d.Length)
		}
		b.checkRange(owner, d.Min, d.Max)
		for _, ref := range []string{d.Equal, d.MinRef, d.MaxRef} {
			b.checkRef(owner, kindDistance, ref)
		}
	}
}

func (b *builder) checkAngles() {
	for i, a := range b.s.Angles {
		owner := b.angleNames[i]
		okA := b.checkNode(owner, a.A)
		okB := b.checkNode(owner, a.B)
		okP := b.checkNode(owner, a.Pivot)
		if okA && okB && okP && (a.A == a.B || a.Pivot == a.A || a.Pivot == a.B) {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: a, b and pivot must be distinct", owner)
		}

		modes := 0
		if a.Degrees != nil {
			modes++
		}
		if a.Ref != "" {
			modes++
		}
		if a.Min != nil || a.Max != nil {
			modes++
		}
		if modes > 1 {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: use one of degrees, ref, or min/max", owner)
		}
		for _, v := range []*float64{a.Degrees, a.Min, a.Max} {
			if v != nil && (*v < 0 || *v > 180) {
				b.add(apperr.ErrCodeInvalidConstraint, "%s: angles must lie in [0, 180]", owner)
				break
			}
		}
		b.checkRange(owner, a.Min, a.Max)
		b.checkRef(owner, kindAngle, a.Ref)
	}
}

func (b *builder) checkRails() {
	for i, r := range b.s.Rails {
		owner := b.railNames[i]
		okA, okB := b.checkNode(owner, r.A), b.checkNode(owner, r.B)
		if okA && okB && r.A == r.B {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: rail needs two distinct nodes", owner)
		}
		if len(r.Captives) == 0 {
			b.add(apperr.ErrCodeInvalidConstraint, "%s: rail has no captives", owner)
		}
		for j, c := range r.Captives {
			if !b.checkNode(owner, c) {
				continue
			}
			if c == r.A || c == r.B {
				b.add(apperr.ErrCodeInvalidConstraint, "%s: captive %q is a rail end", owner, c)
			}
			if slices.Contains(r.Captives[:j], c) {
				b.add(apperr.ErrCodeInvalidConstraint, "%s: captive %q listed twice", owner, c)
			}
		}
	}
}

func (b *builder) checkDrags() {
	for i, d := range b.s.Drags {
		owner := fmt.Sprintf("drag %d", i+1)
		b.checkNode(owner, d.Node)
		if !finite(d.ToX) || !finite(d.ToY) {
			b.add(apperr.ErrCodeInvalidScene, "%s: target must be finite", owner)
		}
		if d.Frames < 0 {
			b.add(apperr.ErrCodeInvalidScene, "%s: frames must not be negative", owner)
		}
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// =============================================================================
// Construction
// =============================================================================

// build creates the model. It runs only on a validated scene, so the
// solver's panics on bad handles cannot fire.
func (b *builder) build(tuning construction.Tuning) *Model {
	cg := construction.New(tuning)
	m := newModel(b.s.Name, meta.New(cg))

	for _, n := range b.s.Nodes {
		p := geom.Pt(n.X, n.Y)
		id := cg.CreateNode(p)
		m.addNode(n.Name, id)
		if n.Fixed {
			cg.AddSpring(construction.NewAffix(id, p))
			m.fixed[id] = true
		}
	}
	for _, c := range b.s.Connections {
		cg.Connect(m.nodeIDs[c.A], m.nodeIDs[c.B])
	}

	// Constraints are created unbounded first so that bounds may refer to
	// constraints declared later, or to each other.
	for i, d := range b.s.Distances {
		na, nb := m.nodeIDs[d.A], m.nodeIDs[d.B]
		cg.Connect(na, nb)
		m.addConstraint(b.distanceNames[i], m.graph.AddDistance(na, nb, meta.Bound{}, meta.Bound{}))
	}
	for i, a := range b.s.Angles {
		na, nb, np := m.nodeIDs[a.A], m.nodeIDs[a.B], m.nodeIDs[a.Pivot]
		cg.Connect(np, na)
		cg.Connect(np, nb)
		m.addConstraint(b.angleNames[i], m.graph.AddAngle(na, nb, np, meta.Bound{}, meta.Bound{}))
	}
	for i, r := range b.s.Rails {
		na, nb := m.nodeIDs[r.A], m.nodeIDs[r.B]
		captives := make([]construction.NodeID, len(r.Captives))
		for j, c := range r.Captives {
			captives[j] = m.nodeIDs[c]
		}
		cg.Connect(na, nb)
		m.addConstraint(b.railNames[i], m.graph.AddRail(na, nb, captives...))
	}

	for i, d := range b.s.Distances {
		var lo, hi meta.Bound
		switch {
		case d.Length != nil:
			lo, hi = meta.Value(*d.Length), meta.Value(*d.Length)
		case d.Equal != "":
			lo, hi = m.ref(d.Equal), m.ref(d.Equal)
		default:
			lo, hi = m.bound(d.Min, d.MinRef), m.bound(d.Max, d.MaxRef)
		}
		m.graph.SetBounds(m.constraintIDs[b.distanceNames[i]], lo, hi)
	}
	for i, a := range b.s.Angles {
		var lo, hi meta.Bound
		switch {
		case a.Degrees != nil:
			lo, hi = meta.Value(*a.Degrees), meta.Value(*a.Degrees)
		case a.Ref != "":
			lo, hi = m.ref(a.Ref), m.ref(a.Ref)
		default:
			lo, hi = m.bound(a.Min, ""), m.bound(a.Max, "")
		}
		m.graph.SetBounds(m.constraintIDs[b.angleNames[i]], lo, hi)
	}

	m.drags = slices.Clone(b.s.Drags)
	m.graph.Update()
	return m
}
