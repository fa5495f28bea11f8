package graph

import (
	"fmt"
	"math"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
)

// Constraint kinds.
const (
	KindDistance = "distance"
	KindAngle    = "angle"
	KindRail     = "rail"
)

// SatisfiedTolerance is the slack used when a snapshot reports whether a
// constraint holds. Quantities are in sketch units or degrees.
const SatisfiedTolerance = 0.5

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is the serialized state of a sketch at one frame.
type Snapshot struct {
	Scene       string       `json:"scene"`
	Frame       int          `json:"frame"`
	Energy      float64      `json:"energy"`
	Settled     bool         `json:"settled,omitempty"`
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Node is a named point.
type Node struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Fixed bool    `json:"fixed,omitempty"`
}

// Edge is a drawn connection. It carries no constraint.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Constraint is a declared quantity with its current value.
//
// Nodes lists the measured nodes: [a, b] for distances, [a, b, pivot] for
// angles and [a, b, captives...] for rails. Min and Max are the bounds
// resolved at this frame; MinRef and MaxRef name the constraint a bound
// follows, if any.
type Constraint struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Nodes    []string `json:"nodes"`
	Quantity float64  `json:"quantity"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	MinRef   string   `json:"min_ref,omitempty"`
	MaxRef   string   `json:"max_ref,omitempty"`
}

// Satisfied reports whether the quantity lies within the bounds, allowing
// SatisfiedTolerance on each side. Rails have no bounds and always hold.
func (c *Constraint) Satisfied() bool {
	if c.Min != nil && c.Quantity < *c.Min-SatisfiedTolerance {
		return false
	}
	if c.Max != nil && c.Quantity > *c.Max+SatisfiedTolerance {
		return false
	}
	return true
}

// Pivot returns the vertex of an angle constraint.
func (c *Constraint) Pivot() (string, bool) {
	if c.Kind != KindAngle || len(c.Nodes) < 3 {
		return "", false
	}
	return c.Nodes[2], true
}

// Captives returns the nodes held by a rail constraint.
func (c *Constraint) Captives() []string {
	if c.Kind != KindRail || len(c.Nodes) < 2 {
		return nil
	}
	return c.Nodes[2:]
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with the given id.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Satisfied reports whether every constraint holds.
func (s *Snapshot) Satisfied() bool {
	for i := range s.Constraints {
		if !s.Constraints[i].Satisfied() {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of all nodes. ok is false without nodes.
func (s *Snapshot) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if len(s.Nodes) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range s.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY, true
}

// Validate checks internal consistency: unique node and constraint ids,
// and edges and constraints that only name known nodes.
func (s *Snapshot) Validate() error {
	var errs apperr.List
	nodes := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if nodes[n.ID] {
			errs = append(errs, apperr.New(apperr.ErrCodeInvalidFormat, "duplicate node %q", n.ID))
		}
		nodes[n.ID] = true
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			errs = append(errs, apperr.New(apperr.ErrCodeInvalidFormat, "node %q has NaN position", n.ID))
		}
	}
	for _, e := range s.Edges {
		for _, id := range []string{e.From, e.To} {
			if !nodes[id] {
				errs = append(errs, apperr.New(apperr.ErrCodeInvalidNodeRef, "edge %s-%s: unknown node %q", e.From, e.To, id))
			}
		}
	}
	seen := make(map[string]bool, len(s.Constraints))
	for _, c := range s.Constraints {
		if seen[c.ID] {
			errs = append(errs, apperr.New(apperr.ErrCodeInvalidFormat, "duplicate constraint %q", c.ID))
		}
		seen[c.ID] = true
		switch c.Kind {
		case KindDistance, KindAngle, KindRail:
		default:
			errs = append(errs, apperr.New(apperr.ErrCodeInvalidFormat, "constraint %q: unknown kind %q", c.ID, c.Kind))
		}
		for _, id := range c.Nodes {
			if !nodes[id] {
				errs = append(errs, apperr.New(apperr.ErrCodeInvalidNodeRef, "constraint %q: unknown node %q", c.ID, id))
			}
		}
	}
	return errs.Err()
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %v = %.2f", c.Kind, c.ID, c.Nodes, c.Quantity)
}
