// Package meta implements the declarative layer of the sketch solver.
//
// A meta [Node] declares a quantity over construction nodes (a distance, an
// angle at a pivot, or a rail line) and owns the construction springs that
// enforce it. Every frame, [Graph.Update] pushes freshly resolved bounds into
// those springs; [Graph.Step] does that and then integrates the construction
// graph, so all bounds are final before any physics sub-step runs.
//
// # Bounds
//
// A [Bound] is either unset, a literal value ([Value]), or a reference to
// another meta node ([Ref]). References read the other node's current
// quantity at update time:
//
//	ab := g.AddDistance(a, b, meta.Value(50), meta.Value(150))
//	g.AddDistance(c, d, meta.Bound{}, meta.Ref(ab)) // |CD| ≤ |AB|
//
// Quantities are pure functions of node positions and are never cached, so
// a referencing node always sees the state of the current frame. Cycles
// (A bounded by B and B by A) do not recurse and are tolerated, though the
// resulting motion is up to the caller.
//
// # Kinds
//
//   - [KindDistance]: one distance spring; the quantity is |AB|.
//   - [KindAngle]: one distance spring between the arm ends; bounds are in
//     degrees and are turned into chord lengths by the law of cosines.
//   - [KindRail]: one rail spring per captive node, retargeted every frame
//     to the captive's projection onto the infinite line AB. The quantity
//     is |AB|.
package meta
