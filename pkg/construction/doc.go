// Package construction implements the physics layer of the sketch solver.
//
// A [Graph] owns point [Node]s and damped [Spring]s. Every call to
// [Graph.Update] splits the frame into fixed sub-steps; in each sub-step all
// springs compute their scalar force from the current node positions, then
// every node sums the forces of its attached springs, adds friction, and
// integrates with semi-implicit Euler (mass 1).
//
// # Springs
//
// Springs are a closed set of kinds ([SpringKind]):
//
//   - [KindAffix]: literal point to node, zero free length. Pins a node.
//   - [KindDistance]: node to node with an optional [min, max] free length.
//     Inside the range the spring is slack and exerts no force.
//   - [KindFollowPencil]: like an affix, but the point tracks a live drag and
//     the spring lives for a single interaction (see [Graph.BeginDrag]).
//   - [KindRail]: like an affix, but only the component of the force
//     perpendicular to the rail direction is applied, so the node can slide.
//
// # Handles
//
// Nodes and springs are addressed by small integer handles ([NodeID],
// [SpringID]) issued by the owning graph. Handles are never reused, so two
// graphs (for example in tests) never share an id space.
//
// # Errors
//
// Caller bugs such as connecting a node to itself, moving the point of a
// node-to-node spring, or referencing a node from another graph panic.
// Numerical corner cases are defined instead: coincident endpoints produce
// no force.
//
// The graph is not safe for concurrent use.
package construction
