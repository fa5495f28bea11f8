// Package graph provides the serialization format for solved sketches.
//
// A [Snapshot] is the canonical wire format of a sketch at one frame: named
// node positions, drawn connections, and every declared constraint with its
// current quantity and resolved bounds. It is what the pipeline caches, what
// `modelsketch solve` writes as JSON, and what every renderer consumes.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - pkg/construction, pkg/meta: live solver state (integer handles)
//   - pkg/scene: names ↔ handles, builds snapshots from a running model
//   - [Snapshot]: names only, no handles (this package)
//
// # Format
//
//	{
//	  "scene": "triangle",
//	  "frame": 300,
//	  "nodes": [{"id": "A", "x": 0, "y": 0, "fixed": true}, ...],
//	  "edges": [{"from": "A", "to": "B"}],
//	  "constraints": [
//	    {"id": "base", "kind": "distance", "nodes": ["A", "B"], "quantity": 100, "min": 100, "max": 100}
//	  ]
//	}
//
// Common operations:
//
//	data, _ := graph.MarshalSnapshot(s)          // Snapshot → []byte
//	s, _ := graph.UnmarshalSnapshot(data)        // []byte → Snapshot
//	graph.WriteSnapshotFile(s, "triangle.json")  // Snapshot → File
//	s, _ := graph.ReadSnapshotFile("triangle.json")
package graph
