package graph_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/modelsketch/pkg/graph"
)

func ExampleWriteSnapshot() {
	s := &graph.Snapshot{
		Scene: "segment",
		Frame: 60,
		Nodes: []graph.Node{
			{ID: "A", X: 0, Y: 0, Fixed: true},
			{ID: "B", X: 50, Y: 0},
		},
		Edges: []graph.Edge{{From: "A", To: "B"}},
	}
	if err := graph.WriteSnapshot(s, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "scene": "segment",
	//   "frame": 60,
	//   "energy": 0,
	//   "nodes": [
	//     {
	//       "id": "A",
	//       "x": 0,
	//       "y": 0,
	//       "fixed": true
	//     },
	//     {
	//       "id": "B",
	//       "x": 50,
	//       "y": 0
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": "A",
	//       "to": "B"
	//     }
	//   ]
	// }
}
