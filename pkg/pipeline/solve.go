package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/observability"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

// Solve builds the scene's model, runs it and returns the final snapshot.
// The returned stats cover the solve only.
func Solve(ctx context.Context, s *scene.Scene, opts Options) (*graph.Snapshot, Stats, error) {
	opts.SetSolveDefaults()
	hooks := observability.Solver()
	start := time.Now()

	m, err := scene.Build(s)
	if err != nil {
		hooks.OnSolveComplete(ctx, s.Name, 0, 0, time.Since(start), err)
		return nil, Stats{}, err
	}
	cg := m.Construction()
	hooks.OnSolveStart(ctx, s.Name, cg.NodeCount(), m.Meta().Len())

	res, err := m.Run(ctx, opts.RunOptions())
	if opts.Settle && err == nil {
		hooks.OnSettle(ctx, s.Name, res.Frames, res.Settled)
	}
	hooks.OnSolveComplete(ctx, s.Name, res.Frames, res.Energy, time.Since(start), err)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{
		NodeCount:       cg.NodeCount(),
		ConstraintCount: m.Meta().Len(),
		SpringCount:     cg.SpringCount(),
		Frames:          res.Frames,
		Energy:          res.Energy,
		Settled:         res.Settled,
		SolveTime:       time.Since(start),
	}
	opts.Logger.Debug("solved scene",
		"scene", s.Name,
		"frames", res.Frames,
		"energy", res.Energy,
		"settled", res.Settled)
	return m.Snapshot(), stats, nil
}

// statsFromSnapshot fills what a cached snapshot can tell.
func statsFromSnapshot(snap *graph.Snapshot) Stats {
	return Stats{
		NodeCount:       len(snap.Nodes),
		ConstraintCount: len(snap.Constraints),
		Frames:          snap.Frame,
		Energy:          snap.Energy,
		Settled:         snap.Settled,
	}
}
