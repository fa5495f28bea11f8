package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/pipeline"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	pipeline pipeline.Options
	output   string // snapshot JSON file
	quiet    bool   // skip the tables
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [scene.toml]",
		Short: "Simulate a scene and print the final node positions",
		Long: `Simulate a scene and print where every node ends up.

Scripted drags in the scene are replayed first, then the simulation runs for
--frames frames, or until the sketch comes to rest with --settle.`,
		Example: `  modelsketch solve triangle.toml --settle
  modelsketch solve slider.toml --frames 600 -o slider.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pipeline.ScenePath = args[0]
			return c.runSolve(cmd.Context(), &opts)
		},
	}

	addSolveFlags(cmd, &opts.pipeline)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the solved snapshot as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print the summary line")

	return cmd
}

// runSolve solves the scene and reports the result.
func (c *CLI) runSolve(ctx context.Context, opts *solveOpts) error {
	if opts.output != "" {
		if err := apperr.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.pipeline.Logger = c.Logger
	prog := newProgress(c.Logger)
	stop := c.startSpinner(ctx, "Solving "+opts.pipeline.ScenePath)
	snap, stats, hit, err := runner.SolveWithCacheInfo(ctx, opts.pipeline)
	stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Solved %s", snap.Scene))

	c.printSolved(snap, stats, hit, opts.quiet)

	if opts.output != "" {
		if err := graph.WriteSnapshotFile(snap, opts.output); err != nil {
			return err
		}
		printFile(c.Out, opts.output)
	}
	return nil
}

// printSolved prints the summary, positions and constraint state.
func (c *CLI) printSolved(snap *graph.Snapshot, stats pipeline.Stats, cached, quiet bool) {
	if snap.Satisfied() {
		printSuccess(c.Out, "%s: all constraints hold", StyleTitle.Render(snap.Scene))
	} else {
		printWarning(c.Out, "%s: some constraints are violated", snap.Scene)
	}
	printStats(c.Out, stats, cached)
	if quiet {
		return
	}
	printPositions(c.Out, snap)
	printConstraints(c.Out, snap)
	if !stats.Settled {
		printDetail(c.Out, "energy %.4g after frame %d", snap.Energy, snap.Frame)
	}
}
