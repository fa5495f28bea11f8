package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/pipeline"
	"github.com/matzehuels/modelsketch/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	pipeline pipeline.Options
	output   string
	format   string
	detailed bool
}

// graphCommand creates the graph command, which draws the constraint
// topology of a solved scene with graphviz.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [scene.toml]",
		Short: "Draw which constraints measure which nodes",
		Long: `Draw the constraint topology of a scene: nodes, the constraints that
measure them and the references between constraints. Violated constraints
are filled red.

DOT output goes to stdout unless -o is given; svg, png and pdf are rendered
with graphviz and written next to the scene.`,
		Example: `  modelsketch graph triangle.toml | dot -Tsvg > triangle.svg
  modelsketch graph triangle.toml -f svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pipeline.ScenePath = args[0]
			return c.runGraph(cmd.Context(), &opts)
		},
	}

	addSolveFlags(cmd, &opts.pipeline)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatDOT, "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show quantities and bounds in constraint labels")

	return cmd
}

// runGraph solves the scene and writes its constraint topology.
func (c *CLI) runGraph(ctx context.Context, opts *graphOpts) error {
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
	snap, err := runner.Solve(ctx, opts.pipeline)
	if err != nil {
		return err
	}

	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.detailed})
	data, err := renderTopology(ctx, dot, opts.format, opts.pipeline.Scale)
	if err != nil {
		return err
	}

	if opts.format == pipeline.FormatDOT && opts.output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	path := opts.output
	if path == "" {
		path = basePath("", opts.pipeline.ScenePath) + "_graph." + opts.format
	}
	if err := writeArtifact(path, data); err != nil {
		return err
	}
	printSuccess(c.Out, "Drew constraint graph of %s", StyleTitle.Render(snap.Scene))
	printFile(c.Out, path)
	return nil
}

// renderTopology converts DOT source into the requested format.
func renderTopology(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case pipeline.FormatDOT:
		return []byte(dot), nil
	case pipeline.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case pipeline.FormatPNG:
		if scale == 0 {
			scale = pipeline.DefaultScale
		}
		return nodelink.RenderPNG(ctx, dot, scale)
	case pipeline.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported format %q (graph supports dot, svg, png, pdf)", format)
}
