package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	pipeline pipeline.Options
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated formats
}

// renderCommand creates the render command. It solves the scene and writes
// one file per requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Solve a scene and draw it as SVG, PNG, PDF, JSON or DOT",
		Long: `Solve a scene and draw the result.

With one format, -o names the output file. With several, -o is a base path
and each format gets its own extension. Without -o the files are written next
to the scene. PNG and PDF need rsvg-convert on the PATH.`,
		Example: `  modelsketch render triangle.toml
  modelsketch render slider.toml -f svg,png --labels --overlay -o out/slider`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pipeline.ScenePath = args[0]
			opts.pipeline.Formats = parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(opts.pipeline.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	addSolveFlags(cmd, &opts.pipeline)
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	f.Float64Var(&opts.pipeline.Width, "width", 0, "frame width (0 draws at 1:1)")
	f.Float64Var(&opts.pipeline.Height, "height", 0, "frame height (0 draws at 1:1)")
	f.BoolVar(&opts.pipeline.Labels, "labels", false, "label nodes with their names")
	f.BoolVar(&opts.pipeline.Overlay, "overlay", false, "draw constraint dimensions and angle arcs")
	f.Float64Var(&opts.pipeline.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	if opts.output != "" {
		if err := apperr.ValidatePath(opts.output); err != nil {
			return err
		}
	}
	paths := outputPaths(opts.output, opts.pipeline.ScenePath, opts.pipeline.Formats)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.pipeline.Logger = c.Logger
	stop := c.startSpinner(ctx, "Rendering "+opts.pipeline.ScenePath)
	result, err := runner.Execute(ctx, opts.pipeline)
	stop()
	if err != nil {
		return err
	}

	printSuccess(c.Out, "Rendered %s", StyleTitle.Render(result.Snapshot.Scene))
	printStats(c.Out, result.Stats, result.CacheInfo.SnapshotHit)
	for _, format := range opts.pipeline.Formats {
		path := paths[format]
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(c.Out, path)
	}
	if !result.Snapshot.Satisfied() {
		printWarning(c.Out, "some constraints are violated")
		printNextStep(c.Out, "Inspect them with", fmt.Sprintf("%s solve %s", appName, opts.pipeline.ScenePath))
	}
	return nil
}

// outputPaths maps each format to the file it is written to.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
