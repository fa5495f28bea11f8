package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelsketch/pkg/pipeline"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	pipeline pipeline.Options
	fps      int
}

// watchCommand creates the watch command, an interactive live view.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [scene.toml]",
		Short: "Run a scene live in the terminal and drag its nodes",
		Long: `Run the simulation live in the terminal.

Move the cursor with the arrow keys and press space on a node to pick it up;
the node follows the cursor until space is pressed again. Scripted drags in
the scene file are not replayed here.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pipeline.ScenePath = args[0]
			return c.runWatch(cmd.Context(), &opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.fps, "fps", pipeline.DefaultFrameRate, "frames per second")
	f.StringVar(&opts.pipeline.SceneName, "name", "", "override the scene name")
	f.Float64Var(&opts.pipeline.Tuning.Stiffness, "stiffness", 0, "override soft spring stiffness")
	f.Float64Var(&opts.pipeline.Tuning.Damping, "damping", 0, "override soft spring damping")
	f.Float64Var(&opts.pipeline.Tuning.Friction, "friction", 0, "override node friction")
	f.IntVar(&opts.pipeline.Tuning.Substeps, "substeps", 0, "override integration sub-steps per frame")

	return cmd
}

// runWatch builds the scene and hands it to the live view.
func (c *CLI) runWatch(ctx context.Context, opts *watchOpts) error {
	opts.pipeline.Logger = c.Logger
	if err := opts.pipeline.ValidateForParse(); err != nil {
		return err
	}
	s, _, err := pipeline.Parse(opts.pipeline)
	if err != nil {
		return err
	}
	m, err := scene.Build(s)
	if err != nil {
		return err
	}
	c.Logger.Debug("watching scene", "scene", m.Name, "fps", opts.fps)

	p := tea.NewProgram(NewWatchModel(m, opts.fps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
