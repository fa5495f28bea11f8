package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelsketch/pkg/buildinfo"
	"github.com/matzehuels/modelsketch/pkg/cache"
	"github.com/matzehuels/modelsketch/pkg/observability"
	"github.com/matzehuels/modelsketch/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "modelsketch"

	// envRedisURL selects a shared redis cache when --redis is not given.
	envRedisURL = "MODELSKETCH_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	// Err receives progress indicators. Defaults to the log writer.
	Err io.Writer

	noCache  bool
	redisURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Modelsketch solves hand-drawn geometric sketches with springs",
		Long: `Modelsketch turns a sketch of points, lines and constraints into a
spring simulation. Distances, angles and rails pull the drawing into shape
frame by frame until it settles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.SetErr(c.Err)

	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the snapshot and artifact cache")
	root.PersistentFlags().StringVar(&c.redisURL, "redis", os.Getenv(envRedisURL), "redis URL for a shared cache (env "+envRedisURL+")")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use and routes pipeline hooks
// to the logger at its current level.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetSolverHooks(hooks)
	observability.SetCacheHooks(hooks)
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case c.redisURL != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.redisURL})
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// startSpinner shows a spinner on c.Err unless debug logging is on, where
// it would interleave with log lines. The returned func stops it.
func (c *CLI) startSpinner(ctx context.Context, message string) func() {
	if c.Logger.GetLevel() <= log.DebugLevel {
		return func() {}
	}
	s := newSpinner(ctx, c.Err, message)
	s.Start()
	return s.Stop
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/modelsketch/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// addSolveFlags registers the simulation flags shared by solve, render,
// graph and watch.
func addSolveFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.IntVar(&opts.Frames, "frames", pipeline.DefaultFrames, "frames to simulate after scripted drags (upper bound with --settle)")
	f.IntVar(&opts.FrameRate, "rate", pipeline.DefaultFrameRate, "simulated frames per second")
	f.BoolVar(&opts.Settle, "settle", false, "stop early once the sketch comes to rest")
	f.Float64Var(&opts.Epsilon, "epsilon", pipeline.DefaultEpsilon, "kinetic energy below which the sketch is at rest")
	f.StringVar(&opts.SceneName, "name", "", "override the scene name")
	f.BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	f.Float64Var(&opts.Tuning.Stiffness, "stiffness", 0, "override soft spring stiffness")
	f.Float64Var(&opts.Tuning.Damping, "damping", 0, "override soft spring damping")
	f.Float64Var(&opts.Tuning.Friction, "friction", 0, "override node friction")
	f.IntVar(&opts.Tuning.Substeps, "substeps", 0, "override integration sub-steps per frame")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
