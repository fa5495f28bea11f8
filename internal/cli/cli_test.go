package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/observability"
)

const hingeScene = "testdata/hinge.toml"

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envRedisURL, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"solve", "render", "graph", "watch", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"no-cache", "redis"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestSolveCommand(t *testing.T) {
	out, err := execute(t, "solve", hingeScene, "--no-cache", "--frames", "120")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for _, want := range []string{"hinge", "armA", "opening", "120 frames"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSolveCommandWritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hinge.json")
	if _, err := execute(t, "solve", hingeScene, "-q", "--settle", "-o", path); err != nil {
		t.Fatalf("solve: %v", err)
	}

	snap, err := graph.ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snap.Scene != "hinge" || len(snap.Nodes) != 3 || len(snap.Constraints) != 3 {
		t.Errorf("snapshot = %s with %d nodes, %d constraints", snap.Scene, len(snap.Nodes), len(snap.Constraints))
	}
}

func TestSolveCommandMissingScene(t *testing.T) {
	_, err := execute(t, "solve", "testdata/missing.toml", "--no-cache")
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRenderCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "hinge")
	out, err := execute(t, "render", hingeScene, "-f", "svg,json,dot", "-o", base, "--labels")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{"svg", "json", "dot"} {
		path := base + "." + ext
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("%s not written: %v", ext, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", ext)
		}
		if !strings.Contains(out, path) {
			t.Errorf("output does not list %s", path)
		}
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	_, err := execute(t, "render", hingeScene, "-f", "gif")
	if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderCommandRejectsTraversal(t *testing.T) {
	_, err := execute(t, "render", hingeScene, "-o", "../escape.svg")
	if !apperr.Is(err, apperr.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want INVALID_PATH", err)
	}
}

func TestGraphCommandPrintsDOT(t *testing.T) {
	out, err := execute(t, "graph", hingeScene, "--no-cache", "--detailed")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	for _, want := range []string{"digraph", `"n:P"`, `"c:opening"`} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
}

func TestGraphCommandRejectsFormat(t *testing.T) {
	_, err := execute(t, "graph", hingeScene, "--no-cache", "-f", "json")
	if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}

	out, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on a fresh dir printed %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the binary")
	}
}
