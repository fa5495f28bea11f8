package cli

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , json ", []string{"svg", "json"}},
		{"empty items dropped", "dot,,json", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scenes/triangle.toml", "scenes/triangle"},
		{"out/tri.svg", "triangle.toml", "out/tri"},
		{"out/tri.dot", "triangle.toml", "out/tri"},
		{"out/tri", "triangle.toml", "out/tri"},
		{"out/tri.v2", "triangle.toml", "out/tri.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	t.Run("single format uses output as is", func(t *testing.T) {
		got := outputPaths("picture.out", "triangle.toml", []string{"svg"})
		if got["svg"] != "picture.out" {
			t.Errorf("svg path = %q, want picture.out", got["svg"])
		}
	})

	t.Run("several formats share a base", func(t *testing.T) {
		got := outputPaths("out/tri.svg", "triangle.toml", []string{"svg", "json"})
		if got["svg"] != "out/tri.svg" || got["json"] != "out/tri.json" {
			t.Errorf("paths = %v", got)
		}
	})

	t.Run("defaults next to the scene", func(t *testing.T) {
		in := filepath.Join("scenes", "triangle.toml")
		got := outputPaths("", in, []string{"png"})
		if want := filepath.Join("scenes", "triangle.png"); got["png"] != want {
			t.Errorf("png path = %q, want %q", got["png"], want)
		}
	})
}
