package scene

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/modelsketch/pkg/construction"
	apperr "github.com/matzehuels/modelsketch/pkg/errors"
)

// DefaultDragFrames is used by a [DragDef] that does not set Frames.
const DefaultDragFrames = 30

// Scene is the decoded form of a scene file.
type Scene struct {
	Name        string              `toml:"name"`
	Nodes       []NodeDef           `toml:"node"`
	Connections []ConnectionDef     `toml:"connection"`
	Distances   []DistanceDef       `toml:"distance"`
	Angles      []AngleDef          `toml:"angle"`
	Rails       []RailDef           `toml:"rail"`
	Drags       []DragDef           `toml:"drag"`
	Tuning      construction.Tuning `toml:"tuning"`
}

// NodeDef declares a point. Fixed nodes are pinned where they start.
type NodeDef struct {
	Name  string  `toml:"name"`
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Fixed bool    `toml:"fixed"`
}

// ConnectionDef draws a line between two nodes without constraining it.
type ConnectionDef struct {
	A string `toml:"a"`
	B string `toml:"b"`
}

// DistanceDef bounds the distance between A and B.
//
// Length sets both bounds. Equal makes both bounds follow another
// constraint. Min/Max and MinRef/MaxRef set one side each.
type DistanceDef struct {
	Name   string   `toml:"name"`
	A      string   `toml:"a"`
	B      string   `toml:"b"`
	Length *float64 `toml:"length"`
	Min    *float64 `toml:"min"`
	Max    *float64 `toml:"max"`
	Equal  string   `toml:"equal"`
	MinRef string   `toml:"min_ref"`
	MaxRef string   `toml:"max_ref"`
}

// AngleDef bounds the angle A-Pivot-B, in degrees.
type AngleDef struct {
	Name    string   `toml:"name"`
	A       string   `toml:"a"`
	B       string   `toml:"b"`
	Pivot   string   `toml:"pivot"`
	Degrees *float64 `toml:"degrees"`
	Min     *float64 `toml:"min"`
	Max     *float64 `toml:"max"`
	Ref     string   `toml:"ref"`
}

// RailDef holds every captive on the line through A and B.
type RailDef struct {
	Name     string   `toml:"name"`
	A        string   `toml:"a"`
	B        string   `toml:"b"`
	Captives []string `toml:"captives"`
}

// DragDef replays a pencil drag: Node is pulled from where it stands to
// (ToX, ToY) over Frames frames and then released.
type DragDef struct {
	Node   string  `toml:"node"`
	ToX    float64 `toml:"to_x"`
	ToY    float64 `toml:"to_y"`
	Frames int     `toml:"frames"`
}

// Load reads and decodes a scene file. A scene without a name is named
// after the file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "scene %s", path)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read scene %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a scene from TOML. Unknown keys are rejected so that a
// misspelled bound is not silently ignored.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperr.New(apperr.ErrCodeInvalidScene, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return &s, nil
}
