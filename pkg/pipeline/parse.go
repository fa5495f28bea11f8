package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

// defaultSceneName names inline scenes that carry no name.
const defaultSceneName = "sketch"

// Parse reads and decodes the scene described by opts. It returns the scene
// with name and tuning overrides applied, and the raw bytes it was decoded
// from.
func Parse(opts Options) (*scene.Scene, []byte, error) {
	data, err := readScene(opts)
	if err != nil {
		return nil, nil, err
	}
	s, err := scene.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case opts.SceneName != "":
		s.Name = opts.SceneName
	case s.Name != "":
	case len(opts.SceneData) == 0:
		s.Name = strings.TrimSuffix(filepath.Base(opts.ScenePath), filepath.Ext(opts.ScenePath))
	default:
		s.Name = defaultSceneName
	}
	s.Tuning = s.Tuning.Merge(opts.Tuning)
	return s, data, nil
}

func readScene(opts Options) ([]byte, error) {
	if len(opts.SceneData) > 0 {
		return opts.SceneData, nil
	}
	data, err := os.ReadFile(opts.ScenePath)
	if os.IsNotExist(err) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "scene %s", opts.ScenePath)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read scene %s", opts.ScenePath)
	}
	return data, nil
}
