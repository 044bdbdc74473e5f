package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-montecarlo-raytracer/pkg/scene"
)

// ErrUnsupportedSceneFormat is returned for scene files with an unknown extension
var ErrUnsupportedSceneFormat = errors.New("unsupported scene format")

// LoadScene loads a scene description, choosing the parser from the file
// extension (.json or .pbrt)
func LoadScene(filename string) (*scene.Scene, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return nil, fmt.Errorf("invalid file path: null bytes not allowed")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".json" && ext != ".pbrt" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSceneFormat, ext)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	var s *scene.Scene
	if ext == ".json" {
		s, err = ParseScene(file)
	} else {
		s, err = ParsePBRT(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(filename), err)
	}
	return s, nil
}
