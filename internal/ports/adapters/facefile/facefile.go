// Package facefile reads face observations written by an external detector.
// Files are YAML or JSON (decoded with the same YAML decoder) holding either
// a top level list of faces or a "faces" key.
package facefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/montager/internal/types"
)

var sidecarExts = []string{".faces.yaml", ".faces.yml", ".faces.json"}

type Adapter struct {
	path string
}

// New reads faces from path. An empty path means a sidecar next to the
// video: <stem>.faces.yaml, .faces.yml or .faces.json.
func New(path string) *Adapter { return &Adapter{path: path} }

func (a *Adapter) DetectFaces(_ context.Context, inMP4 string) ([]types.Face, error) {
	path := a.path
	if path == "" {
		p, err := findSidecar(inMP4)
		if err != nil {
			return nil, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faces: %w", err)
	}
	faces, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode faces %s: %w", path, err)
	}
	return faces, nil
}

func Decode(b []byte) ([]types.Face, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var faces []types.Face
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&faces); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var doc struct {
			Faces []types.Face `yaml:"faces"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		faces = doc.Faces
	default:
		return nil, errors.New("expected a list of faces or a faces key")
	}

	for i, f := range faces {
		if f.BBox.W <= 0 || f.BBox.H <= 0 {
			return nil, fmt.Errorf("face %d: %w: non-positive size %dx%d", i, types.ErrInvalidRect, f.BBox.W, f.BBox.H)
		}
	}
	return faces, nil
}

func findSidecar(inMP4 string) (string, error) {
	base := strings.TrimSuffix(inMP4, filepath.Ext(inMP4))
	for _, ext := range sidecarExts {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no face observations for %s (expected %s.faces.yaml or --faces)", inMP4, filepath.Base(base))
}
