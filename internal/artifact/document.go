// Package artifact decodes the fitted scaler and predictor documents produced
// by the training environment and evaluates them over gonum matrices.
//
// Both documents share a header:
//
//	format:   "instax-scaler" or "instax-model"
//	version:  1
//	kind:     scaler "standard" | "minmax", model "linear" | "tree"
//	features: optional feature names in fitting order
//	name, author, created: optional descriptive metadata
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/mathutil"
)

// Metadata is the descriptive header shared by every artifact document.
type Metadata struct {
	Format   string   `json:"format" yaml:"format"`
	Version  int      `json:"version" yaml:"version"`
	Kind     string   `json:"kind" yaml:"kind"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
	Created  string   `json:"created,omitempty" yaml:"created,omitempty"`
}

// Info describes a loaded artifact.
type Info struct {
	Path     string   `json:"path,omitempty"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Author   string   `json:"author,omitempty"`
	Created  string   `json:"created,omitempty"`
	Features []string `json:"features,omitempty"`
	Version  int      `json:"version"`
}

func (m Metadata) info(path string) Info {
	return Info{
		Path:     path,
		Kind:     m.Kind,
		Name:     m.Name,
		Author:   m.Author,
		Created:  m.Created,
		Features: append([]string(nil), m.Features...),
		Version:  m.Version,
	}
}

func (m Metadata) check(format string, width int) error {
	if m.Format != format {
		return fmt.Errorf("expected format %q, got %q", format, m.Format)
	}
	if m.Version != constants.ArtifactVersion {
		return fmt.Errorf("unsupported version %d", m.Version)
	}
	if len(m.Features) > 0 && len(m.Features) != width {
		return fmt.Errorf("%d feature names for %d features", len(m.Features), width)
	}
	return nil
}

// readDocument reads path and decodes it into v, mapping failures onto
// ErrArtifactNotFound and ErrArtifactCorrupt.
func readDocument(path string, v interface{}) error {
	data, err := readBytes(path)
	if err != nil {
		return err
	}
	return decode(path, data, v)
}

// readBytes returns the contents of the regular file at path.
func readBytes(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrArtifactNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrArtifactCorrupt, path)
	}
	return data, nil
}

// decode unmarshals data into v, choosing YAML or JSON by the extension of path.
func decode(path string, data []byte, v interface{}) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
	}
	return nil
}

func corrupt(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
}

func checkFinite(name string, values ...float64) error {
	if !mathutil.AllFinite(values) {
		return fmt.Errorf("%s contains a non-finite value", name)
	}
	return nil
}
