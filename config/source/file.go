package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skekre98/odsharness/config"
)

// FileSource loads YAML configuration from BasePath.
//
// The base file is {BaseName}.yaml or {BaseName}.yml and must exist. When
// Profile is set, {BaseName}.{Profile}.yaml is deep-merged on top if present:
//
//	configs/
//	  application.yaml
//	  application.ci.yaml
type FileSource struct {
	BasePath string
	// BaseName defaults to "application".
	BaseName string
	Profile  string
}

func (f *FileSource) Name() string { return "file" }

// Load returns an error wrapping os.ErrNotExist when the base file is missing.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := f.BaseName
	if name == "" {
		name = "application"
	}

	baseFile := findYAMLFile(f.BasePath, name)
	if baseFile == "" {
		return nil, fmt.Errorf("%s.yaml in %q: %w", name, f.BasePath, os.ErrNotExist)
	}

	data, err := readYAML(baseFile)
	if err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if profileFile := findYAMLFile(f.BasePath, name+"."+f.Profile); profileFile != "" {
			overlay, err := readYAML(profileFile)
			if err != nil {
				return nil, err
			}
			config.MergeMaps(data, overlay)
		}
	}

	return data, nil
}

// Watch is not supported for files yet.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }

func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
