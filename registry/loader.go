package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/pipelinekit/logger"
)

var specExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// LoadFile reads node specs from a YAML or JSON file. The file holds either a
// single spec or a list of specs.
func LoadFile(path string) ([]NodeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: reading %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("registry: parsing %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var specs []NodeSpec
	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		err = doc.Decode(&specs)
	} else {
		var spec NodeSpec
		err = doc.Decode(&spec)
		specs = []NodeSpec{spec}
	}
	if err != nil {
		return nil, fmt.Errorf("registry: decoding %s: %w", path, err)
	}
	logger.Get("registry").Debug("loaded node specs", logger.Fields(logger.FieldFile, path, "count", len(specs)))
	return specs, nil
}

// Load reads node specs from files and directories and builds a registry.
// Directories are searched recursively for .yaml, .yml and .json files in
// lexical order.
func Load(paths ...string) (*Registry, error) {
	var specs []NodeSpec
	for _, path := range paths {
		files, err := specFiles(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			loaded, err := LoadFile(file)
			if err != nil {
				return nil, err
			}
			specs = append(specs, loaded...)
		}
	}
	r, err := FromSpecs(specs)
	if err != nil {
		return nil, err
	}
	logger.Get("registry").Info("node registry ready", logger.Fields("node_types", r.Len()))
	return r, nil
}

func specFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && specExtensions[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("registry: walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadProperties reads a pipeline property schema: a YAML or JSON list of
// property specs.
func LoadProperties(path string) ([]Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: reading %s: %w", path, err)
	}
	var specs []PropertySpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("registry: parsing %s: %w", path, err)
	}
	return Properties(specs)
}
