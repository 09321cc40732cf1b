package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RCFileName is the project config file rillc looks for in the
// current directory before falling back to flag/env defaults.
const RCFileName = ".rillrc.yaml"

// RCFile mirrors the teacher's pattern of a small config package
// backed by a YAML file (see internal/evaluator/builtins_yaml.go for
// the yaml.v3 usage this is grounded on): it supplies CLI defaults,
// never language semantics.
type RCFile struct {
	Debug      bool   `yaml:"debug"`
	ProjectDir string `yaml:"projectDir"`
}

// LoadRCFile reads RCFileName from dir. A missing file is not an
// error; it just yields the zero value so callers fall back to their
// own defaults.
func LoadRCFile(dir string) (*RCFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, RCFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &RCFile{}, nil
		}
		return nil, err
	}
	var rc RCFile
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}
