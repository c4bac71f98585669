package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// projectConfig is the optional rill.yaml project file: structured config
// for the module search root and default target platform, so a project
// doesn't need to repeat --root/--define on every rillc invocation.
type projectConfig struct {
	Root     string   `yaml:"root"`
	Platform string   `yaml:"platform"`
	Defines  []string `yaml:"defines"`
}

// loadProjectConfig reads rill.yaml from the given directory, if present.
// A missing file is not an error: rill.yaml is optional.
func loadProjectConfig(dir string) (*projectConfig, error) {
	data, err := os.ReadFile(dir + "/rill.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg projectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("rill.yaml: %w", err)
	}
	return &cfg, nil
}
