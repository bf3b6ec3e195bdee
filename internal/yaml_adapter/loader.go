// Package yaml_adapter loads the YAML configuration format into the
// format-agnostic config model.
package yaml_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// fileRoot mirrors the top level of a YAML configuration file.
type fileRoot struct {
	Workers            int    `yaml:"workers"`
	AllowedReturnCodes []int  `yaml:"allowed_returncodes"`
	Jobs               []*Job `yaml:"jobs"`
}

// Job is the YAML schema of a single entry in `jobs`.
type Job struct {
	Name               string   `yaml:"name"`
	Source             string   `yaml:"source"`
	Destination        string   `yaml:"destination"`
	Exclusions         []string `yaml:"exclusions"`
	Options            []string `yaml:"options"`
	Steps              int      `yaml:"steps"`
	AllowedReturnCodes []int    `yaml:"allowed_returncodes"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a single YAML file. Unknown keys are rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	if len(paths) != 1 {
		return nil, fmt.Errorf("yaml loader expects exactly one file, got %d", len(paths))
	}
	path := paths[0]
	logger.Debug("YAML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}

	model, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse yaml in %s: %w", path, err)
	}

	if err := config.Validate(model); err != nil {
		return nil, err
	}

	logger.Debug("YAML loading complete.", "workers", model.Workers, "jobs", len(model.Jobs))
	return model, nil
}

// Parse decodes YAML content into the config model without validating it.
func Parse(data []byte) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var root fileRoot
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}

	model := &config.Model{
		Workers:            root.Workers,
		AllowedReturnCodes: root.AllowedReturnCodes,
	}
	for i, j := range root.Jobs {
		if j == nil {
			return nil, fmt.Errorf("jobs[%d] is empty", i)
		}
		model.Jobs = append(model.Jobs, &config.JobSpec{
			Name:               j.Name,
			Source:             j.Source,
			Destination:        j.Destination,
			Exclusions:         j.Exclusions,
			Options:            j.Options,
			Steps:              j.Steps,
			AllowedReturnCodes: j.AllowedReturnCodes,
		})
	}
	return model, nil
}
