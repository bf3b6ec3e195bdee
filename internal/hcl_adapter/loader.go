package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every HCL file found under paths, merges them into a single
// model and validates the result. Top-level attributes may be set in one file
// only; job blocks are appended in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, errors.New("no .hcl configuration files found")
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	var workersFrom, codesFrom string
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Workers != nil {
			if workersFrom != "" {
				return nil, fmt.Errorf("workers is set in both %s and %s", workersFrom, file)
			}
			workersFrom = file
			model.Workers = *root.Workers
		}

		codes, err := decodeReturnCodes(ctx, root.AllowedReturnCodes, "allowed_returncodes")
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		if codes != nil {
			if codesFrom != "" {
				return nil, fmt.Errorf("allowed_returncodes is set in both %s and %s", codesFrom, file)
			}
			codesFrom = file
			model.AllowedReturnCodes = codes
		}

		for _, j := range root.Jobs {
			spec, err := l.translateJob(ctx, j)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Jobs = append(model.Jobs, spec)
		}
	}

	if err := config.Validate(model); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "workers", model.Workers, "jobs", len(model.Jobs))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) != ".hcl" {
				return nil, fmt.Errorf("%s is not an .hcl file", path)
			}
			add(path)
			continue
		}

		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
