// Package explode expands configured jobs into independent sub-jobs by
// descending a fixed number of levels into their source directory trees.
package explode

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/fsutil"
	"github.com/specialistvlad/syncfan/internal/job"
)

// All explodes every configured job and returns the flattened result in
// configuration order.
func All(ctx context.Context, specs []*config.JobSpec) ([]job.Spec, error) {
	var out []job.Spec
	for _, s := range specs {
		exploded, err := Explode(ctx, *s)
		if err != nil {
			return nil, err
		}
		out = append(out, exploded...)
	}
	return out, nil
}

// Explode expands a single job. With zero steps the job is returned as is.
// Otherwise every directory exactly Steps levels below the source becomes
// the source of a new job whose destination mirrors the relative path. A
// tree without directories at that depth yields no jobs at all.
func Explode(ctx context.Context, spec config.JobSpec) ([]job.Spec, error) {
	logger := ctxlog.FromContext(ctx).With("job", spec.Label())

	if spec.Steps == 0 {
		return []job.Spec{job.Unexploded(spec)}, nil
	}

	sources, err := descend(spec.Source, spec.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to explode job %s: %w", spec.Label(), err)
	}
	if len(sources) == 0 {
		logger.Warn("No directories found at the requested depth, job produces no work.", "source", spec.Source, "steps", spec.Steps)
		return nil, nil
	}

	out := make([]job.Spec, 0, len(sources))
	for _, src := range sources {
		rel, err := filepath.Rel(spec.Source, src)
		if err != nil {
			return nil, fmt.Errorf("failed to explode job %s: %w", spec.Label(), err)
		}

		variant := spec.Clone()
		variant.Source = src
		variant.Destination = filepath.Join(spec.Destination, rel)

		out = append(out, job.Spec{
			JobSpec:           variant,
			Exploded:          true,
			ParentSource:      spec.Source,
			ParentDestination: spec.Destination,
		})
	}

	logger.Debug("Job exploded.", "source", spec.Source, "steps", spec.Steps, "jobs", len(out))
	return out, nil
}

// descend walks breadth-first from root and returns the directories found
// exactly steps levels down, ordered by name at every level.
func descend(root string, steps int) ([]string, error) {
	level := []string{root}
	for ; steps > 0; steps-- {
		var next []string
		for _, dir := range level {
			dirs, err := fsutil.ListDirs(dir)
			if err != nil {
				return nil, err
			}
			next = append(next, dirs...)
		}
		if len(next) == 0 {
			return nil, nil
		}
		level = next
	}
	return level, nil
}
