package job

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/syncfan/internal/command"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
)

// ErrDuplicateID is returned when a job identifier is already registered.
var ErrDuplicateID = errors.New("duplicate job id")

// Registry holds every job of a run in registration order.
type Registry struct {
	toolPath string
	newID    func() string
	jobs     []*Job
	byID     map[string]*Job
}

// NewRegistry creates an empty registry whose jobs invoke the tool at toolPath.
func NewRegistry(toolPath string) *Registry {
	return &Registry{
		toolPath: toolPath,
		newID:    uuid.NewString,
		byID:     make(map[string]*Job),
	}
}

// Register creates a job for every spec. It assigns identifiers, builds the
// tool commands and diffs destinations. Any error is fatal for the run; jobs
// registered before the failing spec stay registered.
func (r *Registry) Register(ctx context.Context, specs ...Spec) error {
	logger := ctxlog.FromContext(ctx)

	for _, s := range specs {
		j := &Job{
			ID:                 r.newID(),
			Name:               s.Name,
			Source:             s.Source,
			Destination:        s.Destination,
			Exclusions:         slices.Clone(s.Exclusions),
			Options:            slices.Clone(s.Options),
			AllowedReturnCodes: slices.Clone(s.AllowedReturnCodes),
			Exploded:           s.Exploded,
			ParentSource:       s.ParentSource,
			ParentDestination:  s.ParentDestination,
		}
		if _, dup := r.byID[j.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, j.ID)
		}

		logger.Info(fmt.Sprintf("adding job %s %s -> %s to queue", j.ID, j.Source, j.Destination), "job_name", j.Name)

		j.Command = command.Build(r.toolPath, j.Source, j.Destination, j.Exclusions, j.Options)
		logger.Debug("Job command built.", "job_id", j.ID, "command", strings.Join(j.Command, " "))

		if err := j.resolveDestinationPaths(ctx); err != nil {
			return err
		}

		r.jobs = append(r.jobs, j)
		r.byID[j.ID] = j
	}
	return nil
}

// Jobs returns the registered jobs in registration order.
func (r *Registry) Jobs() []*Job {
	return slices.Clone(r.jobs)
}

// Get looks a job up by identifier.
func (r *Registry) Get(id string) (*Job, bool) {
	j, ok := r.byID[id]
	return j, ok
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	return len(r.jobs)
}

// PrepareAll prepares every job sequentially, stopping at the first failure.
func (r *Registry) PrepareAll(ctx context.Context) error {
	for _, j := range r.jobs {
		if err := j.Prepare(ctx); err != nil {
			return err
		}
	}
	return nil
}
