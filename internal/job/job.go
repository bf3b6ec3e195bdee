package job

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/syncfan/internal/ctxlog"
	"github.com/specialistvlad/syncfan/internal/fsutil"
)

// ErrSourceMissing reports a destination directory that cannot be created
// because the source directory it mirrors does not exist. The source tree
// changed after it was listed, or the explosion produced an invalid mapping.
var ErrSourceMissing = errors.New("corresponding source directory does not exist")

// Job is a single synchronization unit of a run.
type Job struct {
	ID                 string
	Name               string
	Source             string
	Destination        string
	Exclusions         []string
	Options            []string
	AllowedReturnCodes []int

	Exploded          bool
	ParentSource      string
	ParentDestination string

	// DestinationPaths are the missing destination directories, ancestors first.
	DestinationPaths []DestinationPath

	// Command is the tool invocation for this job.
	Command []string
}

// resolveDestinationPaths diffs the destination against the parent
// destination and records every missing directory on the way down.
func (j *Job) resolveDestinationPaths(ctx context.Context) error {
	if !j.Exploded {
		return nil
	}
	logger := ctxlog.FromContext(ctx).With("job_id", j.ID)

	diff, err := filepath.Rel(j.ParentDestination, j.Destination)
	if err != nil {
		return fmt.Errorf("job %s: cannot relate %s to %s: %w", j.ID, j.Destination, j.ParentDestination, err)
	}
	diff = filepath.Clean(diff)
	if diff == "." {
		return nil
	}
	if diff == ".." || strings.HasPrefix(diff, ".."+string(filepath.Separator)) {
		return fmt.Errorf("job %s: destination %s is outside %s", j.ID, j.Destination, j.ParentDestination)
	}

	prevDest, prevSrc := j.ParentDestination, j.ParentSource
	for _, part := range strings.Split(diff, string(filepath.Separator)) {
		prevDest = filepath.Join(prevDest, part)
		prevSrc = filepath.Join(prevSrc, part)

		if fsutil.IsDir(prevDest) {
			continue
		}
		logger.Debug("Destination component is missing.", "destination", prevDest, "source", prevSrc)

		if !fsutil.IsDir(prevSrc) {
			return fmt.Errorf("cannot create destination %s because source %s does not exist: %w", prevDest, prevSrc, ErrSourceMissing)
		}
		info, err := fsutil.StatDir(prevSrc)
		if err != nil {
			return err
		}

		logger.Info("This run will create a destination directory.",
			"path", prevDest, "owner", info.UID, "group", info.GID, "mode", fmt.Sprintf("%o", info.Mode.Perm()))
		j.DestinationPaths = append(j.DestinationPaths, DestinationPath{
			Path: prevDest,
			UID:  info.UID,
			GID:  info.GID,
			Mode: info.Mode,
		})
	}
	return nil
}

// Prepare creates every recorded destination directory in order. It is safe
// to call more than once; directories that already exist are skipped.
func (j *Job) Prepare(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("job_id", j.ID)
	if len(j.DestinationPaths) == 0 {
		return nil
	}

	created := 0
	for _, dp := range j.DestinationPaths {
		ok, err := dp.Create(ctx)
		if err != nil {
			return fmt.Errorf("failed to prepare destination path for job %s: %w", j.ID, err)
		}
		if ok {
			created++
		}
	}
	logger.Debug("Job destination prepared.", "created", created, "recorded", len(j.DestinationPaths))
	return nil
}
