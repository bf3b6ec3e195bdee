// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/syncfan/internal/config"
	"github.com/specialistvlad/syncfan/internal/ctxlog"
)

// translateJob converts the HCL-specific job schema into the agnostic model.
func (l *Loader) translateJob(ctx context.Context, j *Job) (*config.JobSpec, error) {
	logger := ctxlog.FromContext(ctx).With("job", j.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Debug("Translating HCL job to internal config model.")

	codes, err := decodeReturnCodes(ctx, j.AllowedReturnCodes, "allowed_returncodes")
	if err != nil {
		return nil, fmt.Errorf("in job '%s': %w", j.Name, err)
	}

	return &config.JobSpec{
		Name:               j.Name,
		Source:             j.Source,
		Destination:        j.Destination,
		Exclusions:         j.Exclusions,
		Options:            j.Options,
		Steps:              j.Steps,
		AllowedReturnCodes: codes,
	}, nil
}
