package config

import "slices"

// Model is the unified, format-agnostic representation of a run's configuration.
type Model struct {
	Workers            int        `validate:"gt=0"`
	AllowedReturnCodes []int
	Jobs               []*JobSpec `validate:"dive,required"`
}

// JobSpec is a single configured synchronization job.
type JobSpec struct {
	Name               string
	Source             string   `validate:"required,abspath,dir"`
	Destination        string   `validate:"required,abspath,dir"`
	Exclusions         []string `validate:"dive,required"`
	Options            []string `validate:"dive,startswith=-"`
	Steps              int      `validate:"gte=0"`
	AllowedReturnCodes []int
}

// Clone returns a deep copy of the job spec.
func (s JobSpec) Clone() JobSpec {
	s.Exclusions = slices.Clone(s.Exclusions)
	s.Options = slices.Clone(s.Options)
	s.AllowedReturnCodes = slices.Clone(s.AllowedReturnCodes)
	return s
}

// Label returns the job's name, or its source path when it has none.
func (s *JobSpec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Source
}
