package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is the struct used to decode every top-level attribute and block
// allowed in a configuration file.
type fileRoot struct {
	Workers            *int           `hcl:"workers,optional"`
	AllowedReturnCodes hcl.Expression `hcl:"allowed_returncodes,optional"`
	Jobs               []*Job         `hcl:"job,block"`
}

// Job is the HCL schema of a `job "<name>" { ... }` block.
type Job struct {
	Name               string         `hcl:"name,label"`
	Source             string         `hcl:"source"`
	Destination        string         `hcl:"destination"`
	Exclusions         []string       `hcl:"exclusions,optional"`
	Options            []string       `hcl:"options,optional"`
	Steps              int            `hcl:"steps,optional"`
	AllowedReturnCodes hcl.Expression `hcl:"allowed_returncodes,optional"`
}
