package job

import "github.com/specialistvlad/syncfan/internal/config"

// Spec is a configured job after explosion.
type Spec struct {
	config.JobSpec

	// Exploded marks specs derived from a parent job by descending its source tree.
	Exploded bool
	// ParentSource and ParentDestination are the pre-explosion paths. They
	// are set only when Exploded is true.
	ParentSource      string
	ParentDestination string
}

// Unexploded wraps a configured job that is synchronized as is.
func Unexploded(s config.JobSpec) Spec {
	return Spec{JobSpec: s.Clone()}
}
