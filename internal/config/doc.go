// Package config defines the format-agnostic configuration model for a
// synchronization run, along with the Loader interface implemented by the
// concrete file formats and the schema validation every loader applies.
//
// The `config.Model` is the single source of truth for the `explode`, `job`
// and `executor` packages. Concrete loaders for HCL and YAML are provided in
// separate packages.
package config
