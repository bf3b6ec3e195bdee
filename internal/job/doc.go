// Package job holds the prepared, identity-bearing synchronization jobs of a
// run.
//
// A Job is created once by the Registry from a Spec. For jobs produced by
// exploding a configured job, registration also diffs the job's destination
// against its parent destination and records every missing intermediate
// directory together with the ownership and permission bits of the matching
// source directory. Prepare later materializes those directories. All
// preparation happens on the main goroutine before any job is dispatched.
package job
