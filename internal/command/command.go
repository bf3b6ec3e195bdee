// Package command builds the rsync argument vector for a single job.
package command

import (
	"strings"

	"github.com/specialistvlad/syncfan/internal/fsutil"
)

// ExcludeFlag is the rsync flag used for exclusion patterns.
const ExcludeFlag = "--exclude"

const separator = "/"

// Build returns the argument vector for syncing source into destination in
// the default sync-contents mode: tool, options, exclusions, source, destination.
func Build(tool, source, destination string, exclusions, options []string) []string {
	return BuildContents(tool, source, destination, exclusions, options, true)
}

// BuildContents is Build with an explicit sync-contents mode. When
// syncContents is true the source carries a trailing separator so rsync copies
// the directory's contents rather than the directory itself. A regular file
// source always disables the mode.
func BuildContents(tool, source, destination string, exclusions, options []string, syncContents bool) []string {
	if fsutil.IsRegular(source) {
		syncContents = false
	}

	src, dst := SanitizeTrailingSlash(source, destination, syncContents)

	argv := make([]string, 0, 3+len(options)+len(exclusions))
	argv = append(argv, tool)
	argv = append(argv, options...)
	argv = append(argv, Exclusions(exclusions)...)
	return append(argv, src, dst)
}

// SanitizeTrailingSlash normalizes the trailing separators of a source and
// destination pair.
func SanitizeTrailingSlash(source, destination string, syncContents bool) (string, string) {
	destination = stripTrailingSlash(destination)
	if syncContents {
		return addTrailingSlash(source), destination
	}
	return stripTrailingSlash(source), destination
}

// Exclusions formats exclusion patterns as rsync flags. Patterns that already
// start with the exclusion flag are kept as they are.
func Exclusions(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.HasPrefix(p, ExcludeFlag) {
			out = append(out, p)
			continue
		}
		out = append(out, ExcludeFlag+"="+p)
	}
	return out
}

func stripTrailingSlash(path string) string {
	if path == separator {
		return path
	}
	return strings.TrimSuffix(path, separator)
}

func addTrailingSlash(path string) string {
	if strings.HasSuffix(path, separator) {
		return path
	}
	return path + separator
}
