// Package pathutil implements the path math shared by the directory cache.
//
// Paths use a single separator ("/") and are resolved literally: "." and ".."
// segments are not interpreted, matching how the remote repository resolves
// paths.
package pathutil

import "strings"

// Separator is the only directory separator understood by the repository.
const Separator = "/"

// Resolve resolves input against base.
//
// An empty input resolves to nothing (ok == false). An input starting with the
// separator is treated as rooted at base; any other input is appended as a
// child. Either way exactly one separator ends up between base and the rest
// of input.
func Resolve(base, input string) (string, bool) {
	if input == "" {
		return "", false
	}

	input = strings.TrimPrefix(input, Separator)
	if strings.HasSuffix(base, Separator) {
		return base + input, true
	}
	return base + Separator + input, true
}

// Child returns the path of an entry called name inside dir. At the root
// ("/") this is "/name".
func Child(dir, name string) string {
	if strings.HasSuffix(dir, Separator) {
		return dir + name
	}
	return dir + Separator + name
}

// Split splits path on the separator. Empty segments are kept, so a leading
// separator yields an empty first segment and "/" yields two empty segments.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Join joins segments with the separator without any normalization.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Base returns the last segment of path. The root has an empty base.
func Base(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns everything before the last segment of path. Dir of a
// single-level absolute path is the root "/"; Dir of a bare name is "".
func Dir(path string) string {
	i := strings.LastIndex(path, Separator)
	switch {
	case i < 0:
		return ""
	case i == 0:
		return Separator
	default:
		return path[:i]
	}
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	return name != "" && !strings.Contains(name, Separator)
}
