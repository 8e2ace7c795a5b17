package extract

import "path/filepath"

// scopeFilter decides whether a declaration's source location belongs
// to the partition being extracted (spec.md §4.1): declarations from
// transitively-included headers that are not in the partition's own
// traverse list are skipped, so a partition that includes <stdio.h>
// does not re-extract libc.
type scopeFilter struct {
	traverse map[string]bool
}

func newScopeFilter(traverseFiles []string) *scopeFilter {
	set := make(map[string]bool, len(traverseFiles))
	for _, f := range traverseFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		set[abs] = true
		set[filepath.Clean(f)] = true
	}
	return &scopeFilter{traverse: set}
}

// inScope reports whether file is one of the partition's traverse
// files. Front ends report absolute paths; a suffix match against the
// cleaned traverse entry handles front ends that instead report the
// path exactly as it was passed on the command line.
func (s *scopeFilter) inScope(file string) bool {
	if file == "" {
		return false
	}
	if s.traverse[file] {
		return true
	}
	abs, err := filepath.Abs(file)
	if err == nil && s.traverse[abs] {
		return true
	}
	clean := filepath.Clean(file)
	for t := range s.traverse {
		if t == clean {
			return true
		}
		if len(clean) >= len(t) && clean[len(clean)-len(t):] == t {
			return true
		}
	}
	return false
}
