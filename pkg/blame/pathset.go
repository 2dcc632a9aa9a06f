package blame

import "sort"

// pathSet is the ordered set of paths a tracked file has been known
// by, per spec §4.3 (C3): used both to filter diff requests and to
// recognize a delta as concerning the tracked file.
type pathSet struct {
	paths  []string
	target string // the path blame was originally requested for
}

func newPathSet(initial string) *pathSet {
	return &pathSet{paths: []string{initial}, target: initial}
}

// has reports whether p is tracked.
func (s *pathSet) has(p string) bool {
	i := sort.SearchStrings(s.paths, p)
	return i < len(s.paths) && s.paths[i] == p
}

// add inserts p if not already present. Idempotent.
func (s *pathSet) add(p string) {
	i := sort.SearchStrings(s.paths, p)
	if i < len(s.paths) && s.paths[i] == p {
		return
	}
	s.paths = append(s.paths, "")
	copy(s.paths[i+1:], s.paths[i:])
	s.paths[i] = p
}

// asMap renders the set as a membership map, the shape difftree.Options
// expects for Pathspec.
func (s *pathSet) asMap() map[string]bool {
	m := make(map[string]bool, len(s.paths))
	for _, p := range s.paths {
		m[p] = true
	}
	return m
}
