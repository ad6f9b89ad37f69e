package logtidy

import (
	"fmt"
	"path"
)

// NameSet is the set of entry names already taken in an archive or bucket.
type NameSet map[string]struct{}

// NewNameSet builds a NameSet from a list of names.
func NewNameSet(names []string) NameSet {
	set := make(NameSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether name is taken.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add marks name as taken.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// ResolveName returns the name an entry should be stored under so that it
// does not collide with anything in taken.
//
// A free name is returned unchanged. Otherwise the first free name of the
// form "<n>-<name>" is used, counting n up from 1. For slash-separated names
// the counter prefixes the last element ("sub/app.log" -> "sub/1-app.log").
// The smallest free counter is always chosen, so re-runs against an archive
// holding app.log and 1-app.log produce 2-app.log.
func ResolveName(taken NameSet, name string) string {
	if !taken.Has(name) {
		return name
	}

	dir, base := path.Split(name)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d-%s", dir, n, base)
		if !taken.Has(candidate) {
			return candidate
		}
	}
}
