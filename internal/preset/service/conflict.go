package service

import (
	"fmt"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// conflictSet indexes the names and content hashes already taken within
// one generator type, including presets accepted earlier in the same
// import batch.
type conflictSet struct {
	names  map[string]bool
	byHash map[string]string // content hash -> holder's name
}

func newConflictSet(existing []domain.UserPreset) *conflictSet {
	set := &conflictSet{
		names:  make(map[string]bool, len(existing)),
		byHash: make(map[string]string, len(existing)),
	}
	for _, preset := range existing {
		set.add(preset)
	}
	return set
}

func (c *conflictSet) add(preset domain.UserPreset) {
	c.names[preset.Name] = true
	if preset.ContentHash != "" {
		c.byHash[preset.ContentHash] = preset.Name
	}
}

// resolveImport applies the import collision policy to one incoming
// preset. A content collision discards it, naming both sides in the
// returned reason; a name collision with differing content renames it
// with the smallest " (N)" suffix that is free, hash unchanged. Content
// is checked before name.
func resolveImport(incoming domain.UserPreset, set *conflictSet) (domain.UserPreset, string, bool) {
	if holder, ok := set.byHash[incoming.ContentHash]; ok {
		reason := fmt.Sprintf("%q duplicates the content of existing preset %q", incoming.Name, holder)
		return domain.UserPreset{}, reason, false
	}
	if set.names[incoming.Name] {
		incoming.Name = nextFreeName(incoming.Name, set.names)
	}
	return incoming, "", true
}

// nextFreeName appends " (N)" with the smallest N that makes the name
// unique within the generator type.
func nextFreeName(base string, taken map[string]bool) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
