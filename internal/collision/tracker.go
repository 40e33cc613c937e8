// Package collision tracks NameHash collisions among a container's field
// names. Field resolution itself never consults this tracker: IndexOf
// verifies full name bytes after a hash match, which alone is correct
// regardless of collisions. This tracker instead gives tests and
// diagnostics a cheap way to report how many distinct NameHash buckets are
// live in a field directory.
package collision

import "github.com/relsize/fieldtree/errs"

// Tracker maps NameHash -> name for every field currently tracked, and
// records whether two different field names have ever shared a NameHash.
type Tracker struct {
	names     map[uint32]string
	nameList  []string
	collision bool
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{names: make(map[uint32]string)}
}

// Track records a field name under its hash. It returns
// errs.ErrDuplicateFieldName if the exact same name was already tracked,
// and otherwise flags (without erroring) a collision if a different name
// shares the hash: collisions are resolved by full-name comparison, not
// treated as fatal.
func (t *Tracker) Track(name string, nameHash uint32) error {
	if existing, ok := t.names[nameHash]; ok {
		if existing == name {
			return errs.ErrDuplicateFieldName
		}
		t.collision = true
	}
	t.names[nameHash] = name
	t.nameList = append(t.nameList, name)

	return nil
}

// HasCollision reports whether any two distinct names tracked so far share
// a NameHash.
func (t *Tracker) HasCollision() bool { return t.collision }

// Count returns the number of distinct NameHash buckets currently tracked.
func (t *Tracker) Count() int { return len(t.names) }

// Reset clears all tracked state, preserving the underlying map's capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}
	t.nameList = t.nameList[:0]
	t.collision = false
}
