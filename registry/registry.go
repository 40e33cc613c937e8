// Package registry tracks live containers under stable references,
// assigning and recycling IDs and tearing down a container's ref-typed
// fields recursively when it is removed.
package registry

import (
	"fmt"
	"sync"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/option"
	"github.com/relsize/fieldtree/value"
)

// Registry owns the mapping from container.Reference to *container.Container.
// All operations are serialized by a single mutex; the container tree this
// module targets is expected to be small enough that registry contention
// is never the bottleneck.
type Registry struct {
	mu           sync.Mutex
	tracked      map[container.Reference]*container.Container
	parentOf     map[container.Reference]container.Reference
	freeIDs      []uint64
	nextID       uint64
	refFields    map[container.Reference][]string // field names known to carry references, for teardown
	onUnregister func(container.Reference)
}

// Option configures a Registry at construction time.
type Option = option.Option[*Registry]

// WithStartID makes the registry hand out its first fresh (non-recycled)
// ID as start instead of 1. Useful when a caller wants tracked references
// to never collide with IDs a different registry has already assigned,
// e.g. when merging two trees.
func WithStartID(start uint64) Option {
	return option.NoError(func(r *Registry) { r.nextID = start })
}

// WithUnregisterHook registers fn to run once per container, right after
// it is disposed and removed from tracking, for every id unregisterLocked
// tears down (the target of Unregister plus every descendant it recurses
// into). A package that keys state off container.Reference but can't
// import registry without a cycle (e.g. events.Bus) wires its cleanup in
// through this hook instead of registry depending on it directly.
func WithUnregisterHook(fn func(container.Reference)) Option {
	return option.NoError(func(r *Registry) { r.onUnregister = fn })
}

// New creates an empty Registry, applying any options in order.
func New(opts ...Option) *Registry {
	r := &Registry{
		tracked:   make(map[container.Reference]*container.Container),
		parentOf:  make(map[container.Reference]container.Reference),
		refFields: make(map[container.Reference][]string),
		nextID:    1,
	}
	_ = option.Apply(r, opts...)

	return r
}

// allocID returns a previously recycled ID if one is available, otherwise
// the next unused ID.
func (r *Registry) allocID() container.Reference {
	if n := len(r.freeIDs); n > 0 {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]

		return container.Reference(id)
	}
	id := r.nextID
	r.nextID++

	return container.Reference(id)
}

// Register assigns c a fresh or recycled reference, tracks it under
// parent (container.Null for a root), and returns the assigned reference.
// refFieldNames lists c's field names that hold container references (Ref
// or array-of-Ref), so Unregister can recurse into them later without
// having to re-derive it from the field directory's type tags alone.
func (r *Registry) Register(c *container.Container, parent container.Reference, refFieldNames []string) (container.Reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.State() == container.StateTracked {
		return 0, fmt.Errorf("registry: %w", errs.ErrAlreadyTracked)
	}

	id := r.allocID()
	c.BindReference(id)
	r.tracked[id] = c
	r.refFields[id] = refFieldNames
	if !parent.IsNull() {
		r.parentOf[id] = parent
	}

	return id, nil
}

// Get returns the tracked container for id, or errs.ErrUnknownReference.
func (r *Registry) Get(id container.Reference) (*container.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.tracked[id]
	if !ok {
		return nil, fmt.Errorf("registry: reference %d: %w", id, errs.ErrUnknownReference)
	}

	return c, nil
}

// Parent returns the parent reference of id, or container.Null if id has
// none (a root, or unknown).
func (r *Registry) Parent(id container.Reference) container.Reference {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.parentOf[id]
}

// Unregister tears down id and every descendant reachable through its
// recorded ref-typed fields, recycling their IDs and disposing their
// containers. Unregistering an unknown reference is a no-op, matching the idempotent-dispose
// behavior container.Container itself provides.
func (r *Registry) Unregister(id container.Reference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unregisterLocked(id)
}

func (r *Registry) unregisterLocked(id container.Reference) error {
	c, ok := r.tracked[id]
	if !ok {
		return nil
	}

	for _, name := range r.refFields[id] {
		for _, child := range childRefs(c, name) {
			if child.IsNull() || child.IsWild() {
				continue
			}
			if err := r.unregisterLocked(child); err != nil {
				return err
			}
		}
	}

	c.Dispose()
	delete(r.tracked, id)
	delete(r.refFields, id)
	delete(r.parentOf, id)
	r.freeIDs = append(r.freeIDs, uint64(id))
	if r.onUnregister != nil {
		r.onUnregister(id)
	}

	return nil
}

// childRefs reads field name off c as either a single Ref or a Ref array,
// returning whatever references it holds. Decode failures yield no
// children rather than an error, since teardown must still make forward
// progress on a partially malformed container.
func childRefs(c *container.Container, name string) []container.Reference {
	i := c.IndexOf(name)
	if i < 0 {
		return nil
	}
	fh, err := c.GetFieldHeader(i)
	if err != nil || fh.Type.Tag() != value.Ref {
		return nil
	}

	if fh.Type.IsArray() {
		refs, err := container.GetRefSpan(c, name)
		if err != nil {
			return nil
		}

		return refs
	}

	ref, err := container.GetRef(c, name)
	if err != nil {
		return nil
	}

	return []container.Reference{ref}
}

// ChildFieldName returns the name of the ref-typed field on parent whose
// value is child, so a caller walking up the tree (the event bus's
// upward propagation) can learn what parent called child by. Reports
// false if parent is untracked or none of its recorded ref fields
// currently hold child.
func (r *Registry) ChildFieldName(parent, child container.Reference) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.tracked[parent]
	if !ok {
		return "", false
	}

	for _, name := range r.refFields[parent] {
		for _, ref := range childRefs(c, name) {
			if ref == child {
				return name, true
			}
		}
	}

	return "", false
}

// SetUnregisterHook sets or replaces the unregister hook after
// construction (see WithUnregisterHook). Passing nil disables it.
func (r *Registry) SetUnregisterHook(fn func(container.Reference)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.onUnregister = fn
}

// RefFieldNames returns the field names registered as carrying container
// references for id, as supplied to Register. Used by the serialize
// package to walk a tree without having to re-scan every field's type tag.
func (r *Registry) RefFieldNames(id container.Reference) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.refFields[id]
}

// Count returns the number of currently tracked containers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tracked)
}
