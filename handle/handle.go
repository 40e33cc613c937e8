// Package handle implements cached field handles and path-addressed
// nested navigation over a container tree.
package handle

import (
	"fmt"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/layout"
)

// FieldHandle caches a field's directory index and the schema version it
// was resolved under, so repeated access skips the name lookup as long as
// the container's layout hasn't changed. A schema version mismatch
// triggers one re-resolution by name; the handle is not invalidated
// beyond that.
type FieldHandle struct {
	c             *container.Container
	name          string
	index         int
	schemaVersion uint32
}

// NewFieldHandle resolves name against c and caches the result.
func NewFieldHandle(c *container.Container, name string) (*FieldHandle, error) {
	i, ok := c.TryIndexOf(name)
	if !ok {
		return nil, fmt.Errorf("handle: field %q: %w", name, errs.ErrFieldMissing)
	}

	return &FieldHandle{c: c, name: name, index: i, schemaVersion: c.SchemaVersion()}, nil
}

// Index returns the field's current directory index, re-resolving by
// name first if the container's schema has changed since this handle was
// built or last re-resolved.
func (h *FieldHandle) Index() (int, error) {
	if h.c.SchemaVersion() == h.schemaVersion {
		return h.index, nil
	}

	i, ok := h.c.TryIndexOf(h.name)
	if !ok {
		return 0, fmt.Errorf("handle: field %q: %w", h.name, errs.ErrFieldMissing)
	}
	h.index = i
	h.schemaVersion = h.c.SchemaVersion()

	return h.index, nil
}

// Container returns the container this handle was built against.
func (h *FieldHandle) Container() *container.Container { return h.c }

// Name returns the field name this handle tracks.
func (h *FieldHandle) Name() string { return h.name }

// Header returns the field's current header, re-resolving the index
// first if needed.
func (h *FieldHandle) Header() (layout.FieldHeader, error) {
	i, err := h.Index()
	if err != nil {
		return layout.FieldHeader{}, err
	}

	return h.c.GetFieldHeader(i)
}
