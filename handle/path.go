package handle

import (
	"fmt"
	"strings"

	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/registry"
	"github.com/relsize/fieldtree/value"
)

// StorageObject is a navigable view onto one tracked container within a
// registry, offering dot-separated path resolution into nested child
// containers.
type StorageObject struct {
	reg *registry.Registry
	ref container.Reference
}

// NewStorageObject wraps ref as a StorageObject backed by reg.
func NewStorageObject(reg *registry.Registry, ref container.Reference) *StorageObject {
	return &StorageObject{reg: reg, ref: ref}
}

// Reference returns the wrapped container's reference.
func (o *StorageObject) Reference() container.Reference { return o.ref }

// Container resolves and returns the underlying container.
func (o *StorageObject) Container() (*container.Container, error) {
	return o.reg.Get(o.ref)
}

// Member resolves a single path segment (no dots) to a StorageMember
// within this object.
func (o *StorageObject) Member(name string) *StorageMember {
	return &StorageMember{object: o, name: name}
}

// Path resolves a dot-separated path, descending through nested Ref
// fields for every segment but the last, and returning a StorageMember
// for the final segment.
func (o *StorageObject) Path(path string) (*StorageMember, error) {
	segments := strings.Split(path, ".")
	cur := o
	for _, seg := range segments[:len(segments)-1] {
		child, err := cur.descend(seg)
		if err != nil {
			return nil, err
		}
		cur = child
	}

	return cur.Member(segments[len(segments)-1]), nil
}

// OrNew behaves like Path, but where an intermediate segment does not yet
// point at a child container it auto-creates an empty one and wires a Ref
// field to it, instead of failing. The segment must already name a field
// on its parent (a reserved Ref slot holding Null, or any other field,
// which is reschemed into a Ref); a segment with no field of that name
// fails with errs.ErrFieldMissing, since no field is inserted.
func (o *StorageObject) OrNew(path string) (*StorageMember, error) {
	segments := strings.Split(path, ".")
	cur := o
	for _, seg := range segments[:len(segments)-1] {
		child, err := cur.descendOrCreate(seg)
		if err != nil {
			return nil, err
		}
		cur = child
	}

	return cur.Member(segments[len(segments)-1]), nil
}

func (o *StorageObject) descend(seg string) (*StorageObject, error) {
	c, err := o.Container()
	if err != nil {
		return nil, err
	}

	ref, err := container.GetRef(c, seg)
	if err != nil {
		return nil, fmt.Errorf("handle: path segment %q: %w", seg, errs.ErrFieldMissing)
	}

	return NewStorageObject(o.reg, ref), nil
}

func (o *StorageObject) descendOrCreate(seg string) (*StorageObject, error) {
	c, err := o.Container()
	if err != nil {
		return nil, err
	}

	if i, ok := c.TryIndexOf(seg); ok {
		fh, err := c.GetFieldHeader(i)
		if err == nil && fh.Type.Tag() == value.Ref && !fh.Type.IsArray() {
			ref, err := container.GetRef(c, seg)
			if err != nil {
				return nil, err
			}
			if !ref.IsNull() {
				return NewStorageObject(o.reg, ref), nil
			}
		}
	}

	child, err := builder.New(nil).SetContainerName(seg).Build()
	if err != nil {
		return nil, err
	}
	childRef, err := o.reg.Register(child, o.ref, nil)
	if err != nil {
		return nil, err
	}

	if err := wireChildRef(c, seg, childRef); err != nil {
		return nil, err
	}

	return NewStorageObject(o.reg, childRef), nil
}

// wireChildRef sets or creates a Ref-typed field named seg on c pointing
// at childRef. If c has no mutate-in-place helper for adding a brand new
// field, the caller is expected to have built c with room for it; this
// module addresses new-field insertion via the builder, so OrNew can only
// wire a ref into a slot already reserved with that name.
func wireChildRef(c *container.Container, seg string, childRef container.Reference) error {
	if c.IndexOf(seg) < 0 {
		return fmt.Errorf("handle: path segment %q has no reserved ref slot: %w", seg, errs.ErrFieldMissing)
	}

	return container.SetRef(c, seg, childRef, true)
}

// StorageMember addresses one named field within a StorageObject, the
// leaf node of path resolution.
type StorageMember struct {
	object *StorageObject
	name   string
}

// Name returns the member's field name.
func (m *StorageMember) Name() string { return m.name }

// Object returns the owning StorageObject.
func (m *StorageMember) Object() *StorageObject { return m.object }

// Handle resolves this member to a FieldHandle.
func (m *StorageMember) Handle() (*FieldHandle, error) {
	c, err := m.object.Container()
	if err != nil {
		return nil, err
	}

	return NewFieldHandle(c, m.name)
}
