package container

import (
	"bytes"
	"fmt"

	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/hash"
	"github.com/relsize/fieldtree/layout"
	"github.com/relsize/fieldtree/value"
)

// IndexOf resolves name to a field index, or -1 if no field matches: a
// hash match against FieldHeader.NameHash is followed by a full byte
// comparison of the stored name against the query, so a 32-bit hash
// collision never causes a false match.
func (c *Container) IndexOf(name string) int {
	i, _ := c.TryIndexOf(name)

	return i
}

// TryIndexOf is the non-raising form of IndexOf.
func (c *Container) TryIndexOf(name string) (int, bool) {
	if c.Disposed() {
		return -1, false
	}
	h, err := c.header()
	if err != nil {
		return -1, false
	}

	needleHash := hash.NameHash32(name)
	needle := hash.UTF16Bytes(name)

	for i := 0; i < int(h.FieldCount); i++ {
		fh, err := c.fieldHeader(i)
		if err != nil {
			continue
		}
		if fh.NameHash != needleHash {
			continue
		}
		if bytes.Equal(c.nameBytes(fh), needle) {
			return i, true
		}
	}

	return -1, false
}

// GetFieldHeader returns a copy of the i'th field's header.
func (c *Container) GetFieldHeader(i int) (layout.FieldHeader, error) {
	if err := c.checkAlive(); err != nil {
		return layout.FieldHeader{}, err
	}
	h, err := c.header()
	if err != nil {
		return layout.FieldHeader{}, err
	}
	if i < 0 || i >= int(h.FieldCount) {
		return layout.FieldHeader{}, fmt.Errorf("container: field index %d: %w", i, errs.ErrIndexOutOfRange)
	}

	return c.fieldHeader(i)
}

// GetFieldBytes returns a mutable slice over the i'th field's payload,
// aliasing the container's own buffer.
func (c *Container) GetFieldBytes(i int) ([]byte, error) {
	fh, err := c.GetFieldHeader(i)
	if err != nil {
		return nil, err
	}

	return c.buf.B[fh.DataOffset : fh.DataOffset+fh.Length], nil
}

// Read copies field name's element into a T. It raises errs.ErrFieldMissing
// if name does not resolve, or errs.ErrSizeMismatch if the field's element
// size does not match Size(TypeOf[T]()) or the field is an array.
func Read[T value.Scalar](c *Container, name string) (T, error) {
	var zero T
	if err := c.checkAlive(); err != nil {
		return zero, err
	}

	i := c.IndexOf(name)
	if i < 0 {
		return zero, fmt.Errorf("container: field %q: %w", name, errs.ErrFieldMissing)
	}
	fh, err := c.fieldHeader(i)
	if err != nil {
		return zero, err
	}

	want := value.TypeOf[T]()
	if fh.Type.IsArray() || int(fh.ElemSize) != value.Size(want) || int(fh.Length) != int(fh.ElemSize) {
		return zero, fmt.Errorf("container: field %q: %w", name, errs.ErrSizeMismatch)
	}

	return value.DecodeScalar[T](c.buf.B[fh.DataOffset : fh.DataOffset+fh.Length]), nil
}

// TryRead is the non-raising form of Read.
func TryRead[T value.Scalar](c *Container, name string) (T, bool) {
	v, err := Read[T](c, name)

	return v, err == nil
}

// Write stores v into field name. When the field's current element size
// already equals Size(TypeOf[T]()) and the field is a non-array scalar of
// that same byte width, the bytes are overwritten in place and the
// field's FieldType tag is updated to match T. Otherwise, if allowRescheme
// is true, the field is re-laid-out to the new size; if false,
// errs.ErrSizeMismatch is raised.
func Write[T value.Scalar](c *Container, name string, v T, allowRescheme bool) error {
	return writeTagged(c, name, v, value.TypeOf[T](), allowRescheme)
}

// writeTagged is Write's implementation, parameterized on the FieldType
// tag to stamp instead of always deriving it from T. Write passes
// value.TypeOf[T](); SetRef passes value.Ref explicitly so a ref field's
// tag survives a same-shape rewrite instead of being overwritten with
// whatever Go type the reference happens to be encoded as (uint64).
func writeTagged[T value.Scalar](c *Container, name string, v T, tag value.Type, allowRescheme bool) error {
	if err := c.checkAlive(); err != nil {
		return err
	}

	i := c.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrFieldMissing)
	}
	fh, err := c.fieldHeader(i)
	if err != nil {
		return err
	}

	newElemSize := value.Size(tag)
	encoded := value.EncodeScalar(v)

	sameShape := !fh.Type.IsArray() && int(fh.Length) == int(fh.ElemSize) && int(fh.ElemSize) == newElemSize
	if sameShape {
		data := c.buf.B[fh.DataOffset : fh.DataOffset+fh.Length]
		copy(data, encoded)
		fh.Type = layout.NewFieldType(tag, false)
		c.setFieldHeader(i, fh)

		return nil
	}

	if !allowRescheme {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrSizeMismatch)
	}

	return c.rebuildField(i, layout.NewFieldType(tag, false), newElemSize, encoded)
}

// WriteRaw overwrites field name's entire payload with data, which must be
// exactly the field's current Length; otherwise errs.ErrSizeMismatch.
func (c *Container) WriteRaw(name string, data []byte) error {
	if err := c.checkAlive(); err != nil {
		return err
	}
	i := c.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrFieldMissing)
	}
	fh, err := c.fieldHeader(i)
	if err != nil {
		return err
	}
	if len(data) != int(fh.Length) {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrSizeMismatch)
	}
	if c.overlapsOwnBuffer(data) {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrOverlappingBuffer)
	}

	copy(c.buf.B[fh.DataOffset:fh.DataOffset+fh.Length], data)

	return nil
}

// overlapsOwnBuffer reports whether data aliases any part of c's backing
// buffer.
func (c *Container) overlapsOwnBuffer(data []byte) bool {
	if len(data) == 0 || len(c.buf.B) == 0 {
		return false
	}
	bufStart := uintptrOf(c.buf.B)
	bufEnd := bufStart + uintptr(cap(c.buf.B))
	dataStart := uintptrOf(data)
	dataEnd := dataStart + uintptr(len(data))

	return dataStart < bufEnd && dataEnd > bufStart
}

// Clear zeroes every field's data region, preserving headers.
func (c *Container) Clear() error {
	if err := c.checkAlive(); err != nil {
		return err
	}
	h, err := c.header()
	if err != nil {
		return err
	}
	start := h.DataOffset
	for i := start; i < uint32(len(c.buf.B)); i++ {
		c.buf.B[i] = 0
	}

	return nil
}
