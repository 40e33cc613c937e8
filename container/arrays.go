package container

import (
	"fmt"

	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/layout"
	"github.com/relsize/fieldtree/value"
)

// ReadArray returns a copy of field name's array elements as Ts. name must
// resolve to an array field whose ElemSize matches Size(TypeOf[T]()).
func ReadArray[T value.Scalar](c *Container, name string) ([]T, error) {
	if err := c.checkAlive(); err != nil {
		return nil, err
	}
	i := c.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("container: field %q: %w", name, errs.ErrFieldMissing)
	}
	fh, err := c.fieldHeader(i)
	if err != nil {
		return nil, err
	}

	want := value.TypeOf[T]()
	elemSize := value.Size(want)
	if !fh.Type.IsArray() || int(fh.ElemSize) != elemSize {
		return nil, fmt.Errorf("container: field %q: %w", name, errs.ErrSizeMismatch)
	}

	n := int(fh.Length) / elemSize
	out := make([]T, n)
	data := c.buf.B[fh.DataOffset : fh.DataOffset+fh.Length]
	for k := 0; k < n; k++ {
		out[k] = value.DecodeScalar[T](data[k*elemSize : (k+1)*elemSize])
	}

	return out, nil
}

// WriteArray stores vs into field name. When the field is already an
// array of the same element size and vs has the same element count, the
// bytes are overwritten in place; otherwise, if allowRescheme is true, the
// field is re-laid-out.
func WriteArray[T value.Scalar](c *Container, name string, vs []T, allowRescheme bool) error {
	return writeArrayTagged(c, name, vs, value.TypeOf[T](), allowRescheme)
}

// writeArrayTagged is WriteArray's implementation, parameterized on the
// FieldType tag to stamp instead of always deriving it from T (see
// writeTagged; SetRefSpan passes value.Ref explicitly for the same reason).
func writeArrayTagged[T value.Scalar](c *Container, name string, vs []T, tag value.Type, allowRescheme bool) error {
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

	elemSize := value.Size(tag)
	encoded := make([]byte, 0, elemSize*len(vs))
	for _, v := range vs {
		encoded = append(encoded, value.EncodeScalar(v)...)
	}

	sameShape := fh.Type.IsArray() && int(fh.ElemSize) == elemSize && int(fh.Length) == len(encoded)
	if sameShape {
		copy(c.buf.B[fh.DataOffset:fh.DataOffset+fh.Length], encoded)

		return nil
	}

	if !allowRescheme {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrSizeMismatch)
	}

	return c.rebuildField(i, layout.NewFieldType(tag, true), elemSize, encoded)
}

// MakeArray forces field name to array shape with the given element type
// tag (its element size is value.Size(tag)) and byte payload, regardless
// of its current type. Used by the builder
// and by rescheme-on-write paths that need full control over the
// resulting FieldType.
func (c *Container) MakeArray(name string, tag value.Type, data []byte) error {
	if err := c.checkAlive(); err != nil {
		return err
	}
	i := c.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("container: field %q: %w", name, errs.ErrFieldMissing)
	}

	return c.rebuildField(i, layout.NewFieldType(tag, true), value.Size(tag), data)
}

// ChangeFieldType converts field name's stored bytes from its current
// primitive tag to newTag using value.Convert/value.ConvertArray, then
// rebuilds its data region to match the new element size.
func (c *Container) ChangeFieldType(name string, newTag value.Type) error {
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

	oldTag := fh.Type.Tag()
	newElemSize := value.Size(newTag)
	src := c.buf.B[fh.DataOffset : fh.DataOffset+fh.Length]

	var dst []byte
	if fh.Type.IsArray() {
		n := int(fh.Length) / int(fh.ElemSize)
		dst = make([]byte, n*newElemSize)
		value.ConvertArray(dst, src, oldTag, newTag)
	} else {
		dst = make([]byte, newElemSize)
		value.Convert(dst, src, oldTag, newTag, true)
	}

	return c.rebuildField(i, layout.NewFieldType(newTag, fh.Type.IsArray()), newElemSize, dst)
}
