// Package builder assembles a new container image field by field and
// produces a container.Container from the staged result. It mirrors the
// packed-header layout the container package parses: a fixed
// ContainerHeader, a FieldHeader per field, the container's own name,
// every field's name, and finally the data payloads, all computed in one
// deterministic pass.
package builder

import (
	"fmt"
	"sort"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/hash"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/layout"
	"github.com/relsize/fieldtree/value"
)

type stagedField struct {
	name     string
	typ      layout.FieldType
	elemSize uint16
	data     []byte
}

// ObjectBuilder stages a container's fields before laying them out into a
// single packed byte image. Fields are staged in any order; Build sorts
// them by name so the resulting layout is deterministic regardless of
// staging order.
type ObjectBuilder struct {
	containerName string
	fields        map[string]stagedField
	pool          *pool.Pool
}

// New creates an empty ObjectBuilder. If p is nil, the package default
// pool is used to rent the eventual container image.
func New(p *pool.Pool) *ObjectBuilder {
	if p == nil {
		p = pool.Default()
	}

	return &ObjectBuilder{fields: make(map[string]stagedField), pool: p}
}

// SetContainerName sets the name stored in the container's own header.
func (b *ObjectBuilder) SetContainerName(name string) *ObjectBuilder {
	b.containerName = name

	return b
}

// SetScalar stages name as a single scalar field of type T, replacing any
// previously staged field under the same name.
func SetScalar[T value.Scalar](b *ObjectBuilder, name string, v T) *ObjectBuilder {
	tag := value.TypeOf[T]()
	b.fields[name] = stagedField{
		name:     name,
		typ:      layout.NewFieldType(tag, false),
		elemSize: uint16(value.Size(tag)),
		data:     value.EncodeScalar(v),
	}

	return b
}

// SetArray stages name as an array field of element type T.
func SetArray[T value.Scalar](b *ObjectBuilder, name string, vs []T) *ObjectBuilder {
	tag := value.TypeOf[T]()
	elemSize := value.Size(tag)
	data := make([]byte, 0, elemSize*len(vs))
	for _, v := range vs {
		data = append(data, value.EncodeScalar(v)...)
	}
	b.fields[name] = stagedField{
		name:     name,
		typ:      layout.NewFieldType(tag, true),
		elemSize: uint16(elemSize),
		data:     data,
	}

	return b
}

// SetRef stages name as a single container.Reference field.
func (b *ObjectBuilder) SetRef(name string, ref container.Reference) *ObjectBuilder {
	SetScalar(b, name, uint64(ref))
	fh := b.fields[name]
	fh.typ = layout.NewFieldType(value.Ref, false)
	b.fields[name] = fh

	return b
}

// SetRefArray stages name as an array of container.References.
func (b *ObjectBuilder) SetRefArray(name string, refs []container.Reference) *ObjectBuilder {
	raw := make([]uint64, len(refs))
	for i, r := range refs {
		raw[i] = uint64(r)
	}
	SetArray(b, name, raw)
	fh := b.fields[name]
	fh.typ = layout.NewFieldType(value.Ref, true)
	b.fields[name] = fh

	return b
}

// SetBlob stages name as a Blob array field whose element size is given
// explicitly, since Blob carries no implied size.
func (b *ObjectBuilder) SetBlob(name string, elemSize int, data []byte) *ObjectBuilder {
	b.fields[name] = stagedField{
		name:     name,
		typ:      layout.NewFieldType(value.Blob, true),
		elemSize: uint16(elemSize),
		data:     append([]byte(nil), data...),
	}

	return b
}

// SetRaw stages name with a caller-chosen FieldType, element size, and raw
// payload, the escape hatch used when higher-level helpers don't fit.
func (b *ObjectBuilder) SetRaw(name string, typ layout.FieldType, elemSize int, data []byte) *ObjectBuilder {
	b.fields[name] = stagedField{
		name:     name,
		typ:      typ,
		elemSize: uint16(elemSize),
		data:     append([]byte(nil), data...),
	}

	return b
}

// Remove un-stages a field.
func (b *ObjectBuilder) Remove(name string) *ObjectBuilder {
	delete(b.fields, name)

	return b
}

// Clear un-stages every field.
func (b *ObjectBuilder) Clear() *ObjectBuilder {
	b.fields = make(map[string]stagedField)

	return b
}

// Build lays out every staged field into one packed image and wraps it as
// a wild container.Container. It fails with errs.ErrInvalidType if a
// staged field has an unrecognized FieldType or is a Blob with element
// size zero.
func (b *ObjectBuilder) Build() (*container.Container, error) {
	names := make([]string, 0, len(b.fields))
	for n := range b.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f := b.fields[n]
		if !f.typ.Valid() || (f.typ.Tag() == value.Blob && f.elemSize == 0) {
			return nil, fmt.Errorf("builder: field %q: %w", n, errs.ErrInvalidType)
		}
	}

	containerNameBytes := hash.UTF16Bytes(b.containerName)
	fieldCount := len(names)
	headersEnd := layout.ContainerHeaderSize + fieldCount*layout.FieldHeaderSize
	namesStart := headersEnd + len(containerNameBytes)

	fieldNameBytes := make([][]byte, fieldCount)
	namesTotal := 0
	for i, n := range names {
		fb := hash.UTF16Bytes(n)
		fieldNameBytes[i] = fb
		namesTotal += len(fb)
	}
	dataStart := namesStart + namesTotal

	dataTotal := 0
	for _, n := range names {
		dataTotal += len(b.fields[n].data)
	}
	total := dataStart + dataTotal

	buf := b.pool.Rent(total, true)

	h := layout.ContainerHeader{
		Length:              uint32(total),
		Version:             0,
		FieldCount:          uint32(fieldCount),
		DataOffset:          uint32(dataStart),
		ContainerNameLength: uint16(len(containerNameBytes)),
	}
	h.WriteTo(buf.B[0:layout.ContainerHeaderSize])
	copy(buf.B[headersEnd:namesStart], containerNameBytes)

	nameOffset := namesStart
	dataOffset := dataStart
	for i, n := range names {
		f := b.fields[n]
		copy(buf.B[nameOffset:nameOffset+len(fieldNameBytes[i])], fieldNameBytes[i])

		fh := layout.FieldHeader{
			NameHash:   hash.NameHash32(n),
			NameOffset: uint32(nameOffset),
			NameLength: uint16(len(fieldNameBytes[i]) / 2),
			Type:       f.typ,
			DataOffset: uint32(dataOffset),
			ElemSize:   f.elemSize,
			Length:     uint32(len(f.data)),
		}
		off := layout.ContainerHeaderSize + i*layout.FieldHeaderSize
		fh.WriteTo(buf.B[off : off+layout.FieldHeaderSize])

		copy(buf.B[dataOffset:dataOffset+len(f.data)], f.data)

		nameOffset += len(fieldNameBytes[i])
		dataOffset += len(f.data)
	}

	return container.Adopt(buf, b.pool)
}
