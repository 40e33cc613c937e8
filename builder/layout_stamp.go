package builder

import (
	"fmt"
	"sort"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/hash"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/layout"
)

// stampedField is one field's fixed (schema-level) shape, captured once by
// StampLayout and replayed for every container Instantiate builds from it.
type stampedField struct {
	name     string
	nameHash uint32
	nameBuf  []byte
	typ      layout.FieldType
	elemSize uint16
}

// ContainerLayout is a reusable header-only stamp: the field name order,
// hashes, and types computed once from a template builder, and replayed
// cheaply for every container built from the same schema. Building many
// containers that share a schema is common for a flat grid of sibling
// objects, and recomputing name hashes and header offsets for each one is
// wasted work.
type ContainerLayout struct {
	containerName      string
	containerNameBytes []byte
	fields             []stampedField
	headersEnd         int
	namesStart         int
}

// StampLayout captures b's current field name set and per-field types
// (ignoring currently staged data) as a reusable ContainerLayout. Fields
// staged after this call don't retroactively affect the stamp.
func (b *ObjectBuilder) StampLayout() ContainerLayout {
	names := make([]string, 0, len(b.fields))
	for n := range b.fields {
		names = append(names, n)
	}
	sort.Strings(names)

	containerNameBytes := hash.UTF16Bytes(b.containerName)
	headersEnd := layout.ContainerHeaderSize + len(names)*layout.FieldHeaderSize
	namesStart := headersEnd + len(containerNameBytes)

	fields := make([]stampedField, len(names))
	for i, n := range names {
		sf := b.fields[n]
		fields[i] = stampedField{
			name:     n,
			nameHash: hash.NameHash32(n),
			nameBuf:  hash.UTF16Bytes(n),
			typ:      sf.typ,
			elemSize: sf.elemSize,
		}
	}

	return ContainerLayout{
		containerName:      b.containerName,
		containerNameBytes: containerNameBytes,
		fields:             fields,
		headersEnd:         headersEnd,
		namesStart:         namesStart,
	}
}

// FieldCount returns the number of fields captured by the layout.
func (l ContainerLayout) FieldCount() int { return len(l.fields) }

// Instantiate builds a new wild container from this layout, substituting
// payloads by field name. Every field named by the layout must have an
// entry in payloads; a field's element count is derived from the payload
// length and its stamped ElemSize, so array fields may carry a different
// length per instance while keeping the same type and name. If p is nil,
// the package default pool is used.
func (l ContainerLayout) Instantiate(p *pool.Pool, payloads map[string][]byte) (*container.Container, error) {
	if p == nil {
		p = pool.Default()
	}

	dataStart := l.namesStart
	for _, f := range l.fields {
		dataStart += len(f.nameBuf)
	}

	dataTotal := 0
	for _, f := range l.fields {
		data, ok := payloads[f.name]
		if !ok {
			return nil, fmt.Errorf("builder: layout field %q: %w", f.name, errs.ErrFieldMissing)
		}
		dataTotal += len(data)
	}
	total := dataStart + dataTotal

	buf := p.Rent(total, true)

	h := layout.ContainerHeader{
		Length:              uint32(total),
		Version:             0,
		FieldCount:          uint32(len(l.fields)),
		DataOffset:          uint32(dataStart),
		ContainerNameLength: uint16(len(l.containerNameBytes)),
	}
	h.WriteTo(buf.B[0:layout.ContainerHeaderSize])
	copy(buf.B[l.headersEnd:l.namesStart], l.containerNameBytes)

	nameOffset := l.namesStart
	dataOffset := dataStart
	for i, f := range l.fields {
		copy(buf.B[nameOffset:nameOffset+len(f.nameBuf)], f.nameBuf)

		data := payloads[f.name]
		fh := layout.FieldHeader{
			NameHash:   f.nameHash,
			NameOffset: uint32(nameOffset),
			NameLength: uint16(len(f.nameBuf) / 2),
			Type:       f.typ,
			DataOffset: uint32(dataOffset),
			ElemSize:   f.elemSize,
			Length:     uint32(len(data)),
		}
		off := layout.ContainerHeaderSize + i*layout.FieldHeaderSize
		fh.WriteTo(buf.B[off : off+layout.FieldHeaderSize])

		copy(buf.B[dataOffset:dataOffset+len(data)], data)

		nameOffset += len(f.nameBuf)
		dataOffset += len(data)
	}

	return container.Adopt(buf, p)
}
