package container

import (
	"unsafe"

	"github.com/relsize/fieldtree/layout"
)

// fieldEdit describes a single field's new payload and element shape for
// rebuildDataRegion. A field left untouched copies its current bytes
// straight through.
type fieldEdit struct {
	data     []byte
	elemSize uint16
	typ      layout.FieldType
	touched  bool
}

// rebuildField re-lays-out field index i with a new type, element size,
// and payload, leaving every other field's bytes untouched. The header
// region, field directory size, and names blob are unaffected; only the
// data blob is reassembled, since every field's DataOffset is relative to
// the same fixed data start.
func (c *Container) rebuildField(i int, typ layout.FieldType, elemSize int, data []byte) error {
	edits := make(map[int]fieldEdit, 1)
	edits[i] = fieldEdit{data: data, elemSize: uint16(elemSize), typ: typ, touched: true}

	return c.rebuildDataRegion(edits)
}

// rebuildDataRegion reassembles the container's data blob from the
// current field directory plus the supplied edits, bumping SchemaVersion
// since this changes the byte layout.
func (c *Container) rebuildDataRegion(edits map[int]fieldEdit) error {
	h, err := c.header()
	if err != nil {
		return err
	}

	count := int(h.FieldCount)
	headers := make([]layout.FieldHeader, count)
	payloads := make([][]byte, count)

	for i := 0; i < count; i++ {
		fh, err := c.fieldHeader(i)
		if err != nil {
			return err
		}
		if edit, ok := edits[i]; ok {
			fh.Type = edit.typ
			fh.ElemSize = edit.elemSize
			fh.Length = uint32(len(edit.data))
			payloads[i] = edit.data
		} else {
			payloads[i] = append([]byte(nil), c.buf.B[fh.DataOffset:fh.DataOffset+fh.Length]...)
		}
		headers[i] = fh
	}

	// namesStart..dataStart holds the container's own name followed by
	// every field's name, back to back; all of it must survive the
	// rebuild untouched, not just the container name prefix, since every
	// FieldHeader.NameOffset still points into this same range afterward.
	namesStart := layout.ContainerHeaderSize + count*layout.FieldHeaderSize
	dataStart := int(h.DataOffset)
	names := append([]byte(nil), c.buf.B[namesStart:dataStart]...)

	total := dataStart
	for _, p := range payloads {
		total += len(p)
	}

	newBuf := c.bufPool.Rent(total, true)
	h.Length = uint32(total)
	h.Version++
	h.WriteTo(newBuf.B[0:layout.ContainerHeaderSize])

	offset := dataStart
	for i, fh := range headers {
		fh.DataOffset = uint32(offset)
		fh.WriteTo(newBuf.B[fieldHeaderOffset(i) : fieldHeaderOffset(i)+layout.FieldHeaderSize])
		copy(newBuf.B[offset:offset+len(payloads[i])], payloads[i])
		offset += len(payloads[i])
	}
	copy(newBuf.B[namesStart:dataStart], names)

	c.bufPool.Return(c.buf)
	c.buf = newBuf

	return nil
}

func uintptrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&b[0]))
}
