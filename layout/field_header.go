package layout

import "github.com/relsize/fieldtree/errs"

// FieldHeader is the fixed-size directory entry for one field, repeated
// ContainerHeader.FieldCount times right after the container header.
type FieldHeader struct {
	// NameHash is a 32-bit hash of the field's UTF-16 name bytes.
	NameHash uint32 // byte offset 0-3
	// NameOffset is the absolute byte offset of the name inside the
	// container image's names blob.
	NameOffset uint32 // byte offset 4-7
	// NameLength is the name length in UTF-16 code units.
	NameLength uint16 // byte offset 8-9
	// Type is the packed primitive tag + isArray bit.
	Type FieldType // byte offset 10
	// reserved occupies byte offset 11 and must be zero on disk.
	// DataOffset is the absolute byte offset of this field's payload.
	DataOffset uint32 // byte offset 12-15
	// ElemSize is the byte size of one element (Blob carries its own;
	// every other type's ElemSize always equals value.Size(Type.Tag())).
	ElemSize uint16 // byte offset 16-17
	// Length is the total payload byte count.
	Length uint32 // byte offset 18-21
	// trailing reserved occupies byte offset 22-23.
}

// Bytes serializes the field header into a new FieldHeaderSize-byte slice.
func (h *FieldHeader) Bytes() []byte {
	b := make([]byte, FieldHeaderSize)
	h.WriteTo(b)

	return b
}

// WriteTo encodes the header directly into dst[0:FieldHeaderSize].
func (h *FieldHeader) WriteTo(dst []byte) {
	engine.PutUint32(dst[0:4], h.NameHash)
	engine.PutUint32(dst[4:8], h.NameOffset)
	engine.PutUint16(dst[8:10], h.NameLength)
	dst[10] = byte(h.Type)
	dst[11] = 0
	engine.PutUint32(dst[12:16], h.DataOffset)
	engine.PutUint16(dst[16:18], h.ElemSize)
	engine.PutUint32(dst[18:22], h.Length)
	dst[22], dst[23] = 0, 0
}

// ParseFieldHeader parses a FieldHeader from the leading FieldHeaderSize
// bytes of data.
func ParseFieldHeader(data []byte) (FieldHeader, error) {
	if len(data) < FieldHeaderSize {
		return FieldHeader{}, errs.ErrInvalidHeaderSize
	}

	return FieldHeader{
		NameHash:   engine.Uint32(data[0:4]),
		NameOffset: engine.Uint32(data[4:8]),
		NameLength: engine.Uint16(data[8:10]),
		Type:       FieldType(data[10]),
		DataOffset: engine.Uint32(data[12:16]),
		ElemSize:   engine.Uint16(data[16:18]),
		Length:     engine.Uint32(data[18:22]),
	}, nil
}
