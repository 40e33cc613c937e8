package layout

import (
	"github.com/relsize/fieldtree/endian"
	"github.com/relsize/fieldtree/errs"
)

// ContainerHeader is the fixed-size header at the start of every container
// image.
type ContainerHeader struct {
	// Length is the total image size in bytes.
	Length uint32 // byte offset 0-3
	// Version is the container's schema version, bumped on field
	// add/remove/resize.
	Version uint32 // byte offset 4-7
	// FieldCount is the number of FieldHeader entries that follow.
	FieldCount uint32 // byte offset 8-11
	// DataOffset is the absolute byte offset of the start of the data
	// region.
	DataOffset uint32 // byte offset 12-15
	// ContainerNameLength is the byte length of the container's UTF-16
	// name, 0 allowed.
	ContainerNameLength uint16 // byte offset 16-17
	// reserved occupies byte offset 18-23 and must be zero on disk.
}

var engine = endian.GetLittleEndianEngine()

// Bytes serializes the header into a new ContainerHeaderSize-byte slice.
func (h *ContainerHeader) Bytes() []byte {
	b := make([]byte, ContainerHeaderSize)
	engine.PutUint32(b[0:4], h.Length)
	engine.PutUint32(b[4:8], h.Version)
	engine.PutUint32(b[8:12], h.FieldCount)
	engine.PutUint32(b[12:16], h.DataOffset)
	engine.PutUint16(b[16:18], h.ContainerNameLength)

	return b
}

// WriteTo encodes the header directly into dst[0:ContainerHeaderSize].
// dst must be at least ContainerHeaderSize bytes.
func (h *ContainerHeader) WriteTo(dst []byte) {
	engine.PutUint32(dst[0:4], h.Length)
	engine.PutUint32(dst[4:8], h.Version)
	engine.PutUint32(dst[8:12], h.FieldCount)
	engine.PutUint32(dst[12:16], h.DataOffset)
	engine.PutUint16(dst[16:18], h.ContainerNameLength)
	dst[18], dst[19], dst[20], dst[21], dst[22], dst[23] = 0, 0, 0, 0, 0, 0
}

// ParseContainerHeader parses a ContainerHeader from the leading
// ContainerHeaderSize bytes of data.
func ParseContainerHeader(data []byte) (ContainerHeader, error) {
	if len(data) < ContainerHeaderSize {
		return ContainerHeader{}, errs.ErrInvalidHeaderSize
	}

	return ContainerHeader{
		Length:              engine.Uint32(data[0:4]),
		Version:             engine.Uint32(data[4:8]),
		FieldCount:          engine.Uint32(data[8:12]),
		DataOffset:          engine.Uint32(data[12:16]),
		ContainerNameLength: engine.Uint16(data[16:18]),
	}, nil
}
