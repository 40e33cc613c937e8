package layout

import "github.com/relsize/fieldtree/value"

// FieldType is the packed byte encoding a field's shape: bit 7 is the
// isArray flag, bits 6..2 carry the primitive value.Type tag, bits 1..0
// are reserved and must be zero.
type FieldType uint8

// NewFieldType packs a primitive tag and array flag into a FieldType.
func NewFieldType(tag value.Type, isArray bool) FieldType {
	var b uint8 = uint8(tag) << fieldTypeTagShift
	if isArray {
		b |= fieldTypeArrayMask
	}

	return FieldType(b)
}

// Tag extracts the primitive value.Type from the packed byte.
func (t FieldType) Tag() value.Type {
	return value.Type((uint8(t) & fieldTypeTagMask) >> fieldTypeTagShift)
}

// IsArray reports whether the isArray bit is set.
func (t FieldType) IsArray() bool {
	return uint8(t)&fieldTypeArrayMask != 0
}

// Valid reports whether the tag is a recognized value.Type and the
// reserved bits are zero. Every tag maps to exactly one element size
// except Blob, whose size is carried separately in the field header.
func (t FieldType) Valid() bool {
	if uint8(t)&^(fieldTypeArrayMask|fieldTypeTagMask) != 0 {
		return false
	}

	return value.Valid(t.Tag())
}
