// Package hash computes the stable name hashes used throughout the
// container image format for field resolution.
package hash

import (
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
)

// ID64 computes the full xxHash64 of a UTF-16-encoded name string, for
// callers that want all 64 bits. Field resolution uses NameHash32 instead.
func ID64(name string) uint64 {
	return xxhash.Sum64(UTF16Bytes(name))
}

// NameHash32 computes FieldHeader.NameHash: a hash of the name's UTF-16
// code units, ordinal and stable across runs. It folds the xxHash64 digest
// of the UTF-16 bytes down to 32 bits rather than truncating, so both
// halves of the 64-bit digest contribute to the stored hash.
func NameHash32(name string) uint32 {
	sum := xxhash.Sum64(UTF16Bytes(name))

	return uint32(sum) ^ uint32(sum>>32)
}

// UTF16Bytes encodes name as little-endian UTF-16 code units, matching the
// on-disk representation used for container and field names.
func UTF16Bytes(name string) []byte {
	units := utf16.Encode([]rune(name))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}

	return out
}
