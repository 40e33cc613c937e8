package container

import (
	"encoding/base64"
	"fmt"

	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/collision"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/value"
)

// GetRef reads field name as a single container.Reference, the link type
// used to nest one container inside another.
func GetRef(c *Container, name string) (Reference, error) {
	v, err := Read[uint64](c, name)

	return Reference(v), err
}

// SetRef stores a single container.Reference into field name, stamping
// its FieldType tag as Ref regardless of the uint64 Go type the reference
// is encoded through (Write would otherwise derive the tag from the
// written Go type and flip the field to UInt64 on every same-shape
// rewrite).
func SetRef(c *Container, name string, ref Reference, allowRescheme bool) error {
	return writeTagged(c, name, uint64(ref), value.Ref, allowRescheme)
}

// GetRefSpan returns a copy of field name's array of container.References.
func GetRefSpan(c *Container, name string) ([]Reference, error) {
	raw, err := ReadArray[uint64](c, name)
	if err != nil {
		return nil, err
	}
	out := make([]Reference, len(raw))
	for i, v := range raw {
		out[i] = Reference(v)
	}

	return out, nil
}

// SetRefSpan stores refs as an array field, stamping its FieldType tag as
// an array of Ref (see SetRef for why this can't go through WriteArray
// directly).
func SetRefSpan(c *Container, name string, refs []Reference, allowRescheme bool) error {
	raw := make([]uint64, len(refs))
	for i, r := range refs {
		raw[i] = uint64(r)
	}

	return writeArrayTagged(c, name, raw, value.Ref, allowRescheme)
}

// EncodeBase64 returns the container's raw image as a standard Base64
// string, a convenient text interchange form.
func (c *Container) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(c.buf.B)
}

// DecodeBase64 parses a Base64 string produced by EncodeBase64 back into a
// wild Container.
func DecodeBase64(s string, p *pool.Pool) (*Container, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("container: decode base64: %w", errs.ErrInvalidImage)
	}

	return FromBytes(data, p)
}

// Clone returns an independent copy of c with a fresh buffer and Wild
// state; the clone shares no memory with the original.
func (c *Container) Clone() (*Container, error) {
	if err := c.checkAlive(); err != nil {
		return nil, err
	}

	return FromBytes(c.buf.B, c.bufPool)
}

// NameHashStats reports whether any two distinct field names in this
// container share a 32-bit name hash, and how many fields are present.
// Diagnostic only: field resolution always verifies the full name bytes,
// so a collision here never causes a wrong read or write.
func (c *Container) NameHashStats() (collided bool, fieldCount int, err error) {
	h, err := c.header()
	if err != nil {
		return false, 0, err
	}
	tracker := collision.New()
	for i := 0; i < int(h.FieldCount); i++ {
		fh, err := c.fieldHeader(i)
		if err != nil {
			return false, 0, err
		}
		name := decodeUTF16(c.nameBytes(fh))
		_ = tracker.Track(name, fh.NameHash)
	}

	return tracker.HasCollision(), int(h.FieldCount), nil
}
