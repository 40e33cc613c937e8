package container

import (
	"fmt"
	"unicode/utf16"

	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/layout"
)

// Container is a named, packed byte image with an embedded field
// directory. The byte buffer is the single source of
// truth for header, field directory, names, and payloads; every accessor
// parses or writes directly against it, so there is nothing to keep in
// sync separately.
type Container struct {
	id         Reference
	state      State
	generation uint32
	buf        *pool.ByteBuffer
	bufPool    *pool.Pool
}

// FromBytes wraps an existing, well-formed container image as a wild
// Container. The image is copied into a buffer rented from p (or the
// package default pool if p is nil).
func FromBytes(data []byte, p *pool.Pool) (*Container, error) {
	if p == nil {
		p = pool.Default()
	}

	if _, err := layout.ParseContainerHeader(data); err != nil {
		return nil, err
	}

	buf := p.Rent(len(data), false)
	copy(buf.B, data)

	return &Container{
		id:      Wild,
		state:   StateWild,
		buf:     buf,
		bufPool: p,
	}, nil
}

// Adopt wraps an already-rented buffer as a wild Container without
// copying, taking ownership of buf. Used by the builder package, which
// rents and fills a buffer itself and would otherwise pay for a redundant
// copy through FromBytes.
func Adopt(buf *pool.ByteBuffer, p *pool.Pool) (*Container, error) {
	if _, err := layout.ParseContainerHeader(buf.B); err != nil {
		return nil, err
	}

	return &Container{
		id:      Wild,
		state:   StateWild,
		buf:     buf,
		bufPool: p,
	}, nil
}

// Bytes returns the container's raw image bytes. The returned slice
// aliases the container's backing buffer; callers must not retain it
// across a layout-changing mutation.
func (c *Container) Bytes() []byte { return c.buf.B }

// ID returns the container's current reference. It is Wild until a
// registry tracks the container, and remains whatever it was at dispose
// time afterward (informational only; Disposed() is the authoritative
// liveness check).
func (c *Container) ID() Reference { return c.id }

// State returns the container's lifecycle state.
func (c *Container) State() State { return c.state }

// Generation returns the container's current generation counter. It
// advances by one every time the container is disposed and its buffer
// recycled.
func (c *Container) Generation() uint32 { return c.generation }

// SchemaVersion returns the container's schema version, advanced on every
// layout-changing mutation. It is
// mirrored in the on-disk ContainerHeader.Version field.
func (c *Container) SchemaVersion() uint32 {
	h, _ := c.header()

	return h.Version
}

// Disposed reports whether the container has been torn down.
func (c *Container) Disposed() bool { return c.state == StateDisposed }

// BindReference assigns the container's tracked ID and flips it to
// Tracked. Only a registry should call this; it is exported because
// container and registry are separate packages.
func (c *Container) BindReference(id Reference) {
	c.id = id
	c.state = StateTracked
}

// MarkWild resets a previously tracked container back to the Wild state
// without touching its bytes or generation. Used by a registry when it
// removes a container from its table but the caller intends to keep using
// the bytes (e.g. re-registration under a new ID).
func (c *Container) MarkWild() {
	c.id = Wild
	c.state = StateWild
}

// Dispose advances the generation, returns the backing buffer to its pool,
// and marks the container Disposed. Calling Dispose twice is a no-op: the
// registry's unregister path is idempotent, and so is
// this method.
func (c *Container) Dispose() {
	if c.state == StateDisposed {
		return
	}
	c.state = StateDisposed
	c.generation++
	if c.buf != nil {
		c.bufPool.Return(c.buf)
		c.buf = nil
	}
}

// checkAlive returns errs.ErrDisposed if the container has been disposed.
func (c *Container) checkAlive() error {
	if c.state == StateDisposed {
		return fmt.Errorf("container: %w", errs.ErrDisposed)
	}

	return nil
}

// header parses the fixed ContainerHeader from the start of the buffer.
func (c *Container) header() (layout.ContainerHeader, error) {
	return layout.ParseContainerHeader(c.buf.B)
}

// setHeader writes h back into the buffer's header region.
func (c *Container) setHeader(h layout.ContainerHeader) {
	h.WriteTo(c.buf.B[0:layout.ContainerHeaderSize])
}

func fieldHeaderOffset(i int) int {
	return layout.ContainerHeaderSize + i*layout.FieldHeaderSize
}

// fieldHeader parses the i'th FieldHeader. The caller is responsible for
// bounds-checking i against FieldCount (IndexOf and the public accessors
// below do this).
func (c *Container) fieldHeader(i int) (layout.FieldHeader, error) {
	off := fieldHeaderOffset(i)

	return layout.ParseFieldHeader(c.buf.B[off : off+layout.FieldHeaderSize])
}

func (c *Container) setFieldHeader(i int, fh layout.FieldHeader) {
	off := fieldHeaderOffset(i)
	fh.WriteTo(c.buf.B[off : off+layout.FieldHeaderSize])
}

// nameBytes returns the raw UTF-16 name bytes for fh, a direct slice into
// the container's names blob.
func (c *Container) nameBytes(fh layout.FieldHeader) []byte {
	start := fh.NameOffset
	end := start + uint32(fh.NameLength)*2

	return c.buf.B[start:end]
}

// FieldName decodes the i'th field's name as a Go string.
func (c *Container) FieldName(i int) (string, error) {
	if err := c.checkAlive(); err != nil {
		return "", err
	}
	fh, err := c.GetFieldHeader(i)
	if err != nil {
		return "", err
	}

	return decodeUTF16(c.nameBytes(fh)), nil
}

// Name decodes the container's own name, stored right after the field
// header array.
func (c *Container) Name() (string, error) {
	if err := c.checkAlive(); err != nil {
		return "", err
	}
	h, err := c.header()
	if err != nil {
		return "", err
	}
	start := layout.ContainerHeaderSize + int(h.FieldCount)*layout.FieldHeaderSize
	end := start + int(h.ContainerNameLength)

	return decodeUTF16(c.buf.B[start:end]), nil
}

// FieldCount returns the number of fields in the directory.
func (c *Container) FieldCount() (int, error) {
	if err := c.checkAlive(); err != nil {
		return 0, err
	}
	h, err := c.header()
	if err != nil {
		return 0, err
	}

	return int(h.FieldCount), nil
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}

	return string(utf16.Decode(units))
}
