// Package serialize flattens a tracked container tree into a single byte
// stream and rebuilds it under a fresh registry. The wire format is a
// sequence of frames, one per container, written in depth-first pre-order
// starting at the tree's root:
//
//	[id uint64 LE][image bytes]
//
// id is the container's reference at encode time; image is that
// container's exact Bytes(), whose own ContainerHeader.Length says how
// many bytes the frame occupies, so frames need no separate length
// prefix. On decode, every container gets a freshly assigned reference
// from the target registry (old references may collide with ones
// already live there), so every Ref and Ref-array field is rewritten in
// place to point at the new reference before the tree is handed back.
package serialize

import (
	"encoding/binary"
	"fmt"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/layout"
	"github.com/relsize/fieldtree/registry"
	"github.com/relsize/fieldtree/value"
)

const frameIDSize = 8

// Encode walks the tree rooted at root inside reg and returns its flat
// frame encoding. Non-tracked (Null or Wild) references in a Ref field
// are skipped rather than followed.
func Encode(reg *registry.Registry, root container.Reference) ([]byte, error) {
	var out []byte
	visited := make(map[container.Reference]bool)

	var walk func(ref container.Reference) error
	walk = func(ref container.Reference) error {
		if ref.IsNull() || ref.IsWild() {
			return nil
		}
		if visited[ref] {
			return fmt.Errorf("serialize: %w", errs.ErrCyclicReference)
		}
		visited[ref] = true

		c, err := reg.Get(ref)
		if err != nil {
			return err
		}

		var idBuf [frameIDSize]byte
		binary.LittleEndian.PutUint64(idBuf[:], uint64(ref))
		out = append(out, idBuf[:]...)
		out = append(out, c.Bytes()...)

		for _, name := range reg.RefFieldNames(ref) {
			children, err := childReferences(c, name)
			if err != nil {
				return err
			}
			for _, child := range children {
				if err := walk(child); err != nil {
					return err
				}
			}
		}

		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	return out, nil
}

type frame struct {
	oldID container.Reference
	c     *container.Container
}

// parseFrames splits data into its constituent [id][image] frames without
// assigning references or touching any registry.
func parseFrames(data []byte, p *pool.Pool) ([]frame, error) {
	var frames []frame
	off := 0
	for off < len(data) {
		if off+frameIDSize > len(data) {
			return nil, fmt.Errorf("serialize: truncated frame id: %w", errs.ErrInvalidImage)
		}
		oldID := container.Reference(binary.LittleEndian.Uint64(data[off : off+frameIDSize]))
		off += frameIDSize

		if off+layout.ContainerHeaderSize > len(data) {
			return nil, fmt.Errorf("serialize: truncated frame header: %w", errs.ErrInvalidImage)
		}
		h, err := layout.ParseContainerHeader(data[off:])
		if err != nil {
			return nil, err
		}
		if int(h.Length) < layout.ContainerHeaderSize || off+int(h.Length) > len(data) {
			return nil, fmt.Errorf("serialize: frame length out of range: %w", errs.ErrInvalidImage)
		}

		c, err := container.FromBytes(data[off:off+int(h.Length)], p)
		if err != nil {
			return nil, err
		}
		off += int(h.Length)

		frames = append(frames, frame{oldID: oldID, c: c})
	}

	return frames, nil
}

// Decode parses a byte stream produced by Encode and rebuilds it inside a
// new registry, returning that registry and the root's freshly assigned
// reference. p is the buffer pool each decoded container is rented from
// (nil selects the package default pool).
func Decode(data []byte, p *pool.Pool) (*registry.Registry, container.Reference, error) {
	frames, err := parseFrames(data, p)
	if err != nil {
		return nil, container.Null, err
	}
	if len(frames) == 0 {
		return nil, container.Null, fmt.Errorf("serialize: empty frame stream: %w", errs.ErrInvalidImage)
	}

	byOldID := make(map[container.Reference]*container.Container, len(frames))
	for _, f := range frames {
		byOldID[f.oldID] = f.c
	}

	reg := registry.New()
	oldToNew := make(map[container.Reference]container.Reference, len(frames))
	visited := make(map[container.Reference]bool, len(frames))

	var register func(oldID, newParent container.Reference) error
	register = func(oldID, newParent container.Reference) error {
		if visited[oldID] {
			return fmt.Errorf("serialize: %w", errs.ErrCyclicReference)
		}
		visited[oldID] = true

		c, ok := byOldID[oldID]
		if !ok {
			return fmt.Errorf("serialize: dangling reference %d: %w", oldID, errs.ErrInvalidImage)
		}

		names := refFieldNames(c)
		newID, err := reg.Register(c, newParent, names)
		if err != nil {
			return err
		}
		oldToNew[oldID] = newID

		for _, name := range names {
			children, err := childReferences(c, name)
			if err != nil {
				return err
			}
			for _, child := range children {
				if child.IsNull() || child.IsWild() {
					continue
				}
				if err := register(child, newID); err != nil {
					return err
				}
			}
		}

		return nil
	}

	rootOld := frames[0].oldID
	if err := register(rootOld, container.Null); err != nil {
		return nil, container.Null, err
	}

	for _, f := range frames {
		for _, name := range refFieldNames(f.c) {
			if err := rewriteRef(f.c, name, oldToNew); err != nil {
				return nil, container.Null, err
			}
		}
	}

	return reg, oldToNew[rootOld], nil
}

// refFieldNames scans c's field directory for Ref-tagged fields (scalar
// or array), structurally rediscovering what the original encoding side's
// registry already knew by bookkeeping. A freshly decoded container has
// no registry entry yet, so this is the only way to know which fields to
// walk or rewrite.
func refFieldNames(c *container.Container) []string {
	n, err := c.FieldCount()
	if err != nil {
		return nil
	}

	var names []string
	for i := 0; i < n; i++ {
		fh, err := c.GetFieldHeader(i)
		if err != nil || fh.Type.Tag() != value.Ref {
			continue
		}
		name, err := c.FieldName(i)
		if err != nil {
			continue
		}
		names = append(names, name)
	}

	return names
}

// childReferences reads field name off c as a Ref scalar or Ref array,
// returning whatever references it currently holds.
func childReferences(c *container.Container, name string) ([]container.Reference, error) {
	i := c.IndexOf(name)
	if i < 0 {
		return nil, nil
	}
	fh, err := c.GetFieldHeader(i)
	if err != nil || fh.Type.Tag() != value.Ref {
		return nil, nil
	}

	if fh.Type.IsArray() {
		return container.GetRefSpan(c, name)
	}

	ref, err := container.GetRef(c, name)
	if err != nil {
		return nil, err
	}

	return []container.Reference{ref}, nil
}

// rewriteRef replaces every old reference stored in field name with its
// mapped new reference, leaving Null and any reference absent from
// oldToNew (already-disposed or never-tracked) untouched.
func rewriteRef(c *container.Container, name string, oldToNew map[container.Reference]container.Reference) error {
	i := c.IndexOf(name)
	if i < 0 {
		return nil
	}
	fh, err := c.GetFieldHeader(i)
	if err != nil {
		return nil
	}

	if fh.Type.IsArray() {
		refs, err := container.GetRefSpan(c, name)
		if err != nil {
			return err
		}
		for k, r := range refs {
			if mapped, ok := oldToNew[r]; ok {
				refs[k] = mapped
			}
		}

		return container.SetRefSpan(c, name, refs, false)
	}

	ref, err := container.GetRef(c, name)
	if err != nil {
		return err
	}
	mapped, ok := oldToNew[ref]
	if !ok {
		return nil
	}

	return container.SetRef(c, name, mapped, false)
}
