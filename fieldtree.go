// Package fieldtree implements a schemaless, in-memory binary container
// store: named containers holding typed scalar/array fields and links
// (Ref fields) to other containers, addressed by stable references that
// survive field resizes and type changes.
//
// # Core Features
//
//   - Packed, offset-addressed container images with an embedded field
//     directory, resolved by 32-bit name hash plus full-name verification
//   - In-place field writes when a new value's shape matches, falling back
//     to a full data-region rebuild ("rescheme") otherwise
//   - A registry assigning stable, recyclable references and tearing down
//     a container's ref-typed fields recursively on removal
//   - Dot-separated path navigation into nested containers
//   - A per-field, generation-aware event bus
//   - Depth-first tree serialization with reference rewriting, optionally
//     wrapped in a Zstd/S2/LZ4 compression envelope
//
// # Basic Usage
//
//	root, _ := fieldtree.New("session")
//	defer root.Dispose()
//
//	obj := fieldtree.Object(root)
//	member, _ := obj.Path("counter")
//	handle, _ := member.Handle()
//	_ = handle
//
// Building a container's fields directly:
//
//	b := fieldtree.NewBuilder(nil).SetContainerName("counter")
//	builder.SetScalar(b, "value", int64(0))
//	c, _ := b.Build()
//
// Serializing a tree and reopening it elsewhere:
//
//	blob, _ := fieldtree.Save(root)
//	reopened, _ := fieldtree.Open(blob, nil)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// builder, registry, storage, handle, events, and serialize packages.
// For fine-grained control, use those packages directly.
package fieldtree

import (
	"github.com/relsize/fieldtree/builder"
	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/events"
	"github.com/relsize/fieldtree/format"
	"github.com/relsize/fieldtree/handle"
	"github.com/relsize/fieldtree/internal/pool"
	"github.com/relsize/fieldtree/registry"
	"github.com/relsize/fieldtree/serialize"
	"github.com/relsize/fieldtree/storage"
)

// New creates an empty root container named name, tracks it in a fresh
// registry, and returns the StorageRoot that owns the tree.
func New(name string) (*storage.StorageRoot, error) {
	c, err := builder.New(nil).SetContainerName(name).Build()
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	root, err := reg.Register(c, container.Null, nil)
	if err != nil {
		return nil, err
	}

	return storage.New(reg, root), nil
}

// Open rebuilds a tree from a byte stream produced by Save, under a fresh
// registry with freshly assigned references. p selects the buffer pool
// every decoded container rents from (nil uses the package default pool).
func Open(data []byte, p *pool.Pool) (*storage.StorageRoot, error) {
	reg, root, err := serialize.Decode(data, p)
	if err != nil {
		return nil, err
	}

	return storage.New(reg, root), nil
}

// OpenCompressed is Open for a byte stream produced by SaveCompressed.
func OpenCompressed(data []byte, p *pool.Pool) (*storage.StorageRoot, error) {
	reg, root, err := serialize.DecodeCompressed(data, p)
	if err != nil {
		return nil, err
	}

	return storage.New(reg, root), nil
}

// Save flattens root's entire tree into a byte stream suitable for Open.
func Save(root *storage.StorageRoot) ([]byte, error) {
	return serialize.Encode(root.Registry(), root.Root())
}

// SaveCompressed is Save followed by wrapping the result in a compression
// envelope under codecType, suitable for OpenCompressed.
func SaveCompressed(root *storage.StorageRoot, codecType format.CompressionType) ([]byte, error) {
	return serialize.EncodeCompressed(root.Registry(), root.Root(), codecType)
}

// NewBuilder creates an ObjectBuilder for assembling a new container's
// fields before adding it to a tree. p selects the buffer pool the
// eventual container rents from (nil uses the package default pool).
func NewBuilder(p *pool.Pool) *builder.ObjectBuilder {
	return builder.New(p)
}

// Object returns a navigable StorageObject onto root's own container,
// the entry point for dot-separated path resolution into its descendants.
func Object(root *storage.StorageRoot) *handle.StorageObject {
	return handle.NewStorageObject(root.Registry(), root.Root())
}

// NewEventBus creates an event bus that propagates events upward through
// root's registry.
func NewEventBus(root *storage.StorageRoot) *events.Bus {
	return events.New(root.Registry())
}
