// Package storage provides StorageRoot, the disposable owner of a
// container tree: it wraps a registry.Registry and the tree's root
// reference, and guarantees the whole tree is torn down exactly once.
package storage

import (
	"fmt"
	"sync"

	"github.com/relsize/fieldtree/container"
	"github.com/relsize/fieldtree/errs"
	"github.com/relsize/fieldtree/registry"
)

// StorageRoot owns a registry and the reference to its root container.
// Disposing a StorageRoot disposes the entire tree beneath the root via
// the registry's recursive teardown.
type StorageRoot struct {
	mu       sync.Mutex
	reg      *registry.Registry
	root     container.Reference
	disposed bool
}

// New wraps root (already registered in reg) as a StorageRoot.
func New(reg *registry.Registry, root container.Reference) *StorageRoot {
	return &StorageRoot{reg: reg, root: root}
}

// Root returns the tree's root reference.
func (s *StorageRoot) Root() container.Reference {
	return s.root
}

// Registry returns the registry backing this tree.
func (s *StorageRoot) Registry() *registry.Registry {
	return s.reg
}

// RootContainer resolves and returns the root container.
func (s *StorageRoot) RootContainer() (*container.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, fmt.Errorf("storage: %w", errs.ErrDisposed)
	}

	return s.reg.Get(s.root)
}

// Dispose tears down the entire tree. Calling Dispose more than once is a
// no-op.
func (s *StorageRoot) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil
	}
	s.disposed = true

	return s.reg.Unregister(s.root)
}

// Disposed reports whether Dispose has run.
func (s *StorageRoot) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.disposed
}
