// Package pool implements a rent(size, zero?) / return(buffer) byte
// buffer allocator. Every container image is rented from here and
// returned on dispose.
package pool

import "sync"

const (
	// ContainerBufferDefaultSize is the default capacity of a buffer
	// fetched from the default container pool. Most container images
	// (a header, a handful of fields, short names) fit well inside this.
	ContainerBufferDefaultSize = 1024 * 4 // 4KiB

	// ContainerBufferMaxThreshold is the largest buffer capacity the
	// default pool will retain; larger buffers are discarded on Return to
	// avoid memory bloat from one oversized container pinning the pool.
	ContainerBufferMaxThreshold = 1024 * 512 // 512KiB
)

// ByteBuffer is a growable byte slice wrapper sized for reuse across
// container lifetimes: containers rent one, mutate it in place as fields
// are added/removed/resized, and return it on dispose.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// SetLength sets the length of the buffer to n, growing the backing array
// first if n exceeds the current capacity. Existing bytes beyond the
// buffer's old length are not guaranteed to be zero unless zero was
// requested when the buffer was rented; SetLength never zeroes on its own.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 {
		panic("pool: SetLength: negative length")
	}
	if n > cap(bb.B) {
		bb.growTo(n)
	}
	bb.B = bb.B[:n]
}

// growTo grows the backing array so cap(bb.B) >= n, preserving existing
// content. Growth strategy: while capacity is at most
// 4*ContainerBufferDefaultSize, grow by ContainerBufferDefaultSize; past
// that, grow by 25% of current capacity, never by less than what's
// required.
func (bb *ByteBuffer) growTo(n int) {
	growBy := ContainerBufferDefaultSize
	if cap(bb.B) > 4*ContainerBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	needed := n - cap(bb.B)
	if growBy < needed {
		growBy = needed
	}

	newBuf := make([]byte, len(bb.B), cap(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Pool is a pool of ByteBuffers to minimize allocations, exposing a
// rent(size, zero?) / return(buffer) contract. It uses sync.Pool
// internally.
type Pool struct {
	pool         sync.Pool
	maxThreshold int
}

// New creates a Pool whose freshly-minted buffers start at defaultSize
// capacity; buffers larger than maxThreshold are discarded instead of
// retained on Return (maxThreshold <= 0 disables the limit).
func New(defaultSize, maxThreshold int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Rent returns a buffer with length exactly size. If zero is true, every
// byte in the returned buffer's first size bytes is guaranteed zero
// (required when a caller needs a clean image, e.g. a newly wild
// container); if false, leftover bytes from a previous tenant may remain
// and the caller must overwrite everything it reads.
func (p *Pool) Rent(size int, zero bool) *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	if bb == nil {
		bb = NewByteBuffer(size)
	}
	bb.SetLength(size)
	if zero {
		for i := range bb.B {
			bb.B[i] = 0
		}
	}

	return bb
}

// Return gives a buffer back to the pool for reuse. Return is idempotent
// with respect to a nil buffer; passing the same buffer twice is the
// caller's bug, not this package's concern.
func (p *Pool) Return(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var defaultPool = New(ContainerBufferDefaultSize, ContainerBufferMaxThreshold)

// Default returns the process-wide default container buffer pool.
func Default() *Pool { return defaultPool }
