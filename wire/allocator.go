package wire

import "github.com/Zereker/gamewire/internal/sync"

// Allocator hands out empty buffers. The caller owns the returned buffer.
type Allocator interface {
	Buffer() *Buffer
}

// HeapAllocator allocates a fresh buffer on every call.
type HeapAllocator struct {
	// InitialCapacity is the capacity of new buffers; zero means the default.
	InitialCapacity int
}

// Buffer returns a new empty buffer.
func (a HeapAllocator) Buffer() *Buffer {
	if a.InitialCapacity <= 0 {
		return NewBuffer()
	}
	return NewBufferSize(a.InitialCapacity)
}

// maxPooledCapacity bounds the buffers kept by PooledAllocator so that one
// huge packet does not pin its storage forever.
const maxPooledCapacity = 64 * 1024

// PooledAllocator recycles buffers through a sync.Pool. Buffers are returned
// with Release once the network layer is done with them.
type PooledAllocator struct {
	pool sync.Pool
}

// NewPooledAllocator creates a pooled allocator whose new buffers start with
// the given capacity.
func NewPooledAllocator(initialCapacity int) *PooledAllocator {
	a := &PooledAllocator{}
	a.pool.New = func() any {
		return NewBufferSize(initialCapacity)
	}
	return a
}

// Buffer returns an empty buffer from the pool.
func (a *PooledAllocator) Buffer() *Buffer {
	b := a.pool.Get().(*Buffer)
	b.Reset()
	return b
}

// Release puts b back into the pool. b must not be used afterwards.
func (a *PooledAllocator) Release(b *Buffer) {
	if b == nil || b.Capacity() > maxPooledCapacity {
		return
	}
	b.Reset()
	a.pool.Put(b)
}
