package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeapAllocator(t *testing.T) {
	a := HeapAllocator{InitialCapacity: 32}
	b1 := a.Buffer()
	b2 := a.Buffer()

	assert.NotSame(t, b1, b2)
	assert.Equal(t, 0, b1.WriterIndex())
	assert.Equal(t, 32, b1.Capacity())

	assert.Equal(t, defaultCapacity, HeapAllocator{}.Buffer().Capacity())
}

func TestPooledAllocator_ReturnsEmptyBuffers(t *testing.T) {
	a := NewPooledAllocator(16)

	b := a.Buffer()
	b.WriteInt(42)
	_, _ = b.ReadShort()
	a.Release(b)

	b = a.Buffer()
	assert.Equal(t, 0, b.ReaderIndex())
	assert.Equal(t, 0, b.WriterIndex())
}

func TestPooledAllocator_DropsHugeBuffers(t *testing.T) {
	a := NewPooledAllocator(16)
	b := NewBufferSize(maxPooledCapacity + 1)
	a.Release(b)
	a.Release(nil)

	assert.LessOrEqual(t, a.Buffer().Capacity(), maxPooledCapacity)
}
