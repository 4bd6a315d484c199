package monomem

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolBlockSize(t *testing.T) {
	for size, want := range map[uintptr]uintptr{
		0:      8,
		1:      8,
		8:      8,
		9:      16,
		16:     16,
		17:     32,
		1000:   KB,
		KB:     KB,
		KB + 1: 2 * KB,
		MB - 1: MB,
	} {
		assert.Equal(t, want, PoolBlockSize(size), "size %d", size)
	}
	assert.Less(t, sizeToIndex(maxAllocSize), qtyPoolClasses)
}

func TestPoolAllocator_Reuse(t *testing.T) {
	a, _ := newTestAllocator(t, KB, nil)
	p := NewPoolAllocator(a)
	assert.Same(t, a, p.Allocator())

	m1 := p.Alloc(24, 8)
	assert.Zero(t, uintptr(m1)%PoolAlignment)
	m2 := p.Alloc(24, 8)
	assert.NotEqual(t, m1, m2)
	assert.Equal(t, uint64(2), p.AllocCount(32))

	p.Free(m1, 24)
	p.Free(m2, 20)
	p.Free(nil, 24)
	assert.Equal(t, 2, p.PoolSize(32))

	allocations := a.DbgStats().QtyAllocations
	assert.Equal(t, m2, p.Alloc(30, 4))
	assert.Equal(t, m1, p.Alloc(17, 8))
	assert.Equal(t, allocations, a.DbgStats().QtyAllocations)
	assert.Equal(t, 0, p.PoolSize(32))

	// other size classes are separate
	p.Alloc(8, 8)
	assert.Equal(t, allocations+1, a.DbgStats().QtyAllocations)
}

func TestPoolAllocator_Violations(t *testing.T) {
	a, _ := newTestAllocator(t, KB, nil)
	p := NewPoolAllocator(a)
	assertViolation(t, ErrPoolAlignment, func() { p.Alloc(32, 16) })
	assertViolation(t, ErrInvalidAlignment, func() { p.Alloc(32, 3) })

	defer func() {
		err, _ := recover().(error)
		assert.True(t, errors.Is(err, ErrOutOfMemory), "panic: %v", err)
	}()
	p.Alloc(maxAllocSize+1, 8)
}

func TestPoolAllocator_Realloc(t *testing.T) {
	a, _ := newTestAllocator(t, KB, nil)
	p := NewPoolAllocator(a)

	m := p.Realloc(nil, 0, 10)
	copy(unsafe.Slice((*byte)(m), 10), "0123456789")
	assert.Equal(t, m, p.Realloc(m, 10, 16))

	grown := p.Realloc(m, 16, 100)
	assert.NotEqual(t, m, grown)
	assert.Equal(t, "0123456789", string(unsafe.Slice((*byte)(grown), 10)))
	assert.Equal(t, 1, p.PoolSize(16))

	shrunk := p.Realloc(grown, 100, 4)
	assert.Equal(t, "0123", string(unsafe.Slice((*byte)(shrunk), 4)))
	assert.Equal(t, 1, p.PoolSize(128))
}

func TestPoolAllocator_DebugFill(t *testing.T) {
	a, _ := newTestAllocator(t, KB, &Config{DebugFill: true})
	p := NewPoolAllocator(a)
	m := p.Alloc(32, 8)
	b := unsafe.Slice((*byte)(m), 32)
	copy(b, "payload")

	p.Free(m, 32)
	for _, c := range b[unsafe.Sizeof(m):] {
		require.Equal(t, byte(debugFillByte), c)
	}
}

func TestPoolAllocator_Reset(t *testing.T) {
	a, _ := newTestAllocator(t, KB, nil)
	s := a.TakeSnapshot()
	p := NewPoolAllocator(a)
	for i := 0; i < 4; i++ {
		p.Free(p.Alloc(64, 8), 64)
	}
	assert.Equal(t, 1, p.PoolSize(64))
	assert.Equal(t, uint64(4), p.AllocCount(64))

	p.Reset()
	a.Reset(s)
	assert.Equal(t, 0, p.PoolSize(64))
	assert.Zero(t, p.AllocCount(64))
	assert.Zero(t, a.Stats().AllocSize)

	m := p.Alloc(64, 8)
	assert.True(t, a.chunk.contains(m))
}

type pooledVectors struct {
	pool PoolAllocator
	ints Vector[int]
}

func TestPoolAllocator_SelfContained(t *testing.T) {
	sc, err := NewSelfContained(4*KB, nil, func(a *MonoAllocator, self *pooledVectors) {
		self.pool.Init(a)
		self.ints.InitPooled(&self.pool, 4)
	})
	require.NoError(t, err)
	defer sc.Close()

	for i := 0; i < 20; i++ {
		sc.Self().ints.Push(i)
	}
	assert.Equal(t, 1, sc.Self().pool.PoolSize(16*8))

	sc.Reset(nil)
	assert.Equal(t, 0, sc.Self().ints.Len())
	assert.Equal(t, 0, sc.Self().pool.PoolSize(16*8))
}
