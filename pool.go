package monomem

import (
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// PoolAlignment is the alignment of every block a PoolAllocator hands out.
const PoolAlignment = 8

const (
	minPoolClass   = 3 // 8 bytes, room for the free list link
	qtyPoolClasses = bits.UintSize - minPoolClass
)

type poolClass struct {
	first  unsafe.Pointer
	len    int
	allocs uint64
}

// PoolAllocator serves allocations of varying size that are freed again. Each
// request is rounded up to a power of two; freed blocks are kept in a free
// list per size and handed out again before new memory is taken from the
// MonoAllocator. The pool never returns memory to the MonoAllocator: Reset it
// together with the MonoAllocator.
//
// A PoolAllocator is not safe for concurrent use.
type PoolAllocator struct {
	allocator *MonoAllocator
	classes   [qtyPoolClasses]poolClass
}

func NewPoolAllocator(a *MonoAllocator) *PoolAllocator {
	p := &PoolAllocator{}
	p.Init(a)
	return p
}

// Init prepares a pool placed in memory the caller owns.
func (p *PoolAllocator) Init(a *MonoAllocator) {
	*p = PoolAllocator{allocator: a}
}

func (p *PoolAllocator) Allocator() *MonoAllocator {
	return p.allocator
}

// ArenaSafe marks pools as storable in chunk memory. Their free lists point
// into the allocator.
func (*PoolAllocator) ArenaSafe() {}

func sizeToIndex(size uintptr) int {
	if size <= 1<<minPoolClass {
		return 0
	}
	return bits.Len(uint(size-1)) - minPoolClass
}

// PoolBlockSize returns the size of the blocks serving requests of size bytes.
func PoolBlockSize(size uintptr) uintptr {
	return 1 << (sizeToIndex(size) + minPoolClass)
}

// Alloc returns a block of at least size bytes. The content is undefined.
// alignment must not exceed PoolAlignment.
func (p *PoolAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	if !isPowerOfTwo(alignment) {
		violate(ErrInvalidAlignment, "got %d", alignment)
	}
	if alignment > PoolAlignment {
		violate(ErrPoolAlignment, "got %d", alignment)
	}
	if size > maxAllocSize {
		panic(errors.Wrapf(ErrOutOfMemory, "pool allocation of %d bytes", size))
	}

	c := &p.classes[sizeToIndex(size)]
	c.allocs++
	if c.first == nil {
		return p.allocator.Alloc(PoolBlockSize(size), PoolAlignment)
	}
	mem := c.first
	c.first = *(*unsafe.Pointer)(mem)
	c.len--
	return mem
}

// Free gives a block obtained with Alloc for size bytes back to the pool.
func (p *PoolAllocator) Free(mem unsafe.Pointer, size uintptr) {
	if mem == nil {
		return
	}
	idx := sizeToIndex(size)
	if p.allocator.debugFill {
		b := unsafe.Slice((*byte)(mem), PoolBlockSize(size))
		for i := range b {
			b[i] = debugFillByte
		}
	}
	c := &p.classes[idx]
	*(*unsafe.Pointer)(mem) = c.first
	c.first = mem
	c.len++
}

// Realloc resizes a block. Blocks stay in place while the size class does not
// change, otherwise the content is copied to a new block and the old one is
// freed.
func (p *PoolAllocator) Realloc(mem unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	if mem == nil {
		return p.Alloc(newSize, PoolAlignment)
	}
	if sizeToIndex(oldSize) == sizeToIndex(newSize) {
		return mem
	}
	grown := p.Alloc(newSize, PoolAlignment)
	copy(unsafe.Slice((*byte)(grown), newSize), unsafe.Slice((*byte)(mem), min(oldSize, newSize)))
	p.Free(mem, oldSize)
	return grown
}

// PoolSize returns the number of free blocks serving requests of size bytes.
func (p *PoolAllocator) PoolSize(size uintptr) int {
	return p.classes[sizeToIndex(size)].len
}

// AllocCount returns the number of Alloc calls served by the size class of
// size since the last Reset.
func (p *PoolAllocator) AllocCount(size uintptr) uint64 {
	return p.classes[sizeToIndex(size)].allocs
}

// Reset forgets all free blocks. Call it when the MonoAllocator the pool
// takes memory from is reset.
func (p *PoolAllocator) Reset() {
	p.classes = [qtyPoolClasses]poolClass{}
}
