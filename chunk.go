package monomem

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// MaxAlignment is the largest alignment an allocation may ask for. Every chunk
// block and every chunk's first usable byte is aligned to it.
const MaxAlignment = 16

const debugFillByte = 0xD2

// maxAllocSize bounds every request so that size arithmetic cannot wrap.
const maxAllocSize = ^uintptr(0) >> 1

// chunk is the header placed at the start of each raw block. act and end are
// offsets from the header so that pointer arithmetic never leaves the block.
type chunk struct {
	previous *chunk
	act      uintptr // first free byte
	end      uintptr // one past the last byte
	seq      uint64  // activation sequence, see MonoAllocator.Reset
}

var (
	sizeOfChunk   = unsafe.Sizeof(chunk{})
	chunkOverhead = alignUp(sizeOfChunk, MaxAlignment)
)

func alignUp(v, alignment uintptr) uintptr {
	return (v + alignment - 1) &^ (alignment - 1)
}

func isPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

// newChunk obtains a block with at least minUsableSize bytes behind the header.
func newChunk(heap Heap, minUsableSize uintptr) (*chunk, error) {
	if minUsableSize > maxAllocSize {
		return nil, errors.Wrapf(ErrOutOfMemory, "chunk of %d bytes", minUsableSize)
	}
	size := alignUp(minUsableSize, MaxAlignment) + chunkOverhead
	ptr, err := heap.Allocate(uint64(size))
	if err != nil {
		return nil, errors.Wrapf(err, "new chunk of %d bytes", size)
	}
	c := (*chunk)(ptr)
	*c = chunk{act: chunkOverhead, end: size}
	return c, nil
}

// alloc returns size bytes aligned to alignment, or nil when they do not fit.
// act is left untouched on failure.
func (c *chunk) alloc(size, alignment uintptr) unsafe.Pointer {
	base := uintptr(unsafe.Pointer(c))
	start := alignUp(base+c.act, alignment) - base
	if start > c.end || size > c.end-start {
		return nil
	}
	c.act = start + size
	return unsafe.Add(unsafe.Pointer(c), start)
}

// fits reports whether alloc(size, alignment) would succeed.
func (c *chunk) fits(size, alignment uintptr) bool {
	base := uintptr(unsafe.Pointer(c))
	start := alignUp(base+c.act, alignment) - base
	return start <= c.end && size <= c.end-start
}

func (c *chunk) reset() {
	c.act = chunkOverhead
}

// fill overwrites everything from offset from to the end with the debug pattern.
func (c *chunk) fill(from uintptr) {
	if from >= c.end {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(c), from)), c.end-from)
	for i := range b {
		b[i] = debugFillByte
	}
}

func (c *chunk) size() uintptr   { return c.end }
func (c *chunk) usable() uintptr { return c.end - chunkOverhead }
func (c *chunk) free() uintptr   { return c.end - c.act }
func (c *chunk) used() uintptr   { return c.act - chunkOverhead }

// contains reports whether p lies in the usable part of the chunk.
func (c *chunk) contains(p unsafe.Pointer) bool {
	base := uintptr(unsafe.Pointer(c))
	return uintptr(p) >= base+chunkOverhead && uintptr(p) < base+c.end
}

func (c *chunk) destruct(heap Heap) error {
	return heap.Free(unsafe.Pointer(c))
}
