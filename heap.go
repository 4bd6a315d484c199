package monomem

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/leslie-fei/monomem/gom"
	"github.com/leslie-fei/monomem/mmap"
	"github.com/leslie-fei/monomem/shm"
)

// Heap is the source of the raw blocks chunks are placed in. A block stays at
// its address until it is freed.
type Heap interface {
	// Allocate a block of at least size bytes aligned to MaxAlignment
	Allocate(size uint64) (unsafe.Pointer, error)
	// Free a block previously returned by Allocate
	Free(ptr unsafe.Pointer) error
}

// memoryHeap hands out one Memory per block. The block registry keeps Go heap
// blocks reachable while raw pointers into them live in chunk headers.
type memoryHeap struct {
	typ    MemoryType
	key    string
	locker sync.Mutex
	seq    uint64
	blocks map[uintptr]Memory
}

func newMemoryHeap(typ MemoryType, key string) *memoryHeap {
	return &memoryHeap{
		typ:    typ,
		key:    key,
		blocks: make(map[uintptr]Memory),
	}
}

func (h *memoryHeap) newMemory(size uint64) (Memory, error) {
	switch h.typ {
	case GO:
		return gom.NewMemory(size), nil
	case SHM:
		return shm.NewMemory(h.blockKey(), size, true).RemoveOnDetach(), nil
	case MMAP:
		if h.key == "" {
			return mmap.NewMemory("", size), nil
		}
		return mmap.NewMemory(h.blockKey(), size), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMemoryType, "%d", int(h.typ))
	}
}

func (h *memoryHeap) blockKey() string {
	return fmt.Sprintf("%s.%d.%d", h.key, os.Getpid(), h.seq)
}

func (h *memoryHeap) Allocate(size uint64) (unsafe.Pointer, error) {
	h.locker.Lock()
	defer h.locker.Unlock()

	h.seq++
	mem, err := h.newMemory(size)
	if err != nil {
		return nil, err
	}
	if err = mem.Attach(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "allocate %d bytes from %s heap", size, h.typ), ErrOutOfMemory)
	}
	ptr := mem.Ptr()
	if uintptr(ptr)%MaxAlignment != 0 {
		_ = mem.Detach()
		return nil, errors.Wrapf(ErrInvalidAlignment, "%s block at %#x", h.typ, uintptr(ptr))
	}
	h.blocks[uintptr(ptr)] = mem
	log().Debug("heap block attached", "type", h.typ, "size", size, "block", blockName(mem))
	return ptr, nil
}

func (h *memoryHeap) Free(ptr unsafe.Pointer) error {
	h.locker.Lock()
	mem, ok := h.blocks[uintptr(ptr)]
	if ok {
		delete(h.blocks, uintptr(ptr))
	}
	h.locker.Unlock()

	if !ok {
		return errors.Wrapf(ErrUnknownBlock, "%#x", uintptr(ptr))
	}
	if err := mem.Detach(); err != nil {
		return errors.Wrapf(err, "free %s block %s", h.typ, blockName(mem))
	}
	if m, isFile := mem.(*mmap.Memory); isFile && m.Path() != "" {
		if err := os.Remove(m.Path()); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "remove mmap file")
		}
	}
	return nil
}

// blockName identifies a block in logs and errors.
func blockName(mem Memory) string {
	switch m := mem.(type) {
	case *shm.Memory:
		return fmt.Sprintf("%s#%d", m.Key(), m.Handle())
	case *mmap.Memory:
		if m.Path() != "" {
			return m.Path()
		}
	}
	return "anonymous"
}

// Len returns the number of live blocks.
func (h *memoryHeap) Len() int {
	h.locker.Lock()
	defer h.locker.Unlock()
	return len(h.blocks)
}

type heapKey struct {
	typ MemoryType
	key string
}

var (
	heapsLocker sync.Mutex
	heaps       = make(map[heapKey]*memoryHeap)
)

// heapFor returns the heap a config allocates from. Heaps are shared per
// (type, key) and live for the whole process, since a self-contained
// allocator stores its heap inside memory the garbage collector does not scan.
func heapFor(c *Config) Heap {
	if c.Heap != nil {
		return c.Heap
	}
	heapsLocker.Lock()
	defer heapsLocker.Unlock()
	k := heapKey{typ: c.MemoryType, key: c.MemoryKey}
	h, ok := heaps[k]
	if !ok {
		h = newMemoryHeap(c.MemoryType, c.MemoryKey)
		heaps[k] = h
	}
	return h
}
