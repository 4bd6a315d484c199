package monomem

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// MonoAllocator is a monotonic allocator. Memory is handed out from the active
// chunk by bumping a pointer and is never freed individually. Reset rewinds the
// allocator to a Snapshot and keeps spent chunks for reuse.
//
// A MonoAllocator is not safe for concurrent use; see SharedAllocator.
type MonoAllocator struct {
	noCopy noCopy

	chunk                *chunk // active chunk, head of the chain
	recyclables          *chunk // spent chunks, linked through previous
	nextChunksUsableSize uintptr
	chunkGrowthInPercent uintptr
	chunkSeq             uint64
	heap                 Heap
	debugFill            bool
	hosted               bool        // lives in its own first chunk
	guard                *spinLocker // must be held while allocating, global allocator only
	dbgStats             DbgStatistics
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// zeroSizeBase is returned for every allocation of zero bytes.
var zeroSizeBase uintptr

// NewMonoAllocator creates an allocator whose first chunk has initialChunkSize
// bytes including the chunk header. A size <= 0 takes Config.InitialChunkSize.
func NewMonoAllocator(initialChunkSize int, c *Config) (*MonoAllocator, error) {
	config, err := mergeConfig(c)
	if err != nil {
		return nil, err
	}
	size, err := chunkSizeOf(initialChunkSize, config)
	if err != nil {
		return nil, err
	}

	heap := heapFor(config)
	first, err := newChunk(heap, size-chunkOverhead)
	if err != nil {
		return nil, err
	}
	a := &MonoAllocator{}
	a.init(first, heap, config)
	return a, nil
}

func chunkSizeOf(initialChunkSize int, config *Config) (uintptr, error) {
	size := uintptr(config.InitialChunkSize)
	if initialChunkSize > 0 {
		size = uintptr(initialChunkSize)
	}
	if size <= chunkOverhead {
		return 0, errors.Wrapf(ErrChunkSizeTooSmall, "got %d, need more than %d", size, chunkOverhead)
	}
	return size, nil
}

func (a *MonoAllocator) init(first *chunk, heap Heap, config *Config) {
	*a = MonoAllocator{
		chunk:                first,
		chunkGrowthInPercent: uintptr(config.ChunkGrowthInPercent),
		heap:                 heap,
		debugFill:            config.DebugFill,
	}
	a.nextChunksUsableSize = first.usable() * a.chunkGrowthInPercent / 100
	a.dbgStats.QtyChunks = 1
	a.dbgStats.HeapSize = uint64(first.size())
	log().Debug("chunk allocator created", "chunkSize", first.size(), "nextChunkSize", a.nextChunksUsableSize)
}

func (a *MonoAllocator) checkUsable() {
	if a.chunk == nil {
		violate(ErrAllocatorClosed, "allocate")
	}
	if a.guard != nil && !a.guard.locked() {
		violate(ErrGlobalNotAcquired, "allocate")
	}
}

// Alloc returns size bytes aligned to alignment. It panics when the heap cannot
// provide another chunk.
func (a *MonoAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	p, err := a.TryAlloc(size, alignment)
	if err != nil {
		panic(err)
	}
	return p
}

// TryAlloc is Alloc returning heap failures as errors.
func (a *MonoAllocator) TryAlloc(size, alignment uintptr) (unsafe.Pointer, error) {
	a.checkUsable()
	if !isPowerOfTwo(alignment) || alignment > MaxAlignment {
		violate(ErrInvalidAlignment, "got %d", alignment)
	}
	if size > maxAllocSize {
		return nil, errors.Wrapf(ErrOutOfMemory, "allocation of %d bytes", size)
	}

	a.dbgStats.QtyAllocations++
	a.dbgStats.QtyAllocationsInclResets++
	if size == 0 {
		a.countTrivial()
		return unsafe.Pointer(&zeroSizeBase), nil
	}

	free := a.chunk.free()
	if p := a.chunk.alloc(size, alignment); p != nil {
		a.countTrivial()
		a.countSize(free-a.chunk.free(), size)
		return p, nil
	}
	return a.nextChunk(size, alignment)
}

func (a *MonoAllocator) countTrivial() {
	a.dbgStats.QtyTrivialAllocations++
	a.dbgStats.QtyTrivialAllocationsInclResets++
}

func (a *MonoAllocator) countSize(consumed, size uintptr) {
	a.dbgStats.AllocSize += uint64(size)
	a.dbgStats.AllocSizeInclResets += uint64(size)
	a.dbgStats.AlignmentWaste += uint64(consumed - size)
}

// nextChunk serves a request the active chunk cannot. Requests larger than the
// standard chunk size get a chunk of their own, linked behind the active one.
func (a *MonoAllocator) nextChunk(size, alignment uintptr) (unsafe.Pointer, error) {
	need := size + alignment - 1
	if need > a.nextChunksUsableSize {
		log().Warn("allocation size exceeds the next chunks' size",
			"size", size, "nextChunkSize", a.nextChunksUsableSize)
		a.dbgStats.QtyChunkSizeExceeds++

		c, _, err := a.obtainChunk(size, alignment, need)
		if err != nil {
			return nil, err
		}
		a.chunkSeq++
		c.seq = a.chunkSeq
		c.previous = a.chunk.previous
		a.chunk.previous = c
		return a.allocIn(c, size, alignment), nil
	}

	c, created, err := a.obtainChunk(size, alignment, a.nextChunksUsableSize)
	if err != nil {
		return nil, err
	}
	if created {
		a.nextChunksUsableSize = a.nextChunksUsableSize * a.chunkGrowthInPercent / 100
	}
	a.chunkSeq++
	c.seq = a.chunkSeq
	c.previous = a.chunk
	a.chunk = c
	return a.allocIn(c, size, alignment), nil
}

func (a *MonoAllocator) allocIn(c *chunk, size, alignment uintptr) unsafe.Pointer {
	free := c.free()
	p := c.alloc(size, alignment)
	a.countSize(free-c.free(), size)
	return p
}

// obtainChunk takes the first recyclable chunk that fits the request, or
// creates a chunk with usableSize bytes.
func (a *MonoAllocator) obtainChunk(size, alignment, usableSize uintptr) (*chunk, bool, error) {
	link := &a.recyclables
	for c := a.recyclables; c != nil; c = c.previous {
		if c.fits(size, alignment) {
			*link = c.previous
			c.previous = nil
			return c, false, nil
		}
		link = &c.previous
	}

	c, err := newChunk(a.heap, usableSize)
	if err != nil {
		return nil, false, err
	}
	a.dbgStats.QtyChunks++
	a.dbgStats.HeapSize += uint64(c.size())
	log().Debug("chunk created", "chunkSize", c.size(), "qtyChunks", a.dbgStats.QtyChunks)
	return c, true, nil
}

// TakeSnapshot saves the allocation state for a later Reset.
func (a *MonoAllocator) TakeSnapshot() Snapshot {
	a.checkUsable()
	return Snapshot{
		chunk:   a.chunk,
		actFill: a.chunk.act,
		seq:     a.chunk.seq,
		mark:    a.chunkSeq,
	}
}

// Reset rewinds the allocator to s. Every chunk activated or inserted after s
// was taken becomes recyclable; the zero Snapshot rewinds to the empty first
// chunk. Memory is never returned to the heap and no destructors run, so every
// object allocated after s must no longer be used.
func (a *MonoAllocator) Reset(s Snapshot) {
	a.checkUsable()
	if s.IsZero() && a.hosted {
		violate(ErrHostedReset, "use SelfContained.Reset")
	}
	if !s.IsZero() {
		a.validate(s)
	}

	released := 0
	link := &a.chunk
	for it := a.chunk; it != nil; {
		next := it.previous
		if it.seq > s.mark {
			if a.debugFill {
				it.fill(chunkOverhead)
			}
			it.reset()
			it.previous = a.recyclables
			a.recyclables = it
			released++
		} else {
			*link = it
			link = &it.previous
		}
		it = next
	}
	*link = nil

	actFill := chunkOverhead
	if !s.IsZero() {
		actFill = s.actFill
	}
	if a.debugFill {
		a.chunk.fill(actFill)
	}
	a.chunk.act = actFill

	a.dbgStats.QtyResets++
	a.dbgStats.QtyAllocations = 0
	a.dbgStats.QtyTrivialAllocations = 0
	a.dbgStats.AllocSize = 0
	log().Debug("allocator reset", "recycledChunks", released, "actFill", actFill)
}

func (a *MonoAllocator) validate(s Snapshot) {
	for it := a.chunk; it != nil; it = it.previous {
		if it != s.chunk {
			continue
		}
		if it.seq != s.seq || s.mark > a.chunkSeq || s.actFill < chunkOverhead || s.actFill > it.act {
			violate(ErrStaleSnapshot, "chunk reactivated or rewound past the snapshot")
		}
		return
	}
	violate(ErrStaleSnapshot, "chunk not in chain")
}

// Close returns every chunk to the heap. The allocator and all memory it
// handed out must not be used afterwards.
func (a *MonoAllocator) Close() error {
	if a.hosted {
		violate(ErrHostedReset, "close the owning SelfContained instead")
	}
	return a.release()
}

// release frees all chunks. The chain heads are read before the first block is
// freed because a hosted allocator lives inside one of them.
func (a *MonoAllocator) release() error {
	chain, recyclables, heap := a.chunk, a.recyclables, a.heap
	if chain == nil {
		return nil
	}
	allocations := a.dbgStats.QtyAllocationsInclResets
	a.chunk, a.recyclables = nil, nil

	var err error
	qty := 0
	for _, head := range [2]*chunk{recyclables, chain} {
		for c := head; c != nil; {
			next := c.previous
			err = errors.CombineErrors(err, c.destruct(heap))
			qty++
			c = next
		}
	}

	if qty > 15 {
		log().Warn("more than 15 chunks allocated, initial chunk size might be increased", "qtyChunks", qty)
	}
	log().Debug("chunk allocator closed", "qtyChunks", qty, "qtyAllocations", allocations)
	return err
}

// IsClosed reports whether Close was called.
func (a *MonoAllocator) IsClosed() bool {
	return a.chunk == nil
}
