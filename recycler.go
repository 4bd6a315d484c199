package monomem

import (
	"unsafe"

	"github.com/leslie-fei/monomem/lists"
)

// Recycler keeps unlinked nodes of a container for reuse. E must start with a
// lists.SidiNode[E], directly or through a lists.BidiNode[E].
type Recycler[E any] interface {
	// Get returns a recycled node, nil if there is none. Its content is undefined.
	Get() *E
	// Recycle stores e for reuse
	Recycle(e *E)
	// RecycleRange stores the nodes first to last, linked through their next
	// pointers, in constant time.
	RecycleRange(first, last *E)
	// RecycleChunk carves raw memory into nodes
	RecycleChunk(mem unsafe.Pointer, size uintptr)
	// Count walks the stored nodes
	Count() int
	// DisposeIfPrivate forgets all nodes unless they are shared with other containers
	DisposeIfPrivate()
}

func nodeOf[E any](e *E) *lists.SidiNode[E] {
	return lists.SidiNodeOf(e)
}

// carve links as many E as fit into mem and returns the first and last of them.
func carve[E any](mem unsafe.Pointer, size uintptr) (first, last *lists.SidiNode[E]) {
	var zero E
	elemSize, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	start := alignUp(uintptr(mem), align) - uintptr(mem)
	if elemSize == 0 || start > size {
		return nil, nil
	}
	n := (size - start) / elemSize
	if n == 0 {
		return nil, nil
	}
	elems := unsafe.Slice((*E)(unsafe.Add(mem, start)), n)
	for i := range elems {
		node := nodeOf(&elems[i])
		if i+1 < len(elems) {
			node.SetNext(nodeOf(&elems[i+1]))
		} else {
			node.SetNext(nil)
		}
	}
	return nodeOf(&elems[0]), nodeOf(&elems[n-1])
}

// freeList is the node stack shared by the private and shared strategies.
type freeList[E any] struct {
	list lists.SidiList[E]
}

func (f *freeList[E]) get() *E {
	n := f.list.PopFront()
	if n == nil {
		return nil
	}
	return n.Element()
}

func (f *freeList[E]) recycle(e *E) {
	f.list.PushFront(nodeOf(e))
}

func (f *freeList[E]) recycleRange(first, last *E) {
	f.list.PushFrontRange(nodeOf(first), nodeOf(last))
}

func (f *freeList[E]) recycleChunk(mem unsafe.Pointer, size uintptr) {
	if first, last := carve[E](mem, size); first != nil {
		f.list.PushFrontRange(first, last)
	}
}

// PrivateRecycler is a free list owned by a single container.
type PrivateRecycler[E any] struct {
	free freeList[E]
}

func (r *PrivateRecycler[E]) Get() *E { return r.free.get() }
func (r *PrivateRecycler[E]) Recycle(e *E) { r.free.recycle(e) }
func (r *PrivateRecycler[E]) RecycleRange(first, last *E) { r.free.recycleRange(first, last) }
func (r *PrivateRecycler[E]) RecycleChunk(mem unsafe.Pointer, size uintptr) { r.free.recycleChunk(mem, size) }
func (r *PrivateRecycler[E]) Count() int { return r.free.list.Count() }
func (r *PrivateRecycler[E]) DisposeIfPrivate() { r.free.list.Reset() }

// SharedRecyclables is a free list several containers of the same element type
// recycle into. All of them must allocate from the same MonoAllocator, and it
// must stay reachable as long as any of them is used.
type SharedRecyclables[E any] struct {
	free freeList[E]
}

func (s *SharedRecyclables[E]) Count() int {
	return s.free.list.Count()
}

// Reset forgets all nodes. Call it after the owning allocator was reset.
func (s *SharedRecyclables[E]) Reset() {
	s.free.list.Reset()
}

// SharedRecycler recycles into a SharedRecyclables.
type SharedRecycler[E any] struct {
	shared *SharedRecyclables[E]
}

func NewSharedRecycler[E any](shared *SharedRecyclables[E]) *SharedRecycler[E] {
	return &SharedRecycler[E]{shared: shared}
}

func (r *SharedRecycler[E]) Get() *E { return r.shared.free.get() }
func (r *SharedRecycler[E]) Recycle(e *E) { r.shared.free.recycle(e) }
func (r *SharedRecycler[E]) RecycleRange(first, last *E) { r.shared.free.recycleRange(first, last) }
func (r *SharedRecycler[E]) RecycleChunk(mem unsafe.Pointer, size uintptr) {
	r.shared.free.recycleChunk(mem, size)
}
func (r *SharedRecycler[E]) Count() int { return r.shared.Count() }
func (r *SharedRecycler[E]) DisposeIfPrivate() {}

// NoRecycler drops every node.
type NoRecycler[E any] struct{}

func (NoRecycler[E]) Get() *E { return nil }
func (NoRecycler[E]) Recycle(*E) {}
func (NoRecycler[E]) RecycleRange(_, _ *E) {}
func (NoRecycler[E]) RecycleChunk(unsafe.Pointer, uintptr) {}
func (NoRecycler[E]) Count() int { return 0 }
func (NoRecycler[E]) DisposeIfPrivate() {}
