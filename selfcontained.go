package monomem

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
)

type selfContainedFields[T any] struct {
	allocator MonoAllocator
	snapshot  Snapshot
	custom    T
}

// SelfContained is an object of type T living together with its allocator in
// the allocator's own first chunk. Only a pointer to that chunk is kept
// outside, so the whole object is freed with one Close and moved by moving
// that pointer.
//
// T lives in chunk memory and must not hold Go pointers unless it implements
// ArenaSafe, as Vector and RecyclingList do.
type SelfContained[T any] struct {
	noCopy noCopy

	fields *selfContainedFields[T]
	init   func(a *MonoAllocator, self *T)
	heap   Heap // referenced from chunk memory only otherwise
}

// NewSelfContained creates the first chunk, places the allocator and a zero T
// in it and then calls init to build T with the allocator. The state after
// init is what Reset returns to.
func NewSelfContained[T any](initialChunkSize int, c *Config, init func(a *MonoAllocator, self *T)) (SelfContained[T], error) {
	checkPointerFree[T]()
	config, err := mergeConfig(c)
	if err != nil {
		return SelfContained[T]{}, err
	}
	size, err := chunkSizeOf(initialChunkSize, config)
	if err != nil {
		return SelfContained[T]{}, err
	}
	need := unsafe.Sizeof(selfContainedFields[T]{})
	if size-chunkOverhead < need {
		return SelfContained[T]{}, errors.Wrapf(ErrChunkSizeTooSmall, "self-contained object needs %d bytes", need+chunkOverhead)
	}

	heap := heapFor(config)
	first, err := newChunk(heap, size-chunkOverhead)
	if err != nil {
		return SelfContained[T]{}, err
	}
	f := (*selfContainedFields[T])(first.alloc(need, unsafe.Alignof(selfContainedFields[T]{})))
	*f = selfContainedFields[T]{}
	f.allocator.init(first, heap, config)
	f.allocator.hosted = true

	if init != nil {
		init(&f.allocator, &f.custom)
	}
	f.snapshot = f.allocator.TakeSnapshot()
	return SelfContained[T]{fields: f, init: init, heap: heap}, nil
}

func (s *SelfContained[T]) mustFields() *selfContainedFields[T] {
	if s.fields == nil {
		violate(ErrSelfContainedMoved, "access")
	}
	return s.fields
}

func (s *SelfContained[T]) IsValid() bool {
	return s.fields != nil
}

func (s *SelfContained[T]) Self() *T {
	return &s.mustFields().custom
}

func (s *SelfContained[T]) Allocator() *MonoAllocator {
	return &s.mustFields().allocator
}

// TakeSnapshot makes the current state the one Reset returns to.
func (s *SelfContained[T]) TakeSnapshot() {
	f := s.mustFields()
	f.snapshot = f.allocator.TakeSnapshot()
}

// Reset destructs T, rewinds the allocator to the stored snapshot and builds T
// again with init. A nil init reuses the one given at construction.
func (s *SelfContained[T]) Reset(init func(a *MonoAllocator, self *T)) {
	f := s.mustFields()
	if d, ok := any(&f.custom).(Destructor); ok {
		d.Destruct()
	}
	f.allocator.Reset(f.snapshot)

	var zero T
	f.custom = zero
	if init == nil {
		init = s.init
	}
	if init != nil {
		init(&f.allocator, &f.custom)
	}
}

// Move transfers the object to the returned value and invalidates s.
func (s *SelfContained[T]) Move() SelfContained[T] {
	f, init, heap := s.mustFields(), s.init, s.heap
	s.fields, s.init, s.heap = nil, nil, nil
	return SelfContained[T]{fields: f, init: init, heap: heap}
}

// Close destructs T and frees all chunks including the one holding the object.
// Closing a moved or closed object does nothing.
func (s *SelfContained[T]) Close() error {
	f := s.fields
	if f == nil {
		return nil
	}
	heap := s.heap
	s.fields, s.init, s.heap = nil, nil, nil
	if d, ok := any(&f.custom).(Destructor); ok {
		d.Destruct()
	}
	err := f.allocator.release()
	runtime.KeepAlive(heap)
	return err
}
