package monomem

import (
	"unsafe"
)

// New returns a zeroed T stored inside the allocator. Chunk memory is not
// scanned by the garbage collector, so T must not hold Go pointers unless it
// implements ArenaSafe. New panics with ErrGoPointers otherwise.
func New[T any](a *MonoAllocator) *T {
	checkPointerFree[T]()
	return newObject[T](a)
}

// Emplace allocates a T and copies v into it. T is checked like for New.
func Emplace[T any](a *MonoAllocator, v T) *T {
	checkPointerFree[T]()
	p := (*T)(a.Alloc(unsafe.Sizeof(v), unsafe.Alignof(v)))
	*p = v
	return p
}

// NewArray allocates a zeroed slice of n elements of T. T is checked like for
// New. Returns nil if n <= 0.
func NewArray[T any](a *MonoAllocator, n int) []T {
	checkPointerFree[T]()
	return newArray[T](a, n)
}

// NewArrayFunc allocates n elements of T and initializes each with init.
func NewArrayFunc[T any](a *MonoAllocator, n int, init func(i int, e *T)) []T {
	s := NewArray[T](a, n)
	for i := range s {
		init(i, &s[i])
	}
	return s
}

// newObject is New for types whose pointers are known to stay in the arena.
func newObject[T any](a *MonoAllocator) *T {
	var zero T
	p := (*T)(a.Alloc(unsafe.Sizeof(zero), unsafe.Alignof(zero)))
	*p = zero
	return p
}

func newArray[T any](a *MonoAllocator, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	size := arraySize(unsafe.Sizeof(zero), n)
	p := (*T)(a.Alloc(size, unsafe.Alignof(zero)))
	s := unsafe.Slice(p, n)
	clear(s)
	return s
}

// arraySize returns n * elemSize and panics if that cannot be allocated.
func arraySize(elemSize uintptr, n int) uintptr {
	if elemSize != 0 && uintptr(n) > maxAllocSize/elemSize {
		violate(ErrIndexOutOfRange, "%d elements of %d bytes", n, elemSize)
	}
	return elemSize * uintptr(n)
}

// AllocBytes allocates n bytes. The content is undefined.
// Returns nil if n <= 0.
func AllocBytes(a *MonoAllocator, n int) []byte {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(a.Alloc(uintptr(n), 1)), n)
}

// AllocString copies s into the allocator.
func AllocString(a *MonoAllocator, s string) string {
	return NewString(a, s).String()
}

// String is a string whose bytes are stored in a MonoAllocator. Unlike a Go
// string it may be kept in chunk memory, for example as the value of a
// RecyclingList or Vector.
type String struct {
	data *byte
	len  int
}

// NewString copies s into the allocator.
func NewString(a *MonoAllocator, s string) String {
	if len(s) == 0 {
		return String{}
	}
	b := AllocBytes(a, len(s))
	copy(b, s)
	return String{data: unsafe.SliceData(b), len: len(b)}
}

func (s String) String() string {
	if s.len == 0 {
		return ""
	}
	return unsafe.String(s.data, s.len)
}

func (s String) Len() int {
	return s.len
}

func (String) ArenaSafe() {}
