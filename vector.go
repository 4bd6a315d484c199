package monomem

import (
	"iter"
	"unsafe"
)

// Vector is a growable array allocating from a MonoAllocator. Growing copies
// the values into a new array twice the size. The old array stays in the
// allocator until it is reset, or goes back to the PoolAllocator the vector
// was initialized with.
//
// Values live in chunk memory, so T must not hold Go pointers unless it
// implements ArenaSafe.
type Vector[T any] struct {
	allocator *MonoAllocator
	pool      *PoolAllocator
	data      []T
}

func NewVector[T any](a *MonoAllocator, capacity int) *Vector[T] {
	v := &Vector[T]{}
	v.Init(a, capacity)
	return v
}

// NewPooledVector creates a vector taking its arrays from p and freeing
// outgrown ones to it.
func NewPooledVector[T any](p *PoolAllocator, capacity int) *Vector[T] {
	v := &Vector[T]{}
	v.InitPooled(p, capacity)
	return v
}

// Init prepares a vector placed in memory the caller owns.
func (v *Vector[T]) Init(a *MonoAllocator, capacity int) {
	checkPointerFree[T]()
	*v = Vector[T]{allocator: a}
	v.Reserve(capacity)
}

func (v *Vector[T]) InitPooled(p *PoolAllocator, capacity int) {
	checkPointerFree[T]()
	*v = Vector[T]{allocator: p.Allocator(), pool: p}
	v.Reserve(capacity)
}

// ArenaSafe marks vectors as storable in chunk memory. Their arrays live in
// the allocator.
func (*Vector[T]) ArenaSafe() {}

func (v *Vector[T]) Allocator() *MonoAllocator {
	return v.allocator
}

func (v *Vector[T]) Len() int {
	return len(v.data)
}

func (v *Vector[T]) Cap() int {
	return cap(v.data)
}

func (v *Vector[T]) newData(n int) []T {
	if v.pool == nil {
		return newArray[T](v.allocator, n)
	}
	var zero T
	size := arraySize(unsafe.Sizeof(zero), n)
	s := unsafe.Slice((*T)(v.pool.Alloc(size, unsafe.Alignof(zero))), n)
	clear(s)
	return s
}

func (v *Vector[T]) releaseData() {
	if v.pool != nil && cap(v.data) > 0 {
		var zero T
		v.pool.Free(unsafe.Pointer(unsafe.SliceData(v.data)), unsafe.Sizeof(zero)*uintptr(cap(v.data)))
	}
	v.data = nil
}

// Reserve grows the capacity to at least n.
func (v *Vector[T]) Reserve(n int) {
	if n <= cap(v.data) {
		return
	}
	grown := v.newData(n)[:len(v.data)]
	copy(grown, v.data)
	v.releaseData()
	v.data = grown
}

// Push appends x and returns the stored value.
func (v *Vector[T]) Push(x T) *T {
	if len(v.data) == cap(v.data) {
		v.Reserve(max(2*cap(v.data), 4))
	}
	v.data = v.data[:len(v.data)+1]
	p := &v.data[len(v.data)-1]
	*p = x
	return p
}

// Pop removes and returns the last value.
func (v *Vector[T]) Pop() T {
	if len(v.data) == 0 {
		violate(ErrEmptyList, "pop")
	}
	last := v.data[len(v.data)-1]
	var zero T
	v.data[len(v.data)-1] = zero
	v.data = v.data[:len(v.data)-1]
	return last
}

func (v *Vector[T]) At(i int) *T {
	if i < 0 || i >= len(v.data) {
		violate(ErrIndexOutOfRange, "index %d, len %d", i, len(v.data))
	}
	return &v.data[i]
}

func (v *Vector[T]) Get(i int) T {
	return *v.At(i)
}

func (v *Vector[T]) Set(i int, x T) {
	*v.At(i) = x
}

// Truncate shrinks the vector to n values, keeping the capacity.
func (v *Vector[T]) Truncate(n int) {
	if n < 0 || n > len(v.data) {
		violate(ErrIndexOutOfRange, "truncate to %d, len %d", n, len(v.data))
	}
	clear(v.data[n:])
	v.data = v.data[:n]
}

func (v *Vector[T]) Clear() {
	v.Truncate(0)
}

// Release empties the vector and gives its array back to the pool, if any.
func (v *Vector[T]) Release() {
	v.releaseData()
}

// Slice returns the values. It is invalidated by the next growth.
func (v *Vector[T]) Slice() []T {
	return v.data
}

func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, x := range v.data {
			if !yield(i, x) {
				return
			}
		}
	}
}
