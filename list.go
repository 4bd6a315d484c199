package monomem

import (
	"iter"
	"unsafe"

	"github.com/leslie-fei/monomem/lists"
)

// Destructor is run on an element's value when it is erased or cleared.
type Destructor interface {
	Destruct()
}

// ListElement is the node type of RecyclingList.
type ListElement[T any] struct {
	lists.BidiNode[ListElement[T]]
	Data T
}

// ValueReference tells whether a quantity is absolute or relative to the
// current size.
type ValueReference int

const (
	Relative ValueReference = iota
	Absolute
)

// RecyclingList is a doubly linked list allocating its elements from a
// MonoAllocator. Erased elements go to a Recycler and are reused by later
// inserts, so the memory a list takes stays bounded by its peak size.
//
// Elements live in chunk memory, so T must not hold Go pointers unless it
// implements ArenaSafe; store strings as String. A RecyclingList must not be
// copied; use Clone.
type RecyclingList[T any] struct {
	noCopy noCopy

	allocator *MonoAllocator
	list      lists.BidiList[ListElement[T]]
	size      int
	recycler  Recycler[ListElement[T]]
	private   PrivateRecycler[ListElement[T]]
	shared    SharedRecycler[ListElement[T]]
}

// NewRecyclingList creates a list with a private recycler.
func NewRecyclingList[T any](a *MonoAllocator) *RecyclingList[T] {
	l := &RecyclingList[T]{}
	l.Init(a)
	return l
}

// NewRecyclingListShared creates a list recycling into shared.
func NewRecyclingListShared[T any](a *MonoAllocator, shared *SharedRecyclables[ListElement[T]]) *RecyclingList[T] {
	l := &RecyclingList[T]{}
	l.InitShared(a, shared)
	return l
}

// NewRecyclingListNoRecycling creates a list that abandons erased elements.
func NewRecyclingListNoRecycling[T any](a *MonoAllocator) *RecyclingList[T] {
	l := &RecyclingList[T]{}
	l.InitNoRecycling(a)
	return l
}

// NewRecyclingListWith creates a list using r, which must outlive the list.
func NewRecyclingListWith[T any](a *MonoAllocator, r Recycler[ListElement[T]]) *RecyclingList[T] {
	l := &RecyclingList[T]{}
	l.InitWith(a, r)
	return l
}

// Init prepares a list placed in memory the caller owns, for example inside a
// SelfContained object, with a private recycler.
func (l *RecyclingList[T]) Init(a *MonoAllocator) {
	l.InitWith(a, nil)
}

func (l *RecyclingList[T]) InitShared(a *MonoAllocator, shared *SharedRecyclables[ListElement[T]]) {
	l.shared = SharedRecycler[ListElement[T]]{shared: shared}
	l.InitWith(a, &l.shared)
}

func (l *RecyclingList[T]) InitNoRecycling(a *MonoAllocator) {
	l.InitWith(a, NoRecycler[ListElement[T]]{})
}

// InitWith prepares the list with recycler r, nil selects a private one.
func (l *RecyclingList[T]) InitWith(a *MonoAllocator, r Recycler[ListElement[T]]) {
	checkPointerFree[T]()
	l.allocator = a
	l.list.Reset()
	l.size = 0
	if r == nil {
		l.private = PrivateRecycler[ListElement[T]]{}
		r = &l.private
	}
	l.recycler = r
}

func (l *RecyclingList[T]) Allocator() *MonoAllocator {
	return l.allocator
}

func (l *RecyclingList[T]) Len() int {
	return l.size
}

func (l *RecyclingList[T]) IsEmpty() bool {
	return l.size == 0
}

// RecyclablesCount returns the number of elements waiting for reuse. O(n).
func (l *RecyclingList[T]) RecyclablesCount() int {
	return l.recycler.Count()
}

func (l *RecyclingList[T]) newElement() *ListElement[T] {
	if e := l.recycler.Get(); e != nil {
		*e = ListElement[T]{}
		return e
	}
	return newObject[ListElement[T]](l.allocator)
}

func (l *RecyclingList[T]) destruct(e *ListElement[T]) {
	if d, ok := any(&e.Data).(Destructor); ok {
		d.Destruct()
	}
	var zero T
	e.Data = zero
}

func (l *RecyclingList[T]) insertBefore(at *lists.BidiNode[ListElement[T]], e *ListElement[T]) Iterator[T] {
	at.AddBefore(&e.BidiNode)
	l.size++
	return Iterator[T]{node: &e.BidiNode, end: l.list.End()}
}

// PushFront inserts v at the front and returns the stored value.
func (l *RecyclingList[T]) PushFront(v T) *T {
	e := l.newElement()
	e.Data = v
	l.insertBefore(l.list.First(), e)
	return &e.Data
}

// PushBack inserts v at the end and returns the stored value.
func (l *RecyclingList[T]) PushBack(v T) *T {
	e := l.newElement()
	e.Data = v
	l.insertBefore(l.list.End(), e)
	return &e.Data
}

// EmplaceFront inserts a zero value at the front and initializes it in place.
func (l *RecyclingList[T]) EmplaceFront(init func(v *T)) *T {
	e := l.newElement()
	if init != nil {
		init(&e.Data)
	}
	l.insertBefore(l.list.First(), e)
	return &e.Data
}

// EmplaceBack inserts a zero value at the end and initializes it in place.
func (l *RecyclingList[T]) EmplaceBack(init func(v *T)) *T {
	e := l.newElement()
	if init != nil {
		init(&e.Data)
	}
	l.insertBefore(l.list.End(), e)
	return &e.Data
}

// Insert stores v in front of pos and returns an iterator to it.
func (l *RecyclingList[T]) Insert(pos Iterator[T], v T) Iterator[T] {
	e := l.newElement()
	e.Data = v
	return l.insertBefore(pos.node, e)
}

// Emplace inserts a value initialized by init in front of pos.
func (l *RecyclingList[T]) Emplace(pos Iterator[T], init func(v *T)) Iterator[T] {
	e := l.newElement()
	if init != nil {
		init(&e.Data)
	}
	return l.insertBefore(pos.node, e)
}

// Erase removes the element at pos and returns an iterator to its successor.
func (l *RecyclingList[T]) Erase(pos Iterator[T]) Iterator[T] {
	if l.size == 0 {
		violate(ErrEmptyList, "erase")
	}
	if pos.IsEnd() {
		violate(ErrEndIterator, "erase")
	}
	next := pos.node.Next()
	pos.node.Remove()
	e := pos.node.Element()
	l.destruct(e)
	l.recycler.Recycle(e)
	l.size--
	return Iterator[T]{node: next, end: l.list.End()}
}

// EraseRange removes the elements from first up to, not including, last and
// returns last.
func (l *RecyclingList[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	if first.Equal(last) {
		return last
	}
	if l.size == 0 {
		violate(ErrEmptyList, "erase range")
	}
	if first.IsEnd() {
		violate(ErrEndIterator, "erase range")
	}

	cnt := 0
	for it := first.node; it != last.node; it = it.Next() {
		l.destruct(it.Element())
		cnt++
	}
	lastErased := last.node.Prev()
	first.node.RemoveRange(lastErased)
	l.recycler.RecycleRange(first.node.Element(), lastErased.Element())
	l.size -= cnt
	return last
}

func (l *RecyclingList[T]) PopFront() {
	if l.size == 0 {
		violate(ErrEmptyList, "pop front")
	}
	l.Erase(l.Begin())
}

func (l *RecyclingList[T]) PopBack() {
	if l.size == 0 {
		violate(ErrEmptyList, "pop back")
	}
	l.Erase(Iterator[T]{node: l.list.Last(), end: l.list.End()})
}

func (l *RecyclingList[T]) Front() *T {
	if l.size == 0 {
		violate(ErrEmptyList, "front")
	}
	return &l.list.First().Element().Data
}

func (l *RecyclingList[T]) Back() *T {
	if l.size == 0 {
		violate(ErrEmptyList, "back")
	}
	return &l.list.Last().Element().Data
}

// ElementAt returns the value at index idx. O(n).
func (l *RecyclingList[T]) ElementAt(idx int) *T {
	if idx < 0 || idx >= l.size {
		violate(ErrIndexOutOfRange, "index %d, len %d", idx, l.size)
	}
	it := l.list.First()
	for ; idx > 0; idx-- {
		it = it.Next()
	}
	return &it.Element().Data
}

func (l *RecyclingList[T]) destructAll() {
	end := l.list.End()
	for it := l.list.First(); it != end; it = it.Next() {
		l.destruct(it.Element())
	}
}

// Clear erases all elements and recycles them.
func (l *RecyclingList[T]) Clear() {
	if l.size == 0 {
		return
	}
	l.destructAll()
	first, last := l.list.First(), l.list.Last()
	l.list.Reset()
	l.size = 0
	l.recycler.RecycleRange(first.Element(), last.Element())
}

// Reset erases all elements and forgets private recyclables. Call it before
// resetting the allocator the list allocates from.
func (l *RecyclingList[T]) Reset() {
	if l.size != 0 {
		l.destructAll()
		l.list.Reset()
		l.size = 0
	}
	l.recycler.DisposeIfPrivate()
}

// ReserveRecyclables allocates elements up front so that qty more elements
// (Relative) or a total of qty elements (Absolute) can be inserted without
// touching the allocator. Lists without recycling ignore it.
func (l *RecyclingList[T]) ReserveRecyclables(qty int, reference ValueReference) {
	if _, ok := l.recycler.(NoRecycler[ListElement[T]]); ok {
		return
	}
	required := qty - l.recycler.Count()
	if reference == Absolute {
		required -= l.size
	}
	if required <= 0 {
		return
	}

	var zero ListElement[T]
	size := arraySize(unsafe.Sizeof(zero), required)
	l.recycler.RecycleChunk(l.allocator.Alloc(size, unsafe.Alignof(zero)), size)
}

// Clone creates a list on the same allocator holding copies of all values.
// Private recyclables stay with l, shared ones are shared by the clone.
func (l *RecyclingList[T]) Clone() *RecyclingList[T] {
	c := &RecyclingList[T]{}
	switch {
	case l.recycler == &l.private:
		c.Init(l.allocator)
	case l.recycler == &l.shared:
		c.InitShared(l.allocator, l.shared.shared)
	default:
		c.InitWith(l.allocator, l.recycler)
	}
	for v := range l.All() {
		c.PushBack(v)
	}
	return c
}

// ArenaSafe marks lists as storable in chunk memory, for example inside a
// SelfContained object. Their links point into the allocator.
func (*RecyclingList[T]) ArenaSafe() {}

func (l *RecyclingList[T]) Begin() Iterator[T] {
	return Iterator[T]{node: l.list.First(), end: l.list.End()}
}

func (l *RecyclingList[T]) End() Iterator[T] {
	end := l.list.End()
	return Iterator[T]{node: end, end: end}
}

// All yields the values front to back.
func (l *RecyclingList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		end := l.list.End()
		for it := l.list.First(); it != end; it = it.Next() {
			if !yield(it.Element().Data) {
				return
			}
		}
	}
}

// Backward yields the values back to front.
func (l *RecyclingList[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		end := l.list.End()
		for it := l.list.Last(); it != end; it = it.Prev() {
			if !yield(it.Element().Data) {
				return
			}
		}
	}
}

// Iterator points at an element of a RecyclingList or at its end.
type Iterator[T any] struct {
	node *lists.BidiNode[ListElement[T]]
	end  *lists.BidiNode[ListElement[T]]
}

func (it Iterator[T]) Next() Iterator[T] {
	return Iterator[T]{node: it.node.Next(), end: it.end}
}

func (it Iterator[T]) Prev() Iterator[T] {
	return Iterator[T]{node: it.node.Prev(), end: it.end}
}

func (it Iterator[T]) IsEnd() bool {
	return it.node == it.end
}

func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.node == other.node
}

// Ptr returns the value the iterator points at.
func (it Iterator[T]) Ptr() *T {
	if it.IsEnd() {
		violate(ErrEndIterator, "dereference")
	}
	return &it.node.Element().Data
}

func (it Iterator[T]) Value() T {
	return *it.Ptr()
}
