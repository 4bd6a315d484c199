package lists

import "unsafe"

// BidiNode is the link of a doubly linked list.
type BidiNode[E any] struct {
	SidiNode[E]
	prev *BidiNode[E]
}

// BidiNodeOf returns the node embedded first in e.
func BidiNodeOf[E any](e *E) *BidiNode[E] {
	return (*BidiNode[E])(unsafe.Pointer(e))
}

func (n *BidiNode[E]) Element() *E {
	return (*E)(unsafe.Pointer(n))
}

func (n *BidiNode[E]) Next() *BidiNode[E] {
	return (*BidiNode[E])(unsafe.Pointer(n.next))
}

func (n *BidiNode[E]) Prev() *BidiNode[E] {
	return n.prev
}

func (n *BidiNode[E]) setNext(next *BidiNode[E]) {
	n.next = &next.SidiNode
}

// AddBefore links other directly in front of n.
func (n *BidiNode[E]) AddBefore(other *BidiNode[E]) {
	other.setNext(n)
	other.prev = n.prev
	n.prev.setNext(other)
	n.prev = other
}

// AddBehind links other directly behind n.
func (n *BidiNode[E]) AddBehind(other *BidiNode[E]) {
	next := n.Next()
	other.setNext(next)
	other.prev = n
	next.prev = other
	n.setNext(other)
}

// Remove unlinks n from its list.
func (n *BidiNode[E]) Remove() {
	n.prev.setNext(n.Next())
	n.Next().prev = n.prev
	n.next, n.prev = nil, nil
}

// RemoveRange unlinks the nodes from n to last. The removed range stays linked
// internally, its outer links are cleared.
func (n *BidiNode[E]) RemoveRange(last *BidiNode[E]) {
	n.prev.setNext(last.Next())
	last.Next().prev = n.prev
	n.prev = nil
	last.next = nil
}

// Count returns the number of nodes from n up to, not including, end.
func (n *BidiNode[E]) Count(end *BidiNode[E]) int {
	cnt := 0
	for it := n; it != end; it = it.Next() {
		cnt++
	}
	return cnt
}

// BidiList is a circular doubly linked list around a hook node. The zero value
// is an empty list. A BidiList must not be copied once used.
type BidiList[E any] struct {
	hook BidiNode[E]
}

func (l *BidiList[E]) lazyInit() {
	if l.hook.next == nil {
		l.Reset()
	}
}

// Reset forgets all nodes.
func (l *BidiList[E]) Reset() {
	l.hook.setNext(&l.hook)
	l.hook.prev = &l.hook
}

// End returns the hook. It follows the last node and precedes the first one.
func (l *BidiList[E]) End() *BidiNode[E] {
	l.lazyInit()
	return &l.hook
}

func (l *BidiList[E]) IsEmpty() bool {
	return l.hook.next == nil || l.hook.Next() == &l.hook
}

// First returns the first node, End() if the list is empty.
func (l *BidiList[E]) First() *BidiNode[E] {
	l.lazyInit()
	return l.hook.Next()
}

// Last returns the last node, End() if the list is empty.
func (l *BidiList[E]) Last() *BidiNode[E] {
	l.lazyInit()
	return l.hook.prev
}

func (l *BidiList[E]) PushFront(n *BidiNode[E]) {
	l.lazyInit()
	l.hook.AddBehind(n)
}

func (l *BidiList[E]) PushEnd(n *BidiNode[E]) {
	l.lazyInit()
	l.hook.AddBefore(n)
}

// PushFrontRange inserts the linked nodes first to last at the front.
func (l *BidiList[E]) PushFrontRange(first, last *BidiNode[E]) {
	l.lazyInit()
	next := l.hook.Next()
	first.prev = &l.hook
	last.setNext(next)
	next.prev = last
	l.hook.setNext(first)
}

// PushEndRange inserts the linked nodes first to last at the end.
func (l *BidiList[E]) PushEndRange(first, last *BidiNode[E]) {
	l.lazyInit()
	prev := l.hook.prev
	first.prev = prev
	prev.setNext(first)
	last.setNext(&l.hook)
	l.hook.prev = last
}

// PopFront unlinks the first node, nil if the list is empty.
func (l *BidiList[E]) PopFront() *BidiNode[E] {
	if l.IsEmpty() {
		return nil
	}
	n := l.hook.Next()
	n.Remove()
	return n
}

// PopEnd unlinks the last node, nil if the list is empty.
func (l *BidiList[E]) PopEnd() *BidiNode[E] {
	if l.IsEmpty() {
		return nil
	}
	n := l.hook.prev
	n.Remove()
	return n
}

// Count walks the list. O(n).
func (l *BidiList[E]) Count() int {
	if l.IsEmpty() {
		return 0
	}
	return l.hook.Next().Count(&l.hook)
}
