// Package lists provides intrusive singly and doubly linked lists. The lists
// own the links only; the elements live wherever their owner allocated them.
// A node must be the first field of its element type E, which makes node and
// element addresses interchangeable.
package lists

import "unsafe"

// SidiNode is the link of a singly linked list.
type SidiNode[E any] struct {
	next *SidiNode[E]
}

// SidiNodeOf returns the node embedded first in e.
func SidiNodeOf[E any](e *E) *SidiNode[E] {
	return (*SidiNode[E])(unsafe.Pointer(e))
}

func (n *SidiNode[E]) Element() *E {
	return (*E)(unsafe.Pointer(n))
}

func (n *SidiNode[E]) Next() *SidiNode[E] {
	return n.next
}

func (n *SidiNode[E]) SetNext(next *SidiNode[E]) {
	n.next = next
}

// AddBehind links other directly behind n.
func (n *SidiNode[E]) AddBehind(other *SidiNode[E]) {
	other.next = n.next
	n.next = other
}

// RemoveNext unlinks the node behind n and returns it.
func (n *SidiNode[E]) RemoveNext() *SidiNode[E] {
	removed := n.next
	if removed != nil {
		n.next = removed.next
	}
	return removed
}

// RemoveRangeBehind unlinks the nodes from n.Next() to last and returns the
// first of them. The removed range stays linked internally.
func (n *SidiNode[E]) RemoveRangeBehind(last *SidiNode[E]) *SidiNode[E] {
	first := n.next
	n.next = last.next
	last.next = nil
	return first
}

// Count returns the number of nodes from n up to, not including, end.
func (n *SidiNode[E]) Count(end *SidiNode[E]) int {
	cnt := 0
	for it := n; it != end && it != nil; it = it.next {
		cnt++
	}
	return cnt
}

// SidiList is a singly linked list. The zero value is an empty list.
type SidiList[E any] struct {
	hook SidiNode[E]
}

func (l *SidiList[E]) First() *SidiNode[E] {
	return l.hook.next
}

func (l *SidiList[E]) IsEmpty() bool {
	return l.hook.next == nil
}

func (l *SidiList[E]) Reset() {
	l.hook.next = nil
}

func (l *SidiList[E]) PushFront(n *SidiNode[E]) {
	l.hook.AddBehind(n)
}

// PushFrontRange inserts the linked nodes first to last at the front.
func (l *SidiList[E]) PushFrontRange(first, last *SidiNode[E]) {
	last.next = l.hook.next
	l.hook.next = first
}

// PopFront unlinks the first node, nil if the list is empty.
func (l *SidiList[E]) PopFront() *SidiNode[E] {
	n := l.hook.RemoveNext()
	if n != nil {
		n.next = nil
	}
	return n
}

// FindLast returns the last node, nil if the list is empty.
func (l *SidiList[E]) FindLast() *SidiNode[E] {
	it := l.hook.next
	if it == nil {
		return nil
	}
	for it.next != nil {
		it = it.next
	}
	return it
}

// FindLastBefore returns the node in front of n. It returns nil when n is the
// first node or not in the list.
func (l *SidiList[E]) FindLastBefore(n *SidiNode[E]) *SidiNode[E] {
	for it := l.hook.next; it != nil; it = it.next {
		if it.next == n {
			return it
		}
	}
	return nil
}

// FindAndRemove unlinks n and reports whether it was found.
func (l *SidiList[E]) FindAndRemove(n *SidiNode[E]) bool {
	for it := &l.hook; it.next != nil; it = it.next {
		if it.next == n {
			it.RemoveNext()
			n.next = nil
			return true
		}
	}
	return false
}

// Count walks the list. O(n).
func (l *SidiList[E]) Count() int {
	return l.hook.next.Count(nil)
}
