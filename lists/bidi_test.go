package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bidiItem struct {
	BidiNode[bidiItem]
	v int
}

func newBidiItems(n int) []*bidiItem {
	items := make([]*bidiItem, n)
	for i := range items {
		items[i] = &bidiItem{v: i}
	}
	return items
}

func forward(l *BidiList[bidiItem]) []int {
	var values []int
	for it := l.First(); it != l.End(); it = it.Next() {
		values = append(values, it.Element().v)
	}
	return values
}

func backward(l *BidiList[bidiItem]) []int {
	var values []int
	for it := l.Last(); it != l.End(); it = it.Prev() {
		values = append(values, it.Element().v)
	}
	return values
}

func TestBidiList_Empty(t *testing.T) {
	var l BidiList[bidiItem]
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Count())
	assert.Same(t, l.End(), l.First())
	assert.Same(t, l.End(), l.Last())
	assert.Nil(t, l.PopFront())
	assert.Nil(t, l.PopEnd())
}

func TestBidiList_PushFrontPushEnd(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(4)
	l.PushEnd(&items[1].BidiNode)
	l.PushEnd(&items[2].BidiNode)
	l.PushFront(&items[0].BidiNode)
	l.PushEnd(&items[3].BidiNode)

	assert.False(t, l.IsEmpty())
	assert.Equal(t, 4, l.Count())
	assert.Equal(t, []int{0, 1, 2, 3}, forward(&l))
	assert.Equal(t, []int{3, 2, 1, 0}, backward(&l))
	assert.Same(t, items[0], l.First().Element())
	assert.Same(t, items[3], l.Last().Element())
}

func TestBidiList_PopFrontPopEnd(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(3)
	for _, item := range items {
		l.PushEnd(&item.BidiNode)
	}

	n := l.PopFront()
	require.NotNil(t, n)
	assert.Equal(t, 0, n.Element().v)
	assert.Nil(t, n.Next())
	assert.Nil(t, n.Prev())

	n = l.PopEnd()
	require.NotNil(t, n)
	assert.Equal(t, 2, n.Element().v)
	assert.Equal(t, []int{1}, forward(&l))

	l.PopEnd()
	assert.True(t, l.IsEmpty())
}

func TestBidiNode_AddBeforeAddBehind(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(4)
	l.PushEnd(&items[1].BidiNode)
	items[1].AddBefore(&items[0].BidiNode)
	items[1].AddBehind(&items[3].BidiNode)
	items[3].AddBefore(&items[2].BidiNode)

	assert.Equal(t, []int{0, 1, 2, 3}, forward(&l))
	assert.Equal(t, []int{3, 2, 1, 0}, backward(&l))
}

func TestBidiNode_Remove(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(3)
	for _, item := range items {
		l.PushEnd(&item.BidiNode)
	}
	items[1].Remove()
	assert.Equal(t, []int{0, 2}, forward(&l))
	assert.Equal(t, []int{2, 0}, backward(&l))
}

func TestBidiNode_RemoveRange(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(5)
	for _, item := range items {
		l.PushEnd(&item.BidiNode)
	}

	items[1].RemoveRange(&items[3].BidiNode)
	assert.Equal(t, []int{0, 4}, forward(&l))
	assert.Equal(t, []int{4, 0}, backward(&l))
	assert.Equal(t, 3, items[1].Count(nil))
	assert.Same(t, &items[2].BidiNode, items[1].Next())
	assert.Same(t, &items[2].BidiNode, items[3].Prev())
}

func TestBidiList_PushRange(t *testing.T) {
	var l BidiList[bidiItem]
	items := newBidiItems(6)
	l.PushEnd(&items[2].BidiNode)
	l.PushEnd(&items[3].BidiNode)

	items[0].setNext(&items[1].BidiNode)
	items[1].prev = &items[0].BidiNode
	l.PushFrontRange(&items[0].BidiNode, &items[1].BidiNode)

	items[4].setNext(&items[5].BidiNode)
	items[5].prev = &items[4].BidiNode
	l.PushEndRange(&items[4].BidiNode, &items[5].BidiNode)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, forward(&l))
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, backward(&l))
	assert.Equal(t, 6, l.Count())
	assert.Equal(t, 3, l.First().Count(&items[3].BidiNode))
}

func TestBidiList_Reset(t *testing.T) {
	var l BidiList[bidiItem]
	l.PushEnd(&newBidiItems(1)[0].BidiNode)
	l.Reset()
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.Count())
}
