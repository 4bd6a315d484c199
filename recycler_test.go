package monomem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leslie-fei/monomem/lists"
)

type node struct {
	lists.SidiNode[node]
	v int
}

func linked(n int) []node {
	nodes := make([]node, n)
	for i := range nodes {
		nodes[i].v = i
		if i+1 < n {
			nodes[i].SetNext(&nodes[i+1].SidiNode)
		}
	}
	return nodes
}

func testRecycler(t *testing.T, r Recycler[node]) {
	assert.Nil(t, r.Get())
	assert.Equal(t, 0, r.Count())

	single := &node{v: 100}
	r.Recycle(single)
	assert.Equal(t, 1, r.Count())

	nodes := linked(3)
	r.RecycleRange(&nodes[0], &nodes[2])
	assert.Equal(t, 4, r.Count())

	assert.Same(t, &nodes[0], r.Get())
	assert.Same(t, &nodes[1], r.Get())
	assert.Same(t, &nodes[2], r.Get())
	assert.Same(t, single, r.Get())
	assert.Nil(t, r.Get())
}

func TestPrivateRecycler(t *testing.T) {
	r := &PrivateRecycler[node]{}
	testRecycler(t, r)

	r.Recycle(&node{})
	r.DisposeIfPrivate()
	assert.Equal(t, 0, r.Count())
}

func TestSharedRecycler(t *testing.T) {
	shared := &SharedRecyclables[node]{}
	r1, r2 := NewSharedRecycler(shared), NewSharedRecycler(shared)
	testRecycler(t, r1)

	n := &node{}
	r1.Recycle(n)
	r2.DisposeIfPrivate()
	assert.Equal(t, 1, shared.Count())
	assert.Same(t, n, r2.Get())

	r1.Recycle(n)
	shared.Reset()
	assert.Equal(t, 0, r1.Count())
}

func TestNoRecycler(t *testing.T) {
	var r NoRecycler[node]
	r.Recycle(&node{})
	nodes := linked(2)
	r.RecycleRange(&nodes[0], &nodes[1])
	r.RecycleChunk(unsafe.Pointer(&nodes[0]), unsafe.Sizeof(nodes[0])*2)
	assert.Nil(t, r.Get())
	assert.Equal(t, 0, r.Count())
}

func TestRecycler_RecycleChunk(t *testing.T) {
	a, _ := newTestAllocator(t, KB, nil)
	size := unsafe.Sizeof(node{})
	mem := a.Alloc(3*size+size/2+1, 1)

	r := &PrivateRecycler[node]{}
	r.RecycleChunk(mem, 3*size+size/2+1)
	assert.Equal(t, 3, r.Count())
	for i := 0; i < 3; i++ {
		n := r.Get()
		require.NotNil(t, n)
		assert.Zero(t, uintptr(unsafe.Pointer(n))%unsafe.Alignof(node{}))
	}

	r.RecycleChunk(mem, size/2)
	assert.Equal(t, 0, r.Count())
}
