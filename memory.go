package monomem

import (
	"unsafe"
)

const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// Memory is one block of raw memory obtained from a backend (Go heap, mmap or
// shared memory). Every chunk of a MonoAllocator lives in exactly one Memory.
type Memory interface {
	// Attach attach memory
	Attach() error
	// Detach detach memory
	Detach() error
	// Ptr first ptr
	Ptr() unsafe.Pointer
	// Size memory total size
	Size() uint64
}
