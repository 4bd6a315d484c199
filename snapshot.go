package monomem

// Snapshot is the allocation state of a MonoAllocator at one point in time.
// The zero value stands for the state right after construction.
type Snapshot struct {
	chunk   *chunk
	actFill uintptr
	seq     uint64 // seq of chunk when taken
	mark    uint64 // allocator chunk sequence when taken
}

// IsZero reports whether s resets an allocator completely.
func (s Snapshot) IsZero() bool {
	return s.chunk == nil
}
