package monomem

import (
	"sync"
)

// GlobalChunkSize is the initial chunk size of the global allocator.
const GlobalChunkSize = 8 * KB

// SharedAllocator serializes access to one allocator shared between
// goroutines. The allocator itself stays unsynchronized; callers hold the lock
// for the whole time they use it.
type SharedAllocator struct {
	locker Locker
	a      *MonoAllocator
	create func() (*MonoAllocator, error)
}

// NewSharedAllocator wraps a. A nil locker uses a sync.Mutex.
func NewSharedAllocator(a *MonoAllocator, locker Locker) *SharedAllocator {
	if locker == nil {
		locker = &sync.Mutex{}
	}
	return &SharedAllocator{locker: locker, a: a}
}

// Acquire locks the allocator and returns it. Every Acquire must be followed by
// a Release.
func (s *SharedAllocator) Acquire() *MonoAllocator {
	s.locker.Lock()
	if s.a == nil {
		a, err := s.create()
		if err != nil {
			s.locker.Unlock()
			panic(err)
		}
		s.a = a
	}
	return s.a
}

func (s *SharedAllocator) Release() {
	s.locker.Unlock()
}

// Do runs fn with the allocator locked.
func (s *SharedAllocator) Do(fn func(a *MonoAllocator)) {
	a := s.Acquire()
	defer s.Release()
	fn(a)
}

var (
	globalLock      spinLocker
	globalAllocator = &SharedAllocator{
		locker: &globalLock,
		create: func() (*MonoAllocator, error) {
			a, err := NewMonoAllocator(GlobalChunkSize, nil)
			if err != nil {
				return nil, err
			}
			a.guard = &globalLock
			return a, nil
		},
	}
)

// GlobalAllocator returns the process wide allocator. It is created with the
// first Acquire and panics when used without holding its lock.
func GlobalAllocator() *SharedAllocator {
	return globalAllocator
}

func AcquireGlobalAllocator() *MonoAllocator {
	return globalAllocator.Acquire()
}

func ReleaseGlobalAllocator() {
	globalAllocator.Release()
}
