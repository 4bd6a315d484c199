package monomem

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type Locker interface {
	sync.Locker
}

// spinLocker is a CAS spin lock. It guards the global allocator, whose critical
// sections are a handful of pointer bumps.
type spinLocker struct {
	write int32
}

func (l *spinLocker) Lock() {
	for !atomic.CompareAndSwapInt32(&l.write, 0, 1) {
		runtime.Gosched()
	}
}

func (l *spinLocker) TryLock() bool {
	return atomic.CompareAndSwapInt32(&l.write, 0, 1)
}

func (l *spinLocker) Unlock() {
	if !atomic.CompareAndSwapInt32(&l.write, 1, 0) {
		panic("unlock an unlocked-lock")
	}
}

func (l *spinLocker) locked() bool {
	return atomic.LoadInt32(&l.write) == 1
}
