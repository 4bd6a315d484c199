package shm

import (
	"errors"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// ErrUnsupported is returned by Attach on platforms without SysV shared memory.
var ErrUnsupported = errors.New("shm: shared memory not supported on this platform")

const shmAccess = 00600

// Memory based on shm
type Memory struct {
	createIfNotExists bool   // create shm if not exists
	removeOnDetach    bool   // mark the segment for removal when detaching
	shmkey            string // shared memory key
	shmid             uint64 // shared memory handle
	bytes             uint64 // shared memory size
	data              []byte // attached segment
	basep             unsafe.Pointer
}

func NewMemory(key string, bytes uint64, createIfNotExists bool) *Memory {
	return &Memory{
		createIfNotExists: createIfNotExists,
		shmkey:            key,
		bytes:             bytes,
	}
}

// RemoveOnDetach marks the segment for destruction once it is detached. Segments
// used as private chunk memory must not outlive the process.
func (m *Memory) RemoveOnDetach() *Memory {
	m.removeOnDetach = true
	return m
}

// IPCKey derives the SysV key of a string key. Zero is IPC_PRIVATE and never returned.
func IPCKey(key string) int {
	k := int(uint32(xxhash.Sum64String(key)) & 0x7fffffff)
	if k == 0 {
		k = 1
	}
	return k
}

func (m *Memory) Key() string {
	return m.shmkey
}

func (m *Memory) Handle() uint64 {
	return m.shmid
}

func (m *Memory) Size() uint64 {
	return m.bytes
}

func (m *Memory) Ptr() unsafe.Pointer {
	return m.basep
}
