package gom

import (
	"fmt"
	"unsafe"
)

// Memory based on go memory
type Memory struct {
	mem   []byte
	basep unsafe.Pointer
	bytes uint64
}

func NewMemory(bytes uint64) *Memory {
	return &Memory{bytes: bytes}
}

// Attach allocates the backing slice on first use. Go hands out large
// allocations page aligned and small ones at least pointer aligned.
func (m *Memory) Attach() error {
	if m.bytes == 0 {
		return fmt.Errorf("gom: zero sized memory")
	}
	if nil == m.basep {
		m.mem = make([]byte, m.bytes)
		m.basep = unsafe.Pointer(unsafe.SliceData(m.mem))
	}
	return nil
}

func (m *Memory) Detach() error {
	if nil != m.basep {
		m.basep = unsafe.Pointer(nil)
		m.mem = nil
	}
	return nil
}

func (m *Memory) Ptr() unsafe.Pointer {
	return m.basep
}

func (m *Memory) Size() uint64 {
	return m.bytes
}
