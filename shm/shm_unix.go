//go:build (darwin && !ios) || linux

package shm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func (m *Memory) Attach() error {
	if m.basep != nil {
		return nil
	}

	if 0 == m.shmid {
		flag := shmAccess
		if m.createIfNotExists {
			flag |= unix.IPC_CREAT
		}
		shmid, err := unix.SysvShmGet(IPCKey(m.shmkey), int(m.bytes), flag)
		if err != nil {
			return err
		}
		m.shmid = uint64(shmid)
	}

	data, err := unix.SysvShmAttach(int(m.shmid), 0, 0)
	if err != nil {
		return err
	}

	m.data = data
	m.basep = unsafe.Pointer(unsafe.SliceData(data))
	return nil
}

func (m *Memory) Detach() (err error) {
	if m.data != nil {
		err = unix.SysvShmDetach(m.data)
		m.data = nil
		m.basep = nil
	}
	if err == nil && m.removeOnDetach && m.shmid != 0 {
		_, err = unix.SysvShmCtl(int(m.shmid), unix.IPC_RMID, nil)
		m.shmid = 0
	}
	return
}
