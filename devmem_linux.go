// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

//go:build linux

package apu2led

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultDevMemPath is the path to the physical memory device.
const DefaultDevMemPath = "/dev/mem"

// DevMem maps physical registers through /dev/mem.
//
// Access to /dev/mem typically requires root, and a kernel that does not
// restrict access to the IO memory being mapped.
type DevMem struct {
	file *os.File
}

// OpenDevMem opens the physical memory device at path.
func OpenDevMem(path string) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &DevMem{file: f}, nil
}

// Close closes the physical memory device.
//
// Registers already mapped remain valid until unmapped.
func (m *DevMem) Close() error {
	return m.file.Close()
}

// Map maps the page containing the size bytes at the physical address addr.
func (m *DevMem) Map(addr int64, size int) (Register, error) {
	if size != RegisterWidth {
		return nil, errors.Errorf("unsupported mapping size: %d", size)
	}
	if addr%RegisterWidth != 0 {
		return nil, errors.Errorf("address 0x%x not word aligned", addr)
	}
	pageSize := os.Getpagesize()
	base, off, err := pageSpan(addr, size, pageSize)
	if err != nil {
		return nil, err
	}
	mem, err := unix.Mmap(int(m.file.Fd()), base, pageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap 0x%x", base)
	}
	return &mmioRegister{mem: mem, off: off}, nil
}

// mmioRegister is a 32-bit register within a mapped page.
type mmioRegister struct {
	mu  sync.Mutex
	mem []byte
	off int
}

func (r *mmioRegister) word() *uint32 {
	return (*uint32)(unsafe.Pointer(&r.mem[r.off]))
}

func (r *mmioRegister) Read32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return 0
	}
	return atomic.LoadUint32(r.word())
}

func (r *mmioRegister) Write32(v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return
	}
	atomic.StoreUint32(r.word(), v)
}

func (r *mmioRegister) Unmap() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return ErrUnmapped
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	return err
}
