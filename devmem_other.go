// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

//go:build !linux

package apu2led

// DefaultDevMemPath is the path to the physical memory device.
const DefaultDevMemPath = "/dev/mem"

// DevMem maps physical registers through /dev/mem.
//
// It is only available on Linux.
type DevMem struct{}

// OpenDevMem always fails with ErrUnsupported.
func OpenDevMem(path string) (*DevMem, error) {
	return nil, ErrUnsupported
}

// Close does nothing.
func (m *DevMem) Close() error {
	return nil
}

// Map always fails with ErrUnsupported.
func (m *DevMem) Map(addr int64, size int) (Register, error) {
	return nil, ErrUnsupported
}
