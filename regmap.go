// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// ACPIMMIOBase is the physical base of the FCH ACPI MMIO space.
	ACPIMMIOBase int64 = 0xFED80000

	// GPIOBase is the physical base of the FCH GPIO register bank.
	GPIOBase = ACPIMMIOBase + 0x1500

	// GPIOSize is the size of the FCH GPIO register bank, in bytes.
	GPIOSize = 0x300

	// RegisterWidth is the width of a GPIO control register, in bytes.
	RegisterWidth = 4

	// ControlBit is the output bit within a GPIO control register.
	//
	// The output is active-low, so the line is on when the bit is clear.
	ControlBit = 22

	// NumRegisters is the number of control registers mapped by a Bank.
	NumRegisters = 4
)

// registerTable maps a register index to the FCH GPIO number, which is also
// the word offset of its control register within the bank.
var registerTable = [NumRegisters]int{89, 68, 69, 70}

// RegisterAddr returns the physical address of the control register for the
// given register index.
func RegisterAddr(index int) (int64, error) {
	if index < 0 || index >= NumRegisters {
		return 0, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	return GPIOBase + int64(registerTable[index]*RegisterWidth), nil
}

// GPIONumber returns the FCH GPIO number backing the given register index.
func GPIONumber(index int) (int, error) {
	if index < 0 || index >= NumRegisters {
		return 0, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	return registerTable[index], nil
}

// Register is a mapped 32-bit control register.
//
// A Register is only valid until Unmap is called.
type Register interface {
	Read32() uint32
	Write32(v uint32)
	Unmap() error
}

// Mapper maps physical register windows.
type Mapper interface {
	// Map maps size bytes starting at the physical address addr.
	Map(addr int64, size int) (Register, error)
}

// pageSpan returns the page aligned base of the page containing addr, and the
// offset of addr within that page.
//
// The span [addr, addr+size) must not cross a page boundary.
func pageSpan(addr int64, size, pageSize int) (int64, int, error) {
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		return 0, 0, errors.Errorf("invalid page size: %d", pageSize)
	}
	if addr < 0 || size <= 0 {
		return 0, 0, errors.Errorf("invalid span: 0x%x+%d", addr, size)
	}
	base := addr &^ int64(pageSize-1)
	off := int(addr - base)
	if off+size > pageSize {
		return 0, 0, errors.Errorf("span 0x%x+%d crosses a page boundary", addr, size)
	}
	return base, off, nil
}

func hexAddr(addr int64) string {
	return fmt.Sprintf("0x%x", addr)
}
