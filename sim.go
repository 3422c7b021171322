// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"sync"

	"github.com/pkg/errors"
)

// Sim is an in-process simulation of the FCH GPIO register bank.
//
// It implements Mapper, so it can stand in for DevMem wherever the real
// hardware is not available, and it provides direct access to the simulated
// register values so the effect of writes can be checked.
type Sim struct {
	mu sync.Mutex

	// The simulated register space, one word per register.
	words [GPIOSize / RegisterWidth]uint32

	// Registers currently mapped, by word offset.
	mapped map[int]bool

	// Registers that fail to map, by word offset.
	faulty map[int]bool

	// The number of register writes performed.
	writes int
}

// NewSim constructs a Sim based on the provided options.
//
// The available options are [WithValue] and [WithFaultyRegister].
//
// All registers initially read as 0, which corresponds to every output
// being on.
func NewSim(options ...SimOption) *Sim {
	s := &Sim{
		mapped: make(map[int]bool),
		faulty: make(map[int]bool),
	}
	for _, o := range options {
		o.applySimOption(s)
	}
	return s
}

// Map maps the simulated register at the physical address addr.
//
// The address must be a word aligned address within the GPIO bank and size
// must be RegisterWidth.  A register may only be mapped once at a time.
func (s *Sim) Map(addr int64, size int) (Register, error) {
	if size != RegisterWidth {
		return nil, errors.Errorf("unsupported mapping size: %d", size)
	}
	if addr < GPIOBase || addr+int64(size) > GPIOBase+GPIOSize {
		return nil, errors.Errorf("address 0x%x outside GPIO bank", addr)
	}
	if (addr-GPIOBase)%RegisterWidth != 0 {
		return nil, errors.Errorf("address 0x%x not word aligned", addr)
	}
	w := int(addr-GPIOBase) / RegisterWidth
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faulty[w] {
		return nil, errors.Errorf("can't map address 0x%x", addr)
	}
	if s.mapped[w] {
		return nil, errors.Errorf("address 0x%x already mapped", addr)
	}
	s.mapped[w] = true
	return &simRegister{sim: s, word: w}, nil
}

// Mapped returns the number of registers currently mapped.
func (s *Sim) Mapped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mapped)
}

// Writes returns the number of register writes performed through mappings.
//
// Writes made using SetValue are not included.
func (s *Sim) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Value returns the raw value of the register with the given index.
func (s *Sim) Value(index int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words[registerTable[index]]
}

// SetValue sets the raw value of the register with the given index.
//
// This models a change made by some agent other than the mapped registers,
// e.g. firmware.
func (s *Sim) SetValue(index int, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[registerTable[index]] = v
}

// simRegister is a mapping of a single simulated register.
type simRegister struct {
	sim  *Sim
	word int

	// set once the register has been unmapped.
	unmapped bool
}

func (r *simRegister) Read32() uint32 {
	r.sim.mu.Lock()
	defer r.sim.mu.Unlock()
	if r.unmapped {
		return 0
	}
	return r.sim.words[r.word]
}

func (r *simRegister) Write32(v uint32) {
	r.sim.mu.Lock()
	defer r.sim.mu.Unlock()
	if r.unmapped {
		return
	}
	r.sim.words[r.word] = v
	r.sim.writes++
}

func (r *simRegister) Unmap() error {
	r.sim.mu.Lock()
	defer r.sim.mu.Unlock()
	if r.unmapped {
		return ErrUnmapped
	}
	r.unmapped = true
	delete(r.sim.mapped, r.word)
	return nil
}
