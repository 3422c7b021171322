// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the logical state of an output.
type State int

const (
	// Off indicates the output is not being driven active.
	Off State = iota

	// On indicates the output is being driven active.
	On
)

func (s State) String() string {
	if s == Off {
		return "off"
	}
	return "on"
}

// Bank is the set of mapped control registers for the FCH GPIO outputs.
//
// All read-modify-write sequences on a Bank are serialised by a single lock,
// regardless of which register they touch.
type Bank struct {
	mapper Mapper
	logger *zap.Logger

	// lock covers read-modify-write access to all regs.
	lock sync.Locker

	// mu covers the regs array itself, i.e. mapping and unmapping.
	mu   sync.RWMutex
	regs [NumRegisters]Register
}

// NewBank constructs a Bank that maps its registers using the provided mapper.
//
// The registers are not mapped until Map is called.
//
// The available options are [WithLocker] and [WithLogger].
func NewBank(m Mapper, options ...BankOption) *Bank {
	b := &Bank{
		mapper: m,
		lock:   &sync.Mutex{},
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o.applyBankOption(b)
	}
	return b
}

// Map maps the control register for every register index that is not already
// mapped.
//
// A failure to map one register does not prevent the others being mapped.
// The returned error combines all of the failures, and the failed registers
// remain unmapped.
func (b *Bank) Map() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for i := range b.regs {
		if b.regs[i] != nil {
			continue
		}
		addr, _ := RegisterAddr(i)
		r, merr := b.mapper.Map(addr, RegisterWidth)
		if merr != nil {
			b.logger.Warn("failed to map register",
				zap.Int("index", i),
				zap.String("addr", hexAddr(addr)),
				zap.Error(merr))
			err = multierr.Append(err, errors.Wrapf(merr, "map register %d", i))
			continue
		}
		b.regs[i] = r
		b.logger.Debug("mapped register", zap.Int("index", i), zap.String("addr", hexAddr(addr)))
	}
	return err
}

// Unmap releases every mapped register.
//
// Each register is released exactly once, and the Bank may be mapped again
// afterwards.
func (b *Bank) Unmap() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for i, r := range b.regs {
		if r == nil {
			continue
		}
		if uerr := r.Unmap(); uerr != nil {
			err = multierr.Append(err, errors.Wrapf(uerr, "unmap register %d", i))
		}
		b.regs[i] = nil
	}
	return err
}

// IsMapped returns true if the register with the given index is mapped.
func (b *Bank) IsMapped(index int) bool {
	if index < 0 || index >= NumRegisters {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.regs[index] != nil
}

// Set drives the output controlled by the register with the given index to
// the given state.
//
// Only the ControlBit is modified, all other bits in the register are written
// back as read.
//
// If the register is not mapped then the hardware is not touched and
// ErrNotMapped is returned.
func (b *Bank) Set(index int, s State) error {
	if index < 0 || index >= NumRegisters {
		return errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	r := b.regs[index]
	if r == nil {
		return errors.Wrapf(ErrNotMapped, "index %d", index)
	}
	b.lock.Lock()
	v := r.Read32()
	if s == On {
		v &^= 1 << ControlBit
	} else {
		v |= 1 << ControlBit
	}
	r.Write32(v)
	b.lock.Unlock()
	return nil
}

// Get returns the state the output controlled by the register with the given
// index is being driven to.
func (b *Bank) Get(index int) (State, error) {
	if index < 0 || index >= NumRegisters {
		return Off, errors.Wrapf(ErrInvalidIndex, "index %d", index)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	r := b.regs[index]
	if r == nil {
		return Off, errors.Wrapf(ErrNotMapped, "index %d", index)
	}
	b.lock.Lock()
	v := r.Read32()
	b.lock.Unlock()
	if v&(1<<ControlBit) == 0 {
		return On, nil
	}
	return Off, nil
}
