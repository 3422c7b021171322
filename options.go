// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"sync"

	"go.uber.org/zap"
)

// SimOption defines the interface required to provide an option to NewSim.
type SimOption interface {
	applySimOption(*Sim)
}

// BankOption defines the interface required to provide an option to NewBank.
type BankOption interface {
	applyBankOption(*Bank)
}

// DriverOption defines the interface required to provide an option to
// NewDriver.
type DriverOption interface {
	applyDriverOption(*Driver)
}

// RegistryOption defines the interface required to provide an option to
// NewRegistry.
type RegistryOption interface {
	applyRegistryOption(*Registry)
}

// PlatformOption defines the interface required to provide an option to
// NewPlatform.
type PlatformOption interface {
	applyPlatformOption(*Platform)
}

// ValueOption is an option that sets the initial value of a simulated
// register.
type ValueOption struct {
	index int
	value uint32
}

// WithValue returns an option that sets the initial raw value of the
// simulated register with the given index.
func WithValue(index int, value uint32) ValueOption {
	return ValueOption{index, value}
}

func (o ValueOption) applySimOption(s *Sim) {
	s.words[registerTable[o.index]] = o.value
}

// FaultyRegisterOption is an option that makes a simulated register fail to
// map.
type FaultyRegisterOption int

// WithFaultyRegister returns an option that causes the simulated register
// with the given index to fail to map.
func WithFaultyRegister(index int) FaultyRegisterOption {
	return FaultyRegisterOption(index)
}

func (o FaultyRegisterOption) applySimOption(s *Sim) {
	s.faulty[registerTable[int(o)]] = true
}

// LockerOption is an option that provides the lock serialising register
// access.
type LockerOption struct {
	sync.Locker
}

// WithLocker returns an option that replaces the default sync.Mutex
// serialising read-modify-write access to the Bank.
//
// The lock must not be shared with anything that may call back into the
// Bank while holding it.
func WithLocker(l sync.Locker) LockerOption {
	return LockerOption{l}
}

func (o LockerOption) applyBankOption(b *Bank) {
	b.lock = o.Locker
}

// LoggerOption is an option that provides the logger.
type LoggerOption struct {
	*zap.Logger
}

// WithLogger returns an option that defines the logger used to report
// mapping failures and lifecycle transitions.
//
// By default nothing is logged.
func WithLogger(l *zap.Logger) LoggerOption {
	return LoggerOption{l}
}

func (o LoggerOption) applyBankOption(b *Bank) {
	b.logger = o.Logger
}

func (o LoggerOption) applyDriverOption(d *Driver) {
	d.logger = o.Logger
}

func (o LoggerOption) applyRegistryOption(r *Registry) {
	r.logger = o.Logger
}

func (o LoggerOption) applyPlatformOption(p *Platform) {
	p.logger = o.Logger
}

// NameOption defines the name for a Driver.
type NameOption string

// WithName returns an option that defines the name of a Driver.
//
// The name determines the platform device the driver binds to, so it must be
// unique on the Bus.  The default is DriverName.
func WithName(name string) NameOption {
	return NameOption(name)
}

func (o NameOption) applyDriverOption(d *Driver) {
	d.name = string(o)
}
