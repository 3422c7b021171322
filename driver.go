// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DriverName is the default name of the driver, and of the platform device it
// binds to.
const DriverName = "apu2-led"

// DriverState is the lifecycle state of a Driver.
type DriverState int

const (
	// DriverUninitialized is the state of a Driver that has not been
	// started, or that failed to start.
	DriverUninitialized DriverState = iota

	// DriverStarted is the state of a Driver with its outputs advertised.
	DriverStarted

	// DriverSuspended is the state of a started Driver during a system
	// sleep.
	DriverSuspended

	// DriverStopped is the state of a Driver that has been stopped.
	//
	// A stopped Driver cannot be restarted.
	DriverStopped

	// driverTransition is the state while Start or Stop is calling into the
	// Bus.
	driverTransition
)

func (s DriverState) String() string {
	switch s {
	case DriverUninitialized:
		return "uninitialized"
	case DriverStarted:
		return "started"
	case DriverSuspended:
		return "suspended"
	case DriverStopped:
		return "stopped"
	default:
		return "transitioning"
	}
}

// Driver binds the Bank registers to named outputs and manages their
// lifecycle.
//
// The Driver implements PlatformDriver, and is bound to its platform device
// by Start.
type Driver struct {
	name   string
	bank   *Bank
	dir    Directory
	bus    Bus
	logger *zap.Logger

	outputs []*Output

	// mu covers state and adverts.  It is never held while calling the Bus.
	mu      sync.Mutex
	state   DriverState
	adverts []Registration
}

// NewDriver constructs a Driver for the outputs controlled by the Bank,
// advertising them in the Directory once bound on the Bus.
//
// The available options are [WithName] and [WithLogger].
func NewDriver(b *Bank, dir Directory, bus Bus, options ...DriverOption) *Driver {
	d := &Driver{
		name:   DriverName,
		bank:   b,
		dir:    dir,
		bus:    bus,
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o.applyDriverOption(d)
	}
	for _, info := range Outputs {
		d.outputs = append(d.outputs, NewOutput(b, info))
	}
	return d
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Bank returns the Bank controlled by the driver.
func (d *Driver) Bank() *Bank {
	return d.bank
}

// Outputs returns the outputs controlled by the driver, in advertising order.
func (d *Driver) Outputs() []*Output {
	return d.outputs
}

// State returns the lifecycle state of the driver.
func (d *Driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start registers the driver on the Bus, maps the Bank registers and binds
// the driver to its platform device, advertising the outputs.
//
// Registers that fail to map are logged and left unmapped, and do not cause
// Start to fail.
//
// If Start fails then nothing is left registered or mapped, and Start may be
// called again.
func (d *Driver) Start() error {
	if err := d.transition(DriverUninitialized); err != nil {
		return errors.Wrap(err, "start")
	}
	if err := d.bus.RegisterDriver(d); err != nil {
		d.setState(DriverUninitialized)
		return errors.Wrapf(err, "register driver '%s'", d.name)
	}
	if err := d.bank.Map(); err != nil {
		d.logger.Warn("register mapping incomplete", zap.String("driver", d.name), zap.Error(err))
	}
	if err := d.bus.RegisterDevice(d.name); err != nil {
		d.bus.UnregisterDriver(d)
		d.bank.Unmap()
		d.setState(DriverUninitialized)
		return errors.Wrapf(err, "register device '%s'", d.name)
	}
	d.setState(DriverStarted)
	d.logger.Info("started", zap.String("driver", d.name))
	return nil
}

// Stop withdraws the outputs, unregisters the driver from the Bus and unmaps
// the Bank registers.
//
// The returned error reports any failure to unmap.  The driver is stopped
// regardless.
func (d *Driver) Stop() error {
	if err := d.transition(DriverStarted, DriverSuspended); err != nil {
		return errors.Wrap(err, "stop")
	}
	d.bus.UnregisterDevice(d.name)
	d.bus.UnregisterDriver(d)
	err := d.bank.Unmap()
	d.setState(DriverStopped)
	d.logger.Info("stopped", zap.String("driver", d.name))
	return err
}

// Probe advertises each output in the Directory.
//
// Advertising is all or nothing - if any output fails to register then those
// already registered are withdrawn.
func (d *Driver) Probe() error {
	adverts := make([]Registration, 0, len(d.outputs))
	for _, o := range d.outputs {
		r, err := d.dir.Register(o.Name(), o)
		if err != nil {
			for i := len(adverts) - 1; i >= 0; i-- {
				adverts[i].Unregister()
			}
			return errors.Wrapf(err, "advertise '%s'", o.Name())
		}
		adverts = append(adverts, r)
	}
	d.mu.Lock()
	d.adverts = adverts
	d.mu.Unlock()
	return nil
}

// Remove withdraws every advertised output from the Directory.
func (d *Driver) Remove() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.adverts {
		if r != nil {
			r.Unregister()
		}
	}
	d.adverts = nil
	return nil
}

// Suspend suspends each advertised output.
func (d *Driver) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DriverStarted {
		return errors.Wrapf(ErrInvalidState, "suspend from %s", d.state)
	}
	for _, r := range d.adverts {
		r.Suspend()
	}
	d.state = DriverSuspended
	d.logger.Debug("suspended", zap.String("driver", d.name))
	return nil
}

// Resume resumes each advertised output.
func (d *Driver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DriverSuspended {
		return errors.Wrapf(ErrInvalidState, "resume from %s", d.state)
	}
	for _, r := range d.adverts {
		r.Resume()
	}
	d.state = DriverStarted
	d.logger.Debug("resumed", zap.String("driver", d.name))
	return nil
}

// transition moves the driver into driverTransition if it is in one of the
// states in from.
func (d *Driver) transition(from ...DriverState) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range from {
		if d.state == s {
			d.state = driverTransition
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidState, "driver '%s' is %s", d.name, d.state)
}

func (d *Driver) setState(s DriverState) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}
