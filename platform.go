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

// PlatformDriver is the set of callbacks a Bus invokes on a driver.
type PlatformDriver interface {
	// Name identifies the driver, and the device it binds to.
	Name() string

	// Probe is called when the driver is bound to its device.
	Probe() error

	// Remove is called when the driver is unbound from its device.
	Remove() error

	// Suspend is called ahead of a system sleep.
	Suspend() error

	// Resume is called after a system sleep.
	Resume() error
}

// Bus binds drivers to devices.
type Bus interface {
	RegisterDriver(d PlatformDriver) error
	UnregisterDriver(d PlatformDriver)
	RegisterDevice(name string) error
	UnregisterDevice(name string)
}

// Platform is an in-process Bus.
//
// A device is bound to the driver with the same name, regardless of which is
// registered first.  Driver callbacks are serialised by the Platform, and
// must not call back into it.
type Platform struct {
	logger *zap.Logger

	mu      sync.Mutex
	drivers []PlatformDriver
	devices []*device
}

type device struct {
	name string

	// the driver bound to the device, if any.
	driver PlatformDriver
}

// NewPlatform constructs an empty Platform.
//
// The available option is [WithLogger].
func NewPlatform(options ...PlatformOption) *Platform {
	p := &Platform{logger: zap.NewNop()}
	for _, o := range options {
		o.applyPlatformOption(p)
	}
	return p
}

// RegisterDriver adds the driver to the Platform, and binds it to its device
// if that is already registered.
func (p *Platform) RegisterDriver(d PlatformDriver) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findDriver(d.Name()) != nil {
		return errors.Wrapf(ErrNameInUse, "driver '%s'", d.Name())
	}
	if dev := p.findDevice(d.Name()); dev != nil {
		if err := p.bind(dev, d); err != nil {
			return err
		}
	}
	p.drivers = append(p.drivers, d)
	p.logger.Debug("registered driver", zap.String("driver", d.Name()))
	return nil
}

// UnregisterDriver unbinds the driver from its device, if bound, and removes
// it from the Platform.
func (p *Platform) UnregisterDriver(d PlatformDriver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, x := range p.drivers {
		if x != d {
			continue
		}
		if dev := p.findDevice(d.Name()); dev != nil && dev.driver == d {
			p.unbind(dev)
		}
		p.drivers = append(p.drivers[:i], p.drivers[i+1:]...)
		p.logger.Debug("unregistered driver", zap.String("driver", d.Name()))
		return
	}
}

// RegisterDevice adds a device to the Platform, and binds it to the driver
// with the same name if that is already registered.
//
// If the driver fails to probe then the device is not added and the probe
// error is returned.
func (p *Platform) RegisterDevice(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findDevice(name) != nil {
		return errors.Wrapf(ErrNameInUse, "device '%s'", name)
	}
	dev := &device{name: name}
	if d := p.findDriver(name); d != nil {
		if err := p.bind(dev, d); err != nil {
			return err
		}
	}
	p.devices = append(p.devices, dev)
	return nil
}

// UnregisterDevice unbinds the named device from its driver, if bound, and
// removes it from the Platform.
func (p *Platform) UnregisterDevice(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, dev := range p.devices {
		if dev.name != name {
			continue
		}
		if dev.driver != nil {
			p.unbind(dev)
		}
		p.devices = append(p.devices[:i], p.devices[i+1:]...)
		return
	}
}

// Bound returns true if the named device is bound to a driver.
func (p *Platform) Bound(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	dev := p.findDevice(name)
	return dev != nil && dev.driver != nil
}

// Drivers returns the number of registered drivers.
func (p *Platform) Drivers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.drivers)
}

// Suspend suspends every bound driver, in device registration order.
//
// If a driver fails to suspend then the drivers already suspended are
// resumed and the error is returned.
func (p *Platform) Suspend() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, dev := range p.devices {
		if dev.driver == nil {
			continue
		}
		if err := dev.driver.Suspend(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if d := p.devices[j].driver; d != nil {
					d.Resume()
				}
			}
			return errors.Wrapf(err, "suspend '%s'", dev.name)
		}
	}
	return nil
}

// Resume resumes every bound driver, in device registration order.
//
// All drivers are resumed even if some fail, and the failures are combined in
// the returned error.
func (p *Platform) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	for _, dev := range p.devices {
		if dev.driver == nil {
			continue
		}
		if rerr := dev.driver.Resume(); rerr != nil {
			err = multierr.Append(err, errors.Wrapf(rerr, "resume '%s'", dev.name))
		}
	}
	return err
}

// bind probes the driver for the device.
//
// Must be called with p.mu held.
func (p *Platform) bind(dev *device, d PlatformDriver) error {
	if err := d.Probe(); err != nil {
		p.logger.Warn("probe failed", zap.String("device", dev.name), zap.Error(err))
		return errors.Wrapf(err, "probe '%s'", dev.name)
	}
	dev.driver = d
	p.logger.Debug("bound device", zap.String("device", dev.name))
	return nil
}

// unbind removes the driver from the device.
//
// Must be called with p.mu held.
func (p *Platform) unbind(dev *device) {
	if err := dev.driver.Remove(); err != nil {
		p.logger.Warn("remove failed", zap.String("device", dev.name), zap.Error(err))
	}
	dev.driver = nil
}

func (p *Platform) findDriver(name string) PlatformDriver {
	for _, d := range p.drivers {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func (p *Platform) findDevice(name string) *device {
	for _, dev := range p.devices {
		if dev.name == name {
			return dev
		}
	}
	return nil
}
