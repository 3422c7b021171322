// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apu2led "github.com/warthog618/go-apu2led"
)

// failingDirectory is a Registry that rejects the nth registration.
type failingDirectory struct {
	*apu2led.Registry
	failAt int
	count  int
}

func (d *failingDirectory) Register(name string, s apu2led.StateSetter) (apu2led.Registration, error) {
	d.count++
	if d.count == d.failAt {
		return nil, errors.Errorf("rejected '%s'", name)
	}
	return d.Registry.Register(name, s)
}

// failingBus is a Platform that rejects driver registration.
type failingBus struct {
	*apu2led.Platform
}

func (b *failingBus) RegisterDriver(d apu2led.PlatformDriver) error {
	return errors.New("bus unavailable")
}

func newDriver(t *testing.T, options ...apu2led.SimOption) (*apu2led.Driver, *apu2led.Sim, *apu2led.Registry, *apu2led.Platform) {
	t.Helper()
	s := apu2led.NewSim(options...)
	reg := apu2led.NewRegistry()
	p := apu2led.NewPlatform()
	d := apu2led.NewDriver(apu2led.NewBank(s), reg, p)
	return d, s, reg, p
}

func TestNewDriver(t *testing.T) {
	d, s, reg, _ := newDriver(t)
	assert.Equal(t, apu2led.DriverName, d.Name())
	assert.Equal(t, apu2led.DriverUninitialized, d.State())
	require.Equal(t, 3, len(d.Outputs()))
	for i, o := range d.Outputs() {
		assert.Equal(t, apu2led.Outputs[i].Name, o.Name())
		assert.Equal(t, apu2led.Outputs[i].Index, o.Index())
	}
	assert.NotNil(t, d.Bank())
	// nothing happens until Start
	assert.Zero(t, s.Mapped())
	assert.Zero(t, reg.Len())
}

func TestDriverStartStop(t *testing.T) {
	d, s, reg, p := newDriver(t)

	err := d.Start()
	require.Nil(t, err)
	assert.Equal(t, apu2led.DriverStarted, d.State())
	assert.Equal(t, apu2led.NumRegisters, s.Mapped())
	assert.Equal(t, []string{"apu2:1", "apu2:2", "apu2:3"}, reg.Names())
	assert.Equal(t, 1, p.Drivers())
	assert.True(t, p.Bound(apu2led.DriverName))

	// requests reach the hardware
	require.Nil(t, reg.Set("apu2:3", apu2led.Off))
	assert.Equal(t, controlMask, s.Value(3))
	require.Nil(t, reg.Set("apu2:3", apu2led.On))
	assert.Zero(t, s.Value(3))

	// already started
	assert.ErrorIs(t, d.Start(), apu2led.ErrInvalidState)

	err = d.Stop()
	require.Nil(t, err)
	assert.Equal(t, apu2led.DriverStopped, d.State())
	assert.Zero(t, reg.Len())
	assert.Zero(t, p.Drivers())
	assert.False(t, p.Bound(apu2led.DriverName))
	assert.Zero(t, s.Mapped())

	// terminal
	assert.ErrorIs(t, d.Start(), apu2led.ErrInvalidState)
	assert.ErrorIs(t, d.Stop(), apu2led.ErrInvalidState)
}

func TestDriverStopUninitialized(t *testing.T) {
	d, _, _, _ := newDriver(t)
	assert.ErrorIs(t, d.Stop(), apu2led.ErrInvalidState)
	assert.Equal(t, apu2led.DriverUninitialized, d.State())
}

func TestDriverStartAdvertiseFailure(t *testing.T) {
	s := apu2led.NewSim()
	dir := &failingDirectory{Registry: apu2led.NewRegistry(), failAt: 3}
	p := apu2led.NewPlatform()
	d := apu2led.NewDriver(apu2led.NewBank(s), dir, p)

	err := d.Start()
	assert.NotNil(t, err)
	assert.Equal(t, apu2led.DriverUninitialized, d.State())
	// full rollback
	assert.Zero(t, dir.Len())
	assert.Zero(t, p.Drivers())
	assert.False(t, p.Bound(apu2led.DriverName))
	assert.Zero(t, s.Mapped())

	// retry
	dir.failAt = 0
	err = d.Start()
	require.Nil(t, err)
	assert.Equal(t, 3, dir.Len())
	assert.Nil(t, d.Stop())
}

func TestDriverStartBusFailure(t *testing.T) {
	s := apu2led.NewSim()
	reg := apu2led.NewRegistry()
	d := apu2led.NewDriver(apu2led.NewBank(s), reg, &failingBus{apu2led.NewPlatform()})

	err := d.Start()
	assert.NotNil(t, err)
	assert.Equal(t, apu2led.DriverUninitialized, d.State())
	assert.Zero(t, reg.Len())
	assert.Zero(t, s.Mapped())
}

func TestDriverStartMapFailure(t *testing.T) {
	d, s, reg, _ := newDriver(t, apu2led.WithFaultyRegister(2))

	// mapping failures are not fatal
	err := d.Start()
	require.Nil(t, err)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, apu2led.NumRegisters-1, s.Mapped())

	// no write attempted for the unmapped output
	err = reg.Set("apu2:2", apu2led.Off)
	assert.ErrorIs(t, err, apu2led.ErrNotMapped)
	assert.Zero(t, s.Writes())

	// other outputs unaffected
	assert.Nil(t, reg.Set("apu2:1", apu2led.Off))
	assert.Equal(t, 1, s.Writes())

	assert.Nil(t, d.Stop())
	assert.Zero(t, s.Mapped())
}

func TestDriverSuspendResume(t *testing.T) {
	d, s, reg, p := newDriver(t, apu2led.WithValue(1, 0xdeadbeef))
	require.Nil(t, d.Start())
	defer d.Stop()

	// state changes not allowed out of order
	assert.ErrorIs(t, d.Resume(), apu2led.ErrInvalidState)

	before := s.Value(1)
	require.Nil(t, p.Suspend())
	assert.Equal(t, apu2led.DriverSuspended, d.State())
	assert.ErrorIs(t, d.Suspend(), apu2led.ErrInvalidState)
	require.Nil(t, p.Resume())
	assert.Equal(t, apu2led.DriverStarted, d.State())
	assert.Equal(t, before, s.Value(1))
	// mappings persist
	assert.Equal(t, apu2led.NumRegisters, s.Mapped())

	// with a known state
	require.Nil(t, reg.Set("apu2:1", apu2led.On))
	on := s.Value(1)
	require.Nil(t, p.Suspend())
	assert.Equal(t, on|controlMask, s.Value(1))
	require.Nil(t, p.Resume())
	assert.Equal(t, on, s.Value(1))
}

func TestDriverStopSuspended(t *testing.T) {
	d, s, reg, p := newDriver(t)
	require.Nil(t, d.Start())
	require.Nil(t, p.Suspend())
	assert.Nil(t, d.Stop())
	assert.Equal(t, apu2led.DriverStopped, d.State())
	assert.Zero(t, reg.Len())
	assert.Zero(t, s.Mapped())
}

func TestIndependentDrivers(t *testing.T) {
	p := apu2led.NewPlatform()
	s1, s2 := apu2led.NewSim(), apu2led.NewSim()
	r1, r2 := apu2led.NewRegistry(), apu2led.NewRegistry()
	d1 := apu2led.NewDriver(apu2led.NewBank(s1), r1, p)
	d2 := apu2led.NewDriver(apu2led.NewBank(s2), r2, p, apu2led.WithName("apu2-led.1"))
	assert.Equal(t, "apu2-led.1", d2.Name())

	require.Nil(t, d1.Start())
	require.Nil(t, d2.Start())
	assert.Equal(t, 2, p.Drivers())

	require.Nil(t, r1.Set("apu2:1", apu2led.Off))
	assert.Equal(t, controlMask, s1.Value(1))
	assert.Zero(t, s2.Value(1))

	// same name on the same bus is rejected
	d3 := apu2led.NewDriver(apu2led.NewBank(apu2led.NewSim()), apu2led.NewRegistry(), p)
	assert.ErrorIs(t, d3.Start(), apu2led.ErrNameInUse)

	require.Nil(t, d1.Stop())
	assert.Zero(t, r1.Len())
	assert.Equal(t, 3, r2.Len())
	require.Nil(t, d2.Stop())
	assert.Zero(t, p.Drivers())
}
