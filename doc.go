// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

/*
Package apu2led is a library for driving the front panel LEDs of a PC Engines
APU2 from userspace, by manipulating the AMD FCH GPIO control registers.

The LEDs are controlled by bit 22 of the 32-bit control registers for FCH
GPIOs 68, 69 and 70, located in the GPIO register bank at 0xFED81500.  The bit
is active-low, so clearing it turns the LED on.

A [Bank] maps the control registers using a [Mapper], either [DevMem] for the
real hardware or a [Sim] for testing, and serialises the read-modify-write of
the control bit so that the other bits in each register are preserved.

A [Driver] binds the Bank registers to named outputs ("apu2:1", "apu2:2" and
"apu2:3") and manages their lifecycle.  Starting the Driver registers it on a
[Bus], maps the registers and advertises each output in a [Directory].
Stopping it withdraws the outputs, unregisters the driver and unmaps the
registers.  The [Platform] and [Registry] provide in-process implementations
of Bus and Directory, and [NewHandler] exposes a Registry over HTTP.

Mapping /dev/mem requires root, so a [Sim] is typically used for testing.

# Example Usage

Drive the LEDs through a Registry:

	m, err := apu2led.OpenDevMem(apu2led.DefaultDevMemPath)
	reg := apu2led.NewRegistry()
	d := apu2led.NewDriver(apu2led.NewBank(m), reg, apu2led.NewPlatform())
	err = d.Start()
	defer d.Stop()
	err = reg.Set("apu2:1", apu2led.On)

Drive a simulated bank directly:

	s := apu2led.NewSim(apu2led.WithFaultyRegister(3))
	b := apu2led.NewBank(s)
	err := b.Map() // reports register 3
	err = b.Set(1, apu2led.Off)
	v := s.Value(1) // bit 22 set
*/
package apu2led
