// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// LineOutput is an output driven through the GPIO character device rather
// than by mapping the registers directly.
//
// This suits kernels where the FCH GPIOs are claimed by the pinctrl-amd
// driver, which exposes them as a gpiochip.
// The line is requested active-low, so On drives the line low, as the
// register based outputs do.
type LineOutput struct {
	name string
	line *gpiocdev.Line
}

// RequestLineOutput requests the line at offset on the chip as an output,
// initially Off.
//
// The chip may be identified by name, e.g. "gpiochip0", or by path.
func RequestLineOutput(chip string, offset int, name string) (*LineOutput, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithConsumer(name),
		gpiocdev.AsActiveLow,
		gpiocdev.AsOutput(0))
	if err != nil {
		return nil, errors.Wrapf(err, "request %s:%d", chip, offset)
	}
	return &LineOutput{name: name, line: l}, nil
}

// Name returns the name of the output.
func (o *LineOutput) Name() string {
	return o.name
}

// SetState drives the line to the given state.
func (o *LineOutput) SetState(s State) error {
	v := 0
	if s == On {
		v = 1
	}
	return o.line.SetValue(v)
}

// State returns the state the line is being driven to.
func (o *LineOutput) State() (State, error) {
	v, err := o.line.Value()
	if err != nil {
		return Off, err
	}
	if v == 0 {
		return Off, nil
	}
	return On, nil
}

// Close releases the line.
func (o *LineOutput) Close() error {
	return o.line.Close()
}
