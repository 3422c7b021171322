// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apu2led "github.com/warthog618/go-apu2led"
)

func TestRegisterAddr(t *testing.T) {
	xaddrs := []int64{0xFED81664, 0xFED81610, 0xFED81614, 0xFED81618}
	for i, xa := range xaddrs {
		a, err := apu2led.RegisterAddr(i)
		require.Nil(t, err)
		assert.Equal(t, xa, a, "index %d", i)
		n, err := apu2led.GPIONumber(i)
		require.Nil(t, err)
		assert.Equal(t, apu2led.GPIOBase+int64(n*apu2led.RegisterWidth), a)
		// within the bank
		assert.GreaterOrEqual(t, a, apu2led.GPIOBase)
		assert.LessOrEqual(t, a+apu2led.RegisterWidth, apu2led.GPIOBase+apu2led.GPIOSize)
	}

	// out of range
	for _, i := range []int{-1, apu2led.NumRegisters} {
		_, err := apu2led.RegisterAddr(i)
		assert.ErrorIs(t, err, apu2led.ErrInvalidIndex)
		_, err = apu2led.GPIONumber(i)
		assert.ErrorIs(t, err, apu2led.ErrInvalidIndex)
	}
}

func TestRegisterAddrNoOverlap(t *testing.T) {
	for i := 0; i < apu2led.NumRegisters; i++ {
		ai, err := apu2led.RegisterAddr(i)
		require.Nil(t, err)
		for j := i + 1; j < apu2led.NumRegisters; j++ {
			aj, err := apu2led.RegisterAddr(j)
			require.Nil(t, err)
			overlap := ai < aj+apu2led.RegisterWidth && aj < ai+apu2led.RegisterWidth
			assert.False(t, overlap, "registers %d and %d overlap", i, j)
		}
	}
}
