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

// recorder is a StateSetter that records the states it is driven to.
type recorder struct {
	states []apu2led.State
	err    error
}

func (r *recorder) SetState(s apu2led.State) error {
	if r.err != nil {
		return r.err
	}
	r.states = append(r.states, s)
	return nil
}

func TestRegistryRegister(t *testing.T) {
	reg := apu2led.NewRegistry()
	assert.Zero(t, reg.Len())

	r1, err := reg.Register("led1", &recorder{})
	require.Nil(t, err)
	assert.Equal(t, "led1", r1.Name())
	r2, err := reg.Register("led2", &recorder{})
	require.Nil(t, err)
	assert.Equal(t, []string{"led1", "led2"}, reg.Names())

	// duplicate
	r, err := reg.Register("led1", &recorder{})
	assert.ErrorIs(t, err, apu2led.ErrNameInUse)
	assert.Nil(t, r)

	// empty
	r, err = reg.Register("", &recorder{})
	assert.NotNil(t, err)
	assert.Nil(t, r)

	r1.Unregister()
	assert.Equal(t, []string{"led2"}, reg.Names())
	// repeated unregister is harmless
	r1.Unregister()
	assert.Equal(t, 1, reg.Len())

	// name available again
	_, err = reg.Register("led1", &recorder{})
	assert.Nil(t, err)
	r2.Unregister()
	assert.Equal(t, []string{"led1"}, reg.Names())
}

func TestRegistrySet(t *testing.T) {
	reg := apu2led.NewRegistry()
	rec := &recorder{}
	_, err := reg.Register("led1", rec)
	require.Nil(t, err)

	st, err := reg.State("led1")
	assert.Nil(t, err)
	assert.Equal(t, apu2led.Off, st)

	assert.Nil(t, reg.Set("led1", apu2led.On))
	st, err = reg.State("led1")
	assert.Nil(t, err)
	assert.Equal(t, apu2led.On, st)
	assert.Equal(t, []apu2led.State{apu2led.On}, rec.states)

	// unknown
	assert.ErrorIs(t, reg.Set("led9", apu2led.On), apu2led.ErrNotFound)
	_, err = reg.State("led9")
	assert.ErrorIs(t, err, apu2led.ErrNotFound)

	// setter failure is reported and not cached
	rec.err = errors.New("broken")
	assert.NotNil(t, reg.Set("led1", apu2led.Off))
	st, _ = reg.State("led1")
	assert.Equal(t, apu2led.On, st)
}

func TestRegistrySuspendResume(t *testing.T) {
	reg := apu2led.NewRegistry()
	rec := &recorder{}
	r, err := reg.Register("led1", rec)
	require.Nil(t, err)

	// never set, so nothing to quiesce or restore
	r.Suspend()
	r.Resume()
	assert.Empty(t, rec.states)

	require.Nil(t, reg.Set("led1", apu2led.On))
	r.Suspend()
	assert.Equal(t, []apu2led.State{apu2led.On, apu2led.Off}, rec.states)
	// repeated suspend has no effect
	r.Suspend()
	assert.Len(t, rec.states, 2)

	// requests while suspended are deferred
	require.Nil(t, reg.Set("led1", apu2led.Off))
	require.Nil(t, reg.Set("led1", apu2led.On))
	assert.Len(t, rec.states, 2)
	st, _ := reg.State("led1")
	assert.Equal(t, apu2led.On, st)

	r.Resume()
	assert.Equal(t, []apu2led.State{apu2led.On, apu2led.Off, apu2led.On}, rec.states)
	// repeated resume has no effect
	r.Resume()
	assert.Len(t, rec.states, 3)
}

func TestRegistryWithOutput(t *testing.T) {
	s := apu2led.NewSim(apu2led.WithValue(2, 0x81))
	b := apu2led.NewBank(s)
	require.Nil(t, b.Map())
	o := apu2led.NewOutput(b, apu2led.OutputInfo{Index: 2, Name: "apu2:2"})
	assert.Equal(t, "apu2:2", o.Name())
	assert.Equal(t, 2, o.Index())

	reg := apu2led.NewRegistry()
	r, err := reg.Register(o.Name(), o)
	require.Nil(t, err)

	require.Nil(t, reg.Set("apu2:2", apu2led.Off))
	before := s.Value(2)
	assert.Equal(t, uint32(0x81)|controlMask, before)

	r.Suspend()
	r.Resume()
	assert.Equal(t, before, s.Value(2))
	st, err := o.State()
	assert.Nil(t, err)
	assert.Equal(t, apu2led.Off, st)

	require.Nil(t, reg.Set("apu2:2", apu2led.On))
	r.Suspend()
	// quiesced
	assert.Equal(t, uint32(0x81)|controlMask, s.Value(2))
	r.Resume()
	assert.Equal(t, uint32(0x81), s.Value(2))
}
