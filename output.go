// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

// StateSetter is implemented by anything that can be driven to a State.
type StateSetter interface {
	SetState(s State) error
}

// OutputInfo defines a user visible output.
type OutputInfo struct {
	// The register index controlling the output.
	Index int

	// The name the output is advertised under.
	Name string
}

// Outputs is the table of outputs advertised by a Driver.
//
// Register index 0 is mapped but not advertised.
var Outputs = []OutputInfo{
	{Index: 1, Name: "apu2:1"},
	{Index: 2, Name: "apu2:2"},
	{Index: 3, Name: "apu2:3"},
}

// Output is a single logical output line backed by a Bank register.
type Output struct {
	bank *Bank
	info OutputInfo
}

// NewOutput constructs the Output controlled by the register with the given
// index in the Bank.
func NewOutput(b *Bank, info OutputInfo) *Output {
	return &Output{bank: b, info: info}
}

// Name returns the name of the output.
func (o *Output) Name() string {
	return o.info.Name
}

// Index returns the register index controlling the output.
func (o *Output) Index() int {
	return o.info.Index
}

// SetState drives the output to the given state.
//
// Returns ErrNotMapped, without writing anything, if the register for the
// output failed to map.
func (o *Output) SetState(s State) error {
	return o.bank.Set(o.info.Index, s)
}

// State returns the state the output is being driven to.
func (o *Output) State() (State, error) {
	return o.bank.Get(o.info.Index)
}
