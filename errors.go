// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import "github.com/pkg/errors"

var (
	// ErrInvalidIndex indicates a register index outside the register table.
	ErrInvalidIndex = errors.New("invalid register index")

	// ErrNotMapped indicates the register for an output is not mapped, so
	// the request was dropped without touching the hardware.
	ErrNotMapped = errors.New("register not mapped")

	// ErrUnmapped indicates an access through a register that has been
	// unmapped.
	ErrUnmapped = errors.New("register already unmapped")

	// ErrNameInUse indicates a name is already registered.
	ErrNameInUse = errors.New("name in use")

	// ErrNotFound indicates no entity is registered with the given name.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates a lifecycle operation is not permitted from
	// the current state.
	ErrInvalidState = errors.New("invalid lifecycle state")

	// ErrUnsupported indicates the mapper is not available on this platform.
	ErrUnsupported = errors.New("not supported on this platform")
)
