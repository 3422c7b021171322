// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package apu2led

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Directory advertises named outputs to their users.
type Directory interface {
	// Register advertises the setter under the given name.
	Register(name string, s StateSetter) (Registration, error)
}

// Registration is the handle to an output advertised in a Directory.
type Registration interface {
	// Name returns the name the output is advertised under.
	Name() string

	// Suspend quiesces the output ahead of a system sleep.
	Suspend()

	// Resume restores the output after a system sleep.
	Resume()

	// Unregister withdraws the output from the Directory.
	//
	// Unregistering an already withdrawn output has no effect.
	Unregister()
}

// Registry is an in-process Directory with LED class semantics.
//
// The Registry caches the last state requested for each output.  While
// suspended an output is held off, and requests are cached rather than
// applied.  On resume the cached state, if any, is restored.
type Registry struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []*entry
}

// NewRegistry constructs an empty Registry.
//
// The available option is [WithLogger].
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, o := range options {
		o.applyRegistryOption(r)
	}
	return r
}

// Register advertises the setter under the given name.
//
// The name must be non-empty and not already registered.
func (r *Registry) Register(name string, s StateSetter) (Registration, error) {
	if len(name) == 0 {
		return nil, errors.New("empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(name) != nil {
		return nil, errors.Wrapf(ErrNameInUse, "output '%s'", name)
	}
	e := &entry{reg: r, name: name, setter: s}
	r.entries = append(r.entries, e)
	r.logger.Debug("registered output", zap.String("name", name))
	return e, nil
}

// Names returns the names of the registered outputs, in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// Len returns the number of registered outputs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Set requests the named output be driven to the given state.
func (r *Registry) Set(name string, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(name)
	if e == nil {
		return errors.Wrapf(ErrNotFound, "output '%s'", name)
	}
	if e.suspended {
		e.state = s
		e.known = true
		return nil
	}
	if err := e.setter.SetState(s); err != nil {
		return errors.Wrapf(err, "set output '%s'", name)
	}
	e.state = s
	e.known = true
	return nil
}

// State returns the last state requested for the named output.
//
// Outputs that have never been set report Off.
func (r *Registry) State(name string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(name)
	if e == nil {
		return Off, errors.Wrapf(ErrNotFound, "output '%s'", name)
	}
	return e.state, nil
}

// find returns the entry with the given name.
//
// Must be called with r.mu held.
func (r *Registry) find(name string) *entry {
	for _, e := range r.entries {
		if e.name == name {
			return e
		}
	}
	return nil
}

// entry is a Registration in a Registry.
type entry struct {
	reg    *Registry
	name   string
	setter StateSetter

	// the last requested state, valid if known.
	state State
	known bool

	suspended bool
}

func (e *entry) Name() string {
	return e.name
}

func (e *entry) Suspend() {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()
	if e.suspended {
		return
	}
	e.suspended = true
	if !e.known {
		return
	}
	if err := e.setter.SetState(Off); err != nil {
		e.reg.logger.Warn("failed to quiesce output", zap.String("name", e.name), zap.Error(err))
	}
}

func (e *entry) Resume() {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()
	if !e.suspended {
		return
	}
	e.suspended = false
	if !e.known {
		return
	}
	if err := e.setter.SetState(e.state); err != nil {
		e.reg.logger.Warn("failed to restore output", zap.String("name", e.name), zap.Error(err))
	}
}

func (e *entry) Unregister() {
	r := e.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.entries {
		if x == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.logger.Debug("unregistered output", zap.String("name", e.name))
			return
		}
	}
}
