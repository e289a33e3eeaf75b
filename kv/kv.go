// Package kv defines the black-box key/value contract the benchmark harness
// drives, and the registry of comparator implementations behind it.
package kv

import (
	"errors"
	"fmt"
	"slices"

	"cimapbench/cimap"
)

// ErrUnknownImplementation is returned by Lookup for a name no factory carries.
var ErrUnknownImplementation = errors.New("unknown implementation")

// Map is the operation surface the harness replays its script against.
type Map interface {
	// Put stores value under key and returns the previous value, if any.
	Put(key string, value any) (any, bool)
	// Get returns the value stored under key.
	Get(key string) (any, bool)
}

// Factory builds fresh, empty instances of one implementation.
type Factory struct {
	Name        string
	Description string
	// CaseInsensitive declares whether lookups ignore letter case. The
	// harness verifies every instance against it before measuring.
	CaseInsensitive bool
	New             func() (Map, error)
}

// Default returns every registered implementation in report order.
func Default() []Factory {
	return slices.Clone(registry)
}

// Names lists the registered implementation names in report order.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}
	return names
}

// Lookup resolves implementation names, in the order given. Names match
// regardless of case. No names selects every implementation.
func Lookup(names ...string) ([]Factory, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	out := make([]Factory, 0, len(names))
	for _, name := range names {
		f, ok := byName.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownImplementation, name, Names())
		}
		out = append(out, f)
	}
	return out, nil
}

var byName = func() *cimap.Map[Factory] {
	m := cimap.New[Factory](cimap.WithCapacity(len(registry)))
	for _, f := range registry {
		m.Put(f.Name, f)
	}
	return m
}()
