// Package receptacle provides the typed connection endpoints components use
// to consume other components' capabilities.
//
// A receptacle never initiates a connection itself. The kernel calls
// ConnectTo and DisconnectFrom while executing its connect/disconnect
// protocol; the owning component only reads the bound references.
package receptacle

import (
	"sync"

	"github.com/hupe1980/compmesh/core"
)

// data is the attribute map shared by all receptacle variants.
type data struct {
	mu    sync.RWMutex
	attrs map[string]core.TypedAttribute
}

func (d *data) PutData(name string, attr core.TypedAttribute) bool {
	if name == "" || attr.Kind == core.KindInvalid {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.attrs == nil {
		d.attrs = map[string]core.TypedAttribute{}
	}
	d.attrs[name] = attr

	return true
}

func (d *data) Value(name string) (core.TypedAttribute, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.attrs[name]

	return a, ok
}

func (d *data) Values() map[string]core.TypedAttribute {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]core.TypedAttribute, len(d.attrs))
	for k, v := range d.attrs {
		out[k] = v
	}

	return out
}

// resolve asks sink for the capability iid and checks it has type T. Sinks
// are normally kernel handles, so the result is the intercepting reference.
func resolve[T any](sink core.Unknown, iid string) (T, bool) {
	var zero T
	if sink == nil {
		return zero, false
	}

	t, ok := sink.QueryInterface(iid).(T)

	return t, ok
}
