package receptacle

import (
	"sync"

	"github.com/hupe1980/compmesh/core"
)

// Binding is one connection held by a multi receptacle.
type Binding[T any] struct {
	ID     core.ConnID
	Target T
	Sink   core.Unknown
}

// Multi holds an ordered, unbounded list of connections. The order is the
// connect order; fan-out calls iterate it.
type Multi[T any] struct {
	data

	iid string

	mu       sync.RWMutex
	bindings []Binding[T]
}

// NewMulti returns an empty multi receptacle for capability iid.
func NewMulti[T any](iid string) *Multi[T] {
	return &Multi[T]{iid: iid}
}

// InterfaceType implements core.Receptacle.
func (r *Multi[T]) InterfaceType() string { return r.iid }

// Kind implements core.Receptacle.
func (r *Multi[T]) Kind() core.ReceptacleKind { return core.ReceptacleMulti }

// ConnectTo appends a binding. It fails when sink does not provide T or id
// is already held.
func (r *Multi[T]) ConnectTo(sink core.Unknown, id core.ConnID) bool {
	t, ok := resolve[T](sink, r.iid)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bindings {
		if b.ID == id {
			return false
		}
	}

	r.bindings = append(r.bindings, Binding[T]{ID: id, Target: t, Sink: sink})

	return true
}

// DisconnectFrom removes the binding with the given id.
func (r *Multi[T]) DisconnectFrom(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.bindings {
		if b.ID != id {
			continue
		}

		out := make([]Binding[T], 0, len(r.bindings)-1)
		out = append(out, r.bindings[:i]...)
		out = append(out, r.bindings[i+1:]...)
		r.bindings = out

		return true
	}

	return false
}

// Len returns the number of bindings.
func (r *Multi[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings)
}

// At returns the target of the i-th binding.
func (r *Multi[T]) At(i int) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if i < 0 || i >= len(r.bindings) {
		return zero, false
	}

	return r.bindings[i].Target, true
}

// Bindings returns a copy of the bindings in connect order.
func (r *Multi[T]) Bindings() []Binding[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Binding[T](nil), r.bindings...)
}

// Targets returns the bound references in connect order.
func (r *Multi[T]) Targets() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.Target
	}

	return out
}

// Each calls fn for every binding in connect order until fn returns false.
// fn runs without the receptacle lock held, so it may trigger reconfiguration.
func (r *Multi[T]) Each(fn func(id core.ConnID, target T) bool) {
	for _, b := range r.Bindings() {
		if !fn(b.ID, b.Target) {
			return
		}
	}
}

var _ core.Receptacle = (*Multi[any])(nil)
