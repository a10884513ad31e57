package receptacle

import (
	"sync"

	"github.com/hupe1980/compmesh/core"
)

// Single holds at most one connection.
type Single[T any] struct {
	data

	iid string

	mu     sync.RWMutex
	bound  bool
	id     core.ConnID
	target T
	sink   core.Unknown
}

// NewSingle returns an unbound single receptacle for capability iid.
func NewSingle[T any](iid string) *Single[T] {
	return &Single[T]{iid: iid}
}

// InterfaceType implements core.Receptacle.
func (r *Single[T]) InterfaceType() string { return r.iid }

// Kind implements core.Receptacle.
func (r *Single[T]) Kind() core.ReceptacleKind { return core.ReceptacleSingle }

// ConnectTo binds sink while the receptacle is unbound. It fails when a
// connection already exists or sink does not provide T.
func (r *Single[T]) ConnectTo(sink core.Unknown, id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bound {
		return false
	}

	t, ok := resolve[T](sink, r.iid)
	if !ok {
		return false
	}

	r.bound, r.id, r.target, r.sink = true, id, t, sink

	return true
}

// DisconnectFrom unbinds the connection id. Any other id is rejected.
func (r *Single[T]) DisconnectFrom(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.bound || r.id != id {
		return false
	}

	var zero T
	r.bound, r.id, r.target, r.sink = false, 0, zero, nil

	return true
}

// Get returns the bound reference.
func (r *Single[T]) Get() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.target, r.bound
}

// ConnID returns the id of the bound connection.
func (r *Single[T]) ConnID() (core.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.id, r.bound
}

// Sink returns the bound sink component.
func (r *Single[T]) Sink() (core.Unknown, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sink, r.bound
}

var _ core.Receptacle = (*Single[any])(nil)
