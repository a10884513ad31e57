package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Handle is the opaque identity of an instantiated component and the outer
// proxy of its base capability. Handles are issued once by a kernel and
// compared by pointer identity only.
//
// Capability queries through a Handle are never intercepted by hooks. For
// any capability other than the core connection, life-cycle and meta
// capabilities the result is replaced by the registered Delegator's outer
// proxy, so capability chasing never escapes interception.
type Handle struct {
	id   ComponentID
	impl Unknown
	meta MetaInterception
}

// NewHandle is used by kernels to issue a handle for a freshly built
// component.
func NewHandle(id ComponentID, impl Unknown, meta MetaInterception) *Handle {
	return &Handle{id: id, impl: impl, meta: meta}
}

// ID returns the graph node id of the component.
func (h *Handle) ID() ComponentID { return h.id }

// QueryInterface implements Unknown.
func (h *Handle) QueryInterface(name string) any {
	if strings.EqualFold(name, IUnknown) {
		return h
	}
	res := h.impl.QueryInterface(name)
	if res == nil || IsCoreInterface(name) || h.meta == nil {
		return res
	}
	if d, ok := h.meta.Delegator(h, name); ok {
		return d.Outer()
	}
	return res
}

// Owns reports whether impl is the component behind this handle.
func (h *Handle) Owns(impl Unknown) bool {
	return SameComponent(h.impl, impl)
}

// String implements fmt.Stringer.
func (h *Handle) String() string { return fmt.Sprintf("component#%d", h.id) }

// SameComponent compares two component references by identity. Values whose
// dynamic type is not comparable are never equal.
func SameComponent(a, b Unknown) bool {
	if a == nil || b == nil {
		return false
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
