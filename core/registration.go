package core

import "strings"

// ProxyFactory builds the intercepting wrapper of one capability. target is
// the raw reference returned by the component's capability query; the
// returned value must implement the same Go interface and route every
// method through inv. A nil result rejects the target.
type ProxyFactory func(target any, inv Invoker) any

// ProxyFor adapts a typed wrapper constructor into a ProxyFactory.
func ProxyFor[T any](wrap func(target T, inv Invoker) T) ProxyFactory {
	return func(target any, inv Invoker) any {
		t, ok := target.(T)
		if !ok {
			return nil
		}
		return wrap(t, inv)
	}
}

// InterfaceSpec declares one capability of a component type.
type InterfaceSpec struct {
	Name  string
	Proxy ProxyFactory
}

// Registration is the static type table entry for a component type. It
// replaces any runtime discovery of capability names: the kernel wraps
// exactly the non-core capabilities listed in Interfaces.
type Registration struct {
	// Name is the type name used with CreateInstance.
	Name string
	// Description is shown in listings.
	Description string
	// Build constructs a new instance bound to the given runtime.
	Build func(rt Runtime) (Unknown, error)
	// Interfaces lists the declared capabilities of the type.
	Interfaces []InterfaceSpec
}

// Interface returns the spec for name, matched case-insensitively.
func (r Registration) Interface(name string) (InterfaceSpec, bool) {
	for _, s := range r.Interfaces {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return InterfaceSpec{}, false
}

// InterfaceNames lists the declared capability names in order.
func (r Registration) InterfaceNames() []string {
	names := make([]string, 0, len(r.Interfaces))
	for _, s := range r.Interfaces {
		names = append(names, s.Name)
	}
	return names
}
