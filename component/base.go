// Package component provides Base, the embeddable implementation of the
// component contract.
//
// A concrete component embeds *Base, declares its capabilities with Provide
// and its receptacles with AddReceptacle, and gets capability query,
// connection routing, meta-interface and a default life-cycle for free:
//
//	type Adder struct{ *component.Base }
//
//	func NewAdder(rt core.Runtime) (core.Unknown, error) {
//		a := &Adder{}
//		a.Base = component.NewBase(rt, a)
//		a.Provide("IAdd", a)
//		return a, nil
//	}
package component

import (
	"strings"
	"sync"

	"github.com/hupe1980/compmesh/core"
)

type capability struct {
	name string
	ref  any
}

// Base implements core.Unknown, core.Connections, core.LifeCycle and
// core.MetaInterface for an embedding component.
type Base struct {
	rt   core.Runtime
	self core.Unknown

	mu          sync.RWMutex
	provided    []capability
	receptacles []core.Receptacle
}

// NewBase binds a Base to the runtime and to the embedding component. self
// is what the component answers for IUnknown and the identity the runtime
// knows it by.
func NewBase(rt core.Runtime, self core.Unknown) *Base {
	return &Base{rt: rt, self: self}
}

// Runtime returns the runtime the component was created by.
func (b *Base) Runtime() core.Runtime { return b.rt }

// Provide declares the capability name served by ref. Later declarations of
// the same name replace earlier ones.
func (b *Base) Provide(name string, ref any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.provided {
		if strings.EqualFold(c.name, name) {
			b.provided[i].ref = ref
			return
		}
	}

	b.provided = append(b.provided, capability{name: name, ref: ref})
}

// Withdraw removes a capability declared with Provide.
func (b *Base) Withdraw(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.provided {
		if strings.EqualFold(c.name, name) {
			b.provided = append(b.provided[:i:i], b.provided[i+1:]...)
			return true
		}
	}

	return false
}

// AddReceptacle declares a receptacle. Connections for its interface type
// are routed to it.
func (b *Base) AddReceptacle(r core.Receptacle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.receptacles = append(b.receptacles, r)
}

// Receptacle returns the receptacle declared for iid.
func (b *Base) Receptacle(iid string) (core.Receptacle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, r := range b.receptacles {
		if strings.EqualFold(r.InterfaceType(), iid) {
			return r, true
		}
	}

	return nil, false
}

// QueryInterface implements core.Unknown. Overridden life-cycle and
// connection methods of the embedding component are honored.
func (b *Base) QueryInterface(name string) any {
	switch {
	case strings.EqualFold(name, core.IUnknown):
		return b.self
	case strings.EqualFold(name, core.ILifeCycle):
		if lc, ok := b.self.(core.LifeCycle); ok {
			return lc
		}
		return b
	case strings.EqualFold(name, core.IConnections):
		if c, ok := b.self.(core.Connections); ok {
			return c
		}
		return b
	case strings.EqualFold(name, core.IMetaInterface):
		if m, ok := b.self.(core.MetaInterface); ok {
			return m
		}
		return b
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, c := range b.provided {
		if strings.EqualFold(c.name, name) {
			return c.ref
		}
	}

	return nil
}

// Connect implements core.Connections by routing to the receptacle for iid.
func (b *Base) Connect(sink core.Unknown, iid string, id core.ConnID) bool {
	r, ok := b.Receptacle(iid)
	if !ok {
		return false
	}

	return r.ConnectTo(sink, id)
}

// Disconnect implements core.Connections.
func (b *Base) Disconnect(iid string, id core.ConnID) bool {
	r, ok := b.Receptacle(iid)
	if !ok {
		return false
	}

	return r.DisconnectFrom(id)
}

// Startup implements core.LifeCycle.
func (b *Base) Startup(any) bool { return true }

// Shutdown implements core.LifeCycle.
func (b *Base) Shutdown() bool { return true }

// EnumInterfaces lists the capabilities declared with Provide.
func (b *Base) EnumInterfaces() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.provided))
	for i, c := range b.provided {
		out[i] = c.name
	}

	return out
}

// EnumReceptacles lists the declared receptacles with their cardinality.
func (b *Base) EnumReceptacles() []core.ReceptacleInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.ReceptacleInfo, len(b.receptacles))
	for i, r := range b.receptacles {
		out[i] = core.ReceptacleInfo{InterfaceType: r.InterfaceType(), Kind: r.Kind()}
	}

	return out
}

// SetAttributeValue stores an attribute on the Delegator of interface iid
// (ScopeInterface) or on the receptacle for iid (ScopeReceptacle).
func (b *Base) SetAttributeValue(iid string, scope core.AttributeScope, name string, attr core.TypedAttribute) bool {
	switch scope {
	case core.ScopeInterface:
		d, ok := b.delegator(iid)
		if !ok {
			return false
		}
		return d.SetAttributeValue(name, attr)
	case core.ScopeReceptacle:
		r, ok := b.Receptacle(iid)
		if !ok {
			return false
		}
		return r.PutData(name, attr)
	}

	return false
}

// AttributeValue reads an attribute stored with SetAttributeValue.
func (b *Base) AttributeValue(iid string, scope core.AttributeScope, name string) (core.TypedAttribute, bool) {
	switch scope {
	case core.ScopeInterface:
		if d, ok := b.delegator(iid); ok {
			return d.AttributeValue(name)
		}
	case core.ScopeReceptacle:
		if r, ok := b.Receptacle(iid); ok {
			return r.Value(name)
		}
	}

	return core.TypedAttribute{}, false
}

// AllValues returns every attribute of one interface or receptacle.
func (b *Base) AllValues(scope core.AttributeScope, iid string) map[string]core.TypedAttribute {
	switch scope {
	case core.ScopeInterface:
		if d, ok := b.delegator(iid); ok {
			return d.AttributeValues()
		}
	case core.ScopeReceptacle:
		if r, ok := b.Receptacle(iid); ok {
			return r.Values()
		}
	}

	return map[string]core.TypedAttribute{}
}

func (b *Base) delegator(iid string) (core.Delegator, bool) {
	if b.rt == nil {
		return nil, false
	}

	return b.rt.Delegator(b.self, iid)
}

var (
	_ core.Unknown       = (*Base)(nil)
	_ core.Connections   = (*Base)(nil)
	_ core.LifeCycle     = (*Base)(nil)
	_ core.MetaInterface = (*Base)(nil)
)
