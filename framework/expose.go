package framework

import (
	"strings"

	"github.com/hupe1980/compmesh/core"
)

// ExposeInterface publishes interface iid of member c as one of the
// framework's own capabilities. When c's capability has a delegator the
// graph lock interceptors are attached to it; otherwise (the capability of a
// nested framework) the reference is published as is.
func (f *Framework) ExposeInterface(iid string, c core.Unknown) bool {
	h, ok := f.member(c)
	if !ok || f.interfaceExposed(iid) {
		return false
	}

	var ref any

	if d, ok := f.rt.Delegator(h, iid); ok {
		if !d.AddInterceptor(f.hooks, f.enterHook, f.exitHook) {
			return false
		}
		ref = d.Outer()
	} else {
		ref = h.QueryInterface(iid)
	}

	if ref == nil {
		return false
	}

	f.mu.Lock()
	f.exposed = append(f.exposed, core.ExposedInterface{Component: h, InterfaceType: iid, Ref: ref})
	f.mu.Unlock()

	f.logger.Debug("Interface exposed", "framework", f.Name(), "interface", iid, "component", h.ID())

	return true
}

// ExposeReceptacle publishes receptacle iid of member c. Connections made
// to the framework for iid are routed to c. A zero kind takes the
// receptacle's own cardinality.
func (f *Framework) ExposeReceptacle(iid string, c core.Unknown, kind core.ReceptacleKind) bool {
	h, ok := f.member(c)
	if !ok || f.receptacleExposed(iid) {
		return false
	}

	meta, ok := h.QueryInterface(core.IMetaInterface).(core.MetaInterface)
	if !ok {
		return false
	}

	found := false
	for _, r := range meta.EnumReceptacles() {
		if strings.EqualFold(r.InterfaceType, iid) {
			found = true
			if kind == 0 {
				kind = r.Kind
			}
			break
		}
	}

	if !found {
		return false
	}

	f.mu.Lock()
	f.exposedRcp = append(f.exposedRcp, core.ExposedReceptacle{Component: h, InterfaceType: iid, Kind: kind})
	f.mu.Unlock()

	return true
}

// UnexposeInterface withdraws an exposed interface and detaches its lock
// interceptors. A nil c matches any component.
func (f *Framework) UnexposeInterface(iid string, c core.Unknown) bool {
	var owner *core.Handle
	if c != nil {
		h, ok := f.rt.Lookup(c)
		if !ok {
			return false
		}
		owner = h
	}

	f.mu.Lock()
	idx := -1
	for i, e := range f.exposed {
		if strings.EqualFold(e.InterfaceType, iid) && (owner == nil || e.Component == owner) {
			idx = i
			break
		}
	}

	if idx < 0 {
		f.mu.Unlock()
		return false
	}

	e := f.exposed[idx]
	f.exposed = append(f.exposed[:idx:idx], f.exposed[idx+1:]...)
	f.mu.Unlock()

	f.detach(e)

	return true
}

// UnexposeReceptacle withdraws an exposed receptacle. A nil c matches any
// component.
func (f *Framework) UnexposeReceptacle(iid string, c core.Unknown) bool {
	var owner *core.Handle
	if c != nil {
		h, ok := f.rt.Lookup(c)
		if !ok {
			return false
		}
		owner = h
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range f.exposedRcp {
		if strings.EqualFold(e.InterfaceType, iid) && (owner == nil || e.Component == owner) {
			f.exposedRcp = append(f.exposedRcp[:i:i], f.exposedRcp[i+1:]...)
			return true
		}
	}

	return false
}

// UnexposeAllInterfaces withdraws every exposed interface.
func (f *Framework) UnexposeAllInterfaces() bool {
	f.mu.Lock()
	all := f.exposed
	f.exposed = nil
	f.mu.Unlock()

	for _, e := range all {
		f.detach(e)
	}

	return true
}

// UnexposeAllReceptacles withdraws every exposed receptacle.
func (f *Framework) UnexposeAllReceptacles() bool {
	f.mu.Lock()
	f.exposedRcp = nil
	f.mu.Unlock()

	return true
}

// ExposedInterfaces returns the exposed interfaces in exposure order.
func (f *Framework) ExposedInterfaces() []core.ExposedInterface {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]core.ExposedInterface(nil), f.exposed...)
}

// ExposedReceptacles returns the exposed receptacles in exposure order.
func (f *Framework) ExposedReceptacles() []core.ExposedReceptacle {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]core.ExposedReceptacle(nil), f.exposedRcp...)
}

// dropExposures withdraws everything member h exposes.
func (f *Framework) dropExposures(h *core.Handle) {
	f.mu.Lock()
	var gone []core.ExposedInterface
	kept := f.exposed[:0:0]
	for _, e := range f.exposed {
		if e.Component == h {
			gone = append(gone, e)
			continue
		}
		kept = append(kept, e)
	}
	f.exposed = kept

	rcp := f.exposedRcp[:0:0]
	for _, e := range f.exposedRcp {
		if e.Component != h {
			rcp = append(rcp, e)
		}
	}
	f.exposedRcp = rcp
	f.mu.Unlock()

	for _, e := range gone {
		f.detach(e)
	}
}

func (f *Framework) detach(e core.ExposedInterface) {
	if d, ok := f.rt.Delegator(e.Component, e.InterfaceType); ok {
		d.DelInterceptor(f.enterHook, f.exitHook)
	}
}

func (f *Framework) interfaceExposed(iid string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposed {
		if strings.EqualFold(e.InterfaceType, iid) {
			return true
		}
	}

	return false
}

func (f *Framework) receptacleExposed(iid string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposedRcp {
		if strings.EqualFold(e.InterfaceType, iid) {
			return true
		}
	}

	return false
}

func (f *Framework) exposedBy(iid string, h *core.Handle) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposed {
		if strings.EqualFold(e.InterfaceType, iid) && e.Component == h {
			return true
		}
	}

	return false
}
