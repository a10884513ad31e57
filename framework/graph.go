package framework

import (
	"github.com/hupe1980/compmesh/core"
)

// CreateComponent creates a component through the runtime and adds it to
// the framework. An existing member with the same name is returned as is.
func (f *Framework) CreateComponent(typeName, name string) (*core.Handle, error) {
	if name != "" {
		if h, ok := f.rt.ComponentByName(name); ok && f.isMember(h) {
			return h, nil
		}
	}

	h, err := f.rt.CreateInstance(typeName, name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.components = append(f.components, h)
	if f.tx != nil {
		f.tx.created[h] = struct{}{}
	}
	f.mu.Unlock()

	f.logger.Debug("Component created in framework", "framework", f.Name(), "type", typeName, "name", name)

	return h, nil
}

// InsertComponent adds a component already known to the runtime.
func (f *Framework) InsertComponent(c core.Unknown) bool {
	h, ok := f.rt.Lookup(c)
	if !ok || f.isMember(h) {
		return false
	}

	if h.Owns(f) {
		return false
	}

	existing := f.bindingsOf(h)

	f.mu.Lock()
	f.components = append(f.components, h)
	f.inserted[h] = struct{}{}
	if f.tx != nil {
		f.tx.inserted[h] = struct{}{}
		for _, id := range existing {
			f.tx.preserved[id] = struct{}{}
		}
	}
	f.mu.Unlock()

	return true
}

// DeleteComponent removes a member and deletes it from the runtime. Inside
// a transaction a component that existed before the transaction is shut
// down while still bound, then disconnected, stripped of its name and
// dropped from the member list; only its removal from the runtime waits for
// commit.
func (f *Framework) DeleteComponent(c core.Unknown) bool {
	h, ok := f.member(c)
	if !ok {
		return false
	}

	f.dropExposures(h)

	f.mu.RLock()
	inTx := f.tx != nil
	created := f.txCreated(h)
	f.mu.RUnlock()

	if !inTx || created {
		if !f.rt.DeleteInstance(h) {
			return false
		}

		f.mu.Lock()
		f.components = removeHandle(f.components, h)
		delete(f.inserted, h)
		if f.tx != nil {
			delete(f.tx.created, h)
		}
		f.mu.Unlock()

		return true
	}

	name, _ := f.rt.ComponentName(h)

	f.rt.ShutdownInstance(h)

	for _, id := range f.bindingsOf(h) {
		f.rt.Disconnect(id)
	}

	if name != "" {
		f.rt.RenameInstance(h, "")
	}

	f.mu.Lock()
	_, inserted := f.inserted[h]
	f.components = removeHandle(f.components, h)
	delete(f.inserted, h)
	if f.tx != nil {
		f.tx.pending = append(f.tx.pending, pendingDelete{handle: h, name: name, inserted: inserted})
	}
	f.mu.Unlock()

	return true
}

// LocalBind connects two members.
func (f *Framework) LocalBind(source, sink core.Unknown, iid string) (core.ConnID, bool) {
	src, ok := f.member(source)
	if !ok {
		return 0, false
	}

	dst, ok := f.member(sink)
	if !ok {
		return 0, false
	}

	return f.rt.Connect(src, dst, iid)
}

// BreakLocalBind disconnects an internal binding.
func (f *Framework) BreakLocalBind(id core.ConnID) bool {
	for _, known := range f.InternalBindings() {
		if known == id {
			return f.rt.Disconnect(id)
		}
	}

	return false
}

// InternalComponents returns the members in insertion order.
func (f *Framework) InternalComponents() []*core.Handle {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]*core.Handle(nil), f.components...)
}

// BoundComponents lists every connection of member c with the component on
// its other end. The peer may live outside the framework.
func (f *Framework) BoundComponents(c core.Unknown) []Binding {
	h, ok := f.member(c)
	if !ok {
		return nil
	}

	var out []Binding
	for _, id := range f.bindingsOf(h) {
		info, ok := f.rt.ConnectionInfo(id)
		if !ok {
			continue
		}

		peer := info.Sink
		if info.Sink == h {
			peer = info.Source
		}

		out = append(out, Binding{ID: id, Peer: peer})
	}

	return out
}

// InternalBindings returns the ids of every connection touching a member,
// including connections to components outside the framework.
func (f *Framework) InternalBindings() []core.ConnID {
	seen := map[core.ConnID]struct{}{}

	var out []core.ConnID
	for _, h := range f.InternalComponents() {
		for _, id := range f.bindingsOf(h) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}

// bindingsOf lists every connection of h, interface side first.
func (f *Framework) bindingsOf(h *core.Handle) []core.ConnID {
	return f.rt.EnumConns(h)
}

func (f *Framework) member(c core.Unknown) (*core.Handle, bool) {
	h, ok := f.rt.Lookup(c)
	if !ok || !f.isMember(h) {
		return nil, false
	}

	return h, true
}

// txCreated reports whether h was created by the open transaction. Callers
// hold f.mu.
func (f *Framework) txCreated(h *core.Handle) bool {
	if f.tx == nil {
		return false
	}
	_, ok := f.tx.created[h]
	return ok
}

func (f *Framework) isMember(h *core.Handle) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, m := range f.components {
		if m == h {
			return true
		}
	}

	return false
}

func removeHandle(hs []*core.Handle, h *core.Handle) []*core.Handle {
	out := hs[:0:0]
	for _, m := range hs {
		if m != h {
			out = append(out, m)
		}
	}
	return out
}
