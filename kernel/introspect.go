package kernel

import (
	"sort"
	"strings"

	"github.com/hupe1980/compmesh/core"
)

// EnumConnsToIntf implements core.MetaArchitecture.
func (k *Kernel) EnumConnsToIntf(c core.Unknown, iid string) []core.ConnID {
	n, ok := k.node(c)
	if !ok {
		return nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.filter(n.incoming, iid)
}

// EnumConnsFromRecp implements core.MetaArchitecture.
func (k *Kernel) EnumConnsFromRecp(c core.Unknown, iid string) []core.ConnID {
	n, ok := k.node(c)
	if !ok {
		return nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.filter(n.outgoing, iid)
}

// EnumConns implements core.MetaArchitecture: every connection of c,
// interface side first.
func (k *Kernel) EnumConns(c core.Unknown) []core.ConnID {
	n, ok := k.node(c)
	if !ok {
		return nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	seen := make(map[core.ConnID]struct{}, len(n.incoming)+len(n.outgoing))
	out := make([]core.ConnID, 0, len(n.incoming)+len(n.outgoing))
	for _, ids := range [][]core.ConnID{n.incoming, n.outgoing} {
		for _, id := range ids {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}

	return out
}

func (k *Kernel) filter(ids []core.ConnID, iid string) []core.ConnID {
	var out []core.ConnID
	for _, id := range ids {
		if info, ok := k.conns[id]; ok && strings.EqualFold(info.InterfaceType, iid) {
			out = append(out, id)
		}
	}
	return out
}

// EnumComponents returns every component handle in creation order.
func (k *Kernel) EnumComponents() []*core.Handle {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]*core.Handle, len(k.nodes))
	for i, n := range k.nodes {
		out[i] = n.handle
	}

	return out
}

// Lookup returns the handle for c, which may be a handle or the raw
// component behind one.
func (k *Kernel) Lookup(c core.Unknown) (*core.Handle, bool) {
	n, ok := k.node(c)
	if !ok {
		return nil, false
	}

	return n.handle, true
}

// ComponentName returns the instance name given at creation.
func (k *Kernel) ComponentName(c core.Unknown) (string, bool) {
	n, ok := k.node(c)
	if !ok {
		return "", false
	}

	return n.name, true
}

// ComponentType returns the registered type name of c.
func (k *Kernel) ComponentType(c core.Unknown) (string, bool) {
	n, ok := k.node(c)
	if !ok {
		return "", false
	}

	return n.typeName, true
}

// ComponentByName finds a component by instance name (case-insensitive).
func (k *Kernel) ComponentByName(name string) (*core.Handle, bool) {
	if name == "" {
		return nil, false
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	for _, n := range k.nodes {
		if strings.EqualFold(n.name, name) {
			return n.handle, true
		}
	}

	return nil, false
}

// ConnectionInfo returns the record of connection id.
func (k *Kernel) ConnectionInfo(id core.ConnID) (core.ConnInfo, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	info, ok := k.conns[id]

	return info, ok
}

// Connections returns every connection ordered by id.
func (k *Kernel) Connections() []core.ConnInfo {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]core.ConnInfo, 0, len(k.conns))
	for _, info := range k.conns {
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
