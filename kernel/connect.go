package kernel

import (
	"github.com/hupe1980/compmesh/core"
)

// Connect binds source's receptacle iid to sink's interface iid.
//
// Graph metadata is registered provisionally under the next unissued id,
// then the physical bind runs through source's connection capability. When
// the bind fails the provisional records are removed and the id is not
// consumed.
func (k *Kernel) Connect(source, sink core.Unknown, iid string) (core.ConnID, bool) {
	src, ok := k.node(source)
	if !ok {
		return 0, false
	}

	dst, ok := k.node(sink)
	if !ok {
		return 0, false
	}

	conns, ok := src.impl.QueryInterface(core.IConnections).(core.Connections)
	if !ok {
		k.logger.Warn("Connect source has no connection capability", "source", src.handle.ID(), "interface", iid)
		k.observer.ConnectFailed(src.handle, dst.handle, iid)
		return 0, false
	}

	k.mu.Lock()
	id := k.lastID + 1
	info := core.ConnInfo{ID: id, Source: src.handle, Sink: dst.handle, InterfaceType: iid}
	k.conns[id] = info
	src.outgoing = append(src.outgoing, id)
	dst.incoming = append(dst.incoming, id)
	k.mu.Unlock()

	if !conns.Connect(dst.handle, iid, id) {
		k.mu.Lock()
		k.deregister(info)
		k.mu.Unlock()

		k.logger.Warn("Physical bind failed", "source", src.handle.ID(), "sink", dst.handle.ID(), "interface", iid)
		k.observer.ConnectFailed(src.handle, dst.handle, iid)

		return 0, false
	}

	k.mu.Lock()
	if id > k.lastID {
		k.lastID = id
	}
	k.mu.Unlock()

	k.logger.Debug("Connected", "id", id, "source", src.handle.ID(), "sink", dst.handle.ID(), "interface", iid)
	k.observer.Connected(info)

	return id, true
}

// Disconnect performs the physical unbind of connection id through its
// source's connection capability and then removes the graph metadata
// regardless of the unbind result. Unknown ids return false.
func (k *Kernel) Disconnect(id core.ConnID) bool {
	info, ok := k.ConnectionInfo(id)
	if !ok {
		return false
	}

	src, ok := k.node(info.Source)
	if ok {
		if conns, ok := src.impl.QueryInterface(core.IConnections).(core.Connections); ok {
			if !conns.Disconnect(info.InterfaceType, id) {
				k.logger.Warn("Physical unbind failed", "id", id, "interface", info.InterfaceType)
			}
		}
	}

	k.mu.Lock()
	k.deregister(info)
	k.mu.Unlock()

	k.logger.Debug("Disconnected", "id", id, "interface", info.InterfaceType)
	k.observer.Disconnected(info)

	return true
}

// deregister removes both graph-side records of a connection. Callers hold
// k.mu.
func (k *Kernel) deregister(info core.ConnInfo) {
	delete(k.conns, info.ID)

	for _, n := range k.nodes {
		if n.handle == info.Source {
			n.outgoing = without(n.outgoing, info.ID)
		}
		if n.handle == info.Sink {
			n.incoming = without(n.incoming, info.ID)
		}
	}
}

func without(ids []core.ConnID, id core.ConnID) []core.ConnID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
