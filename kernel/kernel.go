// Package kernel implements the Component Registry: the owner of the system
// graph of components, connections and delegators.
//
// A Kernel instantiates registered component types, wraps each declared
// non-core capability in a Delegation Proxy, binds receptacles to
// interfaces and tears components down again. All of it is exposed through
// core.Runtime so components and frameworks never depend on this package.
//
// The graph records are guarded so concurrent reads are memory safe, but the
// create/connect/disconnect/delete protocols are not atomic with respect to
// each other: component code (constructors, physical binds, shutdown) runs
// without any kernel lock held. Concurrent reconfiguration of one Kernel from
// several goroutines is unsupported and can, for example, issue the same
// provisional connection id twice. Frameworks serialize their own
// reconfiguration through transactions.
package kernel

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/delegator"
	"github.com/hupe1980/compmesh/logging"
)

var (
	// ErrTypeExists is returned when a component type name is registered twice.
	ErrTypeExists = fmt.Errorf("component type already registered")
	// ErrInvalidRegistration is returned for incomplete type table entries.
	ErrInvalidRegistration = fmt.Errorf("invalid component registration")
)

// Options configures a Kernel.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Observer receives graph events (defaults to core.NopObserver)
	Observer core.Observer
}

type node struct {
	name       string
	typeName   string
	handle     *core.Handle
	impl       core.Unknown
	delegators []*delegator.Delegator
	outgoing   []core.ConnID // receptacle side
	incoming   []core.ConnID // interface side
	stopped    bool
}

func (n *node) delegator(iid string) (*delegator.Delegator, bool) {
	for _, d := range n.delegators {
		if strings.EqualFold(d.InterfaceType(), iid) {
			return d, true
		}
	}
	return nil, false
}

// Kernel is the Component Registry.
type Kernel struct {
	logger   logging.Logger
	observer core.Observer
	dlgLog   logging.Logger

	mu     sync.RWMutex
	types  map[string]core.Registration
	nodes  []*node
	conns  map[core.ConnID]core.ConnInfo
	lastID core.ConnID
	lastNd core.ComponentID
}

// New creates an empty kernel.
func New(optFns ...func(o *Options)) *Kernel {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NopObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Observer == nil {
		opts.Observer = core.NopObserver{}
	}

	return &Kernel{
		logger:   logging.ForComponent(opts.Logger, "kernel"),
		dlgLog:   logging.ForComponent(opts.Logger, "delegator"),
		observer: opts.Observer,
		types:    map[string]core.Registration{},
		conns:    map[core.ConnID]core.ConnInfo{},
	}
}

// Register adds component types to the type table. Every declared non-core
// capability needs a proxy factory.
func (k *Kernel) Register(regs ...core.Registration) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, r := range regs {
		if r.Name == "" || r.Build == nil {
			return fmt.Errorf("%w: type %q needs a name and a constructor", ErrInvalidRegistration, r.Name)
		}

		for _, s := range r.Interfaces {
			if s.Proxy == nil && !core.IsCoreInterface(s.Name) && !strings.EqualFold(s.Name, core.IUnknown) {
				return fmt.Errorf("%w: type %q declares %s without a proxy factory", ErrInvalidRegistration, r.Name, s.Name)
			}
		}

		key := strings.ToLower(r.Name)
		if _, ok := k.types[key]; ok {
			return fmt.Errorf("%w: %s", ErrTypeExists, r.Name)
		}

		k.types[key] = r
	}

	return nil
}

// Types returns the registered types sorted by name.
func (k *Kernel) Types() []core.Registration {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]core.Registration, 0, len(k.types))
	for _, r := range k.types {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Registration returns the type table entry for typeName.
func (k *Kernel) Registration(typeName string) (core.Registration, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	r, ok := k.types[strings.ToLower(typeName)]

	return r, ok
}

// QueryInterface implements core.Unknown. The kernel answers its own
// runtime and meta capabilities.
func (k *Kernel) QueryInterface(name string) any {
	for _, c := range []string{core.IUnknown, core.IRuntime, core.IMetaArchitecture, core.IMetaInterception} {
		if strings.EqualFold(c, name) {
			return k
		}
	}

	return nil
}

// CreateInstance instantiates typeName, wraps its declared capabilities in
// delegators and records a graph node. The returned handle is the outer
// proxy of the component's base capability. name is optional but must be
// unique when given.
func (k *Kernel) CreateInstance(typeName, name string) (*core.Handle, error) {
	reg, ok := k.Registration(typeName)
	if !ok {
		return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "unknown type"}
	}

	if name != "" {
		if _, taken := k.ComponentByName(name); taken {
			return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "name already in use"}
		}
	}

	impl, err := reg.Build(k)
	if err != nil {
		return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "constructor failed", Err: err}
	}

	if impl == nil || impl.QueryInterface(core.IUnknown) == nil {
		return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "missing base capability"}
	}

	n := &node{name: name, typeName: reg.Name, impl: impl}

	for _, s := range reg.Interfaces {
		if core.IsCoreInterface(s.Name) || strings.EqualFold(s.Name, core.IUnknown) {
			continue
		}

		target := impl.QueryInterface(s.Name)
		if target == nil {
			return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "declared capability " + s.Name + " not provided"}
		}

		d, ok := delegator.New(s.Name, target, s.Proxy, func(o *delegator.Options) {
			o.Logger = k.dlgLog
			o.Observer = k.observer
		})
		if !ok {
			return nil, &core.InvalidComponentTypeError{Type: typeName, Name: name, Reason: "proxy factory rejected capability " + s.Name}
		}

		n.delegators = append(n.delegators, d)
	}

	k.mu.Lock()
	k.lastNd++
	n.handle = core.NewHandle(k.lastNd, impl, k)
	k.nodes = append(k.nodes, n)
	k.mu.Unlock()

	k.logger.Debug("Component created", "type", reg.Name, "name", name, "id", n.handle.ID())
	k.observer.ComponentCreated(reg.Name, name, n.handle)

	return n.handle, nil
}

// DeleteInstance shuts the component down, disconnects every connection
// where it is sink, then every connection where it is source, and removes
// its node. Shutdown runs first so the component can still reach its
// collaborators. A core.Disposer is disposed of last.
func (k *Kernel) DeleteInstance(c core.Unknown) bool {
	n, ok := k.node(c)
	if !ok {
		return false
	}

	k.shutdown(n)

	k.mu.RLock()
	incoming := append([]core.ConnID(nil), n.incoming...)
	k.mu.RUnlock()

	for _, id := range incoming {
		k.Disconnect(id)
	}

	k.mu.RLock()
	outgoing := append([]core.ConnID(nil), n.outgoing...)
	k.mu.RUnlock()

	for _, id := range outgoing {
		k.Disconnect(id)
	}

	k.mu.Lock()
	for i, other := range k.nodes {
		if other == n {
			k.nodes = append(k.nodes[:i:i], k.nodes[i+1:]...)
			break
		}
	}
	k.mu.Unlock()

	if d, ok := n.impl.(core.Disposer); ok {
		d.Dispose()
	}

	k.logger.Debug("Component deleted", "type", n.typeName, "name", n.name, "id", n.handle.ID())
	k.observer.ComponentDeleted(n.typeName, n.name, n.handle)

	return true
}

// ShutdownInstance runs c's life-cycle shutdown and keeps it in the graph
// with its connections. A later DeleteInstance does not shut it down again.
func (k *Kernel) ShutdownInstance(c core.Unknown) bool {
	n, ok := k.node(c)
	if !ok {
		return false
	}

	return k.shutdown(n)
}

// StartupInstance runs c's life-cycle startup with data. It undoes
// ShutdownInstance, so a later DeleteInstance shuts c down again.
func (k *Kernel) StartupInstance(c core.Unknown, data any) bool {
	n, ok := k.node(c)
	if !ok {
		return false
	}

	if lc, ok := n.impl.QueryInterface(core.ILifeCycle).(core.LifeCycle); ok && !lc.Startup(data) {
		return false
	}

	k.mu.Lock()
	n.stopped = false
	k.mu.Unlock()

	return true
}

// RenameInstance changes c's instance name. An empty name leaves c
// anonymous; a name held by another component is rejected.
func (k *Kernel) RenameInstance(c core.Unknown, name string) bool {
	n, ok := k.node(c)
	if !ok {
		return false
	}

	if name != "" {
		if h, taken := k.ComponentByName(name); taken && h != n.handle {
			return false
		}
	}

	k.mu.Lock()
	old := n.name
	n.name = name
	k.mu.Unlock()

	k.logger.Debug("Component renamed", "type", n.typeName, "from", old, "to", name, "id", n.handle.ID())

	return true
}

// shutdown runs n's life-cycle shutdown at most once.
func (k *Kernel) shutdown(n *node) bool {
	k.mu.Lock()
	stopped := n.stopped
	n.stopped = true
	k.mu.Unlock()

	if stopped {
		return true
	}

	lc, ok := n.impl.QueryInterface(core.ILifeCycle).(core.LifeCycle)
	if !ok {
		return true
	}

	if !lc.Shutdown() {
		k.logger.Warn("Component shutdown reported failure", "type", n.typeName, "name", n.name, "id", n.handle.ID())
		return false
	}

	return true
}

// Delegator implements core.MetaInterception.
func (k *Kernel) Delegator(c core.Unknown, iid string) (core.Delegator, bool) {
	n, ok := k.node(c)
	if !ok {
		return nil, false
	}

	d, ok := n.delegator(iid)
	if !ok {
		return nil, false
	}

	return d, true
}

// node resolves either a handle or the raw component behind one.
func (k *Kernel) node(c core.Unknown) (*node, bool) {
	if c == nil {
		return nil, false
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	if h, ok := c.(*core.Handle); ok {
		for _, n := range k.nodes {
			if n.handle == h {
				return n, true
			}
		}
		return nil, false
	}

	for _, n := range k.nodes {
		if n.handle.Owns(c) {
			return n, true
		}
	}

	return nil, false
}

var (
	_ core.Runtime          = (*Kernel)(nil)
	_ core.MetaArchitecture = (*Kernel)(nil)
	_ core.MetaInterception = (*Kernel)(nil)
)
