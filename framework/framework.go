// Package framework implements the Component Framework (CF): a composite
// component that owns a sub-graph of components inside a runtime and
// reconfigures it transactionally.
//
// A Framework is itself a component type (TypeName) created through the
// kernel. Its ICFMetaInterface capability manages the internal component
// list, local bindings and the interfaces and receptacles it exposes to the
// outside. Every exposed interface gets a reader/writer interceptor pair so
// functional calls and reconfiguration transactions exclude each other:
//
//	h, _ := k.CreateInstance(framework.TypeName, "calc")
//	cf := h.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)
//	cf.InitArchTransaction(ctx)
//	c, _ := cf.CreateComponent("Calculator", "Calculator")
//	...
//	cf.ExposeInterface("ICalculator", c)
//	cf.CommitArchTransaction()
//
// A validator component bound to the framework's IAccept receptacle is
// consulted at commit time; a rejected commit restores the snapshot taken
// when the transaction started.
package framework

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hupe1980/compmesh/component"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/internal/semaphore"
	"github.com/hupe1980/compmesh/logging"
	"github.com/hupe1980/compmesh/receptacle"
)

// TypeName is the component type name frameworks are registered under.
const TypeName = "ComponentFramework"

// Options configures a Framework.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Observer receives TransactionFinished events.
	Observer core.Observer
	// Tracer opens one span per transaction (defaults to a no-op tracer).
	Tracer trace.Tracer
}

// NewRegistration returns the type table entry for frameworks. Pass it to
// the kernel's Register.
func NewRegistration(optFns ...func(o *Options)) core.Registration {
	return core.Registration{
		Name:        TypeName,
		Description: "composite component with transactional reconfiguration",
		Build: func(rt core.Runtime) (core.Unknown, error) {
			return New(rt, optFns...), nil
		},
	}
}

// Binding is one connection of an internal component together with the
// component on its other end.
type Binding struct {
	ID   core.ConnID
	Peer *core.Handle
}

// CFMetaInterface is the reconfiguration capability of a framework.
type CFMetaInterface interface {
	CreateComponent(typeName, name string) (*core.Handle, error)
	InsertComponent(c core.Unknown) bool
	DeleteComponent(c core.Unknown) bool
	LocalBind(source, sink core.Unknown, iid string) (core.ConnID, bool)
	BreakLocalBind(id core.ConnID) bool

	ExposeInterface(iid string, c core.Unknown) bool
	ExposeReceptacle(iid string, c core.Unknown, kind core.ReceptacleKind) bool
	UnexposeInterface(iid string, c core.Unknown) bool
	UnexposeReceptacle(iid string, c core.Unknown) bool
	UnexposeAllInterfaces() bool
	UnexposeAllReceptacles() bool

	InternalComponents() []*core.Handle
	BoundComponents(c core.Unknown) []Binding
	InternalBindings() []core.ConnID
	ExposedInterfaces() []core.ExposedInterface
	ExposedReceptacles() []core.ExposedReceptacle

	InitArchTransaction(ctx context.Context) bool
	CommitArchTransaction() bool
	RollbackArchTransaction() bool
	InTransaction() bool
}

var frameworkSeq atomic.Uint64

// Framework is the Component Framework.
type Framework struct {
	*component.Base

	rt       core.Runtime
	logger   logging.Logger
	observer core.Observer
	tracer   trace.Tracer

	// graph lock
	write     *semaphore.Semaphore
	readers   *semaphore.Semaphore
	readCount int
	enterHook string
	exitHook  string
	hooks     core.Hooks

	validator *receptacle.Single[core.Validator]

	mu         sync.RWMutex
	components []*core.Handle
	inserted   map[*core.Handle]struct{}
	exposed    []core.ExposedInterface
	exposedRcp []core.ExposedReceptacle
	tx         *transaction
}

// New creates a framework bound to rt. Frameworks are normally created by
// the kernel through NewRegistration; New is exposed for embedding.
func New(rt core.Runtime, optFns ...func(o *Options)) *Framework {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NopObserver{},
		Tracer:   noop.NewTracerProvider().Tracer("compmesh/framework"),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	seq := frameworkSeq.Add(1)

	f := &Framework{
		rt:        rt,
		logger:    logging.ForComponent(opts.Logger, "framework"),
		observer:  opts.Observer,
		tracer:    opts.Tracer,
		write:     semaphore.New(1),
		readers:   semaphore.New(1),
		enterHook: fmt.Sprintf("cf%d.Enter", seq),
		exitHook:  fmt.Sprintf("cf%d.Exit", seq),
		validator: receptacle.NewSingle[core.Validator](core.IAccept),
		inserted:  map[*core.Handle]struct{}{},
	}

	if f.observer == nil {
		f.observer = core.NopObserver{}
	}

	f.hooks = core.Hooks{
		f.enterHook: f.enter,
		f.exitHook:  f.exit,
	}

	f.Base = component.NewBase(rt, f)
	f.Provide(core.ICFMetaInterface, CFMetaInterface(f))
	f.AddReceptacle(f.validator)

	return f
}

// Name returns the instance name the runtime knows the framework by.
func (f *Framework) Name() string {
	if name, ok := f.rt.ComponentName(f); ok && name != "" {
		return name
	}
	return TypeName
}

// QueryInterface answers the framework's own capabilities first and then
// the exposed interfaces.
func (f *Framework) QueryInterface(name string) any {
	if ref := f.Base.QueryInterface(name); ref != nil {
		return ref
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposed {
		if strings.EqualFold(e.InterfaceType, name) {
			return e.Ref
		}
	}

	return nil
}

// EnumInterfaces lists the framework's own and its exposed interfaces.
func (f *Framework) EnumInterfaces() []string {
	out := f.Base.EnumInterfaces()

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposed {
		out = append(out, e.InterfaceType)
	}

	return out
}

// EnumReceptacles lists the framework's own and its exposed receptacles.
func (f *Framework) EnumReceptacles() []core.ReceptacleInfo {
	out := f.Base.EnumReceptacles()

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposedRcp {
		out = append(out, core.ReceptacleInfo{InterfaceType: e.InterfaceType, Kind: e.Kind})
	}

	return out
}

// Connect binds the IAccept validator or, for an exposed receptacle, the
// receptacle of the internal component that owns it.
func (f *Framework) Connect(sink core.Unknown, iid string, id core.ConnID) bool {
	if conns, ok := f.exposedConnections(iid); ok {
		return conns.Connect(sink, iid, id)
	}

	return f.Base.Connect(sink, iid, id)
}

// Disconnect implements core.Connections.
func (f *Framework) Disconnect(iid string, id core.ConnID) bool {
	if conns, ok := f.exposedConnections(iid); ok {
		return conns.Disconnect(iid, id)
	}

	return f.Base.Disconnect(iid, id)
}

func (f *Framework) exposedConnections(iid string) (core.Connections, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, e := range f.exposedRcp {
		if strings.EqualFold(e.InterfaceType, iid) {
			c, ok := e.Component.QueryInterface(core.IConnections).(core.Connections)
			return c, ok
		}
	}

	return nil, false
}

// Shutdown rolls back an open transaction.
func (f *Framework) Shutdown() bool {
	f.RollbackArchTransaction()

	return true
}

// Dispose runs when the runtime deletes the framework. Members created
// through the framework are deleted newest first; inserted members stay in
// the runtime without the framework's interceptors.
func (f *Framework) Dispose() {
	f.RollbackArchTransaction()
	f.UnexposeAllInterfaces()
	f.UnexposeAllReceptacles()

	f.mu.Lock()
	members := f.components
	inserted := f.inserted
	f.components = nil
	f.inserted = map[*core.Handle]struct{}{}
	f.mu.Unlock()

	for _, h := range slices.Backward(members) {
		if _, ok := inserted[h]; ok {
			continue
		}
		f.rt.DeleteInstance(h)
	}

	f.logger.Debug("Framework disposed", "members", len(members), "kept", len(inserted))
}

var (
	_ CFMetaInterface    = (*Framework)(nil)
	_ core.Unknown       = (*Framework)(nil)
	_ core.Connections   = (*Framework)(nil)
	_ core.LifeCycle     = (*Framework)(nil)
	_ core.Disposer      = (*Framework)(nil)
	_ core.MetaInterface = (*Framework)(nil)
)
