// Package compmesh provides a high-level façade over the component kernel
// and Component Frameworks. Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally registering their own component types)
//  2. Creating and connecting components, or applying an assembly file
//  3. Grouping components in frameworks and reconfiguring them in transactions
//
// The façade owns a kernel.Kernel with the framework type pre-registered and
// hands the logger, observer and tracer to every layer. All defaults are
// no-ops, so an unconfigured Mesh is silent.
package compmesh

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/compmesh/assembly"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/internal/calculator"
	"github.com/hupe1980/compmesh/kernel"
	"github.com/hupe1980/compmesh/logging"
)

// Options configures the Mesh instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Observer receives kernel, delegator and framework events, e.g. a
	// metrics.Recorder (defaults to core.NopObserver).
	Observer core.Observer

	// Tracer opens one span per framework transaction (defaults to a no-op
	// tracer).
	Tracer trace.Tracer

	// Registrations are added to the type table after the framework type.
	Registrations []core.Registration

	// Samples registers the Adder, Subtractor, Calculator and Accept sample
	// types.
	Samples bool
}

// Mesh is the high-level façade aggregating a kernel and its frameworks.
type Mesh struct {
	opts   Options
	kernel *kernel.Kernel
}

// New creates a Mesh. It fails only when a registration is rejected.
func New(optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NopObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	k := kernel.New(func(o *kernel.Options) {
		o.Logger = opts.Logger
		o.Observer = opts.Observer
	})

	reg := framework.NewRegistration(func(o *framework.Options) {
		o.Logger = opts.Logger
		o.Observer = opts.Observer
		if opts.Tracer != nil {
			o.Tracer = opts.Tracer
		}
	})

	if err := k.Register(reg); err != nil {
		return nil, fmt.Errorf("registering framework type: %w", err)
	}

	if opts.Samples {
		if err := calculator.Register(k); err != nil {
			return nil, fmt.Errorf("registering sample types: %w", err)
		}
	}

	if len(opts.Registrations) > 0 {
		if err := k.Register(opts.Registrations...); err != nil {
			return nil, err
		}
	}

	return &Mesh{opts: opts, kernel: k}, nil
}

// Runtime returns the kernel as the runtime contract components see.
func (m *Mesh) Runtime() core.Runtime { return m.kernel }

// Kernel returns the underlying kernel.
func (m *Mesh) Kernel() *kernel.Kernel { return m.kernel }

// Register adds component types.
func (m *Mesh) Register(regs ...core.Registration) error { return m.kernel.Register(regs...) }

// Create instantiates a registered component type.
func (m *Mesh) Create(typeName, name string) (*core.Handle, error) {
	return m.kernel.CreateInstance(typeName, name)
}

// Delete shuts a component down and removes it with its connections.
func (m *Mesh) Delete(c core.Unknown) bool { return m.kernel.DeleteInstance(c) }

// Connect binds source's receptacle iid to sink's interface iid.
func (m *Mesh) Connect(source, sink core.Unknown, iid string) (core.ConnID, bool) {
	return m.kernel.Connect(source, sink, iid)
}

// Disconnect removes connection id.
func (m *Mesh) Disconnect(id core.ConnID) bool { return m.kernel.Disconnect(id) }

// NewFramework creates a framework instance and returns its handle together
// with its reconfiguration capability.
func (m *Mesh) NewFramework(name string) (*core.Handle, framework.CFMetaInterface, error) {
	h, err := m.kernel.CreateInstance(framework.TypeName, name)
	if err != nil {
		return nil, nil, err
	}

	cf, ok := h.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)
	if !ok {
		return nil, nil, fmt.Errorf("component %s does not provide %s", h, core.ICFMetaInterface)
	}

	return h, cf, nil
}

// Framework returns the reconfiguration capability of an existing
// framework instance.
func (m *Mesh) Framework(name string) (framework.CFMetaInterface, bool) {
	h, ok := m.kernel.ComponentByName(name)
	if !ok {
		return nil, false
	}

	cf, ok := h.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)

	return cf, ok
}

// Apply builds an assembly against the mesh's kernel.
func (m *Mesh) Apply(ctx context.Context, a *assembly.Assembly, optFns ...func(o *assembly.Options)) (*assembly.Result, error) {
	fns := append([]func(o *assembly.Options){func(o *assembly.Options) { o.Logger = m.opts.Logger }}, optFns...)
	return assembly.Apply(ctx, m.kernel, a, fns...)
}

// ApplyFile loads the assembly file at path and applies it.
func (m *Mesh) ApplyFile(ctx context.Context, path string, optFns ...func(o *assembly.Options)) (*assembly.Result, error) {
	a, err := assembly.Load(path)
	if err != nil {
		return nil, err
	}

	return m.Apply(ctx, a, optFns...)
}

// SampleHooks returns the sample interceptor host wired to the Adder named
// adderName.
func (m *Mesh) SampleHooks(adderName string) any {
	return calculator.NewInterceptors(m.kernel, adderName, m.opts.Logger)
}
