package testutil

import (
	"strings"
	"testing"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/internal/calculator"
	"github.com/hupe1980/compmesh/kernel"
)

// NewKernel returns a kernel with the sample types and the framework type
// registered. observer may be nil.
func NewKernel(t testing.TB, observer core.Observer) *kernel.Kernel {
	t.Helper()

	if observer == nil {
		observer = core.NopObserver{}
	}

	k := kernel.New(func(o *kernel.Options) { o.Observer = observer })

	if err := calculator.Register(k); err != nil {
		t.Fatalf("registering sample types: %v", err)
	}

	if err := k.Register(framework.NewRegistration(func(o *framework.Options) { o.Observer = observer })); err != nil {
		t.Fatalf("registering framework type: %v", err)
	}

	return k
}

type connSpec struct {
	source, sink, iid string
}

// GraphBuilder helps construct small component graphs with fluent chaining
// for tests. Example:
//
//	g := NewGraphBuilder(t, k).
//		Component(calculator.TypeCalculator, "Calculator").
//		Component(calculator.TypeAdder, "Adder").
//		Connect("Calculator", "Adder", calculator.IAdd).
//		Build()
type GraphBuilder struct {
	t     testing.TB
	k     *kernel.Kernel
	comps [][2]string
	conns []connSpec
}

// NewGraphBuilder creates a builder that instantiates into k.
func NewGraphBuilder(t testing.TB, k *kernel.Kernel) *GraphBuilder {
	return &GraphBuilder{t: t, k: k}
}

// Component adds an instance of typeName named name (chainable).
func (b *GraphBuilder) Component(typeName, name string) *GraphBuilder {
	b.comps = append(b.comps, [2]string{typeName, name})
	return b
}

// Connect binds source's receptacle iid to sink's interface iid by instance
// name (chainable).
func (b *GraphBuilder) Connect(source, sink, iid string) *GraphBuilder {
	b.conns = append(b.conns, connSpec{source: source, sink: sink, iid: iid})
	return b
}

// Build instantiates the components in order, then the connections. It fails
// the test on the first error.
func (b *GraphBuilder) Build() *Graph {
	b.t.Helper()

	g := &Graph{Kernel: b.k, handles: map[string]*core.Handle{}}

	for _, c := range b.comps {
		h, err := b.k.CreateInstance(c[0], c[1])
		if err != nil {
			b.t.Fatalf("creating %s %q: %v", c[0], c[1], err)
		}
		g.handles[strings.ToLower(c[1])] = h
	}

	for _, c := range b.conns {
		id, ok := b.k.Connect(g.Handle(c.source), g.Handle(c.sink), c.iid)
		if !ok {
			b.t.Fatalf("connecting %s -> %s (%s) failed", c.source, c.sink, c.iid)
		}
		g.Connections = append(g.Connections, id)
	}

	return g
}

// Graph is what GraphBuilder built.
type Graph struct {
	Kernel      *kernel.Kernel
	Connections []core.ConnID

	handles map[string]*core.Handle
}

// Handle returns the component named name, or nil.
func (g *Graph) Handle(name string) *core.Handle {
	return g.handles[strings.ToLower(name)]
}
