package kernel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hupe1980/compmesh/component"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/internal/calculator"
)

func newKernel(t require.TestingT, optFns ...func(o *Options)) *Kernel {
	k := New(optFns...)
	require.NoError(t, calculator.Register(k))
	return k
}

type eventLog struct {
	core.NopObserver
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, s)
}

func (e *eventLog) ComponentCreated(typeName, _ string, _ *core.Handle) { e.add("created:" + typeName) }
func (e *eventLog) ComponentDeleted(typeName, _ string, _ *core.Handle) { e.add("deleted:" + typeName) }
func (e *eventLog) Connected(info core.ConnInfo)                    { e.add("connected:" + info.InterfaceType) }
func (e *eventLog) ConnectFailed(_, _ *core.Handle, iid string)     { e.add("failed:" + iid) }
func (e *eventLog) Disconnected(info core.ConnInfo)                 { e.add("disconnected:" + info.InterfaceType) }

func TestKernel_CalculatorScenario(t *testing.T) {
	k := newKernel(t)

	a, err := k.CreateInstance(calculator.TypeAdder, "Adder")
	require.NoError(t, err)
	b, err := k.CreateInstance(calculator.TypeSubtractor, "Subtractor")
	require.NoError(t, err)
	c, err := k.CreateInstance(calculator.TypeCalculator, "Calculator")
	require.NoError(t, err)

	id, ok := k.Connect(c, a, calculator.IAdd)
	require.True(t, ok)
	assert.Equal(t, core.ConnID(1), id)

	id, ok = k.Connect(c, b, calculator.ISubtract)
	require.True(t, ok)
	assert.Equal(t, core.ConnID(2), id)

	calc, ok := c.QueryInterface(calculator.ICalculator).(calculator.Calc)
	require.True(t, ok)

	got, err := calc.Add(18, 19)
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	got, err = calc.Subtract(10, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	d, ok := k.Delegator(a, calculator.IAdd)
	require.True(t, ok)
	require.True(t, d.AddPreMethod(calculator.NewInterceptors(k, "Adder", nil), "Pre0"))

	got, err = calc.Add(18, 19)
	require.NoError(t, err)
	assert.Equal(t, 37, got)
}

func TestKernel_CapabilityQueryReturnsOuterProxy(t *testing.T) {
	k := newKernel(t)
	a, err := k.CreateInstance(calculator.TypeAdder, "")
	require.NoError(t, err)

	d, ok := k.Delegator(a, calculator.IAdd)
	require.True(t, ok)

	assert.Equal(t, d.Outer(), a.QueryInterface(calculator.IAdd))
	assert.Same(t, a, a.QueryInterface(core.IUnknown))

	_, ok = k.Delegator(a, core.IMetaInterface)
	assert.False(t, ok)
	_, ok = k.Delegator(a, core.ILifeCycle)
	assert.False(t, ok)
	assert.NotNil(t, a.QueryInterface(core.IMetaInterface))
}

func TestKernel_QueryInterfaceSelf(t *testing.T) {
	k := New()
	assert.Same(t, k, k.QueryInterface(core.IRuntime))
	assert.Same(t, k, k.QueryInterface("imetaarchitecture"))
	assert.Same(t, k, k.QueryInterface(core.IMetaInterception))
	assert.Nil(t, k.QueryInterface("IAdd"))
}

func TestKernel_CreateInstanceErrors(t *testing.T) {
	k := newKernel(t)
	boom := errors.New("boom")

	require.NoError(t, k.Register(
		core.Registration{Name: "Broken", Build: func(core.Runtime) (core.Unknown, error) { return nil, boom }},
		core.Registration{Name: "Nil", Build: func(core.Runtime) (core.Unknown, error) { return nil, nil }},
		core.Registration{
			Name:       "Liar",
			Build:      calculator.NewSubtractor,
			Interfaces: []core.InterfaceSpec{{Name: calculator.IAdd, Proxy: calculator.AdderProxy}},
		},
		core.Registration{
			Name:       "Mismatch",
			Build:      calculator.NewSubtractor,
			Interfaces: []core.InterfaceSpec{{Name: calculator.ISubtract, Proxy: calculator.AdderProxy}},
		},
	))

	tests := []struct {
		typeName string
		reason   string
	}{
		{"Unknown", "unknown type"},
		{"Broken", "constructor failed"},
		{"Nil", "missing base capability"},
		{"Liar", "not provided"},
		{"Mismatch", "proxy factory rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			_, err := k.CreateInstance(tt.typeName, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidComponentType)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}

	_, err := k.CreateInstance("Broken", "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, k.EnumComponents())
}

func TestKernel_DuplicateName(t *testing.T) {
	k := newKernel(t)

	_, err := k.CreateInstance(calculator.TypeAdder, "Adder")
	require.NoError(t, err)

	_, err = k.CreateInstance(calculator.TypeSubtractor, "adder")
	assert.ErrorIs(t, err, core.ErrInvalidComponentType)

	_, err = k.CreateInstance(calculator.TypeAdder, "")
	require.NoError(t, err)
	_, err = k.CreateInstance(calculator.TypeAdder, "")
	require.NoError(t, err)
	assert.Len(t, k.EnumComponents(), 3)
}

func TestKernel_RegisterErrors(t *testing.T) {
	k := newKernel(t)

	err := k.Register(core.Registration{Name: calculator.TypeAdder, Build: calculator.NewAdder})
	assert.ErrorIs(t, err, ErrTypeExists)

	err = k.Register(core.Registration{Name: "NoBuild"})
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	err = k.Register(core.Registration{
		Name:       "NoProxy",
		Build:      calculator.NewAdder,
		Interfaces: []core.InterfaceSpec{{Name: calculator.IAdd}},
	})
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	types := k.Types()
	require.Len(t, types, 4)
	assert.Equal(t, calculator.TypeAccept, types[0].Name)
}

func TestKernel_FailedConnectDoesNotConsumeID(t *testing.T) {
	obs := &eventLog{}
	k := newKernel(t, func(o *Options) { o.Observer = obs })

	a1, _ := k.CreateInstance(calculator.TypeAdder, "")
	a2, _ := k.CreateInstance(calculator.TypeAdder, "")
	b, _ := k.CreateInstance(calculator.TypeSubtractor, "")
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")

	id, ok := k.Connect(c, a1, calculator.IAdd)
	require.True(t, ok)
	assert.Equal(t, core.ConnID(1), id)

	_, ok = k.Connect(c, a2, calculator.IAdd)
	assert.False(t, ok)

	_, ok = k.Connect(a1, b, calculator.ISubtract)
	assert.False(t, ok)

	_, ok = k.Connect(c, b, calculator.IAdd)
	assert.False(t, ok)

	id, ok = k.Connect(c, b, calculator.ISubtract)
	require.True(t, ok)
	assert.Equal(t, core.ConnID(2), id)

	assert.Len(t, k.Connections(), 2)
	assert.Empty(t, k.EnumConnsToIntf(a2, calculator.IAdd))
	assert.Empty(t, k.EnumConnsToIntf(b, calculator.IAdd))
	assert.Contains(t, obs.events, "failed:IAdd")
}

func TestKernel_DisconnectNeverReusesIDs(t *testing.T) {
	k := newKernel(t)
	a, _ := k.CreateInstance(calculator.TypeAdder, "")
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")

	id1, ok := k.Connect(c, a, calculator.IAdd)
	require.True(t, ok)
	require.True(t, k.Disconnect(id1))
	assert.False(t, k.Disconnect(id1))

	_, ok = k.ConnectionInfo(id1)
	assert.False(t, ok)

	id2, ok := k.Connect(c, a, calculator.IAdd)
	require.True(t, ok)
	assert.Greater(t, id2, id1)

	calc := c.QueryInterface(calculator.ICalculator).(calculator.Calc)
	got, err := calc.Add(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestKernel_Introspection(t *testing.T) {
	k := newKernel(t)
	a, _ := k.CreateInstance(calculator.TypeAdder, "Adder")
	b, _ := k.CreateInstance(calculator.TypeSubtractor, "Sub")
	c, _ := k.CreateInstance(calculator.TypeCalculator, "Calc")

	idA, _ := k.Connect(c, a, calculator.IAdd)
	idB, _ := k.Connect(c, b, calculator.ISubtract)

	assert.Equal(t, []core.ConnID{idA}, k.EnumConnsFromRecp(c, calculator.IAdd))
	assert.Equal(t, []core.ConnID{idB}, k.EnumConnsFromRecp(c, "isubtract"))
	assert.Equal(t, []core.ConnID{idA}, k.EnumConnsToIntf(a, calculator.IAdd))
	assert.Empty(t, k.EnumConnsToIntf(c, calculator.IAdd))

	name, ok := k.ComponentName(b)
	require.True(t, ok)
	assert.Equal(t, "Sub", name)

	typ, ok := k.ComponentType(c)
	require.True(t, ok)
	assert.Equal(t, calculator.TypeCalculator, typ)

	h, ok := k.ComponentByName("calc")
	require.True(t, ok)
	assert.Same(t, c, h)

	info, ok := k.ConnectionInfo(idB)
	require.True(t, ok)
	assert.Same(t, c, info.Source)
	assert.Same(t, b, info.Sink)
	assert.Equal(t, calculator.ISubtract, info.InterfaceType)

	assert.Equal(t, []*core.Handle{a, b, c}, k.EnumComponents())
}

func TestKernel_LookupByRawComponent(t *testing.T) {
	k := newKernel(t)
	a, _ := k.CreateInstance(calculator.TypeAdder, "")

	raw := a.QueryInterface(core.ILifeCycle).(core.Unknown)
	h, ok := k.Lookup(raw)
	require.True(t, ok)
	assert.Same(t, a, h)

	_, ok = k.Lookup(nil)
	assert.False(t, ok)
}

type probe struct {
	*component.Base
}

func TestKernel_DeleteInstance(t *testing.T) {
	obs := &eventLog{}
	k := newKernel(t, func(o *Options) { o.Observer = obs })

	var p *probe
	require.NoError(t, k.Register(core.Registration{
		Name: "Probe",
		Build: func(rt core.Runtime) (core.Unknown, error) {
			p = &probe{}
			p.Base = component.NewBase(rt, p)
			return p, nil
		},
	}))

	a, _ := k.CreateInstance(calculator.TypeAdder, "")
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")
	b, _ := k.CreateInstance(calculator.TypeSubtractor, "")
	ph, err := k.CreateInstance("Probe", "")
	require.NoError(t, err)
	require.NotNil(t, p)

	_, ok := k.Connect(c, a, calculator.IAdd)
	require.True(t, ok)
	_, ok = k.Connect(c, b, calculator.ISubtract)
	require.True(t, ok)

	require.True(t, k.DeleteInstance(c))
	assert.False(t, k.DeleteInstance(c))

	for _, info := range k.Connections() {
		assert.NotSame(t, c, info.Source)
		assert.NotSame(t, c, info.Sink)
	}
	assert.Empty(t, k.Connections())
	assert.Empty(t, k.EnumConnsToIntf(a, calculator.IAdd))
	_, ok = k.Lookup(c)
	assert.False(t, ok)

	require.True(t, k.DeleteInstance(ph))
	assert.Equal(t, []*core.Handle{a, b}, k.EnumComponents())
	assert.Contains(t, obs.events, "deleted:Calculator")
	assert.Contains(t, obs.events, "disconnected:IAdd")
}

type shutdownWatcher struct {
	*component.Base
	k        *Kernel
	seen     int
	shutdown bool
	calls    int
	started  int
}

func (s *shutdownWatcher) Startup(any) bool {
	s.started++
	return true
}

func (s *shutdownWatcher) Shutdown() bool {
	s.calls++
	s.shutdown = true
	s.seen = len(s.k.EnumConnsToIntf(s, calculator.IAdd))
	return true
}

func registerWatcher(t *testing.T, k *Kernel) **shutdownWatcher {
	t.Helper()

	var w *shutdownWatcher
	require.NoError(t, k.Register(core.Registration{
		Name: "Watcher",
		Build: func(rt core.Runtime) (core.Unknown, error) {
			w = &shutdownWatcher{k: k}
			w.Base = component.NewBase(rt, w)
			w.Provide(calculator.IAdd, calculator.Adder(adderFunc(func(x, y int) (int, error) { return x + y, nil })))
			return w, nil
		},
		Interfaces: []core.InterfaceSpec{{Name: calculator.IAdd, Proxy: calculator.AdderProxy}},
	}))

	return &w
}

func TestKernel_DeleteRunsShutdownBeforeDisconnect(t *testing.T) {
	k := newKernel(t)
	wp := registerWatcher(t, k)

	wh, err := k.CreateInstance("Watcher", "")
	require.NoError(t, err)
	w := *wp
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")
	_, ok := k.Connect(c, wh, calculator.IAdd)
	require.True(t, ok)

	require.True(t, k.DeleteInstance(wh))
	assert.True(t, w.shutdown)
	assert.Equal(t, 1, w.seen)
	assert.Empty(t, k.Connections())

	_, err = c.QueryInterface(calculator.ICalculator).(calculator.Calc).Add(1, 2)
	assert.ErrorIs(t, err, calculator.ErrNotConnected)
}

func TestKernel_ShutdownInstanceRunsOnce(t *testing.T) {
	k := newKernel(t)
	wp := registerWatcher(t, k)

	wh, err := k.CreateInstance("Watcher", "W")
	require.NoError(t, err)
	w := *wp
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")
	_, ok := k.Connect(c, wh, calculator.IAdd)
	require.True(t, ok)

	require.True(t, k.ShutdownInstance(wh))
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, 1, w.seen)
	assert.Len(t, k.Connections(), 1, "shutdown keeps connections")

	require.True(t, k.DeleteInstance(wh))
	assert.Equal(t, 1, w.calls)

	assert.False(t, k.ShutdownInstance(wh))
	assert.False(t, k.StartupInstance(wh, nil))
}

func TestKernel_StartupInstanceRearmsShutdown(t *testing.T) {
	k := newKernel(t)
	wp := registerWatcher(t, k)

	wh, err := k.CreateInstance("Watcher", "")
	require.NoError(t, err)
	w := *wp

	require.True(t, k.ShutdownInstance(wh))
	require.True(t, k.StartupInstance(wh, k))
	assert.Equal(t, 1, w.started)

	require.True(t, k.DeleteInstance(wh))
	assert.Equal(t, 2, w.calls)
}

func TestKernel_RenameInstance(t *testing.T) {
	k := newKernel(t)
	a, _ := k.CreateInstance(calculator.TypeAdder, "Adder")
	b, _ := k.CreateInstance(calculator.TypeAdder, "Other")

	assert.False(t, k.RenameInstance(b, "adder"))
	assert.True(t, k.RenameInstance(a, "ADDER"), "own name, other case")

	require.True(t, k.RenameInstance(a, ""))
	_, ok := k.ComponentByName("Adder")
	assert.False(t, ok)

	_, err := k.CreateInstance(calculator.TypeAdder, "Adder")
	require.NoError(t, err, "freed name can be reused")

	assert.False(t, k.RenameInstance(a, "Adder"))
	assert.False(t, k.RenameInstance(nil, "x"))
}

func TestKernel_EnumConns(t *testing.T) {
	k := newKernel(t)
	a, _ := k.CreateInstance(calculator.TypeAdder, "")
	b, _ := k.CreateInstance(calculator.TypeSubtractor, "")
	c, _ := k.CreateInstance(calculator.TypeCalculator, "")
	c2, _ := k.CreateInstance(calculator.TypeCalculator, "")

	idA, _ := k.Connect(c, a, calculator.IAdd)
	idB, _ := k.Connect(c, b, calculator.ISubtract)
	idC, _ := k.Connect(c2, a, calculator.IAdd)

	assert.Equal(t, []core.ConnID{idA, idB}, k.EnumConns(c))
	assert.Equal(t, []core.ConnID{idA, idC}, k.EnumConns(a))
	assert.Empty(t, k.EnumConns(nil))
}

type adderFunc func(x, y int) (int, error)

func (f adderFunc) Add(x, y int) (int, error) { return f(x, y) }

func TestKernel_ConnectionIDsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := newKernel(rt)
		c, _ := k.CreateInstance(calculator.TypeCalculator, "")
		adders := make([]*core.Handle, 3)
		for i := range adders {
			adders[i], _ = k.CreateInstance(calculator.TypeAdder, "")
		}

		var last core.ConnID
		seen := map[core.ConnID]bool{}
		n := rapid.IntRange(1, 40).Draw(rt, "ops")
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(rt, "connect") {
				target := adders[rapid.IntRange(0, len(adders)-1).Draw(rt, "adder")]
				id, ok := k.Connect(c, target, calculator.IAdd)
				if !ok {
					continue
				}
				if id <= last || seen[id] {
					rt.Fatalf("id %d issued after %d", id, last)
				}
				last = id
				seen[id] = true
				continue
			}
			for _, info := range k.Connections() {
				if !k.Disconnect(info.ID) {
					rt.Fatalf("disconnect %d failed", info.ID)
				}
			}
		}
	})
}
