package compmesh

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compmesh/assembly"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/internal/calculator"
	"github.com/hupe1980/compmesh/metrics"
)

func TestNew_Defaults(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	types := m.Kernel().Types()
	require.Len(t, types, 1)
	assert.Equal(t, framework.TypeName, types[0].Name)

	_, err = m.Create(calculator.TypeAdder, "Adder")
	require.ErrorIs(t, err, core.ErrInvalidComponentType)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	_, err := New(func(o *Options) {
		o.Samples = true
		o.Registrations = calculator.Registrations()[:1]
	})
	require.Error(t, err)
}

func TestMesh_FrameworkWorkflow(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	m, err := New(func(o *Options) {
		o.Samples = true
		o.Observer = rec
	})
	require.NoError(t, err)

	h, cf, err := m.NewFramework("CF")
	require.NoError(t, err)

	require.True(t, cf.InitArchTransaction(context.Background()))
	calc, err := cf.CreateComponent(calculator.TypeCalculator, "Calculator")
	require.NoError(t, err)
	adder, err := cf.CreateComponent(calculator.TypeAdder, "Adder")
	require.NoError(t, err)
	_, ok := cf.LocalBind(calc, adder, calculator.IAdd)
	require.True(t, ok)
	require.True(t, cf.ExposeInterface(calculator.ICalculator, calc))
	require.True(t, cf.CommitArchTransaction())

	same, ok := m.Framework("cf")
	require.True(t, ok)
	assert.Equal(t, cf, same)

	d, ok := m.Kernel().Delegator(adder, calculator.IAdd)
	require.True(t, ok)
	require.True(t, d.AddPreMethod(m.SampleHooks("Adder"), "Pre0"))

	got, err := h.QueryInterface(calculator.ICalculator).(calculator.Calc).Add(18, 19)
	require.NoError(t, err)
	assert.Equal(t, 37, got)

	series, err := testutil.GatherAndCount(reg, "compmesh_kernel_components")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}

func TestMesh_ApplyFile(t *testing.T) {
	m, err := New(func(o *Options) { o.Samples = true })
	require.NoError(t, err)

	res, err := m.ApplyFile(context.Background(), filepath.Join("assembly", "testdata", "calculator.yaml"), func(o *assembly.Options) {
		o.Hosts = map[string]any{"samples": m.SampleHooks("Adder")}
	})
	require.NoError(t, err)

	got, err := res.Framework.QueryInterface(calculator.ICalculator).(calculator.Calc).Subtract(10, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	id, ok := m.Connect(res.Framework, res.Components["accept"], core.IAccept)
	assert.False(t, ok)
	assert.Zero(t, id)
}

func TestMesh_DeleteDisconnects(t *testing.T) {
	m, err := New(func(o *Options) { o.Samples = true })
	require.NoError(t, err)

	calc, err := m.Create(calculator.TypeCalculator, "Calculator")
	require.NoError(t, err)
	adder, err := m.Create(calculator.TypeAdder, "Adder")
	require.NoError(t, err)

	id, ok := m.Connect(calc, adder, calculator.IAdd)
	require.True(t, ok)
	require.True(t, m.Disconnect(id))
	assert.False(t, m.Disconnect(id))

	_, ok = m.Connect(calc, adder, calculator.IAdd)
	require.True(t, ok)

	require.True(t, m.Delete(adder))
	assert.False(t, m.Delete(adder))
	assert.Empty(t, m.Kernel().Connections())

	_, err = calc.QueryInterface(calculator.ICalculator).(calculator.Calc).Add(1, 2)
	require.ErrorIs(t, err, calculator.ErrNotConnected)
}
