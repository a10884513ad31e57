package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/internal/calculator"
	meshtest "github.com/hupe1980/compmesh/internal/testutil"
)

func TestRecorder_GraphEvents(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())

	k := meshtest.NewKernel(t, rec)
	g := meshtest.NewGraphBuilder(t, k).
		Component(calculator.TypeAdder, "Adder").
		Component(calculator.TypeCalculator, "Calculator").
		Build()
	a, c := g.Handle("Adder"), g.Handle("Calculator")

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.components.WithLabelValues(calculator.TypeAdder)))

	id, ok := k.Connect(c, a, calculator.IAdd)
	require.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.connections.WithLabelValues(calculator.IAdd)))

	_, ok = k.Connect(c, a, calculator.IAdd)
	require.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.connectFailed.WithLabelValues(calculator.IAdd)))

	require.True(t, k.Disconnect(id))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.connections.WithLabelValues(calculator.IAdd)))

	require.True(t, k.DeleteInstance(a))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.components.WithLabelValues(calculator.TypeAdder)))
}

func TestRecorder_Interceptor(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())

	k := meshtest.NewKernel(t, rec)
	a := meshtest.NewGraphBuilder(t, k).Component(calculator.TypeAdder, "Adder").Build().Handle("Adder")

	d, ok := k.Delegator(a, calculator.IAdd)
	require.True(t, ok)
	require.True(t, d.AddPreMethod(rec.Interceptor(calculator.IAdd), CountHook))

	adder := a.QueryInterface(calculator.IAdd).(calculator.Adder)
	for i := 0; i < 3; i++ {
		_, err := adder.Add(i, i)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(rec.invocations.WithLabelValues(calculator.IAdd, "Add")))

	require.True(t, d.AddPreMethod(core.Hooks{"Deny": func(string, []any) any { return 1 }}, "Deny"))
	_, err := adder.Add(1, 1)
	require.ErrorIs(t, err, core.ErrInvocation)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.aborted.WithLabelValues(calculator.IAdd, "Add", "Deny")))
}

func TestRecorder_Transactions(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg, func(o *Options) { o.Namespace = "test" })

	k := meshtest.NewKernel(t, rec)

	h, err := k.CreateInstance(framework.TypeName, "CF")
	require.NoError(t, err)

	cf := h.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)

	require.True(t, cf.InitArchTransaction(context.Background()))
	require.True(t, cf.CommitArchTransaction())
	require.True(t, cf.InitArchTransaction(context.Background()))
	require.True(t, cf.RollbackArchTransaction())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.transactions.WithLabelValues("CF", string(core.Committed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.transactions.WithLabelValues("CF", string(core.RolledBack))))

	n, err := testutil.GatherAndCount(reg, "test_framework_transaction_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec.TransactionFinished("CF", core.Committed, 2*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.transactions.WithLabelValues("CF", string(core.Committed))))
}
