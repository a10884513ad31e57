// Package metrics exports runtime events as Prometheus metrics.
//
// A Recorder is a core.Observer: pass it to the kernel and to framework
// registrations and it tracks live components and connections, connection
// failures, aborted invocations and transaction outcomes. Interceptor adds a
// per-method invocation counter to any delegator:
//
//	rec := metrics.NewRecorder(prometheus.NewRegistry())
//	k := kernel.New(func(o *kernel.Options) { o.Observer = rec })
//	d, _ := k.Delegator(h, "IAdd")
//	d.AddPreMethod(rec.Interceptor("IAdd"), metrics.CountHook)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/compmesh/core"
)

// CountHook is the pre-hook name served by Interceptor.
const CountHook = "CountInvocation"

// Options configures a Recorder.
type Options struct {
	// Namespace prefixes every metric name (defaults to "compmesh").
	Namespace string
	// Buckets for the transaction duration histogram.
	Buckets []float64
}

// Recorder implements core.Observer on Prometheus collectors.
type Recorder struct {
	components    *prometheus.GaugeVec
	connections   *prometheus.GaugeVec
	connectFailed *prometheus.CounterVec
	aborted       *prometheus.CounterVec
	invocations   *prometheus.CounterVec
	transactions  *prometheus.CounterVec
	txDuration    *prometheus.HistogramVec
}

// NewRecorder registers the collectors with reg. A nil reg uses the default
// Prometheus registerer.
func NewRecorder(reg prometheus.Registerer, optFns ...func(o *Options)) *Recorder {
	opts := Options{
		Namespace: "compmesh",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Recorder{
		components: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: "kernel",
			Name:      "components",
			Help:      "Live component instances by type.",
		}, []string{"type"}),
		connections: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: "kernel",
			Name:      "connections",
			Help:      "Live connections by interface type.",
		}, []string{"interface"}),
		connectFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "kernel",
			Name:      "connect_failures_total",
			Help:      "Connection attempts whose physical bind failed.",
		}, []string{"interface"}),
		aborted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "delegator",
			Name:      "aborted_invocations_total",
			Help:      "Invocations halted by a pre-method.",
		}, []string{"interface", "method", "hook"}),
		invocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "delegator",
			Name:      "invocations_total",
			Help:      "Invocations seen by counting interceptors.",
		}, []string{"interface", "method"}),
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "framework",
			Name:      "transactions_total",
			Help:      "Finished reconfiguration transactions by outcome.",
		}, []string{"framework", "outcome"}),
		txDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: "framework",
			Name:      "transaction_duration_seconds",
			Help:      "Time between transaction start and commit or rollback.",
			Buckets:   opts.Buckets,
		}, []string{"framework"}),
	}
}

// ComponentCreated implements core.Observer.
func (r *Recorder) ComponentCreated(typeName, _ string, _ *core.Handle) {
	r.components.WithLabelValues(typeName).Inc()
}

// ComponentDeleted implements core.Observer.
func (r *Recorder) ComponentDeleted(typeName, _ string, _ *core.Handle) {
	r.components.WithLabelValues(typeName).Dec()
}

// Connected implements core.Observer.
func (r *Recorder) Connected(info core.ConnInfo) {
	r.connections.WithLabelValues(info.InterfaceType).Inc()
}

// ConnectFailed implements core.Observer.
func (r *Recorder) ConnectFailed(_, _ *core.Handle, iid string) {
	r.connectFailed.WithLabelValues(iid).Inc()
}

// Disconnected implements core.Observer.
func (r *Recorder) Disconnected(info core.ConnInfo) {
	r.connections.WithLabelValues(info.InterfaceType).Dec()
}

// InvocationAborted implements core.Observer.
func (r *Recorder) InvocationAborted(iid, method, hook string) {
	r.aborted.WithLabelValues(iid, method, hook).Inc()
}

// TransactionFinished implements core.Observer.
func (r *Recorder) TransactionFinished(framework string, outcome core.TransactionOutcome, d time.Duration) {
	r.transactions.WithLabelValues(framework, string(outcome)).Inc()
	r.txDuration.WithLabelValues(framework).Observe(d.Seconds())
}

// Interceptor returns a hook host whose CountHook pre-hook counts calls on
// interface iid. The hook never aborts.
func (r *Recorder) Interceptor(iid string) core.HookHost {
	return core.Hooks{
		CountHook: func(method string, _ []any) any {
			r.invocations.WithLabelValues(iid, method).Inc()
			return nil
		},
	}
}

var _ core.Observer = (*Recorder)(nil)
