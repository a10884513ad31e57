package framework

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/logging"
)

type snapshot struct {
	components  []*core.Handle
	exposed     []core.ExposedInterface
	exposedRcp  []core.ExposedReceptacle
	connections []core.ConnInfo
	ids         map[core.ConnID]struct{}
}

type transaction struct {
	id     string
	start  time.Time
	span   trace.Span
	snap   snapshot
	logger logging.Logger

	created   map[*core.Handle]struct{}
	inserted  map[*core.Handle]struct{}
	preserved map[core.ConnID]struct{}
	pending   []pendingDelete
}

// pendingDelete is a member that existed before the transaction and was
// deleted inside it. It is already shut down, disconnected and anonymous;
// commit removes it from the runtime and rollback revives it.
type pendingDelete struct {
	handle   *core.Handle
	name     string
	inserted bool
}

// InTransaction reports whether a reconfiguration transaction is open.
func (f *Framework) InTransaction() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.tx != nil
}

// TransactionID returns the id of the open transaction.
func (f *Framework) TransactionID() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.tx == nil {
		return "", false
	}

	return f.tx.id, true
}

// InitArchTransaction takes the graph write lock, blocking until every
// functional call on the exposed interfaces has left, and snapshots the
// framework. It returns false when ctx ends first.
func (f *Framework) InitArchTransaction(ctx context.Context) bool {
	if err := f.write.Acquire(ctx); err != nil {
		f.logger.Warn("Transaction start aborted", "framework", f.Name(), "error", err)
		return false
	}

	tx := &transaction{
		id:        uuid.NewString(),
		start:     time.Now(),
		snap:      f.takeSnapshot(),
		created:   map[*core.Handle]struct{}{},
		inserted:  map[*core.Handle]struct{}{},
		preserved: map[core.ConnID]struct{}{},
	}
	tx.logger = logging.ForTransaction(f.logger, f.Name(), tx.id)

	_, tx.span = f.tracer.Start(ctx, "compmesh.transaction", trace.WithSpanKind(trace.SpanKindInternal))
	tx.span.SetAttributes(
		attribute.String("compmesh.framework", f.Name()),
		attribute.String("compmesh.transaction.id", tx.id),
		attribute.Int("compmesh.components", len(tx.snap.components)),
	)

	f.mu.Lock()
	f.tx = tx
	f.mu.Unlock()

	tx.logger.Info("Transaction started")

	return true
}

// CommitArchTransaction ends the open transaction. A validator bound to
// IAccept must approve the resulting configuration; a rejected one is rolled
// back and false is returned. Deferred component deletions are carried out
// on success.
func (f *Framework) CommitArchTransaction() bool {
	tx := f.claim()
	if tx == nil {
		return false
	}

	if v, ok := f.validator.Get(); ok && !v.IsValid(f.InternalComponents(), f.ExposedInterfaces()) {
		f.restore(tx)
		f.finish(tx, core.Rejected)

		return false
	}

	for _, p := range tx.pending {
		f.rt.DeleteInstance(p.handle)
	}
	tx.pending = nil

	f.finish(tx, core.Committed)

	return true
}

// RollbackArchTransaction restores the snapshot taken by InitArchTransaction
// and ends the transaction.
func (f *Framework) RollbackArchTransaction() bool {
	tx := f.claim()
	if tx == nil {
		return false
	}

	f.restore(tx)
	f.finish(tx, core.RolledBack)

	return true
}

// claim detaches the open transaction from the framework so exactly one
// caller ends it. The write lock stays held until finish.
func (f *Framework) claim() *transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := f.tx
	f.tx = nil

	return tx
}

func (f *Framework) takeSnapshot() snapshot {
	s := snapshot{
		components: f.InternalComponents(),
		exposed:    f.ExposedInterfaces(),
		exposedRcp: f.ExposedReceptacles(),
		ids:        map[core.ConnID]struct{}{},
	}

	for _, id := range f.InternalBindings() {
		if info, ok := f.rt.ConnectionInfo(id); ok {
			s.connections = append(s.connections, info)
			s.ids[id] = struct{}{}
		}
	}

	return s
}

type exposure struct {
	iid string
	h   *core.Handle
}

func exposureOf(e core.ExposedInterface) exposure {
	return exposure{iid: strings.ToLower(e.InterfaceType), h: e.Component}
}

// restore brings the framework back to tx's snapshot. Connections and
// exposures that survived the transaction untouched are left alone, so they
// keep their ids and their place in the interceptor chains. Snapshot
// connections broken during the transaction are re-established with fresh
// ids; members deleted during the transaction get their name back and are
// started again once their connections are restored.
func (f *Framework) restore(tx *transaction) {
	f.mu.RLock()
	current := append([]*core.Handle(nil), f.components...)
	exposed := append([]core.ExposedInterface(nil), f.exposed...)
	f.mu.RUnlock()

	keep := func(id core.ConnID) bool {
		if _, ok := tx.snap.ids[id]; ok {
			return true
		}
		_, ok := tx.preserved[id]
		return ok
	}

	handles := append([]*core.Handle(nil), current...)
	for _, p := range tx.pending {
		handles = append(handles, p.handle)
	}

	for _, h := range handles {
		for _, id := range f.bindingsOf(h) {
			if !keep(id) {
				f.rt.Disconnect(id)
			}
		}
	}

	before := make(map[exposure]struct{}, len(tx.snap.exposed))
	for _, e := range tx.snap.exposed {
		before[exposureOf(e)] = struct{}{}
	}

	for _, e := range exposed {
		if _, ok := before[exposureOf(e)]; !ok {
			f.UnexposeInterface(e.InterfaceType, e.Component)
		}
	}

	for _, h := range current {
		if _, ok := tx.created[h]; ok {
			f.rt.DeleteInstance(h)
		}
	}

	for _, p := range tx.pending {
		if !f.rt.RenameInstance(p.handle, p.name) {
			tx.logger.Warn("Component name could not be restored", "name", p.name, "id", p.handle.ID())
		}
	}

	f.mu.Lock()
	f.components = append([]*core.Handle(nil), tx.snap.components...)
	f.exposedRcp = append([]core.ExposedReceptacle(nil), tx.snap.exposedRcp...)
	for _, p := range tx.pending {
		if p.inserted {
			f.inserted[p.handle] = struct{}{}
		}
	}
	for h := range tx.inserted {
		delete(f.inserted, h)
	}
	f.mu.Unlock()

	for _, e := range tx.snap.exposed {
		if f.exposedBy(e.InterfaceType, e.Component) {
			continue
		}
		if !f.ExposeInterface(e.InterfaceType, e.Component) {
			tx.logger.Warn("Interface could not be re-exposed", "interface", e.InterfaceType, "component", e.Component.ID())
		}
	}

	f.orderExposed(tx.snap.exposed)

	for _, info := range tx.snap.connections {
		if _, ok := f.rt.ConnectionInfo(info.ID); ok {
			continue
		}

		if _, ok := f.rt.Connect(info.Source, info.Sink, info.InterfaceType); !ok {
			tx.logger.Warn("Connection could not be restored", "interface", info.InterfaceType, "id", info.ID)
		}
	}

	for _, p := range tx.pending {
		if !f.rt.StartupInstance(p.handle, f.rt) {
			tx.logger.Warn("Component could not be restarted", "name", p.name, "id", p.handle.ID())
		}
	}
	tx.pending = nil
}

// orderExposed sorts the exposed interfaces into the order of want.
// Entries missing from want keep their relative order at the end.
func (f *Framework) orderExposed(want []core.ExposedInterface) {
	rank := make(map[exposure]int, len(want))
	for i, e := range want {
		rank[exposureOf(e)] = i
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	slices.SortStableFunc(f.exposed, func(a, b core.ExposedInterface) int {
		ra, oka := rank[exposureOf(a)]
		rb, okb := rank[exposureOf(b)]
		switch {
		case oka && okb:
			return cmp.Compare(ra, rb)
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
}

func (f *Framework) finish(tx *transaction, outcome core.TransactionOutcome) {
	f.mu.RLock()
	components := len(f.components)
	f.mu.RUnlock()

	elapsed := time.Since(tx.start)
	bindings := len(f.InternalBindings())

	tx.span.SetAttributes(attribute.String("compmesh.transaction.outcome", string(outcome)))
	if outcome == core.Committed {
		tx.span.SetStatus(codes.Ok, "")
	} else {
		tx.span.SetStatus(codes.Error, string(outcome))
	}
	tx.span.End()

	f.observer.TransactionFinished(f.Name(), outcome, elapsed)
	logging.LogTransaction(tx.logger, string(outcome), elapsed, components, bindings)

	f.write.Release()
}
