package receptacle

import (
	"github.com/hupe1980/compmesh/core"
)

// MultiContext is a Multi receptacle that can address one binding by the
// interface meta-data of the connected component.
type MultiContext[T any] struct {
	*Multi[T]
}

// NewMultiContext returns an empty context receptacle for capability iid.
func NewMultiContext[T any](iid string) *MultiContext[T] {
	return &MultiContext[T]{Multi: NewMulti[T](iid)}
}

// Kind implements core.Receptacle.
func (r *MultiContext[T]) Kind() core.ReceptacleKind { return core.ReceptacleMultiContext }

// ContextIndex returns the index of the first binding whose sink carries the
// interface-scope attribute name equal to value on this receptacle's
// capability, or -1.
func (r *MultiContext[T]) ContextIndex(name string, value any) int {
	return r.find(r.Bindings(), name, value)
}

func (r *MultiContext[T]) find(bindings []Binding[T], name string, value any) int {
	for i, b := range bindings {
		meta, ok := b.Sink.QueryInterface(core.IMetaInterface).(core.MetaInterface)
		if !ok {
			continue
		}

		attr, ok := meta.AttributeValue(r.iid, core.ScopeInterface, name)
		if ok && attr.Equal(value) {
			return i
		}
	}

	return -1
}

// Lookup returns the target selected by ContextIndex.
func (r *MultiContext[T]) Lookup(name string, value any) (T, bool) {
	bindings := r.Bindings()

	i := r.find(bindings, name, value)
	if i < 0 {
		var zero T
		return zero, false
	}

	return bindings[i].Target, true
}

var _ core.Receptacle = (*MultiContext[any])(nil)
