package calculator

import (
	"github.com/hupe1980/compmesh/component"
	"github.com/hupe1980/compmesh/core"
)

// AcceptComponent validates a framework's internal graph: every receptacle
// of every internal component must be bound, and an empty framework must not
// expose anything.
type AcceptComponent struct {
	*component.Base
}

// NewAccept is the constructor for TypeAccept.
func NewAccept(rt core.Runtime) (core.Unknown, error) {
	a := &AcceptComponent{}
	a.Base = component.NewBase(rt, a)
	a.Provide(core.IAccept, core.Validator(a))

	return a, nil
}

// IsValid implements core.Validator.
func (a *AcceptComponent) IsValid(components []*core.Handle, exposed []core.ExposedInterface) bool {
	if len(components) == 0 {
		return len(exposed) == 0
	}

	rt := a.Runtime()
	for _, h := range components {
		meta, ok := h.QueryInterface(core.IMetaInterface).(core.MetaInterface)
		if !ok {
			continue
		}

		for _, r := range meta.EnumReceptacles() {
			if len(rt.EnumConnsFromRecp(h, r.InterfaceType)) < 1 {
				return false
			}
		}
	}

	return true
}
