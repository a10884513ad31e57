package core

type validatorProxy struct {
	target Validator
	inv    Invoker
}

// IsValid routes the check through the delegator. An aborted or failed
// check counts as a rejection.
func (p validatorProxy) IsValid(components []*Handle, exposed []ExposedInterface) bool {
	ok, err := Invoke[bool](p.inv, "IsValid", func(a []any) (any, error) {
		c, err := Arg[[]*Handle](a, 0)
		if err != nil {
			return nil, err
		}
		e, err := Arg[[]ExposedInterface](a, 1)
		if err != nil {
			return nil, err
		}
		return p.target.IsValid(c, e), nil
	}, components, exposed)

	return err == nil && ok
}

// ValidatorProxy is the ProxyFactory for the IAccept capability.
var ValidatorProxy = ProxyFor(func(t Validator, inv Invoker) Validator {
	return validatorProxy{target: t, inv: inv}
})

// AcceptInterface is the InterfaceSpec validator component types declare.
func AcceptInterface() InterfaceSpec {
	return InterfaceSpec{Name: IAccept, Proxy: ValidatorProxy}
}
