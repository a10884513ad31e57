package calculator

import (
	"time"

	"github.com/hupe1980/compmesh/core"
)

type adderProxy struct {
	target Adder
	inv    core.Invoker
}

func (p adderProxy) Add(x, y int) (int, error) {
	return core.Invoke[int](p.inv, "Add", func(a []any) (any, error) {
		x, y, err := twoInts(a)
		if err != nil {
			return nil, err
		}
		return p.target.Add(x, y)
	}, x, y)
}

type subtracterProxy struct {
	target Subtracter
	inv    core.Invoker
}

func (p subtracterProxy) Subtract(x, y int) (int, error) {
	return core.Invoke[int](p.inv, "Subtract", func(a []any) (any, error) {
		x, y, err := twoInts(a)
		if err != nil {
			return nil, err
		}
		return p.target.Subtract(x, y)
	}, x, y)
}

type calcProxy struct {
	target Calc
	inv    core.Invoker
}

func (p calcProxy) Add(x, y int) (int, error) {
	return core.Invoke[int](p.inv, "Add", func(a []any) (any, error) {
		x, y, err := twoInts(a)
		if err != nil {
			return nil, err
		}
		return p.target.Add(x, y)
	}, x, y)
}

func (p calcProxy) Subtract(x, y int) (int, error) {
	return core.Invoke[int](p.inv, "Subtract", func(a []any) (any, error) {
		x, y, err := twoInts(a)
		if err != nil {
			return nil, err
		}
		return p.target.Subtract(x, y)
	}, x, y)
}

func (p calcProxy) Display(msg string) (string, error) {
	return core.Invoke[string](p.inv, "Display", func(a []any) (any, error) {
		m, err := core.Arg[string](a, 0)
		if err != nil {
			return nil, err
		}
		return p.target.Display(m)
	}, msg)
}

func (p calcProxy) Wait(d time.Duration) error {
	return core.Call(p.inv, "Wait", func(a []any) error {
		d, err := core.Arg[time.Duration](a, 0)
		if err != nil {
			return err
		}
		return p.target.Wait(d)
	}, d)
}

func twoInts(a []any) (int, int, error) {
	x, err := core.Arg[int](a, 0)
	if err != nil {
		return 0, 0, err
	}

	y, err := core.Arg[int](a, 1)
	if err != nil {
		return 0, 0, err
	}

	return x, y, nil
}

// AdderProxy wraps an IAdd reference.
var AdderProxy = core.ProxyFor(func(t Adder, inv core.Invoker) Adder { return adderProxy{target: t, inv: inv} })

// SubtracterProxy wraps an ISubtract reference.
var SubtracterProxy = core.ProxyFor(func(t Subtracter, inv core.Invoker) Subtracter {
	return subtracterProxy{target: t, inv: inv}
})

// CalcProxy wraps an ICalculator reference.
var CalcProxy = core.ProxyFor(func(t Calc, inv core.Invoker) Calc { return calcProxy{target: t, inv: inv} })
