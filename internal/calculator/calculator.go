// Package calculator contains the sample components used by the tests, the
// examples and the CLI: an Adder with a deliberate +8 error, a Subtractor, a
// Calculator consuming both through single receptacles, an Accept validator
// and a set of sample interceptors.
package calculator

import (
	"errors"
	"time"

	"github.com/hupe1980/compmesh/component"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/receptacle"
)

// Capability names.
const (
	IAdd        = "IAdd"
	ISubtract   = "ISubtract"
	ICalculator = "ICalculator"
)

// Type names.
const (
	TypeAdder      = "Adder"
	TypeSubtractor = "Subtractor"
	TypeCalculator = "Calculator"
	TypeAccept     = "Accept"
)

// ErrNotConnected is returned when a Calculator receptacle is unbound.
var ErrNotConnected = errors.New("receptacle not connected")

// Adder is the IAdd capability.
type Adder interface {
	Add(x, y int) (int, error)
}

// Subtracter is the ISubtract capability.
type Subtracter interface {
	Subtract(x, y int) (int, error)
}

// Calc is the ICalculator capability.
type Calc interface {
	Add(x, y int) (int, error)
	Subtract(x, y int) (int, error)
	Display(msg string) (string, error)
	Wait(d time.Duration) error
}

// AdderComponent adds with a constant error of +8 so interceptors have
// something to correct.
type AdderComponent struct {
	*component.Base
}

// NewAdder is the constructor for TypeAdder.
func NewAdder(rt core.Runtime) (core.Unknown, error) {
	a := &AdderComponent{}
	a.Base = component.NewBase(rt, a)
	a.Provide(IAdd, Adder(a))

	return a, nil
}

// Add implements Adder.
func (a *AdderComponent) Add(x, y int) (int, error) { return x + y + 8, nil }

// SubtractorComponent subtracts.
type SubtractorComponent struct {
	*component.Base
}

// NewSubtractor is the constructor for TypeSubtractor.
func NewSubtractor(rt core.Runtime) (core.Unknown, error) {
	s := &SubtractorComponent{}
	s.Base = component.NewBase(rt, s)
	s.Provide(ISubtract, Subtracter(s))

	return s, nil
}

// Subtract implements Subtracter.
func (s *SubtractorComponent) Subtract(x, y int) (int, error) { return x - y, nil }

// CalculatorComponent forwards arithmetic to whatever is bound to its IAdd
// and ISubtract receptacles.
type CalculatorComponent struct {
	*component.Base

	adder      *receptacle.Single[Adder]
	subtracter *receptacle.Single[Subtracter]
}

// NewCalculator is the constructor for TypeCalculator.
func NewCalculator(rt core.Runtime) (core.Unknown, error) {
	c := &CalculatorComponent{
		adder:      receptacle.NewSingle[Adder](IAdd),
		subtracter: receptacle.NewSingle[Subtracter](ISubtract),
	}
	c.Base = component.NewBase(rt, c)
	c.Provide(ICalculator, Calc(c))
	c.AddReceptacle(c.adder)
	c.AddReceptacle(c.subtracter)

	return c, nil
}

// Add implements Calc.
func (c *CalculatorComponent) Add(x, y int) (int, error) {
	a, ok := c.adder.Get()
	if !ok {
		return 0, ErrNotConnected
	}

	return a.Add(x, y)
}

// Subtract implements Calc.
func (c *CalculatorComponent) Subtract(x, y int) (int, error) {
	s, ok := c.subtracter.Get()
	if !ok {
		return 0, ErrNotConnected
	}

	return s.Subtract(x, y)
}

// Display implements Calc.
func (c *CalculatorComponent) Display(msg string) (string, error) {
	return msg + ":: From Calculator", nil
}

// Wait implements Calc. It holds the caller for d, which makes it useful for
// exercising framework locking.
func (c *CalculatorComponent) Wait(d time.Duration) error {
	time.Sleep(d)
	return nil
}
