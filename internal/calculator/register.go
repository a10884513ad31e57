package calculator

import (
	"github.com/hupe1980/compmesh/core"
)

// Registrations returns the type table of the sample components.
func Registrations() []core.Registration {
	return []core.Registration{
		{
			Name:        TypeAdder,
			Description: "adds two integers (off by +8)",
			Build:       NewAdder,
			Interfaces:  []core.InterfaceSpec{{Name: IAdd, Proxy: AdderProxy}},
		},
		{
			Name:        TypeSubtractor,
			Description: "subtracts two integers",
			Build:       NewSubtractor,
			Interfaces:  []core.InterfaceSpec{{Name: ISubtract, Proxy: SubtracterProxy}},
		},
		{
			Name:        TypeCalculator,
			Description: "calculator using IAdd and ISubtract receptacles",
			Build:       NewCalculator,
			Interfaces:  []core.InterfaceSpec{{Name: ICalculator, Proxy: CalcProxy}},
		},
		{
			Name:        TypeAccept,
			Description: "framework validator requiring every receptacle bound",
			Build:       NewAccept,
			Interfaces:  []core.InterfaceSpec{core.AcceptInterface()},
		},
	}
}

// Registrar is implemented by kernels.
type Registrar interface {
	Register(regs ...core.Registration) error
}

// Register adds the sample types to r.
func Register(r Registrar) error {
	return r.Register(Registrations()...)
}
