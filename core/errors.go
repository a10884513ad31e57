package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidComponentType is returned when a component cannot be
	// instantiated: unknown type, bad constructor, missing base capability or
	// a duplicate instance name.
	ErrInvalidComponentType = errors.New("invalid component type")

	// ErrInvocation is returned when a pre-hook aborted a call.
	ErrInvocation = errors.New("invocation halted by pre-method")

	// ErrResultType is returned by a proxy when the (possibly overridden)
	// result does not have the capability's declared result type.
	ErrResultType = errors.New("unexpected result type")

	// ErrArgumentType is returned by a proxy when a pre-hook replaced an
	// argument with a value of the wrong type.
	ErrArgumentType = errors.New("unexpected argument type")
)

// InvalidComponentTypeError carries the details of a failed instantiation.
type InvalidComponentTypeError struct {
	Type   string
	Name   string
	Reason string
	Err    error
}

func (e *InvalidComponentTypeError) Error() string {
	msg := fmt.Sprintf("invalid component type %q", e.Type)
	if e.Name != "" {
		msg += fmt.Sprintf(" (name %q)", e.Name)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrInvalidComponentType.
func (e *InvalidComponentTypeError) Is(target error) bool { return target == ErrInvalidComponentType }

// Unwrap returns the constructor error, if any.
func (e *InvalidComponentTypeError) Unwrap() error { return e.Err }

// InvocationError reports which pre-hook halted which call.
type InvocationError struct {
	Interface string
	Method    string
	Hook      string
	Status    any
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s.%s: pre-method %q halted invocation (status %v)", e.Interface, e.Method, e.Hook, e.Status)
}

// Is matches ErrInvocation.
func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }
