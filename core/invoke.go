package core

import "fmt"

// Invoker runs one intercepted call. The call closure receives the argument
// array after pre-hooks had the chance to rewrite it.
type Invoker interface {
	Invoke(method string, args []any, call func(args []any) (any, error)) (any, error)
}

// Invoke routes a call through inv and converts the final result to T.
//
// A nil result converts to the zero value of T. This matters for capability
// methods whose result is an interface or pointer type.
func Invoke[T any](inv Invoker, method string, call func(args []any) (any, error), args ...any) (T, error) {
	var zero T

	res, err := inv.Invoke(method, args, call)
	if res == nil {
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrResultType, method, res, zero)
	}

	return v, err
}

// Call routes a call without a result through inv.
func Call(inv Invoker, method string, call func(args []any) error, args ...any) error {
	_, err := inv.Invoke(method, args, func(a []any) (any, error) {
		return nil, call(a)
	})

	return err
}

// Arg reads argument i as T. Pre-hooks may have replaced it.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: argument %d missing", ErrArgumentType, i)
	}

	if args[i] == nil {
		return zero, nil
	}

	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrArgumentType, i, args[i], zero)
	}

	return v, nil
}
