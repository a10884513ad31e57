package core

import (
	"reflect"
	"strings"
)

// HookFunc is the fixed interceptor signature. Pre-hooks receive the
// argument array and return a status: nil or integer zero lets the call
// proceed, anything else aborts it. Post-hooks receive [result, args...] and
// return the replacement result: nil or integer zero keeps the current one.
//
// Pre-hooks may rewrite args in place; the wrapped method sees the rewritten
// values.
type HookFunc func(method string, args []any) any

// HookHost resolves named hooks. Hosts that do not implement it are resolved
// by method name, see ResolveHook.
type HookHost interface {
	Hook(name string) (HookFunc, bool)
}

// Hooks is a HookHost backed by a map. Lookup is case-insensitive.
type Hooks map[string]HookFunc

// Hook implements HookHost.
func (h Hooks) Hook(name string) (HookFunc, bool) {
	if fn, ok := h[name]; ok {
		return fn, true
	}
	for k, fn := range h {
		if strings.EqualFold(k, name) {
			return fn, true
		}
	}
	return nil, false
}

// ResolveHook finds the hook called name on host. HookHost implementations
// are asked first; otherwise an exported method whose name matches
// case-insensitively and whose signature is func(string, []any) any or
// func(string, []any) int is used.
func ResolveHook(host any, name string) (HookFunc, bool) {
	if host == nil || name == "" {
		return nil, false
	}
	if hh, ok := host.(HookHost); ok {
		if fn, ok := hh.Hook(name); ok && fn != nil {
			return fn, true
		}
	}
	switch fn := host.(type) {
	case HookFunc:
		return fn, true
	case func(string, []any) any:
		return fn, true
	}
	v := reflect.ValueOf(host)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if !strings.EqualFold(t.Method(i).Name, name) {
			continue
		}
		switch fn := v.Method(i).Interface().(type) {
		case func(string, []any) any:
			return fn, true
		case func(string, []any) int:
			return func(method string, args []any) any { return fn(method, args) }, true
		}
	}
	return nil, false
}

// IsZeroStatus reports whether a hook return value is the no-op sentinel:
// nil or an integer zero of any width.
func IsZeroStatus(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case int:
		return n == 0
	case int8:
		return n == 0
	case int16:
		return n == 0
	case int32:
		return n == 0
	case int64:
		return n == 0
	case uint:
		return n == 0
	case uint8:
		return n == 0
	case uint16:
		return n == 0
	case uint32:
		return n == 0
	case uint64:
		return n == 0
	}
	return false
}
