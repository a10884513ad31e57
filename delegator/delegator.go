// Package delegator implements the Delegation Proxy: the intercepting wrapper
// installed around one capability of one component.
//
// A Delegator owns ordered pre and post hook chains and a typed attribute
// map. Its Outer reference is built by the capability's ProxyFactory and
// routes every method through Invoke:
//
//  1. pre-hooks run in insertion order with (method, args); a non-zero status
//     aborts the call with a *core.InvocationError, skipping the wrapped
//     method and all post-hooks (except the exit half of interceptor pairs
//     that were already entered);
//  2. the wrapped method runs with the possibly rewritten args;
//  3. post-hooks run in insertion order with (method, [result, args...]); a
//     non-zero return replaces the running result.
//
// Hook chains can be changed while calls are in flight. A call uses the
// chains as they were when it started.
package delegator

import (
	"strings"
	"sync"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/logging"
)

// Options configures a Delegator.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Observer receives InvocationAborted events.
	Observer core.Observer
}

type hook struct {
	name string
	fn   core.HookFunc
	// exit names the post-hook paired with this pre-hook, if any.
	exit string
}

// Delegator is the Delegation Proxy of one (component, capability) pair.
type Delegator struct {
	iid    string
	target any
	outer  any

	mu    sync.RWMutex
	pre   []hook
	post  []hook
	attrs map[string]core.TypedAttribute

	logger   logging.Logger
	observer core.Observer
}

// New wraps target, the raw capability reference, in a Delegator. The outer
// reference is produced by factory; New returns false when the factory
// rejects the target.
func New(iid string, target any, factory core.ProxyFactory, optFns ...func(o *Options)) (*Delegator, bool) {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Observer: core.NopObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	d := &Delegator{
		iid:      iid,
		target:   target,
		attrs:    map[string]core.TypedAttribute{},
		logger:   opts.Logger,
		observer: opts.Observer,
	}

	if factory == nil {
		return nil, false
	}

	outer := factory(target, d)
	if outer == nil {
		return nil, false
	}

	d.outer = outer

	return d, true
}

// InterfaceType returns the capability name the delegator wraps.
func (d *Delegator) InterfaceType() string { return d.iid }

// Outer returns the intercepting reference.
func (d *Delegator) Outer() any { return d.outer }

// Target returns the wrapped raw reference.
func (d *Delegator) Target() any { return d.target }

// AddPreMethod appends the hook called name on host to the pre chain.
func (d *Delegator) AddPreMethod(host any, name string) bool {
	fn, ok := core.ResolveHook(host, name)
	if !ok {
		return false
	}

	d.mu.Lock()
	d.pre = append(d.pre, hook{name: name, fn: fn})
	d.mu.Unlock()

	return true
}

// AddPostMethod appends the hook called name on host to the post chain.
func (d *Delegator) AddPostMethod(host any, name string) bool {
	fn, ok := core.ResolveHook(host, name)
	if !ok {
		return false
	}

	d.mu.Lock()
	d.post = append(d.post, hook{name: name, fn: fn})
	d.mu.Unlock()

	return true
}

// AddInterceptor appends enter to the pre chain and exit to the post chain
// as one pair. Both hooks must resolve or nothing is added.
func (d *Delegator) AddInterceptor(host any, enter, exit string) bool {
	enterFn, ok := core.ResolveHook(host, enter)
	if !ok {
		return false
	}

	exitFn, ok := core.ResolveHook(host, exit)
	if !ok {
		return false
	}

	d.mu.Lock()
	d.pre = append(d.pre, hook{name: enter, fn: enterFn, exit: exit})
	d.post = append(d.post, hook{name: exit, fn: exitFn})
	d.mu.Unlock()

	return true
}

// DelPreMethod removes the first pre-hook named name (case-insensitive).
func (d *Delegator) DelPreMethod(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ok bool
	d.pre, ok = remove(d.pre, name)

	return ok
}

// DelPostMethod removes the first post-hook named name (case-insensitive).
func (d *Delegator) DelPostMethod(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ok bool
	d.post, ok = remove(d.post, name)

	return ok
}

// DelInterceptor removes the first pair added with AddInterceptor(enter, exit).
func (d *Delegator) DelInterceptor(enter, exit string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := index(d.pre, enter)
	if i < 0 || !strings.EqualFold(d.pre[i].exit, exit) {
		return false
	}

	j := index(d.post, exit)
	if j < 0 {
		return false
	}

	d.pre = append(d.pre[:i:i], d.pre[i+1:]...)
	d.post = append(d.post[:j:j], d.post[j+1:]...)

	return true
}

// ViewPreMethods lists the pre-hook names in execution order.
func (d *Delegator) ViewPreMethods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return names(d.pre)
}

// ViewPostMethods lists the post-hook names in execution order.
func (d *Delegator) ViewPostMethods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return names(d.post)
}

// SetAttributeValue stores a meta-data attribute on the delegator.
func (d *Delegator) SetAttributeValue(name string, attr core.TypedAttribute) bool {
	if name == "" || attr.Kind == core.KindInvalid {
		return false
	}

	d.mu.Lock()
	d.attrs[name] = attr
	d.mu.Unlock()

	return true
}

// AttributeValue returns the attribute stored under name.
func (d *Delegator) AttributeValue(name string) (core.TypedAttribute, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.attrs[name]

	return a, ok
}

// AttributeValues returns a copy of all attributes.
func (d *Delegator) AttributeValues() map[string]core.TypedAttribute {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]core.TypedAttribute, len(d.attrs))
	for k, v := range d.attrs {
		out[k] = v
	}

	return out
}

// Invoke implements core.Invoker.
func (d *Delegator) Invoke(method string, args []any, call func(args []any) (any, error)) (any, error) {
	d.mu.RLock()
	pre := d.pre
	post := d.post
	d.mu.RUnlock()

	for i, h := range pre {
		status := h.fn(method, args)
		if core.IsZeroStatus(status) {
			continue
		}

		d.unwind(method, args, pre[:i], post)
		logging.LogInvocationAborted(d.logger, d.iid, method, h.name, status)
		d.observer.InvocationAborted(d.iid, method, h.name)

		return nil, &core.InvocationError{Interface: d.iid, Method: method, Hook: h.name, Status: status}
	}

	completed := false
	defer func() {
		if !completed {
			d.unwind(method, args, pre, post)
		}
	}()

	res, err := call(args)
	completed = true

	for _, h := range post {
		in := make([]any, 0, len(args)+1)
		in = append(in, res)
		in = append(in, args...)

		if out := h.fn(method, in); !core.IsZeroStatus(out) {
			res = out
		}
	}

	return res, err
}

// unwind runs, in reverse order, the exit hook of every interceptor pair
// whose enter hook already ran.
func (d *Delegator) unwind(method string, args []any, entered []hook, post []hook) {
	for i := len(entered) - 1; i >= 0; i-- {
		if entered[i].exit == "" {
			continue
		}

		j := index(post, entered[i].exit)
		if j < 0 {
			continue
		}

		in := make([]any, 0, len(args)+1)
		in = append(in, nil)
		in = append(in, args...)
		post[j].fn(method, in)
	}
}

func index(hooks []hook, name string) int {
	for i, h := range hooks {
		if strings.EqualFold(h.name, name) {
			return i
		}
	}

	return -1
}

// remove drops the first match without touching the backing array of the
// input, which in-flight calls may still be iterating.
func remove(hooks []hook, name string) ([]hook, bool) {
	i := index(hooks, name)
	if i < 0 {
		return hooks, false
	}

	out := make([]hook, 0, len(hooks)-1)
	out = append(out, hooks[:i]...)
	out = append(out, hooks[i+1:]...)

	return out, true
}

func names(hooks []hook) []string {
	out := make([]string, len(hooks))
	for i, h := range hooks {
		out[i] = h.name
	}

	return out
}

var (
	_ core.Delegator = (*Delegator)(nil)
	_ core.Invoker   = (*Delegator)(nil)
)
