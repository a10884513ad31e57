package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/logging"
)

var (
	// ErrCommitRejected is returned when the framework validator refuses the
	// assembled configuration.
	ErrCommitRejected = errors.New("framework commit rejected")
	// ErrStartup is returned when a component's life-cycle startup fails.
	ErrStartup = errors.New("component startup failed")
)

// StepError names the assembly step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// Options configures Apply.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// Hosts maps the host names used by interceptors to hook hosts.
	Hosts map[string]any
}

// Result is what Apply built.
type Result struct {
	// Components holds every created component by name, framework members
	// and the framework itself included.
	Components map[string]*core.Handle
	// Connections are the ids of the top-level connections in file order.
	Connections []core.ConnID
	// Bindings are the ids of the framework's local bindings in file order.
	Bindings []core.ConnID
	// Framework is the framework handle, nil when the assembly has none.
	Framework *core.Handle

	order []*core.Handle
}

// Component looks a created component up by name (case-insensitive).
func (r *Result) Component(name string) (*core.Handle, bool) {
	h, ok := r.Components[strings.ToLower(name)]
	return h, ok
}

func (r *Result) add(name string, h *core.Handle) {
	r.Components[strings.ToLower(name)] = h
}

type applier struct {
	rt     core.Runtime
	opts   Options
	logger logging.Logger
	res    *Result
	cf     framework.CFMetaInterface
}

// Apply builds a against rt. Components are created and started first, then
// the framework graph inside one transaction, then top-level connections and
// interceptors. On failure everything Apply created is deleted again and a
// *StepError is returned.
func Apply(ctx context.Context, rt core.Runtime, a *Assembly, optFns ...func(o *Options)) (*Result, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if a == nil {
		return nil, &StepError{Step: "validate", Err: fmt.Errorf("%w: nil assembly", ErrInvalid)}
	}

	if err := a.Validate(); err != nil {
		return nil, &StepError{Step: "validate", Err: err}
	}

	ap := &applier{
		rt:     rt,
		opts:   opts,
		logger: logging.ForComponent(opts.Logger, "assembly"),
		res:    &Result{Components: map[string]*core.Handle{}},
	}

	done := logging.StartTimer(ap.logger, "assembly.apply")
	defer done()

	if err := ap.run(ctx, a); err != nil {
		ap.logger.Error("Assembly failed", "error", err)
		ap.cleanup()
		return nil, err
	}

	ap.logger.Info("Assembly applied",
		"components", len(ap.res.Components),
		"connections", len(ap.res.Connections),
		"bindings", len(ap.res.Bindings))

	return ap.res, nil
}

func (ap *applier) run(ctx context.Context, a *Assembly) error {
	for _, c := range a.Components {
		h, err := ap.rt.CreateInstance(c.Type, c.Name)
		if err != nil {
			return &StepError{Step: fmt.Sprintf("create component %q", c.Name), Err: err}
		}

		ap.res.add(c.Name, h)
		ap.res.order = append(ap.res.order, h)

		if err := ap.prepare(c, h); err != nil {
			return err
		}
	}

	if a.Framework != nil {
		if err := ap.buildFramework(ctx, a.Framework); err != nil {
			return err
		}
	}

	for _, c := range a.Connections {
		id, err := ap.connect(c, ap.rt.Connect)
		if err != nil {
			return &StepError{Step: fmt.Sprintf("connect %s -> %s (%s)", c.Source, c.Sink, c.Interface), Err: err}
		}
		ap.res.Connections = append(ap.res.Connections, id)
	}

	for _, ic := range a.Interceptors {
		if err := ap.intercept(ic); err != nil {
			return &StepError{Step: fmt.Sprintf("intercept %s.%s", ic.Component, ic.Interface), Err: err}
		}
	}

	return nil
}

func (ap *applier) buildFramework(ctx context.Context, f *Framework) error {
	typ := f.Type
	if typ == "" {
		typ = framework.TypeName
	}

	h, err := ap.rt.CreateInstance(typ, f.Name)
	if err != nil {
		return &StepError{Step: fmt.Sprintf("create framework %q", f.Name), Err: err}
	}

	ap.res.add(f.Name, h)
	ap.res.order = append(ap.res.order, h)
	ap.res.Framework = h

	cf, ok := h.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)
	if !ok {
		return &StepError{Step: fmt.Sprintf("create framework %q", f.Name), Err: fmt.Errorf("type %s is not a framework", typ)}
	}
	ap.cf = cf

	if f.Validator != "" {
		v, _ := ap.res.Component(f.Validator)
		if _, ok := ap.rt.Connect(h, v, core.IAccept); !ok {
			return &StepError{Step: fmt.Sprintf("attach validator %q", f.Validator), Err: errors.New("connect failed")}
		}
	}

	if !cf.InitArchTransaction(ctx) {
		step := &StepError{Step: fmt.Sprintf("begin transaction on %q", f.Name), Err: errors.New("write lock not acquired")}
		if err := ctx.Err(); err != nil {
			step.Err = err
		}
		return step
	}

	if err := ap.populate(f); err != nil {
		cf.RollbackArchTransaction()
		return err
	}

	if !cf.CommitArchTransaction() {
		return &StepError{Step: fmt.Sprintf("commit framework %q", f.Name), Err: ErrCommitRejected}
	}

	return nil
}

func (ap *applier) populate(f *Framework) error {
	for _, c := range f.Components {
		h, err := ap.cf.CreateComponent(c.Type, c.Name)
		if err != nil {
			return &StepError{Step: fmt.Sprintf("create component %q in %q", c.Name, f.Name), Err: err}
		}

		ap.res.add(c.Name, h)

		if err := ap.prepare(c, h); err != nil {
			return err
		}
	}

	for _, b := range f.Bindings {
		id, err := ap.connect(b, ap.cf.LocalBind)
		if err != nil {
			return &StepError{Step: fmt.Sprintf("bind %s -> %s (%s)", b.Source, b.Sink, b.Interface), Err: err}
		}
		ap.res.Bindings = append(ap.res.Bindings, id)
	}

	for _, e := range f.Expose.Interfaces {
		h, _ := ap.res.Component(e.Component)
		if !ap.cf.ExposeInterface(e.Interface, h) {
			return &StepError{Step: fmt.Sprintf("expose interface %s.%s", e.Component, e.Interface), Err: errors.New("expose failed")}
		}
	}

	for _, e := range f.Expose.Receptacles {
		var kind core.ReceptacleKind
		if e.Kind != "" {
			kind, _ = core.ParseReceptacleKind(e.Kind)
		}

		h, _ := ap.res.Component(e.Component)
		if !ap.cf.ExposeReceptacle(e.Interface, h, kind) {
			return &StepError{Step: fmt.Sprintf("expose receptacle %s.%s", e.Component, e.Interface), Err: errors.New("expose failed")}
		}
	}

	return nil
}

// prepare starts a freshly created component and applies its attributes.
func (ap *applier) prepare(c Component, h *core.Handle) error {
	if lc, ok := h.QueryInterface(core.ILifeCycle).(core.LifeCycle); ok && !lc.Startup(ap.rt) {
		return &StepError{Step: fmt.Sprintf("start component %q", c.Name), Err: ErrStartup}
	}

	if len(c.Attributes) == 0 {
		return nil
	}

	meta, ok := h.QueryInterface(core.IMetaInterface).(core.MetaInterface)
	if !ok {
		return &StepError{Step: fmt.Sprintf("set attributes on %q", c.Name), Err: errors.New("component has no meta interface")}
	}

	for _, at := range c.Attributes {
		spec, err := attribute(at)
		if err != nil {
			return &StepError{Step: fmt.Sprintf("set attribute %q on %q", at.Name, c.Name), Err: err}
		}

		if !meta.SetAttributeValue(at.Interface, spec.scope, at.Name, spec.value) {
			return &StepError{
				Step: fmt.Sprintf("set attribute %q on %q", at.Name, c.Name),
				Err:  fmt.Errorf("no %s %s", spec.scope, at.Interface),
			}
		}
	}

	return nil
}

func (ap *applier) connect(c Connection, bind func(source, sink core.Unknown, iid string) (core.ConnID, bool)) (core.ConnID, error) {
	src, _ := ap.res.Component(c.Source)
	dst, _ := ap.res.Component(c.Sink)

	id, ok := bind(src, dst, c.Interface)
	if !ok {
		return 0, errors.New("connect failed")
	}

	return id, nil
}

func (ap *applier) intercept(ic Interceptor) error {
	host, ok := ap.opts.Hosts[ic.Host]
	if !ok {
		return fmt.Errorf("unknown hook host %q", ic.Host)
	}

	h, _ := ap.res.Component(ic.Component)

	d, ok := ap.rt.Delegator(h, ic.Interface)
	if !ok {
		return fmt.Errorf("no delegator for %s", ic.Interface)
	}

	for _, name := range ic.Pre {
		if !d.AddPreMethod(host, name) {
			return fmt.Errorf("pre-method %q not found on host %q", name, ic.Host)
		}
	}

	for _, name := range ic.Post {
		if !d.AddPostMethod(host, name) {
			return fmt.Errorf("post-method %q not found on host %q", name, ic.Host)
		}
	}

	return nil
}

// cleanup deletes what a failed Apply created, newest first.
func (ap *applier) cleanup() {
	if ap.cf != nil {
		if ap.cf.InTransaction() {
			ap.cf.RollbackArchTransaction()
		}
		for _, h := range ap.cf.InternalComponents() {
			ap.cf.DeleteComponent(h)
		}
	}

	for i := len(ap.res.order) - 1; i >= 0; i-- {
		ap.rt.DeleteInstance(ap.res.order[i])
	}
}
