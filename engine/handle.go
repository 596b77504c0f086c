package engine

import (
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/wippyai/script-bridge/errors"
)

// Value is a refcounted handle to a value living inside the engine.
// Multiple native holders may share one handle; the handle keeps the
// underlying value alive until the last holder releases it. The wrapped
// value is only touched on the execution context.
type Value struct {
	eng      *Engine
	v        goja.Value
	refs     atomic.Int64
	released atomic.Bool
}

// newValue wraps v in a handle with one reference. Loop only.
func (e *Engine) newValue(v goja.Value) *Value {
	h := &Value{eng: e, v: v}
	h.refs.Store(1)
	return h
}

// newObject wraps o in an object handle with one reference. Loop only.
func (e *Engine) newObject(o *goja.Object) *Object {
	return &Object{Value: e.newValue(o), o: o}
}

// Retain adds a reference and returns the handle for chaining.
func (h *Value) Retain() *Value {
	h.refs.Add(1)
	return h
}

// Release drops one reference. At zero the engine value reference is
// cleared on the execution context, making it reclaimable by the engine's
// collector. Extra releases past zero are absorbed.
func (h *Value) Release() {
	if h.refs.Add(-1) > 0 {
		return
	}
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.eng.disp.Post(func() {
		h.v = nil
	})
}

// Refs reports the current reference count.
func (h *Value) Refs() int64 {
	return h.refs.Load()
}

// Released reports whether the last reference has been dropped.
func (h *Value) Released() bool {
	return h.released.Load()
}

func (h *Value) live(op string) error {
	if h.released.Load() {
		return errors.InvalidInput(errors.PhaseDispatch, op+" on released handle")
	}
	return nil
}

// Unwrap returns the raw engine value. Execution context only.
func (h *Value) Unwrap() goja.Value {
	return h.v
}

// Export converts the script value to its closest Go representation.
func (h *Value) Export() (any, error) {
	if err := h.live("export"); err != nil {
		return nil, err
	}
	var out any
	if err := h.eng.Invoke(func() {
		out = h.v.Export()
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// String renders the script value via its ToString semantics. A released
// handle renders as the empty string.
func (h *Value) String() string {
	if h.live("string") != nil {
		return ""
	}
	var out string
	if err := h.eng.Invoke(func() {
		out = h.v.String()
	}); err != nil {
		return ""
	}
	return out
}

// Int64 coerces the script value to an integer.
func (h *Value) Int64() (int64, error) {
	if err := h.live("int64"); err != nil {
		return 0, err
	}
	var out int64
	if err := h.eng.Invoke(func() {
		out = h.v.ToInteger()
	}); err != nil {
		return 0, err
	}
	return out, nil
}

// Bool coerces the script value to a boolean.
func (h *Value) Bool() (bool, error) {
	if err := h.live("bool"); err != nil {
		return false, err
	}
	var out bool
	if err := h.eng.Invoke(func() {
		out = h.v.ToBoolean()
	}); err != nil {
		return false, err
	}
	return out, nil
}

// Call invokes the wrapped value as a function with undefined this.
// Fails with invalid_input if the value is not callable; an in-script
// throw surfaces as script_exception.
func (h *Value) Call(args ...any) (*Value, error) {
	if err := h.live("call"); err != nil {
		return nil, err
	}
	var (
		out     *Value
		callErr error
	)
	if err := h.eng.Invoke(func() {
		out, callErr = h.eng.callValue(h.v, goja.Undefined(), args)
	}); err != nil {
		return nil, err
	}
	return out, callErr
}

// AsObject returns an object view of the handle. Fails with invalid_input
// when the wrapped value is not an object. The view shares the handle's
// reference count.
func (h *Value) AsObject() (*Object, error) {
	if err := h.live("object"); err != nil {
		return nil, err
	}
	var (
		out     *Object
		convErr error
	)
	if err := h.eng.Invoke(func() {
		o, ok := h.v.(*goja.Object)
		if !ok {
			convErr = errors.InvalidInput(errors.PhaseDispatch, "value is not an object")
			return
		}
		out = &Object{Value: h, o: o}
	}); err != nil {
		return nil, err
	}
	return out, convErr
}

// Object is a handle to a script object (including functions).
type Object struct {
	*Value
	o *goja.Object
}

// Unwrap returns the raw engine object. Execution context only.
func (o *Object) Unwrap() *goja.Object {
	return o.o
}

// Get returns a handle to the named property; absent properties read as
// undefined.
func (o *Object) Get(name string) (*Value, error) {
	if err := o.live("get"); err != nil {
		return nil, err
	}
	var out *Value
	if err := o.eng.Invoke(func() {
		v := o.o.Get(name)
		if v == nil {
			v = goja.Undefined()
		}
		out = o.eng.newValue(v)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Set writes the named property. Handle arguments are unwrapped; plain Go
// values (including funcs) are converted by the engine.
func (o *Object) Set(name string, value any) error {
	if err := o.live("set"); err != nil {
		return err
	}
	var setErr error
	if err := o.eng.Invoke(func() {
		setErr = o.o.Set(name, o.eng.toEngine(value))
	}); err != nil {
		return err
	}
	return setErr
}

// SetMethod exposes a Go function as a callable property. Sugar over Set;
// goja converts Go funcs to script callables.
func (o *Object) SetMethod(name string, fn any) error {
	return o.Set(name, fn)
}

// Keys lists the object's own enumerable property names.
func (o *Object) Keys() ([]string, error) {
	if err := o.live("keys"); err != nil {
		return nil, err
	}
	var out []string
	if err := o.eng.Invoke(func() {
		out = o.o.Keys()
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// CallMethod invokes the named property as a method with this bound to
// the object.
func (o *Object) CallMethod(name string, args ...any) (*Value, error) {
	if err := o.live("call"); err != nil {
		return nil, err
	}
	var (
		out     *Value
		callErr error
	)
	if err := o.eng.Invoke(func() {
		fn := o.o.Get(name)
		if fn == nil {
			callErr = errors.InvalidInput(errors.PhaseDispatch, "no method "+name)
			return
		}
		out, callErr = o.eng.callValue(fn, o.o, args)
	}); err != nil {
		return nil, err
	}
	return out, callErr
}

// InstanceOf reports whether the object is an instance of the given
// constructor, preserving prototype identity across the boundary.
func (o *Object) InstanceOf(ctor *Object) (bool, error) {
	if err := o.live("instanceof"); err != nil {
		return false, err
	}
	if ctor == nil {
		return false, errors.InvalidInput(errors.PhaseLookup, "nil constructor")
	}
	var out bool
	if err := o.eng.Invoke(func() {
		out = o.eng.vm.InstanceOf(o.o, ctor.o)
	}); err != nil {
		return false, err
	}
	return out, nil
}

// callValue invokes fn with the given this and args. Loop only.
func (e *Engine) callValue(fn goja.Value, this goja.Value, args []any) (*Value, error) {
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "value is not callable")
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = e.toEngine(a)
	}
	res, err := callable(this, gargs...)
	if err != nil {
		return nil, scriptError(err)
	}
	return e.newValue(res), nil
}

// toEngine converts a native argument to an engine value. Loop only.
func (e *Engine) toEngine(value any) goja.Value {
	switch v := value.(type) {
	case nil:
		return goja.Undefined()
	case *Object:
		return v.o
	case *Value:
		return v.v
	case goja.Value:
		return v
	default:
		return e.vm.ToValue(value)
	}
}
