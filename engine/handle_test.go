package engine

import (
	"testing"

	"github.com/wippyai/script-bridge/errors"
)

func TestValue_RetainRelease(t *testing.T) {
	e := newTestEngine(t)

	v, err := e.Evaluate("'hello'")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if v.Refs() != 1 {
		t.Fatalf("Expected 1 ref, got %d", v.Refs())
	}

	v.Retain()
	if v.Refs() != 2 {
		t.Fatalf("Expected 2 refs, got %d", v.Refs())
	}

	v.Release()
	if v.Released() {
		t.Fatal("Handle released while a reference remained")
	}
	if v.String() != "hello" {
		t.Fatal("Handle unusable while a reference remained")
	}

	v.Release()
	if !v.Released() {
		t.Fatal("Handle not released at zero refs")
	}

	// Operations on a released handle fail instead of touching the engine.
	if _, err := v.Export(); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("Expected invalid_input, got %v", err)
	}
}

func TestValue_AsObject(t *testing.T) {
	e := newTestEngine(t)

	v, err := e.Evaluate("({ n: 7 })")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer v.Release()

	o, err := v.AsObject()
	if err != nil {
		t.Fatalf("AsObject failed: %v", err)
	}
	n, err := o.Get("n")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got, _ := n.Int64(); got != 7 {
		t.Fatalf("Expected 7, got %d", got)
	}

	prim, err := e.Evaluate("42")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer prim.Release()
	if _, err := prim.AsObject(); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("Expected invalid_input for primitive, got %v", err)
	}
}

func TestObject_SetGet(t *testing.T) {
	e := newTestEngine(t)

	g, err := e.Global()
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}

	if err := g.Set("answer", 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Visible from script
	v, err := e.Evaluate("answer")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer v.Release()
	if n, _ := v.Int64(); n != 42 {
		t.Fatalf("Expected 42, got %d", n)
	}

	// Visible from native
	got, err := g.Get("answer")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if n, _ := got.Int64(); n != 42 {
		t.Fatalf("Expected 42, got %d", n)
	}

	// Absent property reads as undefined, not an error
	absent, err := g.Get("noSuchProperty")
	if err != nil {
		t.Fatalf("Get of absent property failed: %v", err)
	}
	if out, _ := absent.Export(); out != nil {
		t.Fatalf("Expected undefined export, got %v", out)
	}
}

func TestObject_SetMethod(t *testing.T) {
	e := newTestEngine(t)

	g, err := e.Global()
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if err := g.SetMethod("add", func(a, b int64) int64 { return a + b }); err != nil {
		t.Fatalf("SetMethod failed: %v", err)
	}

	v, err := e.Evaluate("add(2, 3)")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer v.Release()
	if n, _ := v.Int64(); n != 5 {
		t.Fatalf("Expected 5, got %d", n)
	}
}

func TestObject_CallMethod(t *testing.T) {
	e := newTestEngine(t)

	v, err := e.Evaluate(`({ n: 10, inc: function(d) { return this.n + d } })`)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer v.Release()
	o, err := v.AsObject()
	if err != nil {
		t.Fatalf("AsObject failed: %v", err)
	}

	out, err := o.CallMethod("inc", 5)
	if err != nil {
		t.Fatalf("CallMethod failed: %v", err)
	}
	if n, _ := out.Int64(); n != 15 {
		t.Fatalf("Expected 15, got %d", n)
	}

	// Calling a non-callable property fails with invalid_input.
	if _, err := o.CallMethod("n"); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("Expected invalid_input, got %v", err)
	}
}

func TestValue_Call(t *testing.T) {
	e := newTestEngine(t)

	v, err := e.Evaluate(`(function(name) { return "hi " + name })`)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer v.Release()

	out, err := v.Call("go")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out.String() != "hi go" {
		t.Fatalf("Expected 'hi go', got %q", out.String())
	}

	// A script throw inside the call surfaces as script_exception.
	thrower, err := e.Evaluate(`(function() { throw new Error("nope") })`)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer thrower.Release()
	if _, err := thrower.Call(); !errors.IsKind(err, errors.KindScriptException) {
		t.Fatalf("Expected script_exception, got %v", err)
	}
}

func TestObject_InstanceOf(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Evaluate(`function Point(x) { this.x = x }`); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	g, err := e.Global()
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	ctorVal, err := g.Get("Point")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	ctor, err := ctorVal.AsObject()
	if err != nil {
		t.Fatalf("AsObject failed: %v", err)
	}

	instVal, err := e.Evaluate("new Point(1)")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer instVal.Release()
	inst, err := instVal.AsObject()
	if err != nil {
		t.Fatalf("AsObject failed: %v", err)
	}

	ok, err := inst.InstanceOf(ctor)
	if err != nil {
		t.Fatalf("InstanceOf failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected instance of Point")
	}

	plainVal, err := e.Evaluate("({})")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	defer plainVal.Release()
	plain, _ := plainVal.AsObject()
	ok, err = plain.InstanceOf(ctor)
	if err != nil {
		t.Fatalf("InstanceOf failed: %v", err)
	}
	if ok {
		t.Fatal("Plain object should not be instance of Point")
	}
}

func TestObject_Keys(t *testing.T) {
	e := newTestEngine(t)

	o, err := e.NewObject()
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	if err := o.Set("a", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := o.Set("b", 2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	keys, err := o.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Expected [a b], got %v", keys)
	}
}
