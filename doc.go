// Package scriptbridge lets native Go code and an embedded script engine
// share a consistent view of modules, objects, and classes across the
// runtime boundary without leaking memory or creating dangling references
// in either direction.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	scriptbridge/        Root package with the Dispatcher interface
//	├── interop/         The bridge facade: install, registries, teardown
//	├── engine/          Runtime holder: goja VM, dispatcher, value handles
//	├── registry/        Module registry, class registry, reference cache
//	├── shared/          Shared object registry and deallocation coordinator
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Create a bridge, register a module, and run a script:
//
//	br, err := interop.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer br.Teardown()
//
//	exports, _ := br.CreateObject()
//	exports.SetMethod("greet", func(name string) string {
//	    return "Hello, " + name + "!"
//	})
//	br.RegisterModule("greeter", exports)
//
//	v, err := br.EvaluateScript(`require("greeter").greet("World")`)
//	fmt.Println(v.String()) // "Hello, World!"
//
// # Execution Model
//
// The embedded engine executes cooperatively on one logical thread. Every
// operation that touches engine state is marshaled onto that thread through
// a dispatcher; native callers may originate from any goroutine. Operations
// issued by one goroutine are applied in the order issued.
//
// # Shared Objects
//
// An object that exists as both a native Go value and a script object is
// tracked by a stable uint64 id. Script code holds the id, never a pointer;
// disposal signals from either side funnel through one idempotent release
// path, so redundant signals are absorbed rather than double-freed.
package scriptbridge
