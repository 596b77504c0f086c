// Package engine owns the embedded script engine instance.
//
// The engine executes cooperatively on one logical thread: a single
// dispatcher goroutine owns the goja VM, and every operation that touches
// engine state is marshaled onto it. Native callers may come from any
// goroutine; Invoke preserves per-caller ordering.
//
// # Handles
//
// Script values crossing to the native side are wrapped in refcounted
// Value handles. A handle keeps the underlying engine value alive for as
// long as any native holder retains it; releasing the last reference lets
// the engine's collector reclaim the value. Object extends Value with
// property and method access.
//
// # Event Loop
//
// The engine keeps a macrotask queue fed by QueueTask (from native code or
// from script via the bridge core module). Drain runs the queue to
// completion, including tasks queued by tasks, and is single-flight per
// engine. Microtasks (promise jobs) are flushed by goja itself at the end
// of each top-level call.
package engine
