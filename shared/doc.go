// Package shared tracks objects that exist simultaneously as a native Go
// value and a script object.
//
// Each pairing gets a stable uint64 id, unique for the lifetime of the
// registry and never reused. Script code holds the id, not a pointer, and
// resolves it through the registry on each access; this turns the
// potential native/script reference cycle into an arena-plus-index
// pattern.
//
// # Lifecycle
//
// An entry moves Registered -> Released and Released is terminal. Release
// drops the registry's references to both halves exactly once; a second
// release of the same id is a silent no-op, which is what absorbs the
// redundant disposal signal when both the native finalizer and the script
// collector report the same object. Releasing an id that was never issued
// is an error.
//
// # Deallocation Coordination
//
// Disposal notifications arrive from two independent sources: native
// finalization and script-side release. The Coordinator funnels both onto
// the engine's execution context so release logic never races lookups,
// and invalidates the matching reference cache entry once an object is
// released. Whichever side reports first wins; idempotence absorbs the
// second signal.
package shared
