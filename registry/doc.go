// Package registry provides the bridge's lookup tables: the module
// registry, the class registry, and the reference cache.
//
// All three are append-mostly maps owned by one bridge instance; entries
// are only removed by cache invalidation or full teardown. None of the
// types lock internally: mutation happens while holding the engine's
// execution context (a single-writer discipline), and native-thread
// callers reach them through the bridge facade, which marshals every call
// through the dispatcher.
package registry
