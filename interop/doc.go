// Package interop is the bridge facade: the complete surface the native
// host programs against.
//
// A Registry owns one engine instance plus the module, class, reference
// cache, and shared object registries. Creating it installs the runtime:
// the core module is registered, console and require are enabled, and
// script code can resolve registered native modules with require(name).
//
// Every operation that touches engine state is marshaled onto the
// engine's execution context, so the Registry is safe to use from any
// goroutine. Teardown is idempotent, force-releases outstanding shared
// objects through the normal release path, and makes every later
// engine-touching operation fail fast with torn_down. Releasing a shared
// object stays idempotent across teardown: deleting a force-released id
// is still a no-op.
package interop
