package interop

import (
	"runtime"
	"weak"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/shared"
)

// RegisterShared tracks native and script as one shared object and ties
// release to the native half's lifetime: when the Go collector reclaims
// native, the disposal signal fires as if a finalizer had reported it.
// The identity key is a weak pointer, so neither the shared object
// registry nor the reference cache keeps the native value alive.
//
// Explicit release by id stays available through DeleteSharedObject and
// the script-side release; whichever fires first wins and the rest
// no-op.
func RegisterShared[T any](r *Registry, native *T, script *engine.Object) (uint64, error) {
	if native == nil {
		return 0, errors.InvalidInput(errors.PhaseRegister, "native half is required")
	}
	key := weak.Make(native)
	id, err := r.registerShared(key, script)
	if err != nil {
		return 0, err
	}
	runtime.AddCleanup(native, func(id uint64) {
		r.coord.ObjectDisposed(id, shared.SourceNative)
	}, id)
	return id, nil
}

// SharedWrapper returns the cached script wrapper for a native value
// previously passed to RegisterShared, or not_cached once the wrapper
// has been collected or the object released.
func SharedWrapper[T any](r *Registry, native *T) (*engine.Value, error) {
	if native == nil {
		return nil, errors.InvalidInput(errors.PhaseLookup, "native half is required")
	}
	return r.CachedWrapper(weak.Make(native))
}
