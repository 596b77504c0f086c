package interop

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/shared"
)

// sharedObjectIDProp is the own property carrying a shared object's id on
// its script half. Script code passes the id back through the core
// module; it never sees a native pointer.
const sharedObjectIDProp = "__sharedObjectId"

// Registry is one installed bridge instance. Instances are independent;
// nothing in the package is process-global.
type Registry struct {
	eng     *engine.Engine
	modules *registry.Modules
	classes *registry.Classes
	cache   *registry.RefCache
	shared  *shared.Registry
	coord   *shared.Coordinator
	log     *zap.Logger

	tornDown atomic.Bool
	down     chan struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the bridge logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates and installs a bridge instance: the engine starts, the core
// module is registered, and module/class/shared-object registrations may
// begin immediately.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		modules: registry.NewModules(),
		classes: registry.NewClasses(),
		cache:   registry.NewRefCache(),
		shared:  shared.NewRegistry(),
		log:     zap.NewNop(),
		down:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	eng, err := engine.New(engine.WithLogger(r.log))
	if err != nil {
		return nil, err
	}
	r.eng = eng
	r.coord = shared.NewCoordinator(eng, r.shared, r.cache, r.log)

	if err := r.installCoreModule(); err != nil {
		_ = eng.Close()
		return nil, errors.Registration(registry.CoreModuleName, err)
	}
	r.log.Debug("bridge installed")
	return r, nil
}

// Engine returns the underlying runtime holder.
func (r *Registry) Engine() *engine.Engine { return r.eng }

func (r *Registry) check(op string) error {
	if r.tornDown.Load() {
		return errors.TornDown(op)
	}
	return nil
}

// EvaluateScript evaluates source on the execution context. In-engine
// exceptions surface as script_exception with message and stack.
func (r *Registry) EvaluateScript(source string) (*engine.Value, error) {
	if err := r.check("evaluateScript"); err != nil {
		return nil, err
	}
	return r.eng.Evaluate(source)
}

// Global returns a handle to the engine's global object.
func (r *Registry) Global() (*engine.Object, error) {
	if err := r.check("global"); err != nil {
		return nil, err
	}
	return r.eng.Global()
}

// CreateObject creates an empty script object.
func (r *Registry) CreateObject() (*engine.Object, error) {
	if err := r.check("createObject"); err != nil {
		return nil, err
	}
	return r.eng.NewObject()
}

// RegisterModule binds name to an export object. Re-registering a name
// replaces the exports (last-write-wins). The module also becomes
// resolvable from script as require(name); note require caches exports on
// first load, so replacement is observable through require only before
// its first use, while GetModule always sees the latest registration.
func (r *Registry) RegisterModule(name string, exports *engine.Object) (*registry.Module, error) {
	if err := r.check("registerModule"); err != nil {
		return nil, err
	}
	if name == "" || exports == nil {
		return nil, errors.InvalidInput(errors.PhaseRegister, "module name and exports are required")
	}
	var m *registry.Module
	if err := r.eng.Invoke(func() {
		m = r.modules.Register(name, exports)
	}); err != nil {
		return nil, err
	}
	r.installRequireLoader(name)
	r.log.Debug("module registered", zap.String("module", name))
	return m, nil
}

// GetModule returns the module registered under name, or
// module_not_found.
func (r *Registry) GetModule(name string) (*registry.Module, error) {
	if err := r.check("getModule"); err != nil {
		return nil, err
	}
	var (
		m      *registry.Module
		getErr error
	)
	if err := r.eng.Invoke(func() {
		m, getErr = r.modules.Get(name)
	}); err != nil {
		return nil, err
	}
	return m, getErr
}

// HasModule reports whether name is registered. Pure; false after
// teardown.
func (r *Registry) HasModule(name string) bool {
	if r.tornDown.Load() {
		return false
	}
	var ok bool
	if err := r.eng.Invoke(func() {
		ok = r.modules.Has(name)
	}); err != nil {
		return false
	}
	return ok
}

// GetModuleNames returns all registered module names in insertion order.
func (r *Registry) GetModuleNames() ([]string, error) {
	if err := r.check("getModuleNames"); err != nil {
		return nil, err
	}
	var names []string
	if err := r.eng.Invoke(func() {
		names = r.modules.Names()
	}); err != nil {
		return nil, err
	}
	return names, nil
}

// GetCoreModule returns the distinguished core module.
func (r *Registry) GetCoreModule() (*registry.Module, error) {
	if err := r.check("getCoreModule"); err != nil {
		return nil, err
	}
	var (
		m      *registry.Module
		getErr error
	)
	if err := r.eng.Invoke(func() {
		m, getErr = r.modules.Core()
	}); err != nil {
		return nil, err
	}
	return m, getErr
}

// RegisterClass binds a native class token to its script constructor;
// re-registration replaces the binding.
func (r *Registry) RegisterClass(token *registry.ClassToken, ctor *engine.Object) error {
	if err := r.check("registerClass"); err != nil {
		return err
	}
	if token == nil || ctor == nil {
		return errors.InvalidInput(errors.PhaseRegister, "class token and constructor are required")
	}
	if err := r.eng.Invoke(func() {
		r.classes.Register(token, ctor)
	}); err != nil {
		return err
	}
	r.log.Debug("class registered", zap.String("class", token.Name()))
	return nil
}

// GetScriptClass returns the constructor bound to token, or
// class_not_found if it was never registered.
func (r *Registry) GetScriptClass(token *registry.ClassToken) (*engine.Object, error) {
	if err := r.check("getScriptClass"); err != nil {
		return nil, err
	}
	var (
		ctor   *engine.Object
		getErr error
	)
	if err := r.eng.Invoke(func() {
		ctor, getErr = r.classes.Get(token)
	}); err != nil {
		return nil, err
	}
	return ctor, getErr
}

// RegisterSharedObject tracks a native/script pairing under a fresh id.
// native is used as the identity key for the reference cache and must be
// comparable. The script half gets the id as an own property and the
// wrapper is cached so at most one wrapper exists per native identity.
// For a pairing whose release should also follow the native object's
// garbage collection, use the package-level RegisterShared.
func (r *Registry) RegisterSharedObject(native any, script *engine.Object) (uint64, error) {
	return r.registerShared(native, script)
}

func (r *Registry) registerShared(key any, script *engine.Object) (uint64, error) {
	if err := r.check("registerSharedObject"); err != nil {
		return 0, err
	}
	if script == nil {
		return 0, errors.InvalidInput(errors.PhaseRegister, "script half is required")
	}
	var (
		id     uint64
		setErr error
	)
	if err := r.eng.Invoke(func() {
		id = r.shared.Register(key, script)
		setErr = script.Unwrap().Set(sharedObjectIDProp, id)
		if setErr != nil {
			// Stamping failed (e.g. a frozen object); undo the
			// registration so no half-registered entry survives.
			_ = r.shared.Release(id)
			return
		}
		if key != nil {
			r.cache.Cache(key, script.Value)
		}
	}); err != nil {
		return 0, err
	}
	if setErr != nil {
		return 0, errors.Registration("shared object", setErr)
	}
	r.log.Debug("shared object registered", zap.Uint64("id", id))
	return id, nil
}

// DeleteSharedObject releases the shared object with the given id. Alias
// for the release operation: a second delete of the same id is a silent
// no-op, an id never issued fails with unknown_shared_object. Both rules
// survive teardown: ids force-released by Teardown keep absorbing delete
// calls silently.
func (r *Registry) DeleteSharedObject(id uint64) error {
	if r.tornDown.Load() {
		return r.deleteAfterTeardown(id)
	}
	var relErr error
	if err := r.eng.Invoke(func() {
		relErr = r.shared.Release(id)
	}); err != nil {
		// Teardown won the race to the dispatcher.
		if errors.IsKind(err, errors.KindTornDown) {
			return r.deleteAfterTeardown(id)
		}
		return err
	}
	return relErr
}

// deleteAfterTeardown answers a release request once teardown has begun.
// It waits for the force-release pass; the registry is immutable after
// that, so reading it off the loop is safe. Force-released ids no-op as
// usual, never-issued ids still fail.
func (r *Registry) deleteAfterTeardown(id uint64) error {
	<-r.down
	_, err := r.shared.State(id)
	return err
}

// SharedObjectState returns the lifecycle state for id.
func (r *Registry) SharedObjectState(id uint64) (shared.State, error) {
	if err := r.check("sharedObjectState"); err != nil {
		return 0, err
	}
	var (
		st     shared.State
		getErr error
	)
	if err := r.eng.Invoke(func() {
		st, getErr = r.shared.State(id)
	}); err != nil {
		return 0, err
	}
	return st, getErr
}

// ActiveSharedObjects reports how many shared objects are still
// registered.
func (r *Registry) ActiveSharedObjects() int {
	if r.tornDown.Load() {
		return 0
	}
	var n int
	if err := r.eng.Invoke(func() {
		n = r.shared.Len()
	}); err != nil {
		return 0
	}
	return n
}

// CachedWrapper returns the cached script wrapper for a native identity,
// or not_cached. Wrapper creation is the caller's responsibility; the
// cache only deduplicates.
func (r *Registry) CachedWrapper(native any) (*engine.Value, error) {
	if err := r.check("cachedWrapper"); err != nil {
		return nil, err
	}
	var (
		h      *engine.Value
		getErr error
	)
	if err := r.eng.Invoke(func() {
		h, getErr = r.cache.Internalize(native)
	}); err != nil {
		return nil, err
	}
	return h, getErr
}

// CacheWrapper inserts or replaces the wrapper cached for a native
// identity.
func (r *Registry) CacheWrapper(native any, h *engine.Value) error {
	if err := r.check("cacheWrapper"); err != nil {
		return err
	}
	return r.eng.Invoke(func() {
		r.cache.Cache(native, h)
	})
}

// DrainEventLoop runs the engine's pending task queue to completion. It
// blocks for exactly one full drain and is single-flight per instance.
func (r *Registry) DrainEventLoop() error {
	if err := r.check("drainEventLoop"); err != nil {
		return err
	}
	return r.eng.Drain()
}

// Teardown releases every outstanding shared object through the normal
// idempotent path, clears the reference cache, and stops the engine.
// Idempotent; operations after the first call fail with torn_down, except
// DeleteSharedObject, which keeps absorbing releases of force-released
// ids silently.
func (r *Registry) Teardown() error {
	if !r.tornDown.CompareAndSwap(false, true) {
		return nil
	}
	outstanding := 0
	_ = r.eng.Invoke(func() {
		outstanding = r.shared.Len()
		r.shared.ReleaseAll()
		r.cache.Clear()
	})
	if outstanding > 0 {
		r.log.Warn("teardown force-released shared objects", zap.Int("count", outstanding))
	}
	err := r.eng.Close()
	close(r.down)
	r.log.Debug("bridge torn down")
	return err
}
