package interop

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/registry"
	"github.com/wippyai/script-bridge/shared"
)

// installCoreModule builds the always-present core module and registers
// it under registry.CoreModuleName. Script code reaches it with
// require("bridge"). The bound functions run on the execution context, so
// they touch the registries directly and use Post (never Invoke) for
// anything deferred.
func (r *Registry) installCoreModule() error {
	exports, err := r.eng.NewObject()
	if err != nil {
		return err
	}

	// release lets script code drop its half of a shared object. The
	// signal goes through the coordinator so native and script disposal
	// converge on the same idempotent path.
	if err := exports.SetMethod("release", func(id int64) {
		r.coord.ObjectDisposed(uint64(id), shared.SourceScript)
	}); err != nil {
		return err
	}

	if err := exports.SetMethod("isRegistered", func(id int64) bool {
		st, err := r.shared.State(uint64(id))
		return err == nil && st == shared.StateRegistered
	}); err != nil {
		return err
	}

	if err := exports.SetMethod("modules", func() []string {
		return r.modules.Names()
	}); err != nil {
		return err
	}

	// queueTask defers a script callback to the next drain cycle.
	if err := exports.SetMethod("queueTask", func(fn goja.Value) {
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return
		}
		r.eng.QueueTask(func(vm *goja.Runtime) {
			if _, err := callable(goja.Undefined()); err != nil {
				r.log.Warn("queued script task failed", zap.Error(err))
			}
		})
	}); err != nil {
		return err
	}

	if err := exports.SetMethod("log", func(msg string) {
		r.log.Info(msg, zap.String("source", "script"))
	}); err != nil {
		return err
	}

	if err := r.eng.Invoke(func() {
		m := r.modules.Register(registry.CoreModuleName, exports)
		r.modules.SetCore(m)
	}); err != nil {
		return err
	}
	r.installRequireLoader(registry.CoreModuleName)
	return nil
}

// installRequireLoader makes a registered module resolvable from script
// via require(name). The loader runs on the execution context at require
// time and reads the module registry then, so it always serves the
// current registration.
func (r *Registry) installRequireLoader(name string) {
	r.eng.RegisterNativeModule(name, func(vm *goja.Runtime, module *goja.Object) {
		m, err := r.modules.Get(name)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		if setErr := module.Set("exports", m.Exports().Unwrap()); setErr != nil {
			panic(vm.NewGoError(setErr))
		}
	})
}
