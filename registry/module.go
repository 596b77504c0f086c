package registry

import (
	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
)

// CoreModuleName is the name of the distinguished always-present module
// supplying bridge primitives to script code.
const CoreModuleName = "bridge"

// Module pairs a registered name with its exported script object. Created
// once at registration and immutable thereafter.
type Module struct {
	name    string
	exports *engine.Object
}

// Name returns the module's registered name.
func (m *Module) Name() string { return m.name }

// Exports returns the module's export object handle.
func (m *Module) Exports() *engine.Object { return m.exports }

// Modules maps module names to export objects in insertion order.
type Modules struct {
	byName map[string]*Module
	order  []string
	core   *Module
}

// NewModules creates an empty module registry.
func NewModules() *Modules {
	return &Modules{byName: make(map[string]*Module)}
}

// Register binds name to exports. Re-registering an existing name
// replaces the export object (last-write-wins) and keeps the original
// position in enumeration order.
func (r *Modules) Register(name string, exports *engine.Object) *Module {
	m := &Module{name: name, exports: exports}
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = m
	return m
}

// Get returns the module registered under name, or module_not_found.
func (r *Modules) Get(name string) (*Module, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, errors.ModuleNotFound(name)
	}
	return m, nil
}

// Has reports whether name is registered. Pure; no side effects.
func (r *Modules) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns the registered module names in insertion order. The
// returned slice is a copy.
func (r *Modules) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered modules.
func (r *Modules) Len() int { return len(r.byName) }

// SetCore installs m as the distinguished core module.
func (r *Modules) SetCore(m *Module) { r.core = m }

// Core returns the core module. It fails with module_not_found before the
// runtime is installed; after installation it is always present.
func (r *Modules) Core() (*Module, error) {
	if r.core == nil {
		return nil, errors.ModuleNotFound(CoreModuleName)
	}
	return r.core, nil
}
