package engine

import (
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/errors"
)

// Task is a unit of deferred work run on the execution context during a
// drain cycle.
type Task func(vm *goja.Runtime)

// Engine holds one embedded goja instance and the dispatcher goroutine
// that owns it. Engines are independent; multiple instances may coexist
// in one process.
type Engine struct {
	vm   *goja.Runtime
	disp *Dispatcher
	req  *require.Registry
	log  *zap.Logger

	taskMu sync.Mutex
	tasks  []Task

	drainMu sync.Mutex
	closed  atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates the VM, starts the dispatcher, and enables the require
// registry and console (console output goes to the engine's logger).
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		vm:  goja.New(),
		log: Logger(),
		req: require.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.req.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(zapPrinter{e.log}))

	e.disp = newDispatcher()
	if err := e.disp.Invoke(func() {
		e.req.Enable(e.vm)
		console.Enable(e.vm)
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// Invoke runs fn on the execution context and blocks until it returns.
func (e *Engine) Invoke(fn func()) error {
	if e.closed.Load() {
		return errors.TornDown("engine")
	}
	return e.disp.Invoke(fn)
}

// Post enqueues fn on the execution context without waiting. Safe to call
// from on-context code. Reports false after Close.
func (e *Engine) Post(fn func()) bool {
	return e.disp.Post(fn)
}

// RegisterNativeModule makes a native module available to script code via
// require(name). The loader runs on the execution context on first require.
func (e *Engine) RegisterNativeModule(name string, loader require.ModuleLoader) {
	e.req.RegisterNativeModule(name, loader)
}

// Evaluate runs source on the execution context and returns a handle to
// the completion value. An in-engine exception is surfaced as a
// script_exception error carrying the message and stack; it is never
// swallowed or retried.
func (e *Engine) Evaluate(source string) (*Value, error) {
	return e.EvaluateNamed("<eval>", source)
}

// EvaluateNamed is Evaluate with a script name for stack traces.
func (e *Engine) EvaluateNamed(name, source string) (*Value, error) {
	var (
		out     *Value
		evalErr error
	)
	if err := e.Invoke(func() {
		v, err := e.vm.RunScript(name, source)
		if err != nil {
			evalErr = scriptError(err)
			return
		}
		out = e.newValue(v)
	}); err != nil {
		return nil, err
	}
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}

// Global returns a handle to the engine's global object.
func (e *Engine) Global() (*Object, error) {
	var out *Object
	if err := e.Invoke(func() {
		out = e.newObject(e.vm.GlobalObject())
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// NewObject creates an empty script object and returns its handle.
func (e *Engine) NewObject() (*Object, error) {
	var out *Object
	if err := e.Invoke(func() {
		out = e.newObject(e.vm.NewObject())
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// QueueTask adds a macrotask for the next drain cycle. Tasks run on the
// execution context in queue order.
func (e *Engine) QueueTask(t Task) {
	if t == nil {
		return
	}
	e.taskMu.Lock()
	e.tasks = append(e.tasks, t)
	e.taskMu.Unlock()
}

// Drain runs the pending macrotask queue to completion, including tasks
// queued by tasks. It blocks the caller for exactly one full drain and is
// single-flight per engine: concurrent callers serialize. Microtasks are
// flushed by goja at the end of each top-level call.
func (e *Engine) Drain() error {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	for {
		e.taskMu.Lock()
		batch := e.tasks
		e.tasks = nil
		e.taskMu.Unlock()
		if len(batch) == 0 {
			return nil
		}

		if err := e.Invoke(func() {
			for _, t := range batch {
				t(e.vm)
			}
		}); err != nil {
			return err
		}
	}
}

// PendingTasks reports the current macrotask queue length.
func (e *Engine) PendingTasks() int {
	e.taskMu.Lock()
	defer e.taskMu.Unlock()
	return len(e.tasks)
}

// Close stops the dispatcher after the queued jobs finish. Idempotent;
// operations after Close fail with torn_down.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.taskMu.Lock()
	e.tasks = nil
	e.taskMu.Unlock()
	e.disp.Close()
	e.log.Debug("engine closed")
	return nil
}

// scriptError maps a goja evaluation error to a script_exception bridge
// error. Exception.String carries the message plus the script stack.
func scriptError(err error) error {
	var ex *goja.Exception
	if stderrors.As(err, &ex) {
		msg := err.Error()
		if v := ex.Value(); v != nil {
			msg = v.String()
		}
		return errors.Script(msg, ex.String(), err)
	}
	return errors.Script(err.Error(), "", err)
}

// zapPrinter routes script console output to zap.
type zapPrinter struct {
	log *zap.Logger
}

func (p zapPrinter) Log(s string)   { p.log.Info(s, zap.String("source", "console")) }
func (p zapPrinter) Warn(s string)  { p.log.Warn(s, zap.String("source", "console")) }
func (p zapPrinter) Error(s string) { p.log.Error(s, zap.String("source", "console")) }
