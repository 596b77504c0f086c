package scriptbridge

// Dispatcher marshals native-thread calls onto the engine's single logical
// execution context. The engine package provides the implementation; the
// interface lives here so that subpackages can depend on the contract
// without depending on the engine.
type Dispatcher interface {
	// Invoke runs fn on the execution context and blocks until it returns.
	// Calls issued by one goroutine are applied in the order issued.
	// Must not be called from code already running on the context.
	Invoke(fn func()) error

	// Post enqueues fn for asynchronous execution on the context. It never
	// blocks and is safe to call from on-context code. It reports false if
	// the dispatcher has shut down.
	Post(fn func()) bool
}
