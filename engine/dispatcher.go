package engine

import (
	"sync"

	"github.com/wippyai/script-bridge/errors"
)

// Dispatcher serializes calls from arbitrary goroutines onto one loop
// goroutine, the engine's logical execution context. The queue is
// unbounded so that Post never blocks, which makes it safe to call from
// code already running on the loop (script callbacks, release handlers).
type Dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func newDispatcher() *Dispatcher {
	d := &Dispatcher{done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 && d.closed {
			d.mu.Unlock()
			close(d.done)
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		fn()
	}
}

// Post enqueues fn for asynchronous execution on the loop. It reports
// false if the dispatcher has shut down. Jobs already queued at shutdown
// still run before the loop exits.
func (d *Dispatcher) Post(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
	return true
}

// Invoke runs fn on the loop and blocks until it returns. Calls issued by
// one goroutine run in the order issued. Must not be called from the loop
// goroutine itself; on-loop code uses Post or direct calls instead.
func (d *Dispatcher) Invoke(fn func()) error {
	ran := make(chan struct{})
	if !d.Post(func() {
		defer close(ran)
		fn()
	}) {
		return errors.TornDown("dispatch")
	}
	<-ran
	return nil
}

// Close stops accepting new jobs, lets the queued ones finish, and waits
// for the loop goroutine to exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}
