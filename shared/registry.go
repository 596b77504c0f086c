package shared

import (
	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
)

// State is a shared object's lifecycle state.
type State uint8

const (
	// StateRegistered means both halves are tracked by the registry.
	StateRegistered State = iota + 1
	// StateReleased is terminal; lookups on a released id fail rather
	// than returning stale data.
	StateReleased
)

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event describes a shared object lifecycle transition.
type Event struct {
	Key  any
	ID   uint64
	Type EventType
}

// Observer receives lifecycle events. Observers run on the execution
// context, synchronously with the transition.
type Observer interface {
	OnSharedObjectEvent(Event)
}

type entry struct {
	key    any
	script *engine.Object
	state  State
}

// Registry assigns stable ids to native/script object pairings. It holds
// the association, not ownership: destroying the native half remains the
// native owner's responsibility. Mutation happens while holding the
// engine's execution context; see the package comment.
type Registry struct {
	entries   map[uint64]*entry
	observers []Observer
	nextID    uint64
}

// NewRegistry creates an empty shared object registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]*entry)}
}

// Register tracks a pairing and returns its id. Ids start at 1, grow
// monotonically, and are never reused after release. key is the native
// identity used for reference cache invalidation; the script handle is
// retained until release.
func (r *Registry) Register(key any, script *engine.Object) uint64 {
	r.nextID++
	id := r.nextID
	if script != nil {
		script.Retain()
	}
	r.entries[id] = &entry{key: key, script: script, state: StateRegistered}
	r.notify(Event{Type: EventRegistered, ID: id, Key: key})
	return id
}

// Release transitions id to Released, drops the registry's references to
// both halves, and notifies observers. Releasing an already-released id
// is a no-op; releasing an id never issued fails with
// unknown_shared_object.
func (r *Registry) Release(id uint64) error {
	e, ok := r.entries[id]
	if !ok {
		return errors.UnknownSharedObject(id)
	}
	if e.state == StateReleased {
		return nil
	}
	e.state = StateReleased
	key := e.key
	if e.script != nil {
		e.script.Release()
		e.script = nil
	}
	e.key = nil
	r.notify(Event{Type: EventReleased, ID: id, Key: key})
	return nil
}

// ReleaseAll force-releases every registered entry through the normal
// idempotent path. Used at teardown.
func (r *Registry) ReleaseAll() {
	for id, e := range r.entries {
		if e.state == StateRegistered {
			_ = r.Release(id)
		}
	}
}

// State returns the lifecycle state for id, or unknown_shared_object if
// the id was never issued.
func (r *Registry) State(id uint64) (State, error) {
	e, ok := r.entries[id]
	if !ok {
		return 0, errors.UnknownSharedObject(id)
	}
	return e.state, nil
}

// Script returns the script half for a registered id. Lookups on a
// released id fail rather than returning stale data.
func (r *Registry) Script(id uint64) (*engine.Object, error) {
	e, ok := r.entries[id]
	if !ok || e.state != StateRegistered {
		return nil, errors.UnknownSharedObject(id)
	}
	return e.script, nil
}

// Len reports the number of entries still in the Registered state.
func (r *Registry) Len() int {
	n := 0
	for _, e := range r.entries {
		if e.state == StateRegistered {
			n++
		}
	}
	return n
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	for _, o := range r.observers {
		o.OnSharedObjectEvent(e)
	}
}
