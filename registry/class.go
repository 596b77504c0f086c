package registry

import (
	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/errors"
)

// ClassToken identifies a native class by pointer identity. Two tokens
// with the same display name are still distinct classes.
type ClassToken struct {
	name string
}

// NewClassToken creates a fresh identity token for a native class.
func NewClassToken(name string) *ClassToken {
	return &ClassToken{name: name}
}

// Name returns the token's display name, used in error messages.
func (t *ClassToken) Name() string { return t.name }

// Classes maps native class tokens to exported script constructors so
// native-constructed instances surface as recognizable script types.
// Bindings are created on first export request and replaced on
// re-registration.
type Classes struct {
	byToken map[*ClassToken]*engine.Object
}

// NewClasses creates an empty class registry.
func NewClasses() *Classes {
	return &Classes{byToken: make(map[*ClassToken]*engine.Object)}
}

// Register stores the constructor binding for token, replacing any prior
// binding.
func (r *Classes) Register(token *ClassToken, ctor *engine.Object) {
	r.byToken[token] = ctor
}

// Get returns the script constructor bound to token, or class_not_found
// if it was never registered.
func (r *Classes) Get(token *ClassToken) (*engine.Object, error) {
	ctor, ok := r.byToken[token]
	if !ok {
		name := "<nil>"
		if token != nil {
			name = token.Name()
		}
		return nil, errors.ClassNotFound(name)
	}
	return ctor, nil
}

// Len reports the number of registered class bindings.
func (r *Classes) Len() int { return len(r.byToken) }
