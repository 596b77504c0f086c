package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in bridge processing the error occurred
type Phase string

const (
	PhaseInstall  Phase = "install"  // runtime installation
	PhaseDispatch Phase = "dispatch" // marshaling onto the execution context
	PhaseEval     Phase = "eval"     // script evaluation
	PhaseLookup   Phase = "lookup"   // registry lookups
	PhaseRegister Phase = "register" // module/class/shared object registration
	PhaseRelease  Phase = "release"  // shared object release
	PhaseTeardown Phase = "teardown" // bridge teardown
)

// Kind categorizes the error
type Kind string

const (
	KindModuleNotFound      Kind = "module_not_found"
	KindClassNotFound       Kind = "class_not_found"
	KindUnknownSharedObject Kind = "unknown_shared_object"
	KindScriptException     Kind = "script_exception"
	KindTornDown            Kind = "torn_down"
	KindNotCached           Kind = "not_cached"
	KindInvalidInput        Kind = "invalid_input"
	KindRegistration        Kind = "registration"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string // module name, class name, or rendered object id
	Detail string
	Stack  string // script stack trace, script_exception only
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(": ")
		b.WriteString(e.Name)
	}

	if e.Detail != "" {
		if e.Name != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Stack != "" {
		b.WriteByte('\n')
		b.WriteString(e.Stack)
	}

	if e.Cause != nil && e.Kind != KindScriptException {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kinds must match; the
// phase is compared only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is a bridge error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Convenience constructors for the bridge's error kinds

// ModuleNotFound creates a missing module lookup error
func ModuleNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindModuleNotFound,
		Name:   name,
		Detail: "module not registered",
	}
}

// ClassNotFound creates a missing class binding error
func ClassNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindClassNotFound,
		Name:   name,
		Detail: "class never registered",
	}
}

// UnknownSharedObject creates an error for an id that was never issued
func UnknownSharedObject(id uint64) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindUnknownSharedObject,
		Name:   fmt.Sprintf("object %d", id),
		Detail: "id never issued by this registry",
	}
}

// NotCached creates a reference cache miss error. Consumers must create a
// fresh wrapper and re-cache it rather than assuming permanence.
func NotCached() *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindNotCached,
		Detail: "no live wrapper for native identity",
	}
}

// Script creates an engine-raised exception error carrying the script
// message and stack verbatim
func Script(message, stack string, cause error) *Error {
	return &Error{
		Phase:  PhaseEval,
		Kind:   KindScriptException,
		Detail: message,
		Stack:  stack,
		Cause:  cause,
	}
}

// TornDown creates an error for an operation invoked after teardown
func TornDown(op string) *Error {
	return &Error{
		Phase:  PhaseTeardown,
		Kind:   KindTornDown,
		Name:   op,
		Detail: "bridge already torn down",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration wraps a failure while registering a module, class, or
// shared object
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Name:   name,
		Cause:  cause,
	}
}
