// Package errors provides structured error types for the bridge.
//
// Every error carries a Phase (where in processing it occurred) and a Kind
// (what went wrong), so callers can match on either without string parsing:
//
//	if errors.IsKind(err, errors.KindModuleNotFound) {
//	    // register the module and retry
//	}
//
// Script exceptions raised inside the engine are surfaced verbatim with
// their message and stack trace; the bridge never retries evaluation.
// Redundant shared-object release signals are deliberately not errors:
// release is idempotent and the second signal is absorbed silently.
package errors
