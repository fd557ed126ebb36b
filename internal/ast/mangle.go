package ast

import "strconv"

// Mangle constructs the external linkage name for a user-defined
// operator. It is a pure function and must be used identically at every
// call site and at the defining prototype, so that a call built against
// one assumed priority fails to link against a definition built with a
// different one rather than silently calling the wrong overload.
//
// arity must be 1 (unary, priority is ignored and treated as 0) or 2
// (binary).
func Mangle(arity int, symbol string, priority int) string {
	if arity == 1 {
		return "_unary_" + symbol + "_with_prio_0"
	}
	return "_binary_" + symbol + "_with_prio_" + strconv.Itoa(priority)
}
