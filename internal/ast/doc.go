// Package ast defines the abstract syntax tree produced by pkg/parser.
//
// The tree is a closed sum type: every node kind is a concrete struct
// implementing Node, and Expr narrows that to the subset usable as an
// operand (Number, Variable, BinaryOp, UnaryOp, Call, If, For, Var).
// Prototype and Function sit above expressions and never appear as an
// operand themselves.
//
// Every node carries a process-wide unique id (assigned monotonically by
// NextID, see I1) and a SourceLoc copied from the token that introduced
// it. Nodes are built once during parsing and never mutated afterward;
// the only supported operations past construction are accessor reads and
// visitor dispatch (see pkg/codegen), never virtual calls keyed on a
// class hierarchy.
//
// Call nodes hold a *Prototype directly rather than a callee name, so a
// downstream visitor never has to re-resolve a string; the same
// *Prototype value is reachable both from the global forest (as a
// Function's Proto, or a bare extern Prototype) and from every Call that
// targets it. Go's garbage collector retires the node once the last such
// reference drops, which is the natural analogue of the reference-counted
// or arena-indexed handle called for where a language lacks a collector.
package ast
