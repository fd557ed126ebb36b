// Package codegen defines the Visitor contract that every back end for
// this language's AST implements, and the Generate driver that dispatches
// each top-level node of a parsed forest to one. Walk and Generate impose
// no post-order traversal of expression trees: every Visit method walks
// its own children, so the Visitor decides the order.
//
// The split mirrors the grammar/codegen separation the teacher's
// evaluator makes between pkg/parser (shape) and pkg/eval (meaning): this
// package owns only the walk order and the method-per-variant contract,
// never a concrete evaluation strategy. internal/refinterp is the one
// concrete Visitor this module ships; an LLVM-emitting Visitor would
// live alongside it without touching this package.
package codegen
