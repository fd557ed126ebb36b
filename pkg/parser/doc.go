// Package parser implements a recursive-descent, Pratt-precedence
// parser that turns a pkg/lexer token stream into the AST forest
// defined by internal/ast.
//
// Architecture:
//
// The parser is a straightforward recursive-descent translation of the
// language's EBNF grammar, with one Pratt loop (parseBinOpRHS) handling
// binary-operator precedence so that built-in operators and dynamically
// declared user operators are resolved by the same algorithm. A
// two-method split per concern mirrors how the grammar itself is
// organized:
//
//   - parser.go: the Parser type, Parse's top-level dispatch loop, and
//     the expect/expectBuiltinOp/resync helpers every production uses.
//   - precedence.go: mapping a token to its binary precedence, whether
//     built-in or user-defined.
//   - prototype.go: the three prototype forms (plain, binary, unary)
//     and the fatal duplicate/malformed-operator checks that go with
//     declaring one.
//   - expressions.go: the Pratt loop itself, and the primary-expression
//     productions (number, identifier/call, parenthesized).
//   - control_flow.go: if, for, and var, including the shared binding
//     clause var uses.
//
// Error Handling:
//
// Every diagnostic goes through the shared pkg/errsink.Sink rather than
// an error slice local to this package: a duplicate function or operator
// name, a malformed operator symbol, an out-of-range priority, or an
// assignment whose target is not a variable is fatal and aborts Parse
// via Sink.Fatal's panic, recovered at the top of Parse into a returned
// error. An unexpected token or a call to an undefined function is
// non-fatal: the current top-level item is abandoned, the parser
// resynchronizes to the next def/extern boundary, and parsing continues
// so a single bad definition does not hide every diagnostic after it.
//
// User-Defined Operators:
//
// A def/extern binary or unary declaration registers its symbol's
// priority (for binary) in a Parser-local table before parsing any
// expression that might use it — the same per-instance scoping the
// lexer's OperatorTable uses, so operator declarations never leak
// between independent Parse calls.
package parser
