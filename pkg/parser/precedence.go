package parser

import (
	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

// builtinOpFromLexeme maps a BuiltinOp token's raw lexeme to its
// BinOpKind. Assign shares the single-character table with the
// arithmetic operators; the distinction is purely the lexeme.
func builtinOpFromLexeme(lexeme string) ast.BinOpKind {
	switch lexeme {
	case "+":
		return ast.OpAdd
	case "-":
		return ast.OpSub
	case "*":
		return ast.OpMul
	case "<":
		return ast.OpLessThan
	case "=":
		return ast.OpAssign
	default:
		return ast.OpUnknown
	}
}

// priority returns tok's binary-operator precedence, or -1 if tok is not
// an infix operator at all. Built-ins consult the fixed table in
// internal/ast; user-defined operators consult this Parser's own
// userOpPriority map, populated as def/extern binary declarations are
// parsed.
func (p *Parser) priority(tok lexer.Token) int {
	switch tok.Kind {
	case lexer.BuiltinOp:
		return ast.BuiltinPrecedence(builtinOpFromLexeme(tok.Lexeme))
	case lexer.UserBinaryOp:
		if pr, ok := p.userOpPriority[tok.Lexeme]; ok {
			return pr
		}
		return -1
	default:
		return -1
	}
}

// isBinOpToken reports whether tok can start the rest of a binop_rhs
// production: either a built-in operator or a previously declared
// user-defined binary operator.
func isBinOpToken(tok lexer.Token) bool {
	return tok.Kind == lexer.BuiltinOp || tok.Kind == lexer.UserBinaryOp
}
