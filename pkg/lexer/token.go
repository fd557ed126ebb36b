package lexer

import (
	"fmt"

	"github.com/ksc-lang/ksc/internal/ast"
)

// Kind classifies a lexical token. The set is closed: a streaming lexer
// for this language never needs a kind beyond these.
type Kind int

const (
	Def Kind = iota
	Extern
	Identifier
	Number
	LeftParen
	RightParen
	Colon
	If
	Then
	Else
	For
	In
	Binary
	Unary
	Var
	BuiltinOp
	UserBinaryOp
	UserUnaryOp
	Eof
	// Comma separates bindings in a var-expression. The token taxonomy
	// this lexer distills from omits it, but the var-expression grammar
	// requires a separator between bindings (and the canonical
	// Kaleidoscope var/in construct this language descends from uses
	// one) — see DESIGN.md for this reconciliation.
	Comma
	// Undefined is the sentinel the reserved-character table returns for
	// a byte with no built-in meaning. It never reaches the parser
	// except transiently while the lexer is still deciding whether a
	// byte starts a user-operator candidate.
	Undefined
)

// kindNames provides human-readable names for each Kind, used for
// debugging and error messages.
var kindNames = map[Kind]string{
	Def:          "DEF",
	Extern:       "EXTERN",
	Identifier:   "IDENTIFIER",
	Number:       "NUMBER",
	LeftParen:    "LPAREN",
	RightParen:   "RPAREN",
	Colon:        "COLON",
	If:           "IF",
	Then:         "THEN",
	Else:         "ELSE",
	For:          "FOR",
	In:           "IN",
	Binary:       "BINARY",
	Unary:        "UNARY",
	Var:          "VAR",
	BuiltinOp:    "BUILTIN_OP",
	UserBinaryOp: "USER_BINARY_OP",
	UserUnaryOp:  "USER_UNARY_OP",
	Eof:          "EOF",
	Comma:        "COMMA",
	Undefined:    "UNDEFINED",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a classified lexeme together with the location it was read
// from. Equality against a Kind constant should compare Kind alone;
// Lexeme distinguishes tokens sharing a Kind (e.g. two BuiltinOp tokens
// for '+' and '-', or two UserBinaryOp tokens for distinct symbols).
type Token struct {
	Kind   Kind
	Lexeme string
	Loc    ast.SourceLoc
}

// keywords maps reserved words to their keyword Kind. Anything else
// lexes as Identifier. There is no Unicode identifier support (Non-goal);
// identifiers are ASCII letters, digits, and underscore, not starting
// with a digit.
var keywords = map[string]Kind{
	"def":    Def,
	"extern": Extern,
	"if":     If,
	"then":   Then,
	"else":   Else,
	"for":    For,
	"in":     In,
	"binary": Binary,
	"unary":  Unary,
	"var":    Var,
}

// LookupIdentifier returns the keyword Kind for ident, or Identifier if
// ident is not reserved.
func LookupIdentifier(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Identifier
}

// reservedTable is indexed by every possible byte value, including those
// above 127 — the source-text format contract requires the table to
// cover all 256 values and never assume the signedness of a raw byte.
// Most entries are Undefined; only parens, colon, comma, and the five
// built-in operator characters carry a real kind.
var reservedTable [256]Kind

func init() {
	for i := range reservedTable {
		reservedTable[i] = Undefined
	}
	reservedTable['('] = LeftParen
	reservedTable[')'] = RightParen
	reservedTable[':'] = Colon
	reservedTable[','] = Comma
	reservedTable['+'] = BuiltinOp
	reservedTable['-'] = BuiltinOp
	reservedTable['*'] = BuiltinOp
	reservedTable['<'] = BuiltinOp
	reservedTable['='] = BuiltinOp
}

// isReservedChar reports whether b is one of the protected single
// characters a user-operator symbol may never equal in full (operator
// symbol validation, §4.2). Comma is deliberately excluded: it is a
// structural separator, not a candidate operator character, so
// redefining it is not a meaningful concept the way redefining '+'
// would be.
func isReservedChar(b byte) bool {
	switch reservedTable[b] {
	case Undefined, Comma:
		return false
	default:
		return true
	}
}

// IsReservedChar is the exported form of isReservedChar, used by
// pkg/parser to validate a single-character operator symbol against the
// protected built-in characters (§4.2 operator symbol validation).
func IsReservedChar(b byte) bool {
	return isReservedChar(b)
}

// isLetter determines if a byte can start or continue an identifier.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

// isDigit determines if a byte is a decimal digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

// isOperatorClass reports whether b may participate in a user-operator
// candidate lexeme: anything that is not a letter, digit, '(', or
// whitespace.
func isOperatorClass(b byte) bool {
	return !isLetter(b) && !isDigit(b) && b != '(' && !isSpace(b)
}
