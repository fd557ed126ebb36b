package parser

import (
	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

// minOperatorPriority and maxOperatorPriority bound the priority a
// def/extern binary declaration may assign to its new operator (I4).
const (
	minOperatorPriority = 2
	maxOperatorPriority = 100
)

// parsePrototype parses the three forms a prototype can take:
//
//	identifier '(' identifier* ')'
//	'binary' SYMBOL number? '(' identifier identifier ')'
//	'unary' SYMBOL '(' identifier ')'
//
// It registers the resulting Prototype in p.prototypes (fatal on a
// duplicate name, I6) and, for a binary operator form, in
// p.userOpPriority (fatal on a duplicate symbol, I5). Returns nil, having already
// reported a non-fatal diagnostic, on a malformed prototype that does
// not itself require aborting the whole parse.
func (p *Parser) parsePrototype() *ast.Prototype {
	tok := p.lx.Peek()
	switch tok.Kind {
	case lexer.Identifier:
		return p.parsePlainPrototype()
	case lexer.Binary:
		return p.parseOperatorPrototype(2)
	case lexer.Unary:
		return p.parseOperatorPrototype(1)
	default:
		p.sink.NonFatal(errsink.ParseUnexpectedToken, tok.Loc,
			"expected a function name or binary/unary keyword, got %s %q", tok.Kind, tok.Lexeme)
		return nil
	}
}

func (p *Parser) parsePlainPrototype() *ast.Prototype {
	nameTok := p.lx.Peek()
	loc := nameTok.Loc
	name := nameTok.Lexeme
	p.lx.Advance()

	params, ok := p.parseParamList()
	if !ok {
		return nil
	}

	proto := ast.NewPrototype(loc, name, params, false, 0, 0)
	if !p.registerPrototype(proto) {
		return nil
	}
	return proto
}

// parseOperatorPrototype parses the shared tail of the binary/unary
// prototype forms: 'binary'/'unary' has already been identified by
// Peek but not yet consumed. arity is 2 for binary, 1 for unary.
func (p *Parser) parseOperatorPrototype(arity int) *ast.Prototype {
	kwLoc := p.lx.Peek().Loc
	p.lx.Advance() // consume 'binary'/'unary'

	symTok := p.lx.Peek()
	if symTok.Kind != lexer.UserBinaryOp && symTok.Kind != lexer.UserUnaryOp {
		// The lexer stops an operator symbol at the first letter or digit,
		// so an alphanumeric symbol arrives here as an Identifier or
		// Number token; validation rejects it fatally.
		if symTok.Kind == lexer.Identifier || symTok.Kind == lexer.Number {
			p.validateOperatorSymbol(symTok.Lexeme, symTok.Loc)
		}
		p.sink.NonFatal(errsink.ParseUnexpectedToken, symTok.Loc,
			"expected an operator symbol, got %s %q", symTok.Kind, symTok.Lexeme)
		return nil
	}
	symbol := symTok.Lexeme
	p.lx.Advance()

	if !p.validateOperatorSymbol(symbol, symTok.Loc) {
		return nil
	}

	// I4: a unary operator's priority is always 0; only binary operators
	// carry a caller-chosen priority, defaulting to the minimum when the
	// declaration omits it.
	priority := 0
	if arity == 2 {
		priority = minOperatorPriority
		if numTok := p.lx.Peek(); numTok.Kind == lexer.Number {
			p.lx.Advance()
			priority = parsePriorityLiteral(numTok.Lexeme)
			if priority < minOperatorPriority || priority > maxOperatorPriority {
				p.sink.Fatal(errsink.ParseBadOperatorPriority, numTok.Loc,
					"operator priority %d out of range [%d, %d]", priority, minOperatorPriority, maxOperatorPriority)
			}
		}
	}

	params, ok := p.parseParamList()
	if !ok {
		return nil
	}
	if len(params) != arity {
		p.sink.NonFatal(errsink.ParseUnexpectedToken, kwLoc,
			"operator %q declared with arity %d needs exactly %d parameter(s), got %d", symbol, arity, arity, len(params))
		return nil
	}

	name := ast.Mangle(arity, symbol, priority)
	proto := ast.NewPrototype(kwLoc, name, params, true, arity, priority)
	if !p.registerPrototype(proto) {
		return nil
	}
	if arity == 2 {
		p.registerOperatorPriority(symbol, priority, kwLoc)
	}
	return proto
}

func (p *Parser) parseParamList() ([]string, bool) {
	if _, ok := p.expect(lexer.LeftParen); !ok {
		return nil, false
	}
	var params []string
	for {
		tok := p.lx.Peek()
		if tok.Kind == lexer.RightParen {
			p.lx.Advance()
			return params, true
		}
		if tok.Kind != lexer.Identifier {
			p.sink.NonFatal(errsink.ParseUnexpectedToken, tok.Loc,
				"expected a parameter name or ')', got %s %q", tok.Kind, tok.Lexeme)
			return nil, false
		}
		params = append(params, tok.Lexeme)
		p.lx.Advance()
	}
}

// validateOperatorSymbol enforces the operator symbol validation rule:
// length 1-2, no alphanumerics, and a single-character symbol must not
// collide with a reserved built-in character (fatal, matches the
// "protected char redefinition" scenario).
func (p *Parser) validateOperatorSymbol(symbol string, loc ast.SourceLoc) bool {
	if len(symbol) < 1 || len(symbol) > 2 {
		p.sink.Fatal(errsink.ParseBadOperatorSymbol, loc,
			"operator symbol %q must be 1 or 2 characters", symbol)
	}
	for i := 0; i < len(symbol); i++ {
		c := symbol[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.sink.Fatal(errsink.ParseBadOperatorSymbol, loc,
				"operator symbol %q must not contain alphanumeric characters", symbol)
		}
	}
	if len(symbol) == 1 && lexer.IsReservedChar(symbol[0]) {
		p.sink.Fatal(errsink.ParseBadOperatorSymbol, loc,
			"operator symbol %q redefines a protected built-in character", symbol)
	}
	return true
}

// registerPrototype records proto under its name, aborting fatally on a
// duplicate (I6).
func (p *Parser) registerPrototype(proto *ast.Prototype) bool {
	if existing, dup := p.prototypes[proto.Name]; dup {
		p.sink.Fatal(errsink.ParseDuplicateFunction, proto.Loc(),
			"%q already declared at %s", proto.Name, existing.Loc())
	}
	p.prototypes[proto.Name] = proto
	return true
}

// registerOperatorPriority records symbol's priority for later binop_rhs
// lookups, aborting fatally on a duplicate symbol within this parser
// instance (I5). Redefinition across separate compilation units (two
// distinct Parsers) is not detectable here by design; see DESIGN.md.
func (p *Parser) registerOperatorPriority(symbol string, priority int, loc ast.SourceLoc) {
	if _, dup := p.userOpPriority[symbol]; dup {
		p.sink.Fatal(errsink.ParseDuplicateOperator, loc, "operator %q already declared", symbol)
	}
	p.userOpPriority[symbol] = priority
}

// parsePriorityLiteral converts a Number token's lexeme (e.g. "40" or
// "40.0") to an int priority, truncating any fractional part: operator
// priorities are always declared as whole numbers in practice, and the
// lexer does not distinguish integer from float literals.
func parsePriorityLiteral(lexeme string) int {
	n := 0
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c == '.' {
			break
		}
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
