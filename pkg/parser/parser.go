package parser

import (
	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

// Parser consumes tokens from a Lexer and builds the AST forest for one
// compilation unit. Both the prototype table and the user-operator
// priority table belong to the Parser instance, not to the process: two
// Parsers never see each other's definitions, so an operator installed
// while parsing one file cannot leak into another (I5, I6).
type Parser struct {
	lx   *lexer.Lexer
	sink *errsink.Sink

	prototypes     map[string]*ast.Prototype
	userOpPriority map[string]int

	forest []ast.Node
}

// New returns a Parser reading tokens from lx and reporting diagnostics
// to sink.
func New(lx *lexer.Lexer, sink *errsink.Sink) *Parser {
	return &Parser{
		lx:             lx,
		sink:           sink,
		prototypes:     make(map[string]*ast.Prototype),
		userOpPriority: make(map[string]int),
	}
}

// Parse consumes the entire token stream and returns the top-level
// forest: one ast.Node per def, extern, or bare expression, in source
// order. A fatal diagnostic (duplicate operator, duplicate function,
// malformed operator symbol or priority, an assignment target that is
// not a variable) aborts the parse and is returned as *errsink.FatalError;
// everything parsed before that point is discarded, matching the
// "process aborts" semantics of a fatal report.
//
// Non-fatal diagnostics (unexpected token, undefined callee) do not stop
// Parse: the offending top-level item is abandoned and the parser
// resynchronizes by skipping to the next def/extern/Eof boundary.
func (p *Parser) Parse() (forest []ast.Node, err error) {
	defer errsink.Recover(&err)

	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case lexer.Eof:
			return p.forest, nil
		case lexer.Def:
			p.handleDefinition()
		case lexer.Extern:
			p.handleExtern()
		default:
			p.handleTopLevelExpression()
		}
	}
}

// expect consumes the current token if it has kind want, reporting a
// non-fatal ParseUnexpectedToken diagnostic and returning ok=false
// otherwise. The caller is responsible for resynchronizing.
func (p *Parser) expect(want lexer.Kind) (lexer.Token, bool) {
	tok := p.lx.Peek()
	if tok.Kind != want {
		p.sink.NonFatal(errsink.ParseUnexpectedToken, tok.Loc,
			"expected %s, got %s %q", want, tok.Kind, tok.Lexeme)
		return tok, false
	}
	p.lx.Advance()
	return tok, true
}

// expectBuiltinOp consumes the current token if it is a BuiltinOp token
// carrying exactly lexeme (e.g. "=" to close a binding), reporting a
// non-fatal diagnostic otherwise.
func (p *Parser) expectBuiltinOp(lexeme string) (lexer.Token, bool) {
	tok := p.lx.Peek()
	if tok.Kind != lexer.BuiltinOp || tok.Lexeme != lexeme {
		p.sink.NonFatal(errsink.ParseUnexpectedToken, tok.Loc,
			"expected %q, got %s %q", lexeme, tok.Kind, tok.Lexeme)
		return tok, false
	}
	p.lx.Advance()
	return tok, true
}

// resyncToTopLevel skips tokens until Def, Extern, or Eof, the recovery
// policy for a non-fatal failure while parsing a top-level item.
func (p *Parser) resyncToTopLevel() {
	for {
		tok := p.lx.Peek()
		if tok.Kind == lexer.Def || tok.Kind == lexer.Extern || tok.Kind == lexer.Eof {
			return
		}
		p.lx.Advance()
	}
}

func (p *Parser) handleDefinition() {
	p.lx.Advance() // consume 'def'
	proto := p.parsePrototype()
	if proto == nil {
		p.resyncToTopLevel()
		return
	}
	body := p.parseExpression()
	if body == nil {
		p.resyncToTopLevel()
		return
	}
	fn := ast.NewFunction(proto.Loc(), proto, body)
	p.forest = append(p.forest, fn)
}

func (p *Parser) handleExtern() {
	p.lx.Advance() // consume 'extern'
	proto := p.parsePrototype()
	if proto == nil {
		p.resyncToTopLevel()
		return
	}
	p.forest = append(p.forest, proto)
}

// handleTopLevelExpression parses a bare expression at top level and
// appends it to the forest unwrapped (§4.2: "Top-level expression is
// not wrapped in an implicit function; it is appended to the global
// AST vector as a bare expression node"). The code-gen collaborator
// decides what to do with it; pkg/codegen.Walk dispatches a bare Expr
// to its own Visit method exactly like any operand.
func (p *Parser) handleTopLevelExpression() {
	expr := p.parseExpression()
	if expr == nil {
		p.resyncToTopLevel()
		return
	}
	p.forest = append(p.forest, expr)
}
