package parser

import (
	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

// parseExpression parses one expression: a unary term followed by
// zero or more binary operators, per the EBNF's `expression = unary
// binop_rhs` production.
func (p *Parser) parseExpression() ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS implements the Pratt loop: consume operators whose
// precedence exceeds minPrec, parsing each right-hand side as a unary
// term and then, whenever the following operator binds tighter still,
// recursing before folding the current operator into lhs. This is the
// exact algorithm of the language's binary-expression grammar.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) ast.Expr {
	for {
		opTok := p.lx.Peek()
		if !isBinOpToken(opTok) {
			return lhs
		}
		opPrec := p.priority(opTok)
		if opPrec <= minPrec {
			return lhs
		}
		p.lx.Advance()

		rhs := p.parseUnary()
		if rhs == nil {
			return nil
		}

		nextTok := p.lx.Peek()
		if isBinOpToken(nextTok) && p.priority(nextTok) > opPrec {
			rhs = p.parseBinOpRHS(opPrec, rhs)
			if rhs == nil {
				return nil
			}
		}

		lhs = p.foldBinOp(opTok, lhs, rhs)
		if lhs == nil {
			return nil
		}
	}
}

// foldBinOp builds the BinaryOp node for opTok applied to lhs and rhs.
// Assignment is represented as a BinaryOp of kind OpAssign whose LHS
// must syntactically be a *ast.Variable; any other target is a fatal
// error, since it can never resolve to an assignable storage location.
func (p *Parser) foldBinOp(opTok lexer.Token, lhs, rhs ast.Expr) ast.Expr {
	switch opTok.Kind {
	case lexer.BuiltinOp:
		kind := builtinOpFromLexeme(opTok.Lexeme)
		if kind == ast.OpAssign {
			if _, ok := lhs.(*ast.Variable); !ok {
				p.sink.Fatal(errsink.ParseUnexpectedToken, opTok.Loc,
					"left-hand side of '=' must be a variable")
			}
		}
		return ast.NewBinaryOp(opTok.Loc, kind, lhs, rhs, "", 0)
	case lexer.UserBinaryOp:
		priority := p.userOpPriority[opTok.Lexeme]
		return ast.NewBinaryOp(opTok.Loc, ast.OpUserDefined, lhs, rhs, opTok.Lexeme, priority)
	default:
		return nil
	}
}

// parseUnary parses `unary = ('!' | unary_symbol) unary | primary`: a
// prefix application of a previously declared unary operator, or a
// primary expression if no such prefix is present.
func (p *Parser) parseUnary() ast.Expr {
	tok := p.lx.Peek()
	if tok.Kind != lexer.UserUnaryOp {
		return p.parsePrimary()
	}
	p.lx.Advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	mangled := ast.Mangle(1, tok.Lexeme, 0)
	return ast.NewUnaryOp(tok.Loc, tok.Lexeme, operand, mangled)
}

// parsePrimary dispatches on the current token's kind to the matching
// primary production: number, identifier reference, parenthesized
// expression, if, for, or var.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.lx.Peek()
	switch tok.Kind {
	case lexer.Number:
		return p.parseNumber()
	case lexer.Identifier:
		return p.parseIdentifierRef()
	case lexer.LeftParen:
		return p.parseParen()
	case lexer.If:
		return p.parseIf()
	case lexer.For:
		return p.parseFor()
	case lexer.Var:
		return p.parseVar()
	default:
		p.sink.NonFatal(errsink.ParseUnexpectedToken, tok.Loc,
			"unexpected token %s %q while looking for an expression", tok.Kind, tok.Lexeme)
		return nil
	}
}

func (p *Parser) parseNumber() ast.Expr {
	tok := p.lx.Peek()
	p.lx.Advance()
	return ast.NewNumber(tok.Loc, parseFloatLexeme(tok.Lexeme))
}

// parseFloatLexeme converts a Number token's lexeme to a float64 without
// involving strconv's error path: the lexer guarantees the lexeme is
// digits with at most one '.', so a hand-rolled accumulator suffices and
// never needs to report a parse failure of its own.
func parseFloatLexeme(lexeme string) float64 {
	var whole, frac float64
	var fracDiv float64 = 1
	seenDot := false
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c == '.' {
			seenDot = true
			continue
		}
		d := float64(c - '0')
		if seenDot {
			fracDiv *= 10
			frac += d / fracDiv
		} else {
			whole = whole*10 + d
		}
	}
	return whole + frac
}

// parseIdentifierRef parses `identifier_ref = IDENTIFIER ('(' expression*
// ')')?`: a bare variable reference, or a call if followed immediately
// by '('.
func (p *Parser) parseIdentifierRef() ast.Expr {
	nameTok := p.lx.Peek()
	name := nameTok.Lexeme
	p.lx.Advance()

	if p.lx.Peek().Kind != lexer.LeftParen {
		return ast.NewVariable(nameTok.Loc, name)
	}
	p.lx.Advance() // consume '('

	var args []ast.Expr
	for p.lx.Peek().Kind != lexer.RightParen {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.lx.Peek().Kind == lexer.RightParen {
			break
		}
	}
	if _, ok := p.expect(lexer.RightParen); !ok {
		return nil
	}

	proto, ok := p.prototypes[name]
	if !ok {
		p.sink.NonFatal(errsink.ParseUndefinedCallee, nameTok.Loc, "call to undefined function %q", name)
		return nil
	}
	return ast.NewCall(nameTok.Loc, proto, args)
}

func (p *Parser) parseParen() ast.Expr {
	p.lx.Advance() // consume '('
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.RightParen); !ok {
		return nil
	}
	return expr
}
