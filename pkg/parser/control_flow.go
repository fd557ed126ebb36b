package parser

import (
	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

// parseIf parses `if_expr = 'if' expression 'then' expression 'else'
// expression`. The else arm is mandatory: every expression yields a
// value, and there is no statement form that could make an else arm
// optional.
func (p *Parser) parseIf() ast.Expr {
	loc := p.lx.Peek().Loc
	p.lx.Advance() // consume 'if'

	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.Then); !ok {
		return nil
	}
	then := p.parseExpression()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(lexer.Else); !ok {
		return nil
	}
	els := p.parseExpression()
	if els == nil {
		return nil
	}
	return ast.NewIf(loc, cond, then, els)
}

// parseFor parses `for_expr = 'for' identifier '=' expression ':'
// expression (':' expression)? 'in' expression`. Step is optional; when
// absent the For node's Step field is left nil and code-gen treats it as
// 1.0. The loop's own value is always 0.0 (a neutral constant), never
// the body's last value.
func (p *Parser) parseFor() ast.Expr {
	loc := p.lx.Peek().Loc
	p.lx.Advance() // consume 'for'

	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return nil
	}
	if _, ok := p.expectBuiltinOp("="); !ok {
		return nil
	}
	start := p.parseExpression()
	if start == nil {
		return nil
	}
	if _, ok := p.expect(lexer.Colon); !ok {
		return nil
	}
	end := p.parseExpression()
	if end == nil {
		return nil
	}

	var step ast.Expr
	if p.lx.Peek().Kind == lexer.Colon {
		p.lx.Advance()
		step = p.parseExpression()
		if step == nil {
			return nil
		}
	}

	if _, ok := p.expect(lexer.In); !ok {
		return nil
	}
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	return ast.NewFor(loc, nameTok.Lexeme, start, end, step, body)
}

// parseVar parses `var_expr = 'var' binding (',' binding)* 'in'
// expression`. Bindings take effect left-to-right: a later binding's
// initializer may reference an earlier one by name, and each binding
// shadows any outer variable of the same name for the remainder of the
// var-expression's body.
func (p *Parser) parseVar() ast.Expr {
	loc := p.lx.Peek().Loc
	p.lx.Advance() // consume 'var'

	first, ok := p.parseBinding()
	if !ok {
		return nil
	}
	bindings := []ast.VarBinding{first}

	for p.lx.Peek().Kind == lexer.Comma {
		p.lx.Advance()
		b, ok := p.parseBinding()
		if !ok {
			return nil
		}
		bindings = append(bindings, b)
	}

	if _, ok := p.expect(lexer.In); !ok {
		return nil
	}
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	return ast.NewVar(loc, bindings, body)
}

// parseBinding parses `binding = identifier '=' expression`, one clause
// of a var-expression.
func (p *Parser) parseBinding() (ast.VarBinding, bool) {
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		return ast.VarBinding{}, false
	}
	if _, ok := p.expectBuiltinOp("="); !ok {
		return ast.VarBinding{}, false
	}
	init := p.parseExpression()
	if init == nil {
		p.sink.NonFatal(errsink.ParseUnexpectedToken, nameTok.Loc,
			"expected an initializer expression for %q", nameTok.Lexeme)
		return ast.VarBinding{}, false
	}
	return ast.VarBinding{Name: nameTok.Lexeme, Init: init}, true
}
