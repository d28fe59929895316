package parser

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

// parseExpr is the entry point into the Pratt expression grammar, starting
// at the lowest-precedence operator ('||') per spec.md §4.2.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(token.PipePipe) {
		op := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.check(token.AmpAmp) {
		op := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.check(token.EqEq) || p.check(token.NotEq) {
		op := p.advance()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.check(token.Lt) || p.check(token.Le) || p.check(token.Gt) || p.check(token.Ge) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Sp: source.Join(left.Span(), right.Span()), Op: op.Text, Left: left, Right: right}
	}
	return left
}

// parseUnary parses the right-associative prefix operators '+ - !'.
func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.Plus) || p.check(token.Minus) || p.check(token.Bang) {
		op := p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Sp: source.Join(op.Span, x.Span()), Op: op.Text, X: x}
	}
	return p.parsePostfix()
}

// parsePostfix handles the highest-precedence family: call, field access,
// and indexing, left-to-right.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.LParen:
			e = p.parseCall(e)
		case token.Dot:
			p.advance()
			name := p.expect(token.Ident, "field or method name")
			e = &ast.FieldExpr{Sp: source.Join(e.Span(), name.Span), Recv: e, Field: name.Text}
		case token.LBracket:
			p.advance()
			idx := p.parseExpr()
			end := p.expect(token.RBracket, "']'")
			e = &ast.IndexExpr{Sp: source.Join(e.Span(), end.Span), Recv: e, Index: idx}
		default:
			return e
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEOF() {
		args = append(args, p.parseExpr())
		if _, ok := p.match(token.Comma); !ok {
			break
		}
		if p.check(token.RParen) { // trailing comma
			break
		}
	}
	end := p.expect(token.RParen, "')'")
	return &ast.CallExpr{Sp: source.Join(callee.Span(), end.Span), Callee: callee, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.IntLit:
		p.advance()
		return &ast.IntLit{Sp: t.Span, Value: t.Int}
	case token.FloatLit:
		p.advance()
		return &ast.FloatLit{Sp: t.Span, Value: t.Float}
	case token.BoolLit:
		p.advance()
		return &ast.BoolLit{Sp: t.Span, Value: t.Bool}
	case token.StringLit:
		p.advance()
		return &ast.StringLit{Sp: t.Span, Value: t.Str}
	case token.KwSelf:
		p.advance()
		return &ast.Ident{Sp: t.Span, Name: "self"}
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RParen, "')'")
		return &ast.GroupExpr{Sp: source.Join(t.Span, end.Span), Expr: inner}
	case token.LBracket:
		return p.parseArrayLit()
	case token.KwFn:
		return p.parseFnLit()
	case token.Ident:
		return p.parseIdentOrStructLit()
	default:
		p.errorf(t.Span, "expected an expression, found %q", t.Text)
		p.advance()
		return &ast.IntLit{Sp: t.Span, Value: 0}
	}
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.advance().Span // '['
	if p.check(token.RBracket) {
		end := p.advance().Span
		return &ast.ArrayLit{Sp: source.Join(start, end)}
	}

	first := p.parseExpr()
	if _, ok := p.match(token.Semi); ok {
		count := p.parseExpr()
		end := p.expect(token.RBracket, "']'")
		return &ast.ArrayRepeatLit{Sp: source.Join(start, end.Span), Value: first, Count: count}
	}

	elems := []ast.Expr{first}
	for {
		if _, ok := p.match(token.Comma); !ok {
			break
		}
		if p.check(token.RBracket) { // trailing comma
			break
		}
		elems = append(elems, p.parseExpr())
	}
	end := p.expect(token.RBracket, "']'")
	return &ast.ArrayLit{Sp: source.Join(start, end.Span), Elements: elems}
}

func (p *Parser) parseFnLit() ast.Expr {
	start := p.advance().Span // 'fn'
	p.expect(token.LParen, "'('")

	e := &ast.FnLit{Sp: start}
	for !p.check(token.RParen) && !p.atEOF() {
		pname := p.expect(token.Ident, "parameter name")
		p.expect(token.Colon, "':'")
		ptype := p.parseType()
		e.Params = append(e.Params, ast.Param{Sp: pname.Span, Name: pname.Text, Type: ptype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "')'")

	if _, ok := p.match(token.Arrow); ok {
		e.Return = p.parseType()
	} else {
		e.Return = &ast.NamedType{Path: []string{"Void"}}
	}

	e.Body = p.parseBlock()
	return e
}

// parseIdentOrStructLit disambiguates "name", "a.b.c" (dotted path) and
// "Name { ... }" (struct literal). A struct literal is only recognised when
// the identifier is followed by '{' and then "field:", which keeps "if x {"
// and "match x {" from being misparsed as a struct literal named x; a
// field-less "Name {}" is therefore not parsed as a struct literal.
func (p *Parser) parseIdentOrStructLit() ast.Expr {
	t := p.advance()

	if p.check(token.LBrace) && p.peekKind(1) == token.Ident && p.peekKind(2) == token.Colon {
		return p.parseStructLitBody(t)
	}

	if p.check(token.Dot) {
		path := []string{t.Text}
		for p.check(token.Dot) {
			p.advance()
			seg := p.expect(token.Ident, "path segment")
			path = append(path, seg.Text)
		}
		return &ast.PathExpr{Sp: t.Span, Path: path}
	}

	return &ast.Ident{Sp: t.Span, Name: t.Text}
}

func (p *Parser) parseStructLitBody(name token.Token) ast.Expr {
	start := p.advance().Span // '{'
	lit := &ast.StructLit{Sp: name.Span, Name: name.Text}

	for !p.check(token.RBrace) && !p.atEOF() {
		fname := p.expect(token.Ident, "field name")
		p.expect(token.Colon, "':'")
		value := p.parseExpr()
		lit.Fields = append(lit.Fields, ast.StructFieldInit{Sp: fname.Span, Name: fname.Text, Value: value})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	end := p.expect(token.RBrace, "'}'")
	lit.Sp = source.Join(start, end.Span)
	return lit
}
