package parser

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

// parseType parses a type expression. The parser is permissive here per
// spec.md §4.2: it records whatever shape it finds and leaves validity
// checking (e.g. whether a named path actually resolves to a struct) to
// sema.
func (p *Parser) parseType() ast.TypeExpr {
	switch p.cur().Kind {
	case token.KwInt:
		p.advance()
		return &ast.NamedType{Path: []string{"Int"}}
	case token.KwFloat:
		p.advance()
		return &ast.NamedType{Path: []string{"Float"}}
	case token.KwBool:
		p.advance()
		return &ast.NamedType{Path: []string{"Bool"}}
	case token.KwString:
		p.advance()
		return &ast.NamedType{Path: []string{"String"}}
	case token.KwVoid:
		p.advance()
		return &ast.NamedType{Path: []string{"Void"}}
	case token.KwVec:
		p.advance()
		p.expect(token.Lt, "'<'")
		elem := p.parseType()
		p.expect(token.Gt, "'>'")
		return &ast.VecType{Elem: elem}
	case token.LBracket:
		p.advance()
		elem := p.parseType()
		p.expect(token.Semi, "';'")
		length := p.parseLengthExpr()
		p.expect(token.RBracket, "']'")
		return &ast.ArrayType{Elem: elem, Length: length}
	case token.KwFn:
		p.advance()
		p.expect(token.LParen, "'('")
		var params []ast.TypeExpr
		for !p.check(token.RParen) && !p.atEOF() {
			params = append(params, p.parseType())
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RParen, "')'")
		var ret ast.TypeExpr = &ast.NamedType{Path: []string{"Void"}}
		if _, ok := p.match(token.Arrow); ok {
			ret = p.parseType()
		}
		return &ast.FnType{Params: params, Return: ret}
	case token.Ident:
		return &ast.NamedType{Path: p.parseDottedPath()}
	default:
		t := p.cur()
		p.errorf(t.Span, "expected a type, found %q", t.Text)
		p.advance()
		return &ast.NamedType{Path: []string{"Void"}}
	}
}

// parseLengthExpr parses the restricted "N" or "N+M+..." arithmetic grammar
// permitted in array-type length position.
func (p *Parser) parseLengthExpr() ast.LengthExpr {
	left := p.parseLengthAtom()
	for p.check(token.Plus) {
		p.advance()
		right := p.parseLengthAtom()
		left = &ast.LengthAdd{Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLengthAtom() ast.LengthExpr {
	t := p.expect(token.IntLit, "integer literal")
	return &ast.LengthLit{Value: int(t.Int)}
}
