package parser

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

func (p *Parser) parseDecl() ast.Decl {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.KwImport:
		return p.parseImport()
	case token.KwFrom:
		return p.parseFromImport()
	case token.KwExport:
		return p.parseExport()
	case token.KwStruct:
		return p.parseStruct()
	case token.KwImpl:
		return p.parseImpl()
	case token.KwFn:
		return p.parseFn()
	case token.KwLet:
		return p.parseGlobalLet()
	default:
		p.errorf(start, "expected a declaration, found %q", p.cur().Text)
		p.recover()
		return nil
	}
}

// parseDottedPath parses "a.b.c" as a list of segments.
func (p *Parser) parseDottedPath() []string {
	var segs []string
	t := p.expect(token.Ident, "module path segment")
	segs = append(segs, t.Text)
	for {
		if _, ok := p.match(token.Dot); !ok {
			break
		}
		t := p.expect(token.Ident, "module path segment")
		segs = append(segs, t.Text)
	}
	return segs
}

func (p *Parser) parseImport() ast.Decl {
	start := p.advance().Span // 'import'
	path := p.parseDottedPath()

	decl := &ast.ImportDecl{Sp: start, Module: path}
	if _, ok := p.match(token.KwAs); ok {
		alias := p.expect(token.Ident, "alias name")
		decl.Alias = alias.Text
	}
	p.expect(token.Semi, "';'")
	decl.Sp = source.Join(start, p.toks[max(p.pos-1, 0)].Span)
	return decl
}

func (p *Parser) parseFromImport() ast.Decl {
	start := p.advance().Span // 'from'
	path := p.parseDottedPath()
	p.expect(token.KwImport, "'import'")

	decl := &ast.ImportDecl{Sp: start, Module: path, From: true}

	if _, ok := p.match(token.Star); ok {
		decl.Wildcard = true
	} else {
		for {
			name := p.expect(token.Ident, "imported name")
			im := ast.ImportName{Name: name.Text}
			if _, ok := p.match(token.KwAs); ok {
				alias := p.expect(token.Ident, "alias name")
				im.Alias = alias.Text
			}
			decl.Names = append(decl.Names, im)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
			if p.check(token.Semi) { // trailing comma
				break
			}
		}
	}

	p.expect(token.Semi, "';'")
	return decl
}

func (p *Parser) parseExport() ast.Decl {
	start := p.advance().Span // 'export'
	decl := &ast.ExportDecl{Sp: start}

	if _, ok := p.match(token.Star); ok {
		decl.Wildcard = true
		p.expect(token.KwFrom, "'from'")
		decl.From = p.parseDottedPath()
	} else {
		p.expect(token.LBrace, "'{'")
		for !p.check(token.RBrace) && !p.atEOF() {
			name := p.expect(token.Ident, "exported name")
			im := ast.ImportName{Name: name.Text}
			if _, ok := p.match(token.KwAs); ok {
				alias := p.expect(token.Ident, "alias name")
				im.Alias = alias.Text
			}
			decl.Names = append(decl.Names, im)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RBrace, "'}'")
		if _, ok := p.match(token.KwFrom); ok {
			decl.From = p.parseDottedPath()
		}
	}

	p.expect(token.Semi, "';'")
	return decl
}

func (p *Parser) parseStruct() ast.Decl {
	start := p.advance().Span // 'struct'
	name := p.expect(token.Ident, "struct name")
	decl := &ast.StructDecl{Sp: start, Name: name.Text}

	p.expect(token.LBrace, "'{'")
	for !p.check(token.RBrace) && !p.atEOF() {
		fname := p.expect(token.Ident, "field name")
		p.expect(token.Colon, "':'")
		ftype := p.parseType()
		decl.Fields = append(decl.Fields, ast.FieldDecl{Sp: fname.Span, Name: fname.Text, Type: ftype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return decl
}

func (p *Parser) parseImpl() ast.Decl {
	start := p.advance().Span // 'impl'
	name := p.expect(token.Ident, "struct name")
	decl := &ast.ImplDecl{Sp: start, Struct: name.Text}

	p.expect(token.LBrace, "'{'")
	for !p.check(token.RBrace) && !p.atEOF() {
		if !p.check(token.KwFn) {
			p.errorf(p.cur().Span, "expected a method declaration, found %q", p.cur().Text)
			p.recover()
			continue
		}
		if fn, ok := p.parseFn().(*ast.FnDecl); ok {
			decl.Methods = append(decl.Methods, fn)
		}
	}
	p.expect(token.RBrace, "'}'")
	return decl
}

func (p *Parser) parseFn() ast.Decl {
	start := p.advance().Span // 'fn'
	name := p.expect(token.Ident, "function name")
	decl := &ast.FnDecl{Sp: start, Name: name.Text}

	p.expect(token.LParen, "'('")
	for !p.check(token.RParen) && !p.atEOF() {
		pname := p.expectParamName()
		p.expect(token.Colon, "':'")
		ptype := p.parseType()
		decl.Params = append(decl.Params, ast.Param{Sp: pname.Span, Name: pname.Text, Type: ptype})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "')'")

	if _, ok := p.match(token.Arrow); ok {
		decl.Return = p.parseType()
	} else {
		decl.Return = &ast.NamedType{Path: []string{"Void"}}
	}

	decl.Body = p.parseBlock()
	return decl
}

// expectParamName accepts either an identifier or the 'self' keyword, since
// "self: S" is the required first parameter of a method.
func (p *Parser) expectParamName() token.Token {
	if p.check(token.KwSelf) {
		return p.advance()
	}
	return p.expect(token.Ident, "parameter name")
}

func (p *Parser) parseGlobalLet() ast.Decl {
	start := p.advance().Span // 'let'
	name := p.expect(token.Ident, "variable name")
	decl := &ast.LetDecl{Sp: start, Name: name.Text}

	if _, ok := p.match(token.Colon); ok {
		decl.Type = p.parseType()
	}
	p.expect(token.Assign, "'='")
	decl.Value = p.parseExpr()
	p.expect(token.Semi, "';'")
	return decl
}

