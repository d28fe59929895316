// Package parser implements the recursive-descent, Pratt-precedence parser
// described in spec.md §4.2. It is permissive about type annotations and
// statement shape (sema enforces semantic validity) but strict about
// grammar: any unexpected token is an E-PARSE diagnostic and the parser
// recovers by skipping to the next top-level ';' or block boundary, so that
// a single file can report more than one error — the same per-file
// accumulate-and-continue discipline as pkg/corset.ParseSourceFile.
package parser

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/lexer"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

// Parser consumes a token stream for a single file and produces its
// untyped ast.File.
type Parser struct {
	file   *source.File
	toks   []token.Token
	pos    int
	errors diag.Errors
}

// ParseFile lexes and parses a single source file, returning its AST
// together with every E-PARSE diagnostic collected along the way (lexer
// diagnostics first, then parser diagnostics, in the order encountered).
func ParseFile(file *source.File) (*ast.File, diag.Errors) {
	lx := lexer.New(file)
	toks := lx.Tokenize()
	p := &Parser{file: file, toks: toks}
	p.errors = append(p.errors, lx.Errors()...)

	f := &ast.File{}
	for !p.atEOF() {
		d := p.parseDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
	}

	return f, p.errors
}

// ===================================================================
// Token-stream primitives
// ===================================================================

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Kind == token.EOF }

func (p *Parser) peekKind(off int) token.Kind {
	i := p.pos + off
	if i >= len(p.toks) {
		return token.EOF
	}
	return p.toks[i].Kind
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if t, ok := p.match(k); ok {
		return t
	}
	t := p.cur()
	p.errorf(t.Span, "expected %s, found %q", what, t.Text)
	return t
}

func (p *Parser) errorf(span source.Span, format string, args ...any) {
	p.errors = append(p.errors, diag.New(diag.EParse, span, p.file.Name, format, args...))
}

// recover skips tokens until the next top-level ';' or a brace boundary, so
// that one malformed declaration/statement does not prevent the rest of the
// file from being checked.
func (p *Parser) recover() {
	depth := 0
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.Semi:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
			if depth == 0 {
				return
			}
			continue
		}
		p.advance()
	}
}
