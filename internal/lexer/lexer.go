// Package lexer converts Skepa source text into a token stream, following
// §4.1 of the language specification. It is grounded on the scanning style
// of pkg/sexp.Parser: a rune-indexed cursor with lookahead, reporting
// byte-exact (here rune-exact) spans on error.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

// Lexer scans a single source.File into tokens.
type Lexer struct {
	file   *source.File
	index  int
	line   int
	col    int
	errors diag.Errors
}

// New constructs a Lexer over the given file.
func New(file *source.File) *Lexer {
	return &Lexer{file: file, line: 1, col: 1}
}

// Errors returns every E-PARSE diagnostic raised while lexing (unterminated
// strings, unterminated block comments, bad escapes).
func (l *Lexer) Errors() diag.Errors {
	return l.errors
}

func (l *Lexer) peek(off int) rune {
	i := l.index + off
	if i >= len(l.file.Runes) {
		return 0
	}
	return l.file.Runes[i]
}

func (l *Lexer) advance() rune {
	c := l.file.Runes[l.index]
	l.index++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) atEnd() bool {
	return l.index >= len(l.file.Runes)
}

func (l *Lexer) here() source.Span {
	return source.Span{File: l.file.Id, StartOff: l.index, EndOff: l.index, StartLine: l.line, StartCol: l.col}
}

func (l *Lexer) errorf(span source.Span, format string, args ...any) {
	l.errors = append(l.errors, diag.New(diag.EParse, span, l.file.Name, format, args...))
}

// Tokenize runs the lexer to completion, returning every token (including a
// trailing EOF) and accumulating any diagnostics in Errors().
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t, ok := l.next()
		if ok {
			toks = append(toks, t)
			if t.Kind == token.EOF {
				return toks
			}
		}
	}
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentCont(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// next scans and returns the next token. ok is false only when a comment or
// whitespace run was skipped without producing a token (signals the caller
// to loop); it is always true for a real token, including EOF.
func (l *Lexer) next() (token.Token, bool) {
	if l.skipSpaceAndComments() {
		return token.Token{}, false
	}

	start := l.here()

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Span: start, Text: "<eof>"}, true
	}

	c := l.peek(0)

	switch {
	case isIdentStart(c):
		return l.scanIdent(start), true
	case isDigit(c):
		return l.scanNumber(start), true
	case c == '"':
		return l.scanString(start), true
	default:
		return l.scanPunct(start), true
	}
}

// skipSpaceAndComments consumes whitespace and comments, reporting
// unterminated block comments. Returns true if anything was consumed.
func (l *Lexer) skipSpaceAndComments() bool {
	consumed := false
	for {
		if l.atEnd() {
			return consumed
		}
		c := l.peek(0)
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
			consumed = true
		case c == '/' && l.peek(1) == '/':
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
			consumed = true
		case c == '/' && l.peek(1) == '*':
			start := l.here()
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.errorf(start, "unterminated block comment")
			}
			consumed = true
		default:
			return consumed
		}
	}
}

func (l *Lexer) scanIdent(start source.Span) token.Token {
	var sb strings.Builder
	for !l.atEnd() && isIdentCont(l.peek(0)) {
		sb.WriteRune(l.advance())
	}
	text := sb.String()
	span := l.spanSince(start)

	if text == "_" {
		return token.Token{Kind: token.Underscore, Span: span, Text: text}
	}

	if kind, ok := token.Lookup(text); ok {
		if kind == token.BoolLit {
			return token.Token{Kind: token.BoolLit, Span: span, Text: text, Bool: text == "true"}
		}
		return token.Token{Kind: kind, Span: span, Text: text}
	}

	return token.Token{Kind: token.Ident, Span: span, Text: text}
}

func (l *Lexer) scanNumber(start source.Span) token.Token {
	var sb strings.Builder
	for !l.atEnd() && isDigit(l.peek(0)) {
		sb.WriteRune(l.advance())
	}

	isFloat := false
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		isFloat = true
		sb.WriteRune(l.advance()) // '.'
		for !l.atEnd() && isDigit(l.peek(0)) {
			sb.WriteRune(l.advance())
		}
	}

	text := sb.String()
	span := l.spanSince(start)

	if isFloat {
		var f float64
		fmt.Sscanf(text, "%g", &f)
		return token.Token{Kind: token.FloatLit, Span: span, Text: text, Float: f}
	}

	var n int64
	fmt.Sscanf(text, "%d", &n)
	return token.Token{Kind: token.IntLit, Span: span, Text: text, Int: n}
}

func (l *Lexer) scanString(start source.Span) token.Token {
	l.advance() // opening quote
	var sb strings.Builder
	closed := false

	for !l.atEnd() {
		c := l.peek(0)
		if c == '"' {
			l.advance()
			closed = true
			break
		}
		if c == '\n' {
			break
		}
		if c == '\\' {
			escSpan := l.here()
			l.advance()
			if l.atEnd() {
				break
			}
			e := l.advance()
			switch e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				l.errorf(l.spanSince(escSpan), "invalid escape sequence '\\%c'", e)
			}
			continue
		}
		sb.WriteRune(l.advance())
	}

	span := l.spanSince(start)
	if !closed {
		l.errorf(span, "unterminated string literal")
	}

	return token.Token{Kind: token.StringLit, Span: span, Text: sb.String(), Str: sb.String()}
}

type punct struct {
	text string
	kind token.Kind
}

// punctTable is checked longest-match-first so that e.g. "->" wins over "-".
var punctTable = []punct{
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"==", token.EqEq},
	{"!=", token.NotEq},
	{"<=", token.Le},
	{">=", token.Ge},
	{"&&", token.AmpAmp},
	{"||", token.PipePipe},
	{"(", token.LParen},
	{")", token.RParen},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{",", token.Comma},
	{";", token.Semi},
	{":", token.Colon},
	{".", token.Dot},
	{"=", token.Assign},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"!", token.Bang},
	{"|", token.Pipe},
	{"<", token.Lt},
	{">", token.Gt},
}

func (l *Lexer) scanPunct(start source.Span) token.Token {
	for _, p := range punctTable {
		if l.matches(p.text) {
			for range p.text {
				l.advance()
			}
			return token.Token{Kind: p.kind, Span: l.spanSince(start), Text: p.text}
		}
	}

	bad := l.advance()
	span := l.spanSince(start)
	l.errorf(span, "unexpected character %q", bad)
	return token.Token{Kind: token.EOF, Span: span, Text: string(bad)}
}

func (l *Lexer) matches(s string) bool {
	for i, r := range []rune(s) {
		if l.peek(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) spanSince(start source.Span) source.Span {
	return source.Span{
		File:      start.File,
		StartOff:  start.StartOff,
		EndOff:    l.index,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
	}
}
