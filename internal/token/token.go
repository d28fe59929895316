// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

import "github.com/AayushMainali-Github/skepa-lang/internal/source"

// Kind identifies the lexical category of a Token.
type Kind int

// Token kinds. Keyword and punctuator kinds are listed individually so the
// parser can switch on them directly rather than re-comparing strings.
const (
	EOF Kind = iota
	Ident
	IntLit
	FloatLit
	StringLit
	BoolLit

	// Keywords
	KwImport
	KwFrom
	KwExport
	KwAs
	KwStruct
	KwImpl
	KwFn
	KwLet
	KwIf
	KwElse
	KwWhile
	KwFor
	KwMatch
	KwBreak
	KwContinue
	KwReturn
	KwSelf
	KwInt
	KwFloat
	KwBool
	KwString
	KwVoid
	KwVec

	// Punctuators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi
	Colon
	Dot
	Arrow // ->
	FatArrow // =>
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	AmpAmp
	PipePipe
	Pipe // match arm separator
	EqEq
	NotEq
	Lt
	Le
	Gt
	Ge
	Underscore
)

var keywords = map[string]Kind{
	"import":   KwImport,
	"from":     KwFrom,
	"export":   KwExport,
	"as":       KwAs,
	"struct":   KwStruct,
	"impl":     KwImpl,
	"fn":       KwFn,
	"let":      KwLet,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"match":    KwMatch,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"self":     KwSelf,
	"Int":      KwInt,
	"Float":    KwFloat,
	"Bool":     KwBool,
	"String":   KwString,
	"Void":     KwVoid,
	"Vec":      KwVec,
	"true":     BoolLit,
	"false":    BoolLit,
}

// Lookup returns the keyword Kind for an identifier-shaped lexeme, or
// (Ident, false) if it is not a reserved word.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	if !ok {
		return Ident, false
	}
	return k, true
}

// Token is a single lexical token: a kind, its source span, and its decoded
// literal value where applicable.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string // raw lexeme, used for identifiers and error messages
	Int   int64
	Float float64
	Str   string // decoded string literal (escapes resolved)
	Bool  bool
}

// String renders a token for debugging and parser error messages.
func (t Token) String() string {
	if t.Kind == Ident || t.Kind == StringLit {
		return t.Text
	}
	return t.Text
}
