package lexer

import (
	"testing"

	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/internal/token"
)

func scan(t *testing.T, text string) []token.Token {
	t.Helper()
	f := source.NewFile(0, "test.sk", []byte(text))
	l := New(f)
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		t.Fatalf("unexpected lex errors for %q: %v", text, l.Errors())
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tk := range toks {
		ks[i] = tk.Kind
	}
	return ks
}

func TestLexer_EmptyIsJustEOF(t *testing.T) {
	toks := scan(t, "")
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("expected single EOF, got %v", toks)
	}
}

func TestLexer_Keywords(t *testing.T) {
	toks := scan(t, "fn let if else while for match break continue return self")
	want := []token.Kind{
		token.KwFn, token.KwLet, token.KwIf, token.KwElse, token.KwWhile,
		token.KwFor, token.KwMatch, token.KwBreak, token.KwContinue,
		token.KwReturn, token.KwSelf, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestLexer_IntAndFloat(t *testing.T) {
	toks := scan(t, "42 3.14 007")
	if toks[0].Kind != token.IntLit || toks[0].Int != 42 {
		t.Fatalf("bad int token: %+v", toks[0])
	}
	if toks[1].Kind != token.FloatLit || toks[1].Float != 3.14 {
		t.Fatalf("bad float token: %+v", toks[1])
	}
	if toks[2].Kind != token.IntLit || toks[2].Int != 7 {
		t.Fatalf("bad int token: %+v", toks[2])
	}
}

func TestLexer_FloatRequiresBothSides(t *testing.T) {
	// "3." with no digit after the dot is not a float: it lexes as
	// IntLit(3) then Dot.
	toks := scan(t, "3.")
	if toks[0].Kind != token.IntLit || toks[1].Kind != token.Dot {
		t.Fatalf("expected IntLit, Dot got %v", kinds(toks))
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := scan(t, `"a\nb\t\"\\c"`)
	if toks[0].Kind != token.StringLit {
		t.Fatalf("expected string literal, got %v", toks[0])
	}
	want := "a\nb\t\"\\c"
	if toks[0].Str != want {
		t.Fatalf("got %q want %q", toks[0].Str, want)
	}
}

func TestLexer_InvalidEscapeIsError(t *testing.T) {
	f := source.NewFile(0, "t.sk", []byte(`"bad\qescape"`))
	l := New(f)
	l.Tokenize()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an error for invalid escape sequence")
	}
}

func TestLexer_UnterminatedStringIsError(t *testing.T) {
	f := source.NewFile(0, "t.sk", []byte(`"abc`))
	l := New(f)
	l.Tokenize()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an error for unterminated string")
	}
}

func TestLexer_UnterminatedBlockCommentIsError(t *testing.T) {
	f := source.NewFile(0, "t.sk", []byte(`/* never closes`))
	l := New(f)
	l.Tokenize()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an error for unterminated block comment")
	}
}

func TestLexer_CommentsAreSkipped(t *testing.T) {
	toks := scan(t, "1 // trailing\n/* block */ 2")
	if len(toks) != 3 || toks[0].Int != 1 || toks[1].Int != 2 {
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestLexer_Punctuators(t *testing.T) {
	toks := scan(t, "-> => == != <= >= && || = < >")
	want := []token.Kind{
		token.Arrow, token.FatArrow, token.EqEq, token.NotEq, token.Le,
		token.Ge, token.AmpAmp, token.PipePipe, token.Assign, token.Lt,
		token.Gt, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLexer_Spans(t *testing.T) {
	toks := scan(t, "abc")
	sp := toks[0].Span
	if sp.StartLine != 1 || sp.StartCol != 1 || sp.EndOff-sp.StartOff != 3 {
		t.Fatalf("bad span: %+v", sp)
	}
}
