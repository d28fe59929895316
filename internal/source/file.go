// Package source holds the byte-exact source file and span model shared by
// the lexer, parser and diagnostics.
package source

import "fmt"

// File represents a single source file loaded from disk (or, in tests, from
// an in-memory string). Spans index into Runes by rune offset, so that every
// reported column is Unicode-aware rather than byte-aware.
type File struct {
	// Id is this file's position in the module graph's file table.
	Id int
	// Name is the path used to load this file, as given on the CLI or
	// discovered by the module resolver.
	Name string
	// Runes is the decoded file content.
	Runes []rune
}

// NewFile decodes raw bytes into a File ready for lexing.
func NewFile(id int, name string, contents []byte) *File {
	return &File{Id: id, Name: name, Runes: []rune(string(contents))}
}

// Span identifies a byte-exact (rune-exact) range within a single File,
// together with the human-facing line/column of its start, used for
// diagnostic reporting.
type Span struct {
	File       int
	StartOff   int
	EndOff     int
	StartLine  int
	StartCol   int
}

// String renders a span as "line:col"; diag.Error prefixes the file name
// to form the "file:line:col" location of every diagnostic message.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
}

// Join produces a span covering both inputs; used when a grammar rule wants
// to report an error across a whole production rather than a single token.
func Join(a, b Span) Span {
	lo, hi := a, b
	if b.StartOff < a.StartOff {
		lo, hi = b, a
	}
	return Span{
		File:      lo.File,
		StartOff:  lo.StartOff,
		EndOff:    hi.EndOff,
		StartLine: lo.StartLine,
		StartCol:  lo.StartCol,
	}
}

// LineCol computes the 1-indexed line and column of a given rune offset
// within f. Used when a span needs to be reconstructed away from the lexer
// (e.g. when the module resolver reports an import-target span).
func (f *File) LineCol(offset int) (line, col int) {
	line, col = 1, 1

	for i := 0; i < offset && i < len(f.Runes); i++ {
		if f.Runes[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return line, col
}
