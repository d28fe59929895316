package ast

import "fmt"

// TypeExpr is the untyped AST representation of a type as written in source
// — e.g. "[Int; 2+3]" or "fn(Int, Bool) -> String". Sema lowers these into
// pkg/types.Type once module-qualified struct names are resolvable.
type TypeExpr interface {
	isTypeExpr()
	String() string
}

// NamedType is either a primitive keyword (Int, Float, Bool, String, Void)
// or a path to a user struct, e.g. "utils.Point".
type NamedType struct {
	Path []string
}

func (*NamedType) isTypeExpr() {}
func (t *NamedType) String() string {
	s := t.Path[0]
	for _, p := range t.Path[1:] {
		s += "." + p
	}
	return s
}

// ArrayType is "[Elem; LengthExpr]" where LengthExpr is an arithmetic
// combination of integer literals and '+' (to express [T;N+M] concatenation
// results), resolved to a concrete length by sema.
type ArrayType struct {
	Elem   TypeExpr
	Length LengthExpr
}

func (*ArrayType) isTypeExpr() {}
func (t *ArrayType) String() string {
	return fmt.Sprintf("[%s; %s]", t.Elem, t.Length)
}

// LengthExpr is the restricted arithmetic grammar allowed in array-type
// position: integer literals combined with '+'.
type LengthExpr interface {
	isLengthExpr()
	String() string
}

// LengthLit is a bare integer literal length.
type LengthLit struct{ Value int }

func (*LengthLit) isLengthExpr()  {}
func (l *LengthLit) String() string { return fmt.Sprintf("%d", l.Value) }

// LengthAdd is "A+B" in type position.
type LengthAdd struct{ Left, Right LengthExpr }

func (*LengthAdd) isLengthExpr() {}
func (l *LengthAdd) String() string {
	return fmt.Sprintf("%s+%s", l.Left, l.Right)
}

// VecType is "Vec<Elem>".
type VecType struct{ Elem TypeExpr }

func (*VecType) isTypeExpr() {}
func (t *VecType) String() string { return fmt.Sprintf("Vec<%s>", t.Elem) }

// FnType is "fn(P1,...,Pn) -> R" in type position (used for fn-typed
// parameters and locals).
type FnType struct {
	Params []TypeExpr
	Return TypeExpr
}

func (*FnType) isTypeExpr() {}
func (t *FnType) String() string {
	s := "fn("
	for i, p := range t.Params {
		if i != 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ") -> " + t.Return.String()
	return s
}
