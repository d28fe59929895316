// Package ast defines the untyped, per-file syntax tree produced by the
// parser, following the node model in spec.md §3. Declarations, statements
// and expressions are each a closed sum type expressed as a Go interface
// with an unexported marker method, in the same spirit as
// pkg/corset.Declaration / pkg/corset.Symbol.
package ast

import "github.com/AayushMainali-Github/skepa-lang/internal/source"

// File is the untyped AST of a single parsed source file.
type File struct {
	Decls []Decl
}

// Decl is a top-level declaration: import, export, struct, impl, fn, or a
// global let.
type Decl interface {
	isDecl()
	Span() source.Span
}

// ImportDecl covers all three import forms from spec.md §4.3:
// "import m;", "import m as n;" and "from m import a, b as c;" / "from m
// import *;".
type ImportDecl struct {
	Sp       source.Span
	Module   []string // dotted path segments, e.g. ["utils","math"]
	Alias    string   // non-empty for "import m as n"
	From     bool     // true for "from m import ..."
	Names    []ImportName
	Wildcard bool // true for "from m import *;"
}

func (*ImportDecl) isDecl()              {}
func (d *ImportDecl) Span() source.Span { return d.Sp }

// ImportName is one "a" or "a as b" entry in a "from" import list.
type ImportName struct {
	Name  string
	Alias string
}

// ExportDecl covers "export { a, b as c };", "export { a } from m;" and
// "export * from m;".
type ExportDecl struct {
	Sp       source.Span
	From     []string // dotted module path; empty when re-exporting nothing
	Names    []ImportName
	Wildcard bool
}

func (*ExportDecl) isDecl()              {}
func (d *ExportDecl) Span() source.Span { return d.Sp }

// StructDecl declares a struct type and its ordered fields.
type StructDecl struct {
	Sp     source.Span
	Name   string
	Fields []FieldDecl
}

func (*StructDecl) isDecl()              {}
func (d *StructDecl) Span() source.Span { return d.Sp }

// FieldDecl is one field of a struct.
type FieldDecl struct {
	Sp   source.Span
	Name string
	Type TypeExpr
}

// ImplDecl declares "impl S { fn ... }", a block of methods attached to
// struct S.
type ImplDecl struct {
	Sp      source.Span
	Struct  string
	Methods []*FnDecl
}

func (*ImplDecl) isDecl()              {}
func (d *ImplDecl) Span() source.Span { return d.Sp }

// FnDecl declares a top-level function or, inside an ImplDecl, a method.
type FnDecl struct {
	Sp      source.Span
	Name    string
	Params  []Param
	Return  TypeExpr
	Body    []Stmt
}

func (*FnDecl) isDecl()              {}
func (d *FnDecl) Span() source.Span { return d.Sp }

// Param is one function parameter.
type Param struct {
	Sp   source.Span
	Name string
	Type TypeExpr
}

// LetDecl is a global "let" declaration at module scope.
type LetDecl struct {
	Sp    source.Span
	Name  string
	Type  TypeExpr // nil if no annotation
	Value Expr
}

func (*LetDecl) isDecl()              {}
func (d *LetDecl) Span() source.Span { return d.Sp }

// ===================================================================
// Statements
// ===================================================================

// Stmt is any statement permitted in a function body.
type Stmt interface {
	isStmt()
	Span() source.Span
}

// LetStmt is a local "let" binding, with or without a type annotation.
type LetStmt struct {
	Sp    source.Span
	Name  string
	Type  TypeExpr
	Value Expr
}

func (*LetStmt) isStmt()              {}
func (s *LetStmt) Span() source.Span { return s.Sp }

// AssignStmt assigns to a name/field/index target.
type AssignStmt struct {
	Sp     source.Span
	Target Expr // Ident, FieldExpr, or IndexExpr
	Value  Expr
}

func (*AssignStmt) isStmt()              {}
func (s *AssignStmt) Span() source.Span { return s.Sp }

// IfStmt is "if cond { ... } else { ... }" (Else may be nil, or itself wrap
// a single IfStmt for "else if" chains).
type IfStmt struct {
	Sp    source.Span
	Cond  Expr
	Then  []Stmt
	Else  []Stmt // nil if no else clause
}

func (*IfStmt) isStmt()              {}
func (s *IfStmt) Span() source.Span { return s.Sp }

// WhileStmt is "while cond { ... }".
type WhileStmt struct {
	Sp   source.Span
	Cond Expr
	Body []Stmt
}

func (*WhileStmt) isStmt()              {}
func (s *WhileStmt) Span() source.Span { return s.Sp }

// ForStmt is "for (init; cond; step) { ... }" with any clause optional.
type ForStmt struct {
	Sp   source.Span
	Init Stmt // nil if omitted
	Cond Expr // nil if omitted
	Step Stmt // nil if omitted
	Body []Stmt
}

func (*ForStmt) isStmt()              {}
func (s *ForStmt) Span() source.Span { return s.Sp }

// MatchStmt is "match target { arm, arm, ... }" used as a statement.
type MatchStmt struct {
	Sp     source.Span
	Target Expr
	Arms   []MatchArm
}

func (*MatchStmt) isStmt()              {}
func (s *MatchStmt) Span() source.Span { return s.Sp }

// MatchArm is one arm of a match: either a list of literal patterns, or the
// wildcard "_".
type MatchArm struct {
	Sp       source.Span
	Wildcard bool
	Patterns []Expr // literal expressions; empty when Wildcard
	Body     []Stmt
}

// BreakStmt / ContinueStmt are loop control statements.
type BreakStmt struct{ Sp source.Span }

func (*BreakStmt) isStmt()              {}
func (s *BreakStmt) Span() source.Span { return s.Sp }

type ContinueStmt struct{ Sp source.Span }

func (*ContinueStmt) isStmt()              {}
func (s *ContinueStmt) Span() source.Span { return s.Sp }

// ReturnStmt is "return;" or "return expr;".
type ReturnStmt struct {
	Sp    source.Span
	Value Expr // nil for bare "return;"
}

func (*ReturnStmt) isStmt()              {}
func (s *ReturnStmt) Span() source.Span { return s.Sp }

// ExprStmt is an expression evaluated for its side effect (almost always a
// call).
type ExprStmt struct {
	Sp   source.Span
	Expr Expr
}

func (*ExprStmt) isStmt()              {}
func (s *ExprStmt) Span() source.Span { return s.Sp }

// ===================================================================
// Expressions
// ===================================================================

// Expr is any expression.
type Expr interface {
	isExpr()
	Span() source.Span
}

// IntLit / FloatLit / BoolLit / StringLit are literal expressions.
type IntLit struct {
	Sp    source.Span
	Value int64
}

func (*IntLit) isExpr()              {}
func (e *IntLit) Span() source.Span { return e.Sp }

type FloatLit struct {
	Sp    source.Span
	Value float64
}

func (*FloatLit) isExpr()              {}
func (e *FloatLit) Span() source.Span { return e.Sp }

type BoolLit struct {
	Sp    source.Span
	Value bool
}

func (*BoolLit) isExpr()              {}
func (e *BoolLit) Span() source.Span { return e.Sp }

type StringLit struct {
	Sp    source.Span
	Value string
}

func (*StringLit) isExpr()              {}
func (e *StringLit) Span() source.Span { return e.Sp }

// Ident is a bare identifier reference (local variable, global, or
// function name).
type Ident struct {
	Sp   source.Span
	Name string
}

func (*Ident) isExpr()              {}
func (e *Ident) Span() source.Span { return e.Sp }

// PathExpr is a dotted reference, e.g. "io.println" or "utils.math.add",
// prior to sema resolving which segment is a module and which is a member.
type PathExpr struct {
	Sp   source.Span
	Path []string
}

func (*PathExpr) isExpr()              {}
func (e *PathExpr) Span() source.Span { return e.Sp }

// GroupExpr is a parenthesised expression, kept in the tree so that sema
// error spans can point at exactly what the user wrote.
type GroupExpr struct {
	Sp   source.Span
	Expr Expr
}

func (*GroupExpr) isExpr()              {}
func (e *GroupExpr) Span() source.Span { return e.Sp }

// UnaryExpr is "+e", "-e" or "!e".
type UnaryExpr struct {
	Sp  source.Span
	Op  string
	X   Expr
}

func (*UnaryExpr) isExpr()              {}
func (e *UnaryExpr) Span() source.Span { return e.Sp }

// BinaryExpr is any binary operator application.
type BinaryExpr struct {
	Sp          source.Span
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) isExpr()              {}
func (e *BinaryExpr) Span() source.Span { return e.Sp }

// CallExpr is "callee(args...)". Callee is typically an Ident, PathExpr, or
// FieldExpr (method call).
type CallExpr struct {
	Sp     source.Span
	Callee Expr
	Args   []Expr
}

func (*CallExpr) isExpr()              {}
func (e *CallExpr) Span() source.Span { return e.Sp }

// FieldExpr is "recv.field" (struct field access, or the receiver
// expression of a method call).
type FieldExpr struct {
	Sp    source.Span
	Recv  Expr
	Field string
}

func (*FieldExpr) isExpr()              {}
func (e *FieldExpr) Span() source.Span { return e.Sp }

// IndexExpr is "recv[index]".
type IndexExpr struct {
	Sp    source.Span
	Recv  Expr
	Index Expr
}

func (*IndexExpr) isExpr()              {}
func (e *IndexExpr) Span() source.Span { return e.Sp }

// ArrayLit is "[e1, e2, ...]".
type ArrayLit struct {
	Sp       source.Span
	Elements []Expr
}

func (*ArrayLit) isExpr()              {}
func (e *ArrayLit) Span() source.Span { return e.Sp }

// ArrayRepeatLit is "[e; n]".
type ArrayRepeatLit struct {
	Sp    source.Span
	Value Expr
	Count Expr
}

func (*ArrayRepeatLit) isExpr()              {}
func (e *ArrayRepeatLit) Span() source.Span { return e.Sp }

// StructLit is "Name { field: value, ... }".
type StructLit struct {
	Sp     source.Span
	Name   string
	Fields []StructFieldInit
}

func (*StructLit) isExpr()              {}
func (e *StructLit) Span() source.Span { return e.Sp }

// StructFieldInit is one "field: value" entry of a struct literal.
type StructFieldInit struct {
	Sp    source.Span
	Name  string
	Value Expr
}

// FnLit is a non-capturing function literal, "fn(p: T, ...) -> R { ... }"
// used as an expression.
type FnLit struct {
	Sp     source.Span
	Params []Param
	Return TypeExpr
	Body   []Stmt
}

func (*FnLit) isExpr()              {}
func (e *FnLit) Span() source.Span { return e.Sp }
