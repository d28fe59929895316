// Package ir is the typed intermediate form sema produces and pkg/bytecode
// consumes: every name has been resolved to a local slot, a global, a
// function, a method or a built-in, and every expression carries its
// pkg/types.Type. Grounded on the typed-AST handoff between pkg/corset's
// sema stage and its assembler (pkg/asm), adapted from a field-arithmetic
// circuit IR to a general-purpose expression/statement IR.
package ir

import (
	"github.com/AayushMainali-Github/skepa-lang/pkg/builtin"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// Program is every function reachable from the entry module's main,
// flattened into one deterministically-ordered table (spec.md §4.5:
// "Function table is sorted by fully-qualified name").
type Program struct {
	Functions []*Function
	// EntryIndex is main's position within Functions.
	EntryIndex int
	// Globals holds every module-level "let" binding's initializer,
	// sorted by QualifiedName; the VM evaluates these once, in order,
	// before invoking main.
	Globals []Global
}

// Global is one module-level "let" binding.
type Global struct {
	QualifiedName string
	Typ           types.Type
	Init          Expr
}

// Function is one lowered, fully-typed function or method body.
type Function struct {
	// QualifiedName is "module.name" for free functions, or
	// "module.Struct.name" for methods.
	QualifiedName string
	Params        []Local
	NumLocals     int // total local slots, including parameters
	Ret           types.Type
	Body          []Stmt
}

// Local describes one local slot: its name (for disassembly/debug) and
// type.
type Local struct {
	Name string
	Type types.Type
}

// Stmt is a typed, lowered statement.
type Stmt interface{ isStmt() }

type LetStmt struct {
	Slot  int
	Value Expr
}

type AssignLocalStmt struct {
	Slot  int
	Value Expr
}

type AssignFieldStmt struct {
	Recv  Expr
	Field string
	Value Expr
}

type AssignIndexStmt struct {
	Recv  Expr
	Index Expr
	Value Expr
}

type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	Init Stmt
	Cond Expr
	Step Stmt
	Body []Stmt
}

type MatchStmt struct {
	Target types.Type
	Value  Expr
	Arms   []MatchArm
}

type MatchArm struct {
	Wildcard bool
	Patterns []Expr
	Body     []Stmt
}

type BreakStmt struct{}
type ContinueStmt struct{}

type ReturnStmt struct {
	Value Expr // nil for bare return in a Void function
}

type ExprStmt struct{ Value Expr }

func (*LetStmt) isStmt()          {}
func (*AssignLocalStmt) isStmt()  {}
func (*AssignFieldStmt) isStmt()  {}
func (*AssignIndexStmt) isStmt()  {}
func (*IfStmt) isStmt()           {}
func (*WhileStmt) isStmt()        {}
func (*ForStmt) isStmt()          {}
func (*MatchStmt) isStmt()        {}
func (*BreakStmt) isStmt()        {}
func (*ContinueStmt) isStmt()     {}
func (*ReturnStmt) isStmt()       {}
func (*ExprStmt) isStmt()         {}

// Expr is a typed, lowered expression; every node reports its static
// result Type so the emitter never needs to re-derive it.
type Expr interface {
	isExpr()
	Type() types.Type
}

type IntLit struct{ Value int64 }
type FloatLit struct{ Value float64 }
type BoolLit struct{ Value bool }
type StringLit struct{ Value string }

func (IntLit) isExpr()    {}
func (IntLit) Type() types.Type { return types.TInt }
func (FloatLit) isExpr()    {}
func (FloatLit) Type() types.Type { return types.TFloat }
func (BoolLit) isExpr()    {}
func (BoolLit) Type() types.Type { return types.TBool }
func (StringLit) isExpr()    {}
func (StringLit) Type() types.Type { return types.TString }

// LoadLocal reads parameter/local slot Slot.
type LoadLocal struct {
	Slot int
	Typ  types.Type
}

func (e *LoadLocal) isExpr()        {}
func (e *LoadLocal) Type() types.Type { return e.Typ }

// LoadGlobal reads a module-level "let" binding, addressed by the global's
// qualified name (resolved once at link time by the emitter into the
// global slot index that OpLoadGlobal addresses).
type LoadGlobal struct {
	QualifiedName string
	Typ           types.Type
}

func (e *LoadGlobal) isExpr()        {}
func (e *LoadGlobal) Type() types.Type { return e.Typ }

// Unary is "-x", "+x" or "!x".
type Unary struct {
	Op  string
	X   Expr
	Typ types.Type
}

func (e *Unary) isExpr()        {}
func (e *Unary) Type() types.Type { return e.Typ }

// Binary is any binary operator application, with Op one of the source
// spellings ("+","-","*","/","%","<","<=",">",">=","==","!=","&&","||").
type Binary struct {
	Op          string
	Left, Right Expr
	Typ         types.Type
}

func (e *Binary) isExpr()        {}
func (e *Binary) Type() types.Type { return e.Typ }

// Call invokes a resolved free function or function-typed local/global by
// qualified name (for free functions/methods) or by callee expression (for
// fn-typed values).
type Call struct {
	// Callee is non-nil when calling a function value (fn-typed local,
	// parameter, or global); QualifiedName is used instead for a
	// statically resolved free function or method.
	Callee        Expr
	QualifiedName string
	Args          []Expr
	Typ           types.Type
}

func (e *Call) isExpr()        {}
func (e *Call) Type() types.Type { return e.Typ }

// CallBuiltin invokes a fixed built-in by id (spec.md §4.8).
type CallBuiltin struct {
	Sig  builtin.Signature
	Args []Expr
	Typ  types.Type
}

func (e *CallBuiltin) isExpr()        {}
func (e *CallBuiltin) Type() types.Type { return e.Typ }

// MethodCall invokes "recv.method(args)", resolved to the method's
// qualified name; Recv is passed as the implicit "self" argument.
type MethodCall struct {
	Recv          Expr
	QualifiedName string
	Args          []Expr
	Typ           types.Type
}

func (e *MethodCall) isExpr()        {}
func (e *MethodCall) Type() types.Type { return e.Typ }

// FieldGet reads a struct field.
type FieldGet struct {
	Recv  Expr
	Field string
	Typ   types.Type
}

func (e *FieldGet) isExpr()        {}
func (e *FieldGet) Type() types.Type { return e.Typ }

// IndexGet reads recv[index] for an Array, Vec, or String.
type IndexGet struct {
	Recv  Expr
	Index Expr
	Typ   types.Type
}

func (e *IndexGet) isExpr()        {}
func (e *IndexGet) Type() types.Type { return e.Typ }

// NewArray is an array literal "[e1, e2, ...]".
type NewArray struct {
	Elements []Expr
	Typ      types.Type
}

func (e *NewArray) isExpr()        {}
func (e *NewArray) Type() types.Type { return e.Typ }

// ArrayRepeat is "[value; count]" with a statically known count.
type ArrayRepeat struct {
	Value Expr
	Count int
	Typ   types.Type
}

func (e *ArrayRepeat) isExpr()        {}
func (e *ArrayRepeat) Type() types.Type { return e.Typ }

// NewStruct is "Name { field: value, ... }", with Fields in declaration
// order (sema re-orders the source's field-init list to match the struct's
// declared field order so the emitter can lay them out positionally).
type NewStruct struct {
	Typ    types.Type
	Fields []Expr
}

func (e *NewStruct) isExpr()        {}
func (e *NewStruct) Type() types.Type { return e.Typ }

// FnValue captures a non-capturing function literal or a reference to a
// named free function/method used as a first-class value.
type FnValue struct {
	QualifiedName string
	Typ           types.Type
}

func (e *FnValue) isExpr()        {}
func (e *FnValue) Type() types.Type { return e.Typ }
