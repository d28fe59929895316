package bytecode

import (
	"testing"

	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

func TestEmitSimpleReturn(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				NumLocals:     0,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: ir.IntLit{Value: 42}},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(out.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(out.Functions))
	}
	fn := out.Functions[0]
	if fn.QualifiedName != "main.main" {
		t.Fatalf("unexpected name %q", fn.QualifiedName)
	}
	if len(fn.Consts) != 1 || fn.Consts[0].Kind != ConstInt || fn.Consts[0].I != 42 {
		t.Fatalf("unexpected const pool %+v", fn.Consts)
	}
	if Op(fn.Code[0]) != OpPushConst {
		t.Fatalf("expected PushConst first, got %s", Op(fn.Code[0]))
	}
}

func TestEmitIfElseBranches(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.IfStmt{
						Cond: ir.BoolLit{Value: true},
						Then: []ir.Stmt{&ir.ReturnStmt{Value: ir.IntLit{Value: 1}}},
						Else: []ir.Stmt{&ir.ReturnStmt{Value: ir.IntLit{Value: 0}}},
					},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	code := out.Functions[0].Code
	if len(code) == 0 {
		t.Fatal("expected non-empty code")
	}
	// Sanity: disassembly should not panic and should produce output.
	text := Disassemble(out)
	if text == "" {
		t.Fatal("expected non-empty disassembly")
	}
}

func TestEmitWhileLoopWithBreakContinue(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				NumLocals:     1,
				Body: []ir.Stmt{
					&ir.WhileStmt{
						Cond: ir.BoolLit{Value: true},
						Body: []ir.Stmt{
							&ir.ContinueStmt{},
							&ir.BreakStmt{},
						},
					},
					&ir.ReturnStmt{Value: ir.IntLit{Value: 0}},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(out.Functions[0].Code) == 0 {
		t.Fatal("expected non-empty code")
	}
}

func TestEmitGlobalInitializer(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Globals: []ir.Global{
			{QualifiedName: "main.limit", Typ: types.TInt, Init: ir.IntLit{Value: 10}},
		},
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.LoadGlobal{QualifiedName: "main.limit", Typ: types.TInt}},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(out.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(out.Globals))
	}
	code := out.Functions[0].Code
	if Op(code[0]) != OpLoadGlobal {
		t.Fatalf("expected LoadGlobal first, got %s", Op(code[0]))
	}
}

func TestEmitMatchWithMultiplePatternsAndWildcard(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				NumLocals:     1,
				Body: []ir.Stmt{
					&ir.MatchStmt{
						Target: types.TInt,
						Value:  &ir.LoadLocal{Slot: 0, Typ: types.TInt},
						Arms: []ir.MatchArm{
							{
								Patterns: []ir.Expr{ir.IntLit{Value: 1}, ir.IntLit{Value: 2}},
								Body:     []ir.Stmt{&ir.ReturnStmt{Value: ir.IntLit{Value: 10}}},
							},
							{
								Wildcard: true,
								Body:     []ir.Stmt{&ir.ReturnStmt{Value: ir.IntLit{Value: 0}}},
							},
						},
					},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(out.Functions[0].Code) == 0 {
		t.Fatal("expected non-empty code")
	}
	text := Disassemble(out)
	if text == "" {
		t.Fatal("expected non-empty disassembly")
	}
}

func TestEmitCallResolvesFunctionIndex(t *testing.T) {
	prog := &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{QualifiedName: "main.helper", Ret: types.TInt, Body: []ir.Stmt{&ir.ReturnStmt{Value: ir.IntLit{Value: 7}}}},
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.Call{QualifiedName: "main.helper", Typ: types.TInt}},
				},
			},
		},
	}

	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mainFn := out.Functions[1]
	if Op(mainFn.Code[0]) != OpCall {
		t.Fatalf("expected Call first, got %s", Op(mainFn.Code[0]))
	}
	funcID := le32(mainFn.Code[1:5])
	if funcID != 0 {
		t.Fatalf("expected call to resolve to function index 0 (helper), got %d", funcID)
	}
}
