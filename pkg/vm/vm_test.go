package vm

import (
	"testing"

	"github.com/AayushMainali-Github/skepa-lang/pkg/bytecode"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

func mustEmit(t *testing.T, prog *ir.Program) *bytecode.Program {
	t.Helper()
	out, err := bytecode.Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return out
}

func TestRunSimpleReturn(t *testing.T) {
	prog := mustEmit(t, &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: ir.IntLit{Value: 42}},
				},
			},
		},
	})

	m := NewMachine(prog)
	exitCode, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", exitCode)
	}
}

func TestRunDivisionByZeroTraps(t *testing.T) {
	prog := mustEmit(t, &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.Binary{
						Op:    "/",
						Left:  ir.IntLit{Value: 1},
						Right: ir.IntLit{Value: 0},
						Typ:   types.TInt,
					}},
				},
			},
		},
	})

	m := NewMachine(prog)
	_, err := m.Run()
	if err == nil {
		t.Fatal("expected a trap, got nil error")
	}
	trap, ok := err.(*Trap)
	if !ok {
		t.Fatalf("expected *Trap, got %T", err)
	}
	if trap.Label != ErrDivZero {
		t.Fatalf("expected %s, got %s", ErrDivZero, trap.Label)
	}
}

func TestRunGlobalInitializerFeedsMain(t *testing.T) {
	prog := mustEmit(t, &ir.Program{
		EntryIndex: 0,
		Globals: []ir.Global{
			{QualifiedName: "main.limit", Typ: types.TInt, Init: ir.IntLit{Value: 7}},
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
	})

	m := NewMachine(prog)
	exitCode, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exitCode != 7 {
		t.Fatalf("expected exit code 7, got %d", exitCode)
	}
}

func TestRunFunctionCallAndArity(t *testing.T) {
	prog := mustEmit(t, &ir.Program{
		EntryIndex: 1,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.double",
				Params:        []ir.Local{{Name: "x", Type: types.TInt}},
				Ret:           types.TInt,
				NumLocals:     1,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.Binary{
						Op:    "+",
						Left:  &ir.LoadLocal{Slot: 0, Typ: types.TInt},
						Right: &ir.LoadLocal{Slot: 0, Typ: types.TInt},
						Typ:   types.TInt,
					}},
				},
			},
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.Call{
						QualifiedName: "main.double",
						Args:          []ir.Expr{ir.IntLit{Value: 21}},
						Typ:           types.TInt,
					}},
				},
			},
		},
	})

	m := NewMachine(prog)
	exitCode, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", exitCode)
	}
}

func TestIndexOutOfBoundsTraps(t *testing.T) {
	prog := mustEmit(t, &ir.Program{
		EntryIndex: 0,
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: &ir.IndexGet{
						Recv:  &ir.NewArray{Elements: []ir.Expr{ir.IntLit{Value: 1}}, Typ: types.NewArray(types.TInt, 1)},
						Index: ir.IntLit{Value: 5},
						Typ:   types.TInt,
					}},
				},
			},
		},
	})

	m := NewMachine(prog)
	_, err := m.Run()
	if err == nil {
		t.Fatal("expected a trap, got nil error")
	}
	trap, ok := err.(*Trap)
	if !ok {
		t.Fatalf("expected *Trap, got %T", err)
	}
	if trap.Label != ErrIndexOOB {
		t.Fatalf("expected %s, got %s", ErrIndexOOB, trap.Label)
	}
}
