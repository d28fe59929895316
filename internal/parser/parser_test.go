package parser

import (
	"testing"

	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
)

func parse(t *testing.T, text string) *ast.File {
	t.Helper()
	f := source.NewFile(0, "test.sk", []byte(text))
	file, errs := ParseFile(f)
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %v", text, errs)
	}
	return file
}

func TestParser_MainReturnsInt(t *testing.T) {
	f := parse(t, `fn main() -> Int { return 42; }`)
	if len(f.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(f.Decls))
	}
	fn, ok := f.Decls[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("expected FnDecl, got %T", f.Decls[0])
	}
	if fn.Name != "main" {
		t.Fatalf("expected name main, got %s", fn.Name)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body))
	}
}

func TestParser_ImportForms(t *testing.T) {
	f := parse(t, `
		import utils.math;
		import utils.math as m;
		from utils.math import add, sub as s;
		from utils.math import *;
	`)
	if len(f.Decls) != 4 {
		t.Fatalf("expected 4 decls, got %d", len(f.Decls))
	}
	i0 := f.Decls[0].(*ast.ImportDecl)
	if i0.From || i0.Alias != "" {
		t.Fatalf("bad decl 0: %+v", i0)
	}
	i1 := f.Decls[1].(*ast.ImportDecl)
	if i1.Alias != "m" {
		t.Fatalf("bad decl 1: %+v", i1)
	}
	i2 := f.Decls[2].(*ast.ImportDecl)
	if !i2.From || len(i2.Names) != 2 || i2.Names[1].Alias != "s" {
		t.Fatalf("bad decl 2: %+v", i2)
	}
	i3 := f.Decls[3].(*ast.ImportDecl)
	if !i3.Wildcard {
		t.Fatalf("bad decl 3: %+v", i3)
	}
}

func TestParser_ExportForms(t *testing.T) {
	f := parse(t, `
		export { add, sub as s };
		export * from utils.math;
	`)
	e0 := f.Decls[0].(*ast.ExportDecl)
	if len(e0.Names) != 2 || e0.Names[1].Alias != "s" {
		t.Fatalf("bad export 0: %+v", e0)
	}
	e1 := f.Decls[1].(*ast.ExportDecl)
	if !e1.Wildcard || len(e1.From) != 2 {
		t.Fatalf("bad export 1: %+v", e1)
	}
}

func TestParser_StructAndImpl(t *testing.T) {
	f := parse(t, `
		struct Point { x: Int, y: Int, }
		impl Point {
			fn sum(self: Point) -> Int { return self.x + self.y; }
		}
	`)
	s := f.Decls[0].(*ast.StructDecl)
	if s.Name != "Point" || len(s.Fields) != 2 {
		t.Fatalf("bad struct: %+v", s)
	}
	im := f.Decls[1].(*ast.ImplDecl)
	if im.Struct != "Point" || len(im.Methods) != 1 {
		t.Fatalf("bad impl: %+v", im)
	}
}

func TestParser_OperatorPrecedence(t *testing.T) {
	f := parse(t, `fn f() -> Int { return 1 + 2 * 3 == 7 && !false; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	ret := fn.Body[0].(*ast.ReturnStmt)
	and := ret.Value.(*ast.BinaryExpr)
	if and.Op != "&&" {
		t.Fatalf("expected top-level &&, got %s", and.Op)
	}
	eq := and.Left.(*ast.BinaryExpr)
	if eq.Op != "==" {
		t.Fatalf("expected ==, got %s", eq.Op)
	}
	add := eq.Left.(*ast.BinaryExpr)
	if add.Op != "+" {
		t.Fatalf("expected +, got %s", add.Op)
	}
	mul := add.Right.(*ast.BinaryExpr)
	if mul.Op != "*" {
		t.Fatalf("expected * to bind tighter than +, got %s", mul.Op)
	}
}

func TestParser_ArrayTypesAndLiterals(t *testing.T) {
	f := parse(t, `fn f() -> Int {
		let a: [Int; 2] = [1, 2];
		let b: [Int; 3] = [3, 4, 5];
		let c = a + b;
		let z = [0; 5];
		return c[4];
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	letA := fn.Body[0].(*ast.LetStmt)
	arrType := letA.Type.(*ast.ArrayType)
	if arrType.Length.String() != "2" {
		t.Fatalf("bad length: %s", arrType.Length)
	}
	letZ := fn.Body[3].(*ast.LetStmt)
	if _, ok := letZ.Value.(*ast.ArrayRepeatLit); !ok {
		t.Fatalf("expected array repeat literal, got %T", letZ.Value)
	}
}

func TestParser_ForWithOmittedClauses(t *testing.T) {
	f := parse(t, `fn f() -> Int {
		for (;;) { break; }
		return 0;
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	fs := fn.Body[0].(*ast.ForStmt)
	if fs.Init != nil || fs.Cond != nil || fs.Step != nil {
		t.Fatalf("expected all clauses omitted: %+v", fs)
	}
}

func TestParser_MatchWithWildcardAndOrPatterns(t *testing.T) {
	f := parse(t, `fn f(x: Int) -> Int {
		match x {
			1 | 2 => { return 1; }
			_ => { return 0; }
		}
		return 0;
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	m := fn.Body[0].(*ast.MatchStmt)
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	if len(m.Arms[0].Patterns) != 2 {
		t.Fatalf("expected 2 patterns in first arm, got %d", len(m.Arms[0].Patterns))
	}
	if !m.Arms[1].Wildcard {
		t.Fatalf("expected second arm to be wildcard")
	}
}

func TestParser_TrailingCommasAccepted(t *testing.T) {
	parse(t, `fn f(a: Int, b: Int,) -> Int {
		let arr = [1, 2, 3,];
		return f(a, b,);
	}`)
}

func TestParser_ErrorRecoveryReportsMultiple(t *testing.T) {
	f := source.NewFile(0, "t.sk", []byte(`
		fn f() -> Int { return ; 1 }
		fn g() -> Int { return 2 }
	`))
	_, errs := ParseFile(f)
	if len(errs) < 2 {
		t.Fatalf("expected parse errors from both functions, got %d: %v", len(errs), errs)
	}
}

func TestParser_FnLiteral(t *testing.T) {
	f := parse(t, `fn f() -> Int {
		let add = fn(a: Int, b: Int) -> Int { return a + b; };
		return add(1, 2);
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	let := fn.Body[0].(*ast.LetStmt)
	if _, ok := let.Value.(*ast.FnLit); !ok {
		t.Fatalf("expected FnLit, got %T", let.Value)
	}
}
