package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/builtin"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// checkGenericBuiltinCall type-checks a call into the "arr" or "vec"
// packages, whose signatures depend on the element type of their first
// (receiver) argument and so cannot live in the fixed table in
// pkg/builtin (spec.md §6.4/§9's extended arr surface).
func (c *checker) checkGenericBuiltinCall(m *module.Module, sc *env, pkg, name string, x *ast.CallExpr) (ir.Expr, types.Type, diag.Errors) {
	if pkg == "vec" && name == "new" {
		// Handled specially by checkLetStmt (via checkVecNew) using the let
		// annotation as a type hint; reaching here means vec.new() was used
		// without one.
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "vec.new() requires an explicit 'let x: Vec<T> = ...' annotation to fix T")}
	}
	if len(x.Args) == 0 {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "%s.%s requires at least one argument", pkg, name)}
	}

	recvExpr, recvType, errs := c.checkExpr(m, sc, x.Args[0])
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}

	var elem types.Type
	switch {
	case pkg == "arr":
		if recvType.Kind() != types.Array && recvType.Kind() != types.Vec {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Args[0].Span(), m.Path.String(), "arr.%s expects an Array or Vec, got %s", name, recvType)}
		}
		elem = recvType.Elem()
	case pkg == "vec":
		if recvType.Kind() != types.Vec {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Args[0].Span(), m.Path.String(), "vec.%s expects a Vec, got %s", name, recvType)}
		}
		elem = recvType.Elem()
	}

	rest := x.Args[1:]
	checkRest := func(want ...types.Type) ([]ir.Expr, diag.Errors) {
		var errs diag.Errors
		if len(rest) != len(want) {
			errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "%s.%s expects %d argument(s) after the receiver, got %d", pkg, name, len(want), len(rest)))
			return nil, errs
		}
		args := make([]ir.Expr, len(rest))
		for i, a := range rest {
			ae, at, aErrs := c.checkExpr(m, sc, a)
			errs = append(errs, aErrs...)
			if aErrs.HasErrors() {
				continue
			}
			if !at.Equals(want[i]) {
				errs = append(errs, diag.New(diag.ESema, a.Span(), m.Path.String(), "argument %d to %s.%s: expected %s, got %s", i+2, pkg, name, want[i], at))
			}
			args[i] = ae
		}
		return args, errs
	}

	build := func(ret types.Type, args []ir.Expr) (ir.Expr, types.Type, diag.Errors) {
		sig, _ := builtin.Lookup(pkg, name)
		sig.Ret = ret
		all := append([]ir.Expr{recvExpr}, args...)
		return &ir.CallBuiltin{Sig: sig, Args: all, Typ: ret}, ret, nil
	}

	if pkg == "arr" {
		switch name {
		case "len", "count", "indexOf":
			want := types.Type{}
			switch name {
			case "count", "indexOf":
				want = elem
			}
			var args []ir.Expr
			var rErrs diag.Errors
			if name == "len" {
				if len(rest) != 0 {
					rErrs = diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.len takes no extra arguments")}
				}
			} else {
				args, rErrs = checkRest(want)
			}
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(types.TInt, args)
		case "isEmpty", "contains":
			var args []ir.Expr
			var rErrs diag.Errors
			if name == "isEmpty" {
				if len(rest) != 0 {
					rErrs = diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.isEmpty takes no extra arguments")}
				}
			} else {
				args, rErrs = checkRest(elem)
			}
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(types.TBool, args)
		case "first", "last", "sum", "min", "max":
			if len(rest) != 0 {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.%s takes no extra arguments", name)}
			}
			if (name == "sum" || name == "min" || name == "max") && !elem.IsNumeric() {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.%s requires a numeric element type, got %s", name, elem)}
			}
			return build(elem, nil)
		case "join":
			if !elem.Equals(types.TString) {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.join requires an array of String")}
			}
			args, rErrs := checkRest(types.TString)
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(types.TString, args)
		case "reverse", "sort":
			if len(rest) != 0 {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.%s takes no extra arguments", name)}
			}
			return build(recvType, nil)
		case "distinct":
			if len(rest) != 0 {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "arr.distinct takes no extra arguments")}
			}
			return build(recvType, nil)
		case "slice":
			args, rErrs := checkRest(types.TInt, types.TInt)
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(recvType, args)
		}
	}

	if pkg == "vec" {
		switch name {
		case "len":
			if len(rest) != 0 {
				return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "vec.len takes no extra arguments")}
			}
			return build(types.TInt, nil)
		case "push":
			args, rErrs := checkRest(elem)
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(types.TVoid, args)
		case "get", "delete":
			args, rErrs := checkRest(types.TInt)
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(elem, args)
		case "set":
			args, rErrs := checkRest(types.TInt, elem)
			if rErrs.HasErrors() {
				return nil, types.Type{}, rErrs
			}
			return build(types.TVoid, args)
		}
	}

	return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "unknown built-in %s.%s", pkg, name)}
}

// checkVecNew recognizes "vec.new()" used directly as a let initializer,
// resolving its element type from the let statement's explicit annotation.
func (c *checker) checkVecNew(m *module.Module, x ast.Expr, hint types.Type) (ir.Expr, types.Type, bool, diag.Errors) {
	call, ok := x.(*ast.CallExpr)
	if !ok {
		return nil, types.Type{}, false, nil
	}
	path, ok := call.Callee.(*ast.PathExpr)
	if !ok || len(path.Path) != 2 || path.Path[0] != "vec" || path.Path[1] != "new" {
		return nil, types.Type{}, false, nil
	}
	if len(call.Args) != 0 {
		return nil, types.Type{}, true, diag.Errors{diag.New(diag.ESema, call.Sp, m.Path.String(), "vec.new takes no arguments")}
	}
	if hint.Kind() != types.Vec {
		return nil, types.Type{}, true, diag.Errors{diag.New(diag.ESema, call.Sp, m.Path.String(), "vec.new() requires a 'let x: Vec<T> = ...' annotation to fix its element type")}
	}
	sig, _ := builtin.Lookup("vec", "new")
	sig.Ret = hint
	return &ir.CallBuiltin{Sig: sig, Typ: hint}, hint, true, nil
}
