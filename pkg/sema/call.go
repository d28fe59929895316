package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/pkg/builtin"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// checkCall dispatches a call expression to one of four forms: a built-in
// (CallBuiltin), a statically resolved free function or method
// (Call/MethodCall by qualified name), or a first-class function value
// (Call with a Callee expression).
func (c *checker) checkCall(m *module.Module, sc *env, x *ast.CallExpr) (ir.Expr, types.Type, diag.Errors) {
	switch callee := x.Callee.(type) {
	case *ast.PathExpr:
		return c.checkPathCall(m, sc, callee, x)
	case *ast.FieldExpr:
		return c.checkMethodCall(m, sc, callee.Recv, callee.Field, x)
	case *ast.Ident:
		if fi, ok := c.fnsByKey[qualifiedName(m.Path, callee.Name)]; ok && !fi.isMethod {
			return c.checkArgsAndBuildCall(m, sc, x, fi.params, fi.ret, func(args []ir.Expr) ir.Expr {
				return &ir.Call{QualifiedName: fi.qualifiedName, Args: args, Typ: fi.ret}
			})
		}
		// Fall back to treating the identifier as an ordinary fn-typed value.
		calleeExpr, ct, errs := c.checkExpr(m, sc, callee)
		if errs.HasErrors() {
			return nil, types.Type{}, errs
		}
		return c.checkValueCall(m, sc, x, calleeExpr, ct)
	default:
		calleeExpr, ct, errs := c.checkExpr(m, sc, x.Callee)
		if errs.HasErrors() {
			return nil, types.Type{}, errs
		}
		return c.checkValueCall(m, sc, x, calleeExpr, ct)
	}
}

// checkPathCall handles "pkg.fn(...)" / "ns.fn(...)" / "recv.field.method(...)".
func (c *checker) checkPathCall(m *module.Module, sc *env, callee *ast.PathExpr, x *ast.CallExpr) (ir.Expr, types.Type, diag.Errors) {
	path := callee.Path
	head := path[0]

	if module.IsBuiltinRoot(head) {
		if len(path) != 2 {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, callee.Sp, m.Path.String(), "built-in call %q must be 'pkg.name'", joinDots(path))}
		}
		return c.checkBuiltinCall(m, sc, head, path[1], x)
	}

	if b, ok := m.Imports[head]; ok && b.Kind == module.BindNamespace {
		if len(path) != 2 {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, callee.Sp, m.Path.String(), "dotted call %q does not resolve transitively through module namespaces", joinDots(path))}
		}
		target, _ := c.g.ModuleByPath(b.Namespace)
		sym, ok := target.ExportMap[path[1]]
		if !ok {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, callee.Sp, m.Path.String(), "module %q does not export %q", b.Namespace, path[1])}
		}
		if sym.Kind != module.SymFunc {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, callee.Sp, m.Path.String(), "%q is not a function", path[1])}
		}
		fi := c.fnsByKey[qualifiedName(sym.Module, sym.Name)]
		return c.checkArgsAndBuildCall(m, sc, x, fi.params, fi.ret, func(args []ir.Expr) ir.Expr {
			return &ir.Call{QualifiedName: fi.qualifiedName, Args: args, Typ: fi.ret}
		})
	}

	// Method call: resolve path[:len-1] as a receiver value, path[len-1] as
	// the method name.
	recvPath := path[:len(path)-1]
	method := path[len(path)-1]
	var recvExpr ir.Expr
	var recvType types.Type
	var errs diag.Errors
	if len(recvPath) == 1 {
		recvExpr, recvType, errs = c.checkIdent(m, sc, &ast.Ident{Sp: callee.Sp, Name: recvPath[0]})
	} else {
		recvExpr, recvType, _, errs = c.resolvePath(m, sc, recvPath, callee.Sp)
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return c.checkMethodCallValue(m, sc, recvExpr, recvType, method, x, callee.Sp)
}

func (c *checker) checkMethodCall(m *module.Module, sc *env, recv ast.Expr, method string, x *ast.CallExpr) (ir.Expr, types.Type, diag.Errors) {
	recvExpr, recvType, errs := c.checkExpr(m, sc, recv)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return c.checkMethodCallValue(m, sc, recvExpr, recvType, method, x, recv.Span())
}

func (c *checker) checkMethodCallValue(m *module.Module, sc *env, recvExpr ir.Expr, recvType types.Type, method string, x *ast.CallExpr, sp source.Span) (ir.Expr, types.Type, diag.Errors) {
	if recvType.Kind() == types.Named {
		if fi, ok := c.methodInfo(recvType, method); ok {
			return c.checkArgsAndBuildCall(m, sc, x, fi.params[1:], fi.ret, func(args []ir.Expr) ir.Expr {
				return &ir.MethodCall{Recv: recvExpr, QualifiedName: fi.qualifiedName, Args: args, Typ: fi.ret}
			})
		}
		// Not a method: maybe a fn-typed field.
		if fi, ok := c.fieldInfo(recvType, method); ok {
			fieldExpr := &ir.FieldGet{Recv: recvExpr, Field: method, Typ: fi.typ}
			return c.checkValueCall(m, sc, x, fieldExpr, fi.typ)
		}
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(), "struct %s has no method or field %q", recvType, method)}
	}
	return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(), "cannot call %q on non-struct type %s", method, recvType)}
}

// checkValueCall checks a call through a first-class function value (an
// already-lowered callee expression of Fn type).
func (c *checker) checkValueCall(m *module.Module, sc *env, x *ast.CallExpr, calleeExpr ir.Expr, ct types.Type) (ir.Expr, types.Type, diag.Errors) {
	if ct.Kind() != types.Fn {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "cannot call non-function type %s", ct)}
	}
	return c.checkArgsAndBuildCall(m, sc, x, ct.Params(), ct.Ret(), func(args []ir.Expr) ir.Expr {
		return &ir.Call{Callee: calleeExpr, Args: args, Typ: ct.Ret()}
	})
}

func (c *checker) checkArgsAndBuildCall(m *module.Module, sc *env, x *ast.CallExpr, params []types.Type, ret types.Type, build func([]ir.Expr) ir.Expr) (ir.Expr, types.Type, diag.Errors) {
	var errs diag.Errors
	if len(x.Args) != len(params) {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "expected %d argument(s), got %d", len(params), len(x.Args)))
	}
	args := make([]ir.Expr, 0, len(x.Args))
	for i, a := range x.Args {
		ae, at, aErrs := c.checkExpr(m, sc, a)
		errs = append(errs, aErrs...)
		if aErrs.HasErrors() {
			continue
		}
		if i < len(params) && !at.Equals(params[i]) {
			errs = append(errs, diag.New(diag.ESema, a.Span(), m.Path.String(), "argument %d: expected %s, got %s", i+1, params[i], at))
		}
		args = append(args, ae)
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return build(args), ret, nil
}

func (c *checker) checkBuiltinCall(m *module.Module, sc *env, pkg, name string, x *ast.CallExpr) (ir.Expr, types.Type, diag.Errors) {
	if builtin.GenericPackages[pkg] {
		return c.checkGenericBuiltinCall(m, sc, pkg, name, x)
	}

	sig, ok := builtin.Lookup(pkg, name)
	if !ok {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "unknown built-in %s.%s", pkg, name)}
	}

	var errs diag.Errors
	minArgs := len(sig.Params)
	if !sig.Variadic && len(x.Args) != minArgs {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "%s.%s expects %d argument(s), got %d", pkg, name, minArgs, len(x.Args)))
	}
	if sig.Variadic && len(x.Args) < minArgs {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "%s.%s expects at least %d argument(s), got %d", pkg, name, minArgs, len(x.Args)))
	}

	// spec.md §6.4: when fmt is a string literal, io.printf/io.format's
	// variadic tail is type-checked against the literal's %d/%f/%s/%b
	// specifiers, rather than left unchecked until it traps at runtime.
	var formatTypes []types.Type
	if pkg == "io" && (name == "printf" || name == "format") && len(x.Args) >= 1 {
		if lit, ok := x.Args[0].(*ast.StringLit); ok {
			specs, err := parseFormatSpecs(lit.Value)
			if err != "" {
				errs = append(errs, diag.New(diag.ESema, lit.Sp, m.Path.String(), "%s.%s: %s", pkg, name, err))
			} else {
				formatTypes = specs
				if len(x.Args)-1 != len(specs) {
					errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "%s.%s: format string expects %d argument(s), got %d", pkg, name, len(specs), len(x.Args)-1))
				}
			}
		}
	}

	args := make([]ir.Expr, 0, len(x.Args))
	for i, a := range x.Args {
		ae, at, aErrs := c.checkExpr(m, sc, a)
		errs = append(errs, aErrs...)
		if aErrs.HasErrors() {
			continue
		}
		if i < len(sig.Params) && !at.Equals(sig.Params[i]) {
			errs = append(errs, diag.New(diag.ESema, a.Span(), m.Path.String(), "argument %d to %s.%s: expected %s, got %s", i+1, pkg, name, sig.Params[i], at))
		} else if formatTypes != nil && i >= len(sig.Params) && i-len(sig.Params) < len(formatTypes) {
			want := formatTypes[i-len(sig.Params)]
			if !at.Equals(want) {
				errs = append(errs, diag.New(diag.ESema, a.Span(), m.Path.String(), "argument %d to %s.%s: format specifier expects %s, got %s", i+1, pkg, name, want, at))
			}
		}
		args = append(args, ae)
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return &ir.CallBuiltin{Sig: sig, Args: args, Typ: sig.Ret}, sig.Ret, nil
}

// parseFormatSpecs scans a literal io.printf/io.format string for %d, %f,
// %s, %b, %% verbs (matching pkg/vm's formatArgs) and returns the argument
// type each non-%% verb requires, in order. Returns a non-empty error
// string instead of a types.Type slice when the literal itself is
// malformed (trailing '%' or an unrecognized verb).
func parseFormatSpecs(format string) ([]types.Type, string) {
	var specs []types.Type
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return nil, "trailing '%' in format string"
		}
		verb := format[i+1]
		i++
		switch verb {
		case 'd':
			specs = append(specs, types.TInt)
		case 'f':
			specs = append(specs, types.TFloat)
		case 's':
			specs = append(specs, types.TString)
		case 'b':
			specs = append(specs, types.TBool)
		case '%':
			// literal '%', consumes no argument
		default:
			return nil, "unknown format verb '%" + string(verb) + "'"
		}
	}
	return specs, ""
}
