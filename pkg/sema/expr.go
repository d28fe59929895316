package sema

import (
	"strconv"

	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

func qualifiedName(modPath module.Path, name string) string {
	return modPath.String() + "." + name
}

// checkExpr type-checks e within module m and scope sc, returning its typed
// lowering. On error the returned Type is the zero Type and errs is
// non-empty; callers should still keep checking siblings where possible.
func (c *checker) checkExpr(m *module.Module, sc *env, e ast.Expr) (ir.Expr, types.Type, diag.Errors) {
	switch x := e.(type) {
	case *ast.IntLit:
		return ir.IntLit{Value: x.Value}, types.TInt, nil
	case *ast.FloatLit:
		return ir.FloatLit{Value: x.Value}, types.TFloat, nil
	case *ast.BoolLit:
		return ir.BoolLit{Value: x.Value}, types.TBool, nil
	case *ast.StringLit:
		return ir.StringLit{Value: x.Value}, types.TString, nil
	case *ast.Ident:
		return c.checkIdent(m, sc, x)
	case *ast.PathExpr:
		ex, t, isNamespace, errs := c.resolvePath(m, sc, x.Path, x.Sp)
		if isNamespace {
			errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "built-in or module %q must be called directly", x.Path[0]))
		}
		return ex, t, errs
	case *ast.GroupExpr:
		return c.checkExpr(m, sc, x.Expr)
	case *ast.UnaryExpr:
		return c.checkUnary(m, sc, x)
	case *ast.BinaryExpr:
		return c.checkBinary(m, sc, x)
	case *ast.CallExpr:
		return c.checkCall(m, sc, x)
	case *ast.FieldExpr:
		return c.checkField(m, sc, x)
	case *ast.IndexExpr:
		return c.checkIndex(m, sc, x)
	case *ast.ArrayLit:
		return c.checkArrayLit(m, sc, x)
	case *ast.ArrayRepeatLit:
		return c.checkArrayRepeat(m, sc, x)
	case *ast.StructLit:
		return c.checkStructLit(m, sc, x)
	case *ast.FnLit:
		return c.checkFnLit(m, sc, x)
	default:
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, e.Span(), m.Path.String(), "unsupported expression")}
	}
}

func (c *checker) checkIdent(m *module.Module, sc *env, x *ast.Ident) (ir.Expr, types.Type, diag.Errors) {
	if v, ok := sc.lookup(x.Name); ok {
		return &ir.LoadLocal{Slot: v.slot, Typ: v.typ}, v.typ, nil
	}
	if sc.capturesOuter(x.Name) {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(),
			"function literal cannot reference enclosing local %q (function literals do not capture)", x.Name)}
	}
	if sym, ok := m.Locals[x.Name]; ok {
		return c.exprForSymbol(m, sym, x.Sp)
	}
	if b, ok := m.Imports[x.Name]; ok {
		if b.Kind == module.BindSymbol {
			return c.exprForSymbol(m, b.Symbol, x.Sp)
		}
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(),
			"%q names a module and must be used as a prefix, not a value", x.Name)}
	}
	return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "undefined name %q", x.Name)}
}

// exprForSymbol lowers a resolved module-level Symbol (function or global)
// into a value expression. Struct symbols are not values.
func (c *checker) exprForSymbol(m *module.Module, sym *module.Symbol, sp source.Span) (ir.Expr, types.Type, diag.Errors) {
	key := qualifiedName(sym.Module, sym.Name)
	switch sym.Kind {
	case module.SymFunc:
		info, ok := c.fnsByKey[key]
		if !ok {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(), "unresolved function %q", sym.Name)}
		}
		ft := types.NewFn(info.params, info.ret)
		return &ir.FnValue{QualifiedName: key, Typ: ft}, ft, nil
	case module.SymGlobal:
		t, ok := c.globalsByKey[key]
		if !ok {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(), "unresolved global %q", sym.Name)}
		}
		return &ir.LoadGlobal{QualifiedName: key, Typ: t}, t, nil
	default:
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(), "%q is a type, not a value", sym.Name)}
	}
}

// resolvePath resolves a dotted PathExpr chain. It returns isNamespace=true
// when path[0] names an unresolved module/builtin prefix that the caller
// (checkCall) is responsible for turning into a call — any other context
// seeing a bare namespace prefix is an error.
func (c *checker) resolvePath(m *module.Module, sc *env, path []string, sp source.Span) (ir.Expr, types.Type, bool, diag.Errors) {
	head := path[0]

	if module.IsBuiltinRoot(head) {
		return nil, types.Type{}, true, nil
	}
	if b, ok := m.Imports[head]; ok && b.Kind == module.BindNamespace {
		if len(path) != 2 {
			return nil, types.Type{}, false, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(),
				"dotted access %q does not resolve transitively through module namespaces", joinDots(path))}
		}
		target, _ := c.g.ModuleByPath(b.Namespace)
		sym, ok := target.ExportMap[path[1]]
		if !ok {
			return nil, types.Type{}, false, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(),
				"module %q does not export %q", b.Namespace, path[1])}
		}
		ex, t, errs := c.exprForSymbol(m, sym, sp)
		return ex, t, false, errs
	}

	// Otherwise path[0] is a plain value (local, global, or own-module
	// function/import-symbol); remaining segments are struct field reads.
	ex, t, errs := c.checkIdent(m, sc, &ast.Ident{Sp: sp, Name: head})
	if errs.HasErrors() {
		return nil, types.Type{}, false, errs
	}
	for _, field := range path[1:] {
		if t.Kind() != types.Named {
			return nil, types.Type{}, false, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(),
				"cannot access field %q of non-struct type %s", field, t)}
		}
		fi, ok := c.fieldInfo(t, field)
		if !ok {
			return nil, types.Type{}, false, diag.Errors{diag.New(diag.ESema, sp, m.Path.String(),
				"struct %s has no field %q", t, field)}
		}
		ex = &ir.FieldGet{Recv: ex, Field: field, Typ: fi.typ}
		t = fi.typ
	}
	return ex, t, false, nil
}

func joinDots(path []string) string {
	s := path[0]
	for _, p := range path[1:] {
		s += "." + p
	}
	return s
}

func (c *checker) fieldInfo(t types.Type, name string) (fieldInfo, bool) {
	info, ok := c.structsByKey[qualifiedName(module.ParsePath(t.Module()), t.Name())]
	if !ok {
		return fieldInfo{}, false
	}
	for _, f := range info.fields {
		if f.name == name {
			return f, true
		}
	}
	return fieldInfo{}, false
}

func (c *checker) methodInfo(t types.Type, name string) (*fnInfo, bool) {
	key := qualifiedName(module.ParsePath(t.Module()), t.Name())
	set, ok := c.methodsByStruct[key]
	if !ok {
		return nil, false
	}
	fi, ok := set[name]
	return fi, ok
}

func (c *checker) checkUnary(m *module.Module, sc *env, x *ast.UnaryExpr) (ir.Expr, types.Type, diag.Errors) {
	xe, xt, errs := c.checkExpr(m, sc, x.X)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	switch x.Op {
	case "!":
		if !xt.Equals(types.TBool) {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "'!' requires Bool, got %s", xt)}
		}
		return &ir.Unary{Op: x.Op, X: xe, Typ: types.TBool}, types.TBool, nil
	case "-", "+":
		if !xt.IsNumeric() {
			return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "unary %q requires Int or Float, got %s", x.Op, xt)}
		}
		return &ir.Unary{Op: x.Op, X: xe, Typ: xt}, xt, nil
	default:
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "unknown unary operator %q", x.Op)}
	}
}

func (c *checker) checkBinary(m *module.Module, sc *env, x *ast.BinaryExpr) (ir.Expr, types.Type, diag.Errors) {
	le, lt, errs1 := c.checkExpr(m, sc, x.Left)
	re, rt, errs2 := c.checkExpr(m, sc, x.Right)
	errs := append(errs1, errs2...)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}

	fail := func(msg string, args ...any) (ir.Expr, types.Type, diag.Errors) {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), msg, args...)}
	}

	switch x.Op {
	case "+":
		switch {
		case lt.Equals(types.TInt) && rt.Equals(types.TInt):
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TInt}, types.TInt, nil
		case lt.Equals(types.TFloat) && rt.Equals(types.TFloat):
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TFloat}, types.TFloat, nil
		case lt.Equals(types.TString) && rt.Equals(types.TString):
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TString}, types.TString, nil
		case lt.Kind() == types.Array && rt.Kind() == types.Array && lt.Elem().Equals(rt.Elem()):
			concatType := types.NewArray(lt.Elem(), lt.Length()+rt.Length())
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: concatType}, concatType, nil
		default:
			return fail("'+' is not defined for %s and %s", lt, rt)
		}
	case "-", "*", "/":
		if lt.Equals(types.TInt) && rt.Equals(types.TInt) {
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TInt}, types.TInt, nil
		}
		if lt.Equals(types.TFloat) && rt.Equals(types.TFloat) {
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TFloat}, types.TFloat, nil
		}
		return fail("%q requires matching Int or Float operands, got %s and %s", x.Op, lt, rt)
	case "%":
		if lt.Equals(types.TInt) && rt.Equals(types.TInt) {
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TInt}, types.TInt, nil
		}
		return fail("'%%' requires Int % Int, got %s and %s", lt, rt)
	case "<", "<=", ">", ">=":
		if (lt.Equals(types.TInt) && rt.Equals(types.TInt)) || (lt.Equals(types.TFloat) && rt.Equals(types.TFloat)) {
			return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TBool}, types.TBool, nil
		}
		return fail("%q requires same-type Int or Float operands, got %s and %s", x.Op, lt, rt)
	case "==", "!=":
		if !lt.Equals(rt) || !(lt.IsPrimitive()) {
			return fail("%q requires matching primitive operands, got %s and %s", x.Op, lt, rt)
		}
		return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TBool}, types.TBool, nil
	case "&&", "||":
		if !lt.Equals(types.TBool) || !rt.Equals(types.TBool) {
			return fail("%q requires Bool operands, got %s and %s", x.Op, lt, rt)
		}
		return &ir.Binary{Op: x.Op, Left: le, Right: re, Typ: types.TBool}, types.TBool, nil
	default:
		return fail("unknown binary operator %q", x.Op)
	}
}

func (c *checker) checkIndex(m *module.Module, sc *env, x *ast.IndexExpr) (ir.Expr, types.Type, diag.Errors) {
	re, rt, errs1 := c.checkExpr(m, sc, x.Recv)
	ie, it, errs2 := c.checkExpr(m, sc, x.Index)
	errs := append(errs1, errs2...)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	if !it.Equals(types.TInt) {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "index must be Int, got %s", it))
	}
	var elemType types.Type
	switch rt.Kind() {
	case types.Array, types.Vec:
		elemType = rt.Elem()
	case types.String:
		elemType = types.TString
	default:
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "cannot index type %s", rt))
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return &ir.IndexGet{Recv: re, Index: ie, Typ: elemType}, elemType, nil
}

func (c *checker) checkArrayLit(m *module.Module, sc *env, x *ast.ArrayLit) (ir.Expr, types.Type, diag.Errors) {
	if len(x.Elements) == 0 {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "empty array literals require a type annotation, use 'let' with an explicit type and '[e; 0]' instead")}
	}
	var errs diag.Errors
	elems := make([]ir.Expr, 0, len(x.Elements))
	var elemType types.Type
	for i, el := range x.Elements {
		ee, et, eErrs := c.checkExpr(m, sc, el)
		errs = append(errs, eErrs...)
		if eErrs.HasErrors() {
			continue
		}
		if i == 0 {
			elemType = et
		} else if !et.Equals(elemType) {
			errs = append(errs, diag.New(diag.ESema, el.Span(), m.Path.String(), "array element %d has type %s, expected %s", i, et, elemType))
		}
		elems = append(elems, ee)
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	t := types.NewArray(elemType, len(elems))
	return &ir.NewArray{Elements: elems, Typ: t}, t, nil
}

func (c *checker) checkArrayRepeat(m *module.Module, sc *env, x *ast.ArrayRepeatLit) (ir.Expr, types.Type, diag.Errors) {
	ve, vt, errs := c.checkExpr(m, sc, x.Value)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	lit, ok := x.Count.(*ast.IntLit)
	if !ok {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "'[e; n]' requires n to be an integer literal")}
	}
	n := int(lit.Value)
	if n < 0 {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "array repeat count must be non-negative")}
	}
	t := types.NewArray(vt, n)
	return &ir.ArrayRepeat{Value: ve, Count: n, Typ: t}, t, nil
}

func (c *checker) checkStructLit(m *module.Module, sc *env, x *ast.StructLit) (ir.Expr, types.Type, diag.Errors) {
	info, ok := c.structsByKey[qualifiedStruct(m, x.Name)]
	if !ok {
		if sym, imported := m.Imports[x.Name]; imported && sym.Kind == module.BindSymbol && sym.Symbol.Kind == module.SymStruct {
			info = c.structsByKey[qualifiedName(sym.Symbol.Module, sym.Symbol.Name)]
		}
	}
	if info == nil {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "unknown struct %q", x.Name)}
	}

	structType := types.NewNamed(info.module.Path.String(), x.Name)
	given := map[string]ast.Expr{}
	var errs diag.Errors
	for _, f := range x.Fields {
		if _, dup := given[f.Name]; dup {
			errs = append(errs, diag.New(diag.ESema, f.Sp, m.Path.String(), "field %q specified more than once", f.Name))
			continue
		}
		given[f.Name] = f.Value
	}

	fields := make([]ir.Expr, len(info.fields))
	for i, fi := range info.fields {
		val, present := given[fi.name]
		if !present {
			errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "struct literal %q is missing field %q", x.Name, fi.name))
			continue
		}
		delete(given, fi.name)
		ve, vt, vErrs := c.checkExpr(m, sc, val)
		errs = append(errs, vErrs...)
		if vErrs.HasErrors() {
			continue
		}
		if !vt.Equals(fi.typ) {
			errs = append(errs, diag.New(diag.ESema, val.Span(), m.Path.String(), "field %q expects %s, got %s", fi.name, fi.typ, vt))
			continue
		}
		fields[i] = ve
	}
	for name := range given {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "struct %q has no field %q", x.Name, name))
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	return &ir.NewStruct{Typ: structType, Fields: fields}, structType, nil
}

func (c *checker) checkFnLit(m *module.Module, sc *env, x *ast.FnLit) (ir.Expr, types.Type, diag.Errors) {
	inner := sc.fresh()
	var errs diag.Errors
	params := make([]types.Type, 0, len(x.Params))
	for _, p := range x.Params {
		t, terr := c.resolveType(p.Type, m)
		if terr != nil {
			errs = append(errs, terr)
			continue
		}
		inner.declare(p.Name, t)
		params = append(params, t)
	}
	ret, terr := c.resolveType(x.Return, m)
	if terr != nil {
		errs = append(errs, terr)
	}
	body, bodyErrs := c.checkBlock(m, inner, x.Body)
	errs = append(errs, bodyErrs...)
	if !ret.Equals(types.TVoid) && !terminates(body) {
		errs = append(errs, diag.New(diag.ESema, x.Sp, m.Path.String(), "function literal does not return on every path"))
	}
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	fnType := types.NewFn(params, ret)
	qn := c.registerFnLit(m, params, inner.numSlots(), ret, body)
	return &ir.FnValue{QualifiedName: qn, Typ: fnType}, fnType, nil
}

// registerFnLit synthesizes a standalone ir.Function for a non-capturing
// function literal, named deterministically within its declaring module so
// two literals in the same module never collide.
func (c *checker) registerFnLit(m *module.Module, params []types.Type, numLocals int, ret types.Type, body []ir.Stmt) string {
	c.fnLitCounter++
	qn := qualifiedName(m.Path, "$fnlit") + "$" + strconv.Itoa(c.fnLitCounter)
	locals := make([]ir.Local, numLocals)
	for i := range locals {
		locals[i] = ir.Local{Name: "_", Type: types.TVoid}
	}
	for i, p := range params {
		locals[i] = ir.Local{Name: "_", Type: p}
	}
	c.synthFns = append(c.synthFns, &ir.Function{QualifiedName: qn, Params: locals[:len(params)], NumLocals: numLocals, Ret: ret, Body: body})
	return qn
}

