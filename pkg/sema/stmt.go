package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// checkBlock type-checks a sequence of statements in a fresh child scope.
func (c *checker) checkBlock(m *module.Module, parent *env, stmts []ast.Stmt) ([]ir.Stmt, diag.Errors) {
	sc := parent.child()
	return c.checkStmtList(m, sc, stmts)
}

func (c *checker) checkStmtList(m *module.Module, sc *env, stmts []ast.Stmt) ([]ir.Stmt, diag.Errors) {
	var errs diag.Errors
	out := make([]ir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		st, sErrs := c.checkStmt(m, sc, s)
		errs = append(errs, sErrs...)
		if st != nil {
			out = append(out, st)
		}
	}
	return out, errs
}

func (c *checker) checkStmt(m *module.Module, sc *env, s ast.Stmt) (ir.Stmt, diag.Errors) {
	switch st := s.(type) {
	case *ast.LetStmt:
		return c.checkLetStmt(m, sc, st)
	case *ast.AssignStmt:
		return c.checkAssignStmt(m, sc, st)
	case *ast.IfStmt:
		return c.checkIfStmt(m, sc, st)
	case *ast.WhileStmt:
		return c.checkWhileStmt(m, sc, st)
	case *ast.ForStmt:
		return c.checkForStmt(m, sc, st)
	case *ast.MatchStmt:
		return c.checkMatchStmt(m, sc, st)
	case *ast.BreakStmt:
		if sc.loopDepth == 0 {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "'break' is only allowed inside a loop")}
		}
		return &ir.BreakStmt{}, nil
	case *ast.ContinueStmt:
		if sc.loopDepth == 0 {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "'continue' is only allowed inside a loop")}
		}
		return &ir.ContinueStmt{}, nil
	case *ast.ReturnStmt:
		return c.checkReturnStmt(m, sc, st)
	case *ast.ExprStmt:
		ve, _, errs := c.checkExpr(m, sc, st.Expr)
		if errs.HasErrors() {
			return nil, errs
		}
		return &ir.ExprStmt{Value: ve}, nil
	default:
		return nil, diag.Errors{diag.New(diag.ESema, s.Span(), m.Path.String(), "unsupported statement")}
	}
}

func (c *checker) checkLetStmt(m *module.Module, sc *env, st *ast.LetStmt) (ir.Stmt, diag.Errors) {
	var annotated types.Type
	hasAnnotation := st.Type != nil
	if hasAnnotation {
		t, err := c.resolveType(st.Type, m)
		if err != nil {
			return nil, diag.Errors{err}
		}
		annotated = t
	}

	if hasAnnotation {
		if ve, vt, handled, errs := c.checkVecNew(m, st.Value, annotated); handled {
			if errs.HasErrors() {
				return nil, errs
			}
			slot := sc.declare(st.Name, vt)
			return &ir.LetStmt{Slot: slot, Value: ve}, nil
		}
	}

	ve, vt, errs := c.checkExpr(m, sc, st.Value)
	if errs.HasErrors() {
		return nil, errs
	}
	if hasAnnotation && !vt.Equals(annotated) {
		return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "'let %s' declares %s but initializer has type %s", st.Name, annotated, vt)}
	}
	finalType := vt
	if hasAnnotation {
		finalType = annotated
	}
	slot := sc.declare(st.Name, finalType)
	return &ir.LetStmt{Slot: slot, Value: ve}, nil
}

func (c *checker) checkAssignStmt(m *module.Module, sc *env, st *ast.AssignStmt) (ir.Stmt, diag.Errors) {
	switch target := st.Target.(type) {
	case *ast.Ident:
		v, ok := sc.lookup(target.Name)
		if !ok {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign to undeclared local %q", target.Name)}
		}
		ve, vt, errs := c.checkExpr(m, sc, st.Value)
		if errs.HasErrors() {
			return nil, errs
		}
		if !vt.Equals(v.typ) {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign %s to %q of type %s", vt, target.Name, v.typ)}
		}
		return &ir.AssignLocalStmt{Slot: v.slot, Value: ve}, nil

	case *ast.IndexExpr:
		re, rt, errs1 := c.checkExpr(m, sc, target.Recv)
		ie, it, errs2 := c.checkExpr(m, sc, target.Index)
		errs := append(errs1, errs2...)
		if errs.HasErrors() {
			return nil, errs
		}
		if !it.Equals(types.TInt) {
			errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "index must be Int, got %s", it))
		}
		if rt.Kind() != types.Array && rt.Kind() != types.Vec {
			errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot index-assign into type %s", rt))
		}
		if errs.HasErrors() {
			return nil, errs
		}
		ve, vt, vErrs := c.checkExpr(m, sc, st.Value)
		if vErrs.HasErrors() {
			return nil, vErrs
		}
		if !vt.Equals(rt.Elem()) {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign %s into element of type %s", vt, rt.Elem())}
		}
		return &ir.AssignIndexStmt{Recv: re, Index: ie, Value: ve}, nil

	case *ast.FieldExpr:
		re, rt, errs := c.checkExpr(m, sc, target.Recv)
		if errs.HasErrors() {
			return nil, errs
		}
		if rt.Kind() != types.Named {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign field %q of non-struct type %s", target.Field, rt)}
		}
		fi, ok := c.fieldInfo(rt, target.Field)
		if !ok {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "struct %s has no field %q", rt, target.Field)}
		}
		ve, vt, vErrs := c.checkExpr(m, sc, st.Value)
		if vErrs.HasErrors() {
			return nil, vErrs
		}
		if !vt.Equals(fi.typ) {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign %s to field %q of type %s", vt, target.Field, fi.typ)}
		}
		return &ir.AssignFieldStmt{Recv: re, Field: target.Field, Value: ve}, nil

	case *ast.PathExpr:
		// "a.b.c = value" where a is a local/global struct value and
		// b..c are field accesses — split into (recv-chain, last field).
		if len(target.Path) < 2 {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "invalid assignment target")}
		}
		recvExpr, recvType, isNamespace, errs := c.resolvePath(m, sc, target.Path[:len(target.Path)-1], st.Sp)
		if isNamespace || errs.HasErrors() {
			return nil, append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "invalid assignment target"))
		}
		field := target.Path[len(target.Path)-1]
		if recvType.Kind() != types.Named {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign field %q of non-struct type %s", field, recvType)}
		}
		fi, ok := c.fieldInfo(recvType, field)
		if !ok {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "struct %s has no field %q", recvType, field)}
		}
		ve, vt, vErrs := c.checkExpr(m, sc, st.Value)
		if vErrs.HasErrors() {
			return nil, vErrs
		}
		if !vt.Equals(fi.typ) {
			return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "cannot assign %s to field %q of type %s", vt, field, fi.typ)}
		}
		return &ir.AssignFieldStmt{Recv: recvExpr, Field: field, Value: ve}, nil

	default:
		return nil, diag.Errors{diag.New(diag.ESema, st.Sp, m.Path.String(), "invalid assignment target")}
	}
}

func (c *checker) checkIfStmt(m *module.Module, sc *env, st *ast.IfStmt) (ir.Stmt, diag.Errors) {
	ce, ct, errs := c.checkExpr(m, sc, st.Cond)
	if !errs.HasErrors() && !ct.Equals(types.TBool) {
		errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "'if' condition must be Bool, got %s", ct))
	}
	thenBody, thenErrs := c.checkBlock(m, sc, st.Then)
	errs = append(errs, thenErrs...)
	var elseBody []ir.Stmt
	if st.Else != nil {
		eb, eErrs := c.checkBlock(m, sc, st.Else)
		elseBody = eb
		errs = append(errs, eErrs...)
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &ir.IfStmt{Cond: ce, Then: thenBody, Else: elseBody}, nil
}

func (c *checker) checkWhileStmt(m *module.Module, sc *env, st *ast.WhileStmt) (ir.Stmt, diag.Errors) {
	ce, ct, errs := c.checkExpr(m, sc, st.Cond)
	if !errs.HasErrors() && !ct.Equals(types.TBool) {
		errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "'while' condition must be Bool, got %s", ct))
	}
	body, bodyErrs := c.checkStmtList(m, sc.loopChild(), st.Body)
	errs = append(errs, bodyErrs...)
	if errs.HasErrors() {
		return nil, errs
	}
	return &ir.WhileStmt{Cond: ce, Body: body}, nil
}

func (c *checker) checkForStmt(m *module.Module, sc *env, st *ast.ForStmt) (ir.Stmt, diag.Errors) {
	outer := sc.child()
	var errs diag.Errors

	var init ir.Stmt
	if st.Init != nil {
		var initErrs diag.Errors
		init, initErrs = c.checkStmt(m, outer, st.Init)
		errs = append(errs, initErrs...)
	}

	var cond ir.Expr
	if st.Cond != nil {
		ce, ct, condErrs := c.checkExpr(m, outer, st.Cond)
		errs = append(errs, condErrs...)
		if !condErrs.HasErrors() && !ct.Equals(types.TBool) {
			errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "'for' condition must be Bool, got %s", ct))
		}
		cond = ce
	}

	body, bodyErrs := c.checkStmtList(m, outer.loopChild(), st.Body)
	errs = append(errs, bodyErrs...)

	var step ir.Stmt
	if st.Step != nil {
		var stepErrs diag.Errors
		step, stepErrs = c.checkStmt(m, outer, st.Step)
		errs = append(errs, stepErrs...)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return &ir.ForStmt{Init: init, Cond: cond, Step: step, Body: body}, nil
}

func (c *checker) checkMatchStmt(m *module.Module, sc *env, st *ast.MatchStmt) (ir.Stmt, diag.Errors) {
	ve, vt, errs := c.checkExpr(m, sc, st.Target)
	if errs.HasErrors() {
		return nil, errs
	}
	if !vt.IsPrimitive() {
		errs = append(errs, diag.New(diag.ESema, st.Sp, m.Path.String(), "'match' target must be a primitive type, got %s", vt))
	}

	arms := make([]ir.MatchArm, 0, len(st.Arms))
	for _, a := range st.Arms {
		var patterns []ir.Expr
		for _, p := range a.Patterns {
			pe, pt, pErrs := c.checkExpr(m, sc, p)
			errs = append(errs, pErrs...)
			if pErrs.HasErrors() {
				continue
			}
			if !pt.Equals(vt) {
				errs = append(errs, diag.New(diag.ESema, p.Span(), m.Path.String(), "match pattern has type %s, expected %s", pt, vt))
			}
			patterns = append(patterns, pe)
		}
		body, bErrs := c.checkBlock(m, sc, a.Body)
		errs = append(errs, bErrs...)
		arms = append(arms, ir.MatchArm{Wildcard: a.Wildcard, Patterns: patterns, Body: body})
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &ir.MatchStmt{Target: vt, Value: ve, Arms: arms}, nil
}

func (c *checker) checkReturnStmt(m *module.Module, sc *env, st *ast.ReturnStmt) (ir.Stmt, diag.Errors) {
	if st.Value == nil {
		return &ir.ReturnStmt{}, nil
	}
	ve, _, errs := c.checkExpr(m, sc, st.Value)
	if errs.HasErrors() {
		return nil, errs
	}
	return &ir.ReturnStmt{Value: ve}, nil
}

// terminates is the structural "returns on every path" check of spec.md
// §4.4: a bare return terminates; if/else terminates iff both branches do;
// match terminates iff every arm does (and is non-empty); loops never
// count as terminating on their own.
func terminates(body []ir.Stmt) bool {
	for _, s := range body {
		switch st := s.(type) {
		case *ir.ReturnStmt:
			return true
		case *ir.IfStmt:
			if st.Else != nil && terminates(st.Then) && terminates(st.Else) {
				return true
			}
		case *ir.MatchStmt:
			if len(st.Arms) > 0 {
				all := true
				for _, arm := range st.Arms {
					if !terminates(arm.Body) {
						all = false
						break
					}
				}
				if all {
					return true
				}
			}
		}
	}
	return false
}
