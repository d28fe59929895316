package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// checkField handles a FieldExpr used as a value (not as a call's callee,
// which checkCall/checkMethodCall handle separately so a method can be
// dispatched without first materializing it as a value).
func (c *checker) checkField(m *module.Module, sc *env, x *ast.FieldExpr) (ir.Expr, types.Type, diag.Errors) {
	recvExpr, recvType, errs := c.checkExpr(m, sc, x.Recv)
	if errs.HasErrors() {
		return nil, types.Type{}, errs
	}
	if recvType.Kind() != types.Named {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "cannot access field %q of non-struct type %s", x.Field, recvType)}
	}
	if fi, ok := c.fieldInfo(recvType, x.Field); ok {
		return &ir.FieldGet{Recv: recvExpr, Field: x.Field, Typ: fi.typ}, fi.typ, nil
	}
	if _, ok := c.methodInfo(recvType, x.Field); ok {
		return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "method %q must be called directly, e.g. 'x.%s(...)'", x.Field, x.Field)}
	}
	return nil, types.Type{}, diag.Errors{diag.New(diag.ESema, x.Sp, m.Path.String(), "struct %s has no field %q", recvType, x.Field)}
}
