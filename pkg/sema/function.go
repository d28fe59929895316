package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// checkFunction type-checks one top-level function or method body and
// lowers it to an ir.Function. A nil result (with errors recorded on c.errs)
// means the function could not be checked at all.
func (c *checker) checkFunction(fi *fnInfo) *ir.Function {
	root := newEnv(nil)
	locals := make([]ir.Local, 0, len(fi.params))
	for i, p := range fi.params {
		root.declare(fi.paramNames[i], p)
		locals = append(locals, ir.Local{Name: fi.paramNames[i], Type: p})
	}

	body, errs := c.checkBlock(fi.module, root, fi.decl.Body)
	c.errs = append(c.errs, errs...)
	if errs.HasErrors() {
		return nil
	}

	if !fi.ret.Equals(types.TVoid) && !terminates(body) {
		c.err(diag.ESema, fi.decl.Sp, fi.module.Path.String(), "function %q does not return on every control-flow path", fi.decl.Name)
		return nil
	}

	return &ir.Function{
		QualifiedName: fi.qualifiedName,
		Params:        locals,
		NumLocals:     root.numSlots(),
		Ret:           fi.ret,
		Body:          body,
	}
}
