package sema

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

var primitiveNames = map[string]types.Type{
	"Int":    types.TInt,
	"Float":  types.TFloat,
	"Bool":   types.TBool,
	"String": types.TString,
	"Void":   types.TVoid,
}

// resolveType lowers a parsed ast.TypeExpr into a pkg/types.Type, resolving
// struct names against m's locals and imports. Type expressions carry no
// span of their own in the untyped tree, so diagnostics raised here anchor
// on the zero span; the enclosing declaration's own E-SEMA diagnostics (if
// any) carry the real location.
func (c *checker) resolveType(te ast.TypeExpr, m *module.Module) (types.Type, *diag.Error) {
	switch t := te.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(t, m)
	case *ast.ArrayType:
		elem, err := c.resolveType(t.Elem, m)
		if err != nil {
			return types.Type{}, err
		}
		n, err := c.resolveLength(t.Length, m)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewArray(elem, n), nil
	case *ast.VecType:
		elem, err := c.resolveType(t.Elem, m)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewVec(elem), nil
	case *ast.FnType:
		params := make([]types.Type, 0, len(t.Params))
		for _, p := range t.Params {
			pt, err := c.resolveType(p, m)
			if err != nil {
				return types.Type{}, err
			}
			params = append(params, pt)
		}
		ret, err := c.resolveType(t.Return, m)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewFn(params, ret), nil
	default:
		return types.Type{}, diag.New(diag.ESema, source.Span{}, m.Path.String(), "unknown type expression %s", te)
	}
}

func (c *checker) resolveNamedType(t *ast.NamedType, m *module.Module) (types.Type, *diag.Error) {
	if len(t.Path) == 1 {
		if prim, ok := primitiveNames[t.Path[0]]; ok {
			return prim, nil
		}
		if info, ok := c.structsByKey[qualifiedStruct(m, t.Path[0])]; ok {
			return types.NewNamed(info.module.Path.String(), t.Path[0]), nil
		}
		if b, ok := m.Imports[t.Path[0]]; ok && b.Kind == module.BindSymbol && b.Symbol.Kind == module.SymStruct {
			return types.NewNamed(b.Symbol.Module.String(), b.Symbol.Name), nil
		}
		return types.Type{}, diag.New(diag.ESema, source.Span{}, m.Path.String(), "unknown type %q", t.Path[0])
	}

	// Dotted path: last segment is the struct name, the rest names an
	// imported module namespace.
	nsName := t.Path[0]
	structName := t.Path[len(t.Path)-1]
	b, ok := m.Imports[nsName]
	if !ok || b.Kind != module.BindNamespace {
		return types.Type{}, diag.New(diag.ESema, source.Span{}, m.Path.String(), "unknown module %q in type path", nsName)
	}
	target, ok := c.g.ModuleByPath(b.Namespace)
	if !ok {
		return types.Type{}, diag.New(diag.ESema, source.Span{}, m.Path.String(), "unknown module %q", b.Namespace)
	}
	sym, ok := target.ExportMap[structName]
	if !ok || sym.Kind != module.SymStruct {
		return types.Type{}, diag.New(diag.ESema, source.Span{}, m.Path.String(), "module %q does not export struct %q", b.Namespace, structName)
	}
	return types.NewNamed(sym.Module.String(), sym.Name), nil
}

// resolveLength evaluates the restricted integer-literal-and-'+' grammar
// spec.md §3 permits in array-type position.
func (c *checker) resolveLength(le ast.LengthExpr, m *module.Module) (int, *diag.Error) {
	switch l := le.(type) {
	case *ast.LengthLit:
		return l.Value, nil
	case *ast.LengthAdd:
		a, err := c.resolveLength(l.Left, m)
		if err != nil {
			return 0, err
		}
		b, err := c.resolveLength(l.Right, m)
		if err != nil {
			return 0, err
		}
		return a + b, nil
	default:
		return 0, diag.New(diag.ESema, source.Span{}, m.Path.String(), "invalid array length expression")
	}
}
