package module

import (
	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/bits-and-blooms/bitset"
)

// moduleDependencies returns every other module path this module's
// declarations reference — both plain imports and re-export "from"
// clauses — so Load can discover the rest of the reachable graph.
func moduleDependencies(m *Module) []Path {
	var deps []Path
	for _, d := range m.Decls {
		switch decl := d.(type) {
		case *ast.ImportDecl:
			deps = append(deps, NewPath(decl.Module...))
		case *ast.ExportDecl:
			if len(decl.From) > 0 {
				deps = append(deps, NewPath(decl.From...))
			}
		}
	}
	return deps
}

// reexportEdges returns the set of module ids that m's export declarations
// re-export *from*, used to build the acyclicity check required by spec.md
// invariant 9 ("Re-export acyclicity").
func (g *Graph) reexportEdges(m *Module) []int {
	var edges []int
	for _, ex := range m.Exports {
		if len(ex.From) == 0 {
			continue
		}
		if target, ok := g.ModuleByPath(NewPath(ex.From...)); ok {
			edges = append(edges, target.Id)
		}
	}
	return edges
}

// ResolveExports runs the fixed-point pass described in spec.md §4.3: (i)
// union each module's explicit "export { ... }" entries, (ii) resolve
// "export { a, b as c } from m" against m's already-finalized export map,
// (iii) resolve "export * from m" by copying every non-colliding name from
// m's export map. Re-export cycles are detected first via a tri-color DFS
// (backed by two bitsets keyed by module id, mirroring the dense
// integer-id-addressed module arena noted in spec.md §9) so that the
// topological order used for (ii)/(iii) is guaranteed to exist.
func (g *Graph) ResolveExports() diag.Errors {
	n := uint(len(g.Modules))
	onStack := bitset.New(n)
	done := bitset.New(n)
	order := make([]int, 0, n)

	var errs diag.Errors
	var visit func(id int, path []int) bool
	visit = func(id int, path []int) bool {
		if done.Test(uint(id)) {
			return true
		}
		if onStack.Test(uint(id)) {
			errs = append(errs, diag.New(diag.EModCycle, source.Span{}, g.Modules[id].Path.String(),
				"re-export cycle detected involving module %q", g.Modules[id].Path))
			return false
		}
		onStack.Set(uint(id))
		ok := true
		for _, dep := range g.reexportEdges(g.Modules[id]) {
			if !visit(dep, append(path, id)) {
				ok = false
			}
		}
		onStack.Clear(uint(id))
		done.Set(uint(id))
		order = append(order, id)
		return ok
	}

	for i := range g.Modules {
		visit(i, nil)
	}

	if errs.HasErrors() {
		return errs
	}

	// order is now a valid reverse-topological order of the re-export
	// dependency graph: every module's "from" targets appear earlier.
	for _, id := range order {
		errs = append(errs, g.resolveModuleExports(g.Modules[id])...)
	}

	return errs
}

func (g *Graph) resolveModuleExports(m *Module) diag.Errors {
	m.ExportMap = make(map[string]*Symbol)
	var errs diag.Errors

	assign := func(name string, sym *Symbol, sp source.Span) {
		if _, exists := m.ExportMap[name]; exists {
			errs = append(errs, diag.New(diag.EModAmbig, sp, m.Path.String(),
				"module %q exports %q more than once", m.Path, name))
			return
		}
		m.ExportMap[name] = sym
	}

	for _, ex := range m.Exports {
		switch {
		case len(ex.From) == 0 && !ex.Wildcard:
			for _, n := range ex.Names {
				sym, ok := m.Locals[n.Name]
				if !ok {
					errs = append(errs, diag.New(diag.EExportUnknown, ex.Sp, m.Path.String(),
						"cannot export unknown name %q", n.Name))
					continue
				}
				exported := n.Name
				if n.Alias != "" {
					exported = n.Alias
				}
				assign(exported, sym, ex.Sp)
			}
		case len(ex.From) > 0 && !ex.Wildcard:
			target, ok := g.ModuleByPath(NewPath(ex.From...))
			if !ok {
				errs = append(errs, diag.New(diag.EModNotFound, ex.Sp, m.Path.String(),
					"re-export source module %q not found", NewPath(ex.From...)))
				continue
			}
			for _, n := range ex.Names {
				sym, ok := target.ExportMap[n.Name]
				if !ok {
					errs = append(errs, diag.New(diag.EExportUnknown, ex.Sp, m.Path.String(),
						"module %q does not export %q", target.Path, n.Name))
					continue
				}
				exported := n.Name
				if n.Alias != "" {
					exported = n.Alias
				}
				assign(exported, sym, ex.Sp)
			}
		case ex.Wildcard && len(ex.From) > 0:
			target, ok := g.ModuleByPath(NewPath(ex.From...))
			if !ok {
				errs = append(errs, diag.New(diag.EModNotFound, ex.Sp, m.Path.String(),
					"re-export source module %q not found", NewPath(ex.From...)))
				continue
			}
			for name, sym := range target.ExportMap {
				if _, collides := m.ExportMap[name]; collides {
					continue // "does not collide locally" — first writer wins
				}
				assign(name, sym, ex.Sp)
			}
		}
	}

	return errs
}
