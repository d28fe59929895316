// Package sema is the semantic analyzer of spec.md §4.4: it walks every
// function body in every module, resolving names through a module-qualified
// namespace and a local-slot type environment, and lowers the untyped
// internal/ast tree into the typed pkg/ir form the bytecode emitter
// consumes. Structurally grounded on pkg/corset's two-pass "collect
// declarations, then check bodies" sema, adapted to Skepa's function/struct
///global surface instead of constraint columns.
package sema

import (
	"sort"

	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// structInfo is the resolved shape of one struct declaration: its ordered
// field names/types, keyed by the struct's nominal Type.
type structInfo struct {
	decl   *ast.StructDecl
	module *module.Module
	fields []fieldInfo
}

type fieldInfo struct {
	name string
	typ  types.Type
}

// fnInfo is a resolved, checked function or method signature.
type fnInfo struct {
	qualifiedName string
	params        []types.Type
	paramNames    []string
	ret           types.Type
	decl          *ast.FnDecl
	module        *module.Module
	// recv is the struct type methods are attached to; zero Type for free
	// functions.
	isMethod bool
	recv     types.Type
}

// checker carries the whole-graph registries built in pass one, consulted
// while checking every function body in pass two.
type checker struct {
	g *module.Graph

	// structsByKey is keyed by "module.Name".
	structsByKey map[string]*structInfo
	// fnsByKey is keyed by "module.name" (free functions) or
	// "module.Struct.method" (methods).
	fnsByKey map[string]*fnInfo
	// methodsByStruct maps a struct's nominal key to its method set.
	methodsByStruct map[string]map[string]*fnInfo
	globalsByKey    map[string]types.Type
	globalDecl      map[string]*ast.LetDecl
	globalModule    map[string]*module.Module

	// fnLitCounter and synthFns accumulate the standalone ir.Functions
	// synthesized for non-capturing function literals as they're
	// encountered while checking bodies.
	fnLitCounter int
	synthFns     []*ir.Function

	errs diag.Errors
}

// Check runs the full semantic analysis pass over every module in g and,
// on success, returns the linked, typed ir.Program rooted at "main.main".
func Check(g *module.Graph) (*ir.Program, diag.Errors) {
	c := &checker{
		g:               g,
		structsByKey:    map[string]*structInfo{},
		fnsByKey:        map[string]*fnInfo{},
		methodsByStruct: map[string]map[string]*fnInfo{},
		globalsByKey:    map[string]types.Type{},
		globalDecl:      map[string]*ast.LetDecl{},
		globalModule:    map[string]*module.Module{},
	}

	c.collectStructs()
	if c.errs.HasErrors() {
		return nil, c.errs
	}
	c.collectFieldTypes()
	c.collectFunctionSignatures()
	c.collectGlobals()
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	var fns []*ir.Function
	keys := make([]string, 0, len(c.fnsByKey))
	for k := range c.fnsByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fn := c.checkFunction(c.fnsByKey[k])
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	fns = append(fns, c.synthFns...)

	if c.errs.HasErrors() {
		return nil, c.errs
	}

	// spec.md §4.5: "Function table is sorted by fully-qualified name" —
	// this is what makes bytecode output deterministic and reproducible.
	sort.Slice(fns, func(i, j int) bool { return fns[i].QualifiedName < fns[j].QualifiedName })

	entry := -1
	for i, f := range fns {
		if f.QualifiedName == "main.main" {
			entry = i
		}
	}
	if entry == -1 {
		c.err(diag.ESema, source.Span{}, "<entry>", "no 'fn main() -> Int' found in module 'main'")
		return nil, c.errs
	}
	mainFn := c.fnsByKey["main.main"]
	if mainFn == nil || len(mainFn.params) != 0 || !mainFn.ret.Equals(types.TInt) {
		c.err(diag.ESema, mainFn.decl.Sp, "main", "'main' must have signature fn main() -> Int")
		return nil, c.errs
	}

	globals := c.lowerGlobals()
	if c.errs.HasErrors() {
		return nil, c.errs
	}

	return &ir.Program{Functions: fns, EntryIndex: entry, Globals: globals}, c.errs
}

// lowerGlobals re-checks every module-level "let" binding's initializer
// expression against its already-collected type, producing the Init Expr
// the emitter needs to build the program's startup sequence. Globals are
// sorted by qualified name for the same determinism reason functions are
// (spec.md §4.5).
func (c *checker) lowerGlobals() []ir.Global {
	keys := make([]string, 0, len(c.globalDecl))
	for k := range c.globalDecl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	globals := make([]ir.Global, 0, len(keys))
	for _, k := range keys {
		gd := c.globalDecl[k]
		m := c.globalModule[k]
		want := c.globalsByKey[k]

		root := newEnv(nil)
		value, got, errs := c.checkExpr(m, root, gd.Value)
		c.errs = append(c.errs, errs...)
		if errs.HasErrors() {
			continue
		}
		if !got.Equals(want) {
			c.err(diag.ESema, gd.Sp, m.Path.String(), "global %q initializer has type %s, expected %s", gd.Name, got, want)
			continue
		}
		globals = append(globals, ir.Global{QualifiedName: k, Typ: want, Init: value})
	}
	return globals
}

func (c *checker) err(label diag.Label, sp source.Span, file, format string, args ...any) {
	c.errs = append(c.errs, diag.New(label, sp, file, format, args...))
}

func qualifiedFn(m *module.Module, name string) string {
	return m.Path.String() + "." + name
}

func qualifiedMethod(m *module.Module, structName, method string) string {
	return m.Path.String() + "." + structName + "." + method
}

func qualifiedStruct(m *module.Module, name string) string {
	return m.Path.String() + "." + name
}

// collectStructs registers every struct declaration's nominal Type, before
// any field type is resolved (fields may reference structs declared later
// in source order or in another module).
func (c *checker) collectStructs() {
	for _, m := range c.g.Modules {
		for _, d := range m.Decls {
			sd, ok := d.(*ast.StructDecl)
			if !ok {
				continue
			}
			key := qualifiedStruct(m, sd.Name)
			c.structsByKey[key] = &structInfo{decl: sd, module: m}
		}
	}
}

func (c *checker) collectFieldTypes() {
	for key, info := range c.structsByKey {
		seen := map[string]bool{}
		for _, f := range info.decl.Fields {
			if seen[f.Name] {
				c.err(diag.ESema, f.Sp, info.module.Path.String(), "struct %q declares field %q more than once", info.decl.Name, f.Name)
				continue
			}
			seen[f.Name] = true
			t, err := c.resolveType(f.Type, info.module)
			if err != nil {
				c.errs = append(c.errs, err)
				continue
			}
			info.fields = append(info.fields, fieldInfo{name: f.Name, typ: t})
		}
		_ = key
	}
}

func (c *checker) collectFunctionSignatures() {
	for _, m := range c.g.Modules {
		for _, d := range m.Decls {
			switch decl := d.(type) {
			case *ast.FnDecl:
				c.registerFn(m, decl, "", types.Type{})
			case *ast.ImplDecl:
				seen := map[string]bool{}
				// Duplicate-method check spans *all* impl blocks for the
				// same struct (spec.md §4.4), so accumulate across every
				// ImplDecl sharing this Struct name before registering.
				if existing := c.methodsByStruct[qualifiedStruct(m, decl.Struct)]; existing != nil {
					for name := range existing {
						seen[name] = true
					}
				}
				recvKey := qualifiedStruct(m, decl.Struct)
				recvInfo, ok := c.structsByKey[recvKey]
				if !ok {
					c.err(diag.ESema, decl.Sp, m.Path.String(), "impl target %q is not a declared struct", decl.Struct)
					continue
				}
				recvType := types.NewNamed(recvInfo.module.Path.String(), decl.Struct)
				for _, fn := range decl.Methods {
					if seen[fn.Name] {
						c.err(diag.ESema, fn.Sp, m.Path.String(), "duplicate method %q on struct %q", fn.Name, decl.Struct)
						continue
					}
					seen[fn.Name] = true
					if len(fn.Params) == 0 || fn.Params[0].Name != "self" {
						c.err(diag.ESema, fn.Sp, m.Path.String(), "method %q must declare 'self' as its first parameter", fn.Name)
						continue
					}
					c.registerFn(m, fn, decl.Struct, recvType)
				}
			}
		}
	}
}

func (c *checker) registerFn(m *module.Module, fn *ast.FnDecl, structName string, recv types.Type) {
	var params []types.Type
	var names []string
	for i, p := range fn.Params {
		if i == 0 && structName != "" {
			params = append(params, recv)
			names = append(names, p.Name)
			continue
		}
		t, err := c.resolveType(p.Type, m)
		if err != nil {
			c.errs = append(c.errs, err)
			continue
		}
		params = append(params, t)
		names = append(names, p.Name)
	}
	ret, err := c.resolveType(fn.Return, m)
	if err != nil {
		c.errs = append(c.errs, err)
	}

	info := &fnInfo{params: params, paramNames: names, ret: ret, decl: fn, module: m, isMethod: structName != "", recv: recv}
	if structName == "" {
		info.qualifiedName = qualifiedFn(m, fn.Name)
		c.fnsByKey[info.qualifiedName] = info
	} else {
		info.qualifiedName = qualifiedMethod(m, structName, fn.Name)
		c.fnsByKey[info.qualifiedName] = info
		key := qualifiedStruct(m, structName)
		if c.methodsByStruct[key] == nil {
			c.methodsByStruct[key] = map[string]*fnInfo{}
		}
		c.methodsByStruct[key][fn.Name] = info
	}
}

func (c *checker) collectGlobals() {
	for _, m := range c.g.Modules {
		for _, d := range m.Decls {
			gd, ok := d.(*ast.LetDecl)
			if !ok {
				continue
			}
			key := qualifiedFn(m, gd.Name)
			var t types.Type
			if gd.Type != nil {
				resolved, err := c.resolveType(gd.Type, m)
				if err != nil {
					c.errs = append(c.errs, err)
					continue
				}
				t = resolved
			} else {
				env := newEnv(nil)
				_, inferred, errs := c.checkExpr(m, env, gd.Value)
				c.errs = append(c.errs, errs...)
				t = inferred
			}
			c.globalsByKey[key] = t
			c.globalDecl[key] = gd
			c.globalModule[key] = m
		}
	}
}
