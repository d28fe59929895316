package module

import "github.com/AayushMainali-Github/skepa-lang/internal/ast"

// Kind distinguishes a module backed by a single file from one backed by an
// entire folder of files (spec.md §4.3).
type Kind int

const (
	FileModule Kind = iota
	FolderModule
)

// SymbolKind distinguishes the three things a module can export: a
// function, a struct type, or a global value.
type SymbolKind int

const (
	SymFunc SymbolKind = iota
	SymStruct
	SymGlobal
)

// Symbol is a resolved, terminal handle to something a module declares or
// re-exports — never itself an unresolved alias, per spec.md §3's Export
// map invariant that maps only contain terminal symbol handles.
type Symbol struct {
	Kind   SymbolKind
	Module Path
	Name   string
	Fn     *ast.FnDecl
	Struct *ast.StructDecl
	Global *ast.LetDecl
}

// Module is one node of the resolved module graph: a canonical id, its
// combined declarations (a folder module's fragments are merged, mirroring
// pkg/corset.ParseSourceFiles combining same-named module fragments), its
// local symbol table, and its fully materialized export map.
type Module struct {
	Id   int
	Path Path
	Kind Kind

	// Decls is every top-level fn/struct/global-let/import/export
	// declaration contributed by this module's file(s), in file-then-source
	// order.
	Decls []ast.Decl
	// Impls collects every "impl S { ... }" block declared in this module,
	// keyed by the struct name they extend.
	Impls map[string][]*ast.ImplDecl

	// Locals maps each top-level fn/struct/global-let name to its resolved
	// Symbol. Populated once, directly from Decls.
	Locals map[string]*Symbol

	// Exports is the module's raw export declarations (§3's "may reference
	// non-local symbols"), consumed by the fixed-point pass in export.go.
	Exports []*ast.ExportDecl

	// ExportMap is filled in by ResolveExports: exported-name -> terminal
	// Symbol. nil until that pass runs.
	ExportMap map[string]*Symbol

	// Imports maps each local name this module binds via its import
	// declarations to what it resolves to. Filled in by ResolveImports,
	// which must run after ResolveExports.
	Imports map[string]*Binding
}

func newModule(id int, path Path, kind Kind) *Module {
	return &Module{
		Id:     id,
		Path:   path,
		Kind:   kind,
		Impls:  make(map[string][]*ast.ImplDecl),
		Locals: make(map[string]*Symbol),
	}
}

// addFile folds one parsed file's declarations into this module, splitting
// out import/export/impl declarations from the plain local-symbol
// declarations.
func (m *Module) addFile(f *ast.File) {
	for _, d := range f.Decls {
		m.Decls = append(m.Decls, d)

		switch decl := d.(type) {
		case *ast.FnDecl:
			m.Locals[decl.Name] = &Symbol{Kind: SymFunc, Module: m.Path, Name: decl.Name, Fn: decl}
		case *ast.StructDecl:
			m.Locals[decl.Name] = &Symbol{Kind: SymStruct, Module: m.Path, Name: decl.Name, Struct: decl}
		case *ast.LetDecl:
			m.Locals[decl.Name] = &Symbol{Kind: SymGlobal, Module: m.Path, Name: decl.Name, Global: decl}
		case *ast.ImplDecl:
			m.Impls[decl.Struct] = append(m.Impls[decl.Struct], decl)
		case *ast.ExportDecl:
			m.Exports = append(m.Exports, decl)
		}
	}
}
