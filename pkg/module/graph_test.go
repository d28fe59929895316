package module

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, contents string) string {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return full
}

func TestGraph_SingleFileEntry(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `fn main() -> Int { return 42; }`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(g.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(g.Modules))
	}
	if g.Modules[0].Path.String() != "main" {
		t.Fatalf("expected module id main, got %s", g.Modules[0].Path)
	}
}

func TestGraph_ImportResolvesToModuleId(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `
		from utils.math import add;
		fn main() -> Int { return add(20, 22); }
	`)
	writeFile(t, dir, "utils/math.sk", `
		fn add(a: Int, b: Int) -> Int { return a + b; }
		export { add };
	`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(g.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(g.Modules))
	}
	if _, ok := g.ModuleByPath(ParsePath("utils.math")); !ok {
		t.Fatalf("expected module utils.math to be loaded")
	}

	if errs := g.ResolveExports(); errs.HasErrors() {
		t.Fatalf("unexpected export errors: %v", errs)
	}
	if errs := g.ResolveImports(); errs.HasErrors() {
		t.Fatalf("unexpected import errors: %v", errs)
	}

	mainMod, _ := g.ModuleByPath(ParsePath("main"))
	b, ok := mainMod.Imports["add"]
	if !ok || b.Kind != BindSymbol || b.Symbol.Name != "add" {
		t.Fatalf("expected 'add' bound as symbol, got %+v", b)
	}
}

func TestGraph_AmbiguousModuleIsError(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `import utils.math;`)
	writeFile(t, dir, "utils/math.sk", `fn f() -> Int { return 0; }`)
	writeFile(t, dir, "utils/math/extra.sk", `fn g() -> Int { return 0; }`)

	_, errs := Load(entry)
	if !errs.HasErrors() || errs[0].Label != "E-MOD-AMBIG" {
		t.Fatalf("expected E-MOD-AMBIG, got %v", errs)
	}
}

func TestGraph_NotFoundModuleIsError(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `import does.not.exist;`)

	_, errs := Load(entry)
	if !errs.HasErrors() || errs[0].Label != "E-MOD-NOT-FOUND" {
		t.Fatalf("expected E-MOD-NOT-FOUND, got %v", errs)
	}
}

func TestGraph_FolderImportLoadsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `import utils;`)
	writeFile(t, dir, "utils/a.sk", `fn a() -> Int { return 1; }`)
	writeFile(t, dir, "utils/k/m.sk", `fn m() -> Int { return 2; }`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := g.ModuleByPath(ParsePath("utils")); !ok {
		t.Fatalf("expected utils folder module to be loaded")
	}
	if _, ok := g.ModuleByPath(ParsePath("utils.k.m")); !ok {
		t.Fatalf("expected nested file utils/k/m.sk to be its own module utils.k.m")
	}
}

func TestGraph_ReexportCycleIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sk", `export * from b;`)
	writeFile(t, dir, "b.sk", `export * from a;`)
	// main imports both a and b so Load's BFS discovers them even though
	// neither is reachable from main by re-export edges alone; the
	// re-export cycle between a and b is independent of the (permitted)
	// plain import graph.
	entry := writeFile(t, dir, "main.sk", `
		import a;
		import b;
		fn main() -> Int { return 0; }
	`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	errs = g.ResolveExports()
	if !errs.HasErrors() || errs[0].Label != "E-MOD-CYCLE" {
		t.Fatalf("expected E-MOD-CYCLE, got %v", errs)
	}
}

func TestGraph_ImportConflictIsError(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `
		from a import x;
		from b import x;
		fn main() -> Int { return 0; }
	`)
	writeFile(t, dir, "a.sk", `fn x() -> Int { return 1; } export { x };`)
	writeFile(t, dir, "b.sk", `fn x() -> Int { return 2; } export { x };`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if errs := g.ResolveExports(); errs.HasErrors() {
		t.Fatalf("unexpected export errors: %v", errs)
	}
	errs = g.ResolveImports()
	if !errs.HasErrors() || errs[0].Label != "E-IMPORT-CONFLICT" {
		t.Fatalf("expected E-IMPORT-CONFLICT, got %v", errs)
	}
}

func TestGraph_ImportNotExportedIsError(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.sk", `
		from a import secret;
		fn main() -> Int { return 0; }
	`)
	writeFile(t, dir, "a.sk", `fn secret() -> Int { return 1; }`)

	g, errs := Load(entry)
	if errs.HasErrors() {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if errs := g.ResolveExports(); errs.HasErrors() {
		t.Fatalf("unexpected export errors: %v", errs)
	}
	errs = g.ResolveImports()
	if !errs.HasErrors() || errs[0].Label != "E-IMPORT-NOT-EXPORTED" {
		t.Fatalf("expected E-IMPORT-NOT-EXPORTED, got %v", errs)
	}
}
