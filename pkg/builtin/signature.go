// Package builtin holds the built-in package surface shared by sema (typed
// signatures, for call-site checking) and the VM (executors, in
// pkg/vm/builtin_exec.go). Keeping the signature table here — rather than
// duplicated in sema and the VM — is what guarantees the two phases agree
// on every built-in's arity and types, grounded on the closed dispatch
// table pattern of pkg/corset's intrinsic-function registry.
package builtin

import "github.com/AayushMainali-Github/skepa-lang/pkg/types"

// ID is the stable numeric identity of a built-in function, embedded in
// the CallBuiltin instruction (spec.md §4.5/§4.8).
type ID int

// Signature describes one built-in's package-qualified name, its id, and
// its checked parameter/return types. Variadic built-ins (io.printf,
// io.format) set Variadic true; sema checks their fixed prefix and leaves
// the trailing arguments unchecked against a single declared type (spec.md
// §6.4: "variadic types are checked by sema" only when fmt is a literal,
// which sema handles specially for io.printf/io.format).
type Signature struct {
	ID       ID
	Package  string
	Name     string
	Params   []types.Type
	Variadic bool
	Ret      types.Type
}

// FullName is the dotted "pkg.name" form used in diagnostics and as the
// lookup key.
func (s Signature) FullName() string { return s.Package + "." + s.Name }

// table is built by buildTable, which assigns a stable, deterministic id to each signature in table
// order, so the id embedded in bytecode never depends on map iteration.
var table = buildTable()

func buildTable() []Signature {
	var sigs []Signature
	add := func(pkg, name string, variadic bool, ret types.Type, params ...types.Type) {
		sigs = append(sigs, Signature{ID: ID(len(sigs)), Package: pkg, Name: name, Params: params, Variadic: variadic, Ret: ret})
	}

	// io
	add("io", "print", false, types.TVoid, types.TString)
	add("io", "println", false, types.TVoid, types.TString)
	add("io", "printInt", false, types.TVoid, types.TInt)
	add("io", "printFloat", false, types.TVoid, types.TFloat)
	add("io", "printBool", false, types.TVoid, types.TBool)
	add("io", "printString", false, types.TVoid, types.TString)
	add("io", "readLine", false, types.TString)
	add("io", "format", true, types.TString, types.TString)
	add("io", "printf", true, types.TVoid, types.TString)

	// str
	add("str", "len", false, types.TInt, types.TString)
	add("str", "contains", false, types.TBool, types.TString, types.TString)
	add("str", "startsWith", false, types.TBool, types.TString, types.TString)
	add("str", "endsWith", false, types.TBool, types.TString, types.TString)
	add("str", "trim", false, types.TString, types.TString)
	add("str", "toLower", false, types.TString, types.TString)
	add("str", "toUpper", false, types.TString, types.TString)
	add("str", "indexOf", false, types.TInt, types.TString, types.TString)
	add("str", "lastIndexOf", false, types.TInt, types.TString, types.TString)
	add("str", "slice", false, types.TString, types.TString, types.TInt, types.TInt)
	add("str", "replace", false, types.TString, types.TString, types.TString, types.TString)
	add("str", "repeat", false, types.TString, types.TString, types.TInt)
	add("str", "isEmpty", false, types.TBool, types.TString)

	// arr.* signatures are generic over element type and are checked
	// specially by sema (see pkg/sema/builtins.go); they are listed here
	// only so their ids are stable and the VM's dispatch table lines up.
	for _, name := range []string{"len", "isEmpty", "contains", "indexOf", "count",
		"first", "last", "join", "reverse", "slice", "sum", "min", "max", "sort", "distinct"} {
		add("arr", name, false, types.TVoid)
	}

	add("datetime", "nowUnix", false, types.TInt)
	add("datetime", "nowMillis", false, types.TInt)
	add("datetime", "fromUnix", false, types.TInt, types.TInt)
	add("datetime", "fromMillis", false, types.TInt, types.TInt)
	add("datetime", "parseUnix", false, types.TInt, types.TString)
	add("datetime", "year", false, types.TInt, types.TInt)
	add("datetime", "month", false, types.TInt, types.TInt)
	add("datetime", "day", false, types.TInt, types.TInt)
	add("datetime", "hour", false, types.TInt, types.TInt)
	add("datetime", "minute", false, types.TInt, types.TInt)
	add("datetime", "second", false, types.TInt, types.TInt)

	add("random", "seed", false, types.TVoid, types.TInt)
	add("random", "int", false, types.TInt, types.TInt, types.TInt)
	add("random", "float", false, types.TFloat)

	add("os", "cwd", false, types.TString)
	add("os", "platform", false, types.TString)
	add("os", "sleep", false, types.TVoid, types.TInt)
	add("os", "execShell", false, types.TInt, types.TString)
	add("os", "execShellOut", false, types.TString, types.TString)

	add("fs", "exists", false, types.TBool, types.TString)
	add("fs", "readText", false, types.TString, types.TString)
	add("fs", "writeText", false, types.TVoid, types.TString, types.TString)
	add("fs", "appendText", false, types.TVoid, types.TString, types.TString)
	add("fs", "mkdirAll", false, types.TVoid, types.TString)
	add("fs", "removeFile", false, types.TVoid, types.TString)
	add("fs", "removeDirAll", false, types.TVoid, types.TString)
	add("fs", "join", true, types.TString, types.TString)

	// vec.* signatures are also generic over element type; see
	// pkg/sema/builtins.go. new/len/push/get/set/delete checked specially.
	for _, name := range []string{"new", "len", "push", "get", "set", "delete"} {
		add("vec", name, false, types.TVoid)
	}

	return sigs
}

// byName indexes the table by "pkg.name" for O(1) lookup.
var byName = func() map[string]Signature {
	m := make(map[string]Signature, len(table))
	for _, s := range table {
		m[s.FullName()] = s
	}
	return m
}()

// Lookup returns the signature for "pkg.name", if it exists in the fixed
// built-in surface.
func Lookup(pkg, name string) (Signature, bool) {
	s, ok := byName[pkg+"."+name]
	return s, ok
}

// All returns every registered signature in stable id order, e.g. for the
// VM's dispatch table construction.
func All() []Signature {
	cp := make([]Signature, len(table))
	copy(cp, table)
	return cp
}

// GenericPackages lists the built-in packages whose member signatures
// depend on the element type at the call site and are therefore type
// checked directly by sema rather than from this fixed table (spec.md
// §6.4's "arr"/"vec" surfaces).
var GenericPackages = map[string]bool{"arr": true, "vec": true}
