package module

// BuiltinRoots is the reserved set of built-in package names from spec.md
// §4.3: these can never be project modules, and can never be re-exported.
// An "import io;" binds a synthetic package namespace instead of resolving
// against the filesystem.
var BuiltinRoots = map[string]bool{
	"io":       true,
	"str":      true,
	"arr":      true,
	"datetime": true,
	"random":   true,
	"os":       true,
	"fs":       true,
	"vec":      true,
}

// IsBuiltinRoot reports whether the head segment of a dotted import path
// names a reserved built-in package root.
func IsBuiltinRoot(head string) bool {
	return BuiltinRoots[head]
}
