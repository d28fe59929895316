package module

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AayushMainali-Github/skepa-lang/internal/ast"
	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/internal/parser"
	"github.com/AayushMainali-Github/skepa-lang/internal/source"
	log "github.com/sirupsen/logrus"
)

// Graph is the fully loaded module graph produced by Load: every module
// reachable from the entry file, addressed by a stable integer id so that
// cycle detection can operate over id edges rather than pointers (mirroring
// the arena-of-modules-by-id design noted in spec.md §9).
type Graph struct {
	Root    string
	Entry   Path
	Modules []*Module
	byPath  map[string]int
	Files   []*source.File
}

// ModuleByPath looks up an already-loaded module by its canonical path.
func (g *Graph) ModuleByPath(p Path) (*Module, bool) {
	id, ok := g.byPath[p.String()]
	if !ok {
		return nil, false
	}
	return g.Modules[id], true
}

// Load discovers and parses every module reachable from entryFile,
// breadth-first, following spec.md §4.3's file/folder resolution rules.
// Each discovered module is parsed exactly once. Parse errors across all
// files (E-PARSE) and module-resolution errors (E-MOD-NOT-FOUND /
// E-MOD-AMBIG) come back together in one diag.Errors; each error carries
// its own label, which is how the caller tells the phases apart.
func Load(entryFile string) (*Graph, diag.Errors) {
	root := filepath.Dir(entryFile)
	entryPath := pathFromFile(root, entryFile)

	g := &Graph{Root: root, Entry: entryPath, byPath: make(map[string]int)}

	var errs diag.Errors
	queue := []Path{entryPath}
	queued := map[string]bool{entryPath.String(): true}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if _, ok := g.byPath[p.String()]; ok {
			continue // already loaded
		}

		log.Debugf("module: loading %s", p)

		mod, extra, loadErrs := g.loadModule(p)
		errs = append(errs, loadErrs...)
		if mod == nil {
			continue
		}

		id := len(g.Modules)
		mod.Id = id
		g.Modules = append(g.Modules, mod)
		g.byPath[p.String()] = id

		deps := append([]Path{}, moduleDependencies(mod)...)
		deps = append(deps, extra...)

		for _, dep := range deps {
			if IsBuiltinRoot(dep.Head()) {
				continue
			}
			key := dep.String()
			if !queued[key] {
				queued[key] = true
				queue = append(queue, dep)
			}
		}
	}

	return g, errs
}

// pathFromFile computes the canonical dotted module id of a .sk file
// relative to root, e.g. root="." file="utils/math.sk" -> "utils.math".
func pathFromFile(root, file string) Path {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = strings.TrimSuffix(rel, ".sk")
	segs := strings.Split(filepath.ToSlash(rel), "/")
	return NewPath(segs...)
}

// candidatePaths returns the file and folder filesystem paths that a
// module's canonical Path could resolve to.
func (g *Graph) candidatePaths(p Path) (file, folder string) {
	rel := filepath.Join(p.Segments()...)
	return filepath.Join(g.Root, rel+".sk"), filepath.Join(g.Root, rel)
}

// loadModule resolves p to a file or folder module, parses it, and returns
// the constructed Module plus any extra module paths that loading it
// revealed (a folder module's nested files, each of which is its own
// separately addressable module). Ambiguity (both file and folder exist)
// and not-found (neither exists) are reported as E-MOD-AMBIG /
// E-MOD-NOT-FOUND and the module is omitted from the graph.
func (g *Graph) loadModule(p Path) (*Module, []Path, diag.Errors) {
	filePath, folderPath := g.candidatePaths(p)

	fileInfo, fileErr := os.Stat(filePath)
	folderInfo, folderErr := os.Stat(folderPath)

	fileExists := fileErr == nil && !fileInfo.IsDir()
	folderExists := folderErr == nil && folderInfo.IsDir() && hasSkepaFiles(folderPath)

	switch {
	case fileExists && folderExists:
		return nil, nil, diag.Errors{diag.New(diag.EModAmbig, source.Span{}, filePath,
			"module %q resolves to both a file and a folder", p)}
	case fileExists:
		mod, errs := g.loadFileModule(p, filePath)
		return mod, nil, errs
	case folderExists:
		return g.loadFolderModule(p, folderPath)
	default:
		return nil, nil, diag.Errors{diag.New(diag.EModNotFound, source.Span{}, filePath,
			"no module named %q found", p)}
	}
}

func hasSkepaFiles(dir string) bool {
	found := false
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || found {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(path, ".sk") {
			found = true
		}
		return nil
	})
	return found
}

func (g *Graph) loadFileModule(p Path, filePath string) (*Module, diag.Errors) {
	mod := newModule(-1, p, FileModule)

	f, errs := g.parseOneFile(filePath)
	if f != nil {
		mod.addFile(f)
	}

	return mod, errs
}

// loadFolderModule combines the folder's own *immediate* .sk files into a
// single Module, per spec.md §4.3. Files nested in subdirectories are each
// their own separately addressable file module (e.g. x/k/m.sk under folder
// module "x" is module "x.k.m", not part of "x"'s Decls) — loadFolderModule
// returns their canonical paths so Load's BFS enqueues and parses each of
// them on its own, the same as if something had imported them directly.
func (g *Graph) loadFolderModule(p Path, folderPath string) (*Module, []Path, diag.Errors) {
	mod := newModule(-1, p, FolderModule)
	var errs diag.Errors
	var nested []Path

	var direct []string
	_ = filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(path, ".sk") {
			return nil
		}
		if filepath.Dir(path) == folderPath {
			direct = append(direct, path)
		} else {
			nested = append(nested, pathFromFile(g.Root, path))
		}
		return nil
	})
	sort.Strings(direct)

	for _, fp := range direct {
		f, fileErrs := g.parseOneFile(fp)
		errs = append(errs, fileErrs...)
		if f != nil {
			mod.addFile(f)
		}
	}

	return mod, nested, errs
}

func (g *Graph) parseOneFile(path string) (*ast.File, diag.Errors) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Errors{diag.New(diag.EParse, source.Span{}, path, "could not read file: %v", err)}
	}

	fileId := len(g.Files)
	srcFile := source.NewFile(fileId, path, contents)
	g.Files = append(g.Files, srcFile)

	return parser.ParseFile(srcFile)
}
