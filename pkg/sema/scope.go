package sema

import "github.com/AayushMainali-Github/skepa-lang/pkg/types"

// localVar is one slot in the current function's flat local-slot array.
type localVar struct {
	slot int
	typ  types.Type
}

// env is a lexical scope of local bindings within one function body. Slots
// are allocated from a single counter shared by the whole function (spec.md
// §4.4's "local slots"), so nested blocks never reuse a parent's slot even
// after the block exits — simple and matches how pkg/corset's column
// allocator hands out ever-increasing indices rather than reusing freed
// ones.
type env struct {
	parent *env
	vars   map[string]localVar
	slots  *int // shared counter, function-wide

	// loopDepth counts enclosing while/for loops, for break/continue
	// validation.
	loopDepth int

	// capture, when non-nil, is the environment a function literal was
	// declared inside. It is never searched for resolution — only used to
	// produce a more specific "non-capturing function literal" diagnostic
	// when a name can't otherwise be resolved.
	capture *env
}

func newEnv(parent *env) *env {
	s := new(int)
	if parent != nil {
		s = parent.slots
	}
	return &env{parent: parent, vars: map[string]localVar{}, slots: s, loopDepth: loopDepthOf(parent)}
}

func loopDepthOf(parent *env) int {
	if parent == nil {
		return 0
	}
	return parent.loopDepth
}

// child opens a nested block scope that shares this env's slot counter and
// loop depth.
func (e *env) child() *env {
	c := newEnv(e)
	return c
}

// loopChild opens a nested scope one loop deeper (used for while/for
// bodies).
func (e *env) loopChild() *env {
	c := e.child()
	c.loopDepth = e.loopDepth + 1
	return c
}

// fresh opens a brand-new, parent-less scope for a non-capturing function
// literal, remembering e only for the capture diagnostic.
func (e *env) fresh() *env {
	zero := 0
	return &env{vars: map[string]localVar{}, slots: &zero, capture: e}
}

// declare allocates a new slot for name, shadowing any outer binding.
func (e *env) declare(name string, t types.Type) int {
	slot := *e.slots
	*e.slots++
	e.vars[name] = localVar{slot: slot, typ: t}
	return slot
}

// lookup searches this scope and its parents (not the capture link).
func (e *env) lookup(name string) (localVar, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

// capturesOuter reports whether name would resolve in the environment this
// scope was carved out of (for the non-capturing function-literal check).
func (e *env) capturesOuter(name string) bool {
	if e.capture == nil {
		return false
	}
	_, ok := e.capture.lookup(name)
	return ok
}

// numSlots returns the total number of local slots allocated in this
// function so far.
func (e *env) numSlots() int {
	return *e.slots
}
