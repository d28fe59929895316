// Package types implements the Type model of spec.md §3: a tagged variant
// over primitives, statically-sized arrays, runtime-sized vecs, named
// (nominal) structs, and first-class function types, with structural
// equality for everything except structs, which compare nominally by
// (module, name).
package types

import "fmt"

// Kind tags the variant of a Type.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Void
	Array
	Vec
	Named
	Fn
)

// Type is an immutable, structurally-comparable (except for Named) type
// value. Constructed via the package-level constructors below rather than
// struct literals, so callers cannot build an inconsistent variant.
type Type struct {
	kind Kind

	// Array / Vec
	elem *Type
	// Array only
	length int

	// Named
	module string
	name   string

	// Fn
	params []Type
	ret    *Type
}

// Primitive singletons.
var (
	TInt    = Type{kind: Int}
	TFloat  = Type{kind: Float}
	TBool   = Type{kind: Bool}
	TString = Type{kind: String}
	TVoid   = Type{kind: Void}
)

// NewArray constructs an Array(element, length) type.
func NewArray(elem Type, length int) Type {
	e := elem
	return Type{kind: Array, elem: &e, length: length}
}

// NewVec constructs a Vec(element) type.
func NewVec(elem Type) Type {
	e := elem
	return Type{kind: Vec, elem: &e}
}

// NewNamed constructs a nominal struct type, keyed by declaring module and
// name (spec.md §3: "nominal ... for structs").
func NewNamed(module, name string) Type {
	return Type{kind: Named, module: module, name: name}
}

// NewFn constructs a first-class function type.
func NewFn(params []Type, ret Type) Type {
	r := ret
	ps := make([]Type, len(params))
	copy(ps, params)
	return Type{kind: Fn, params: ps, ret: &r}
}

// Kind reports this type's variant.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the element type of an Array or Vec. Panics on any other
// kind; callers must check Kind() first.
func (t Type) Elem() Type { return *t.elem }

// Length returns the static length of an Array type.
func (t Type) Length() int { return t.length }

// Module and Name return the declaring module and struct name of a Named
// type.
func (t Type) Module() string { return t.module }
func (t Type) Name() string   { return t.name }

// Params and Ret return the parameter and return types of a Fn type.
func (t Type) Params() []Type { return t.params }
func (t Type) Ret() Type      { return *t.ret }

// IsPrimitive reports whether t is one of Int/Float/Bool/String.
func (t Type) IsPrimitive() bool {
	switch t.kind {
	case Int, Float, Bool, String:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool {
	return t.kind == Int || t.kind == Float
}

// Equals implements the structural/nominal equality rule from spec.md §3:
// structural for primitives/arrays/vecs/fns, nominal (module, name) for
// structs.
func (t Type) Equals(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case Int, Float, Bool, String, Void:
		return true
	case Array:
		return t.length == other.length && t.elem.Equals(*other.elem)
	case Vec:
		return t.elem.Equals(*other.elem)
	case Named:
		return t.module == other.module && t.name == other.name
	case Fn:
		if len(t.params) != len(other.params) || !t.ret.Equals(*other.ret) {
			return false
		}
		for i := range t.params {
			if !t.params[i].Equals(other.params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a Type for diagnostics.
func (t Type) String() string {
	switch t.kind {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Void:
		return "Void"
	case Array:
		return fmt.Sprintf("[%s; %d]", t.elem, t.length)
	case Vec:
		return fmt.Sprintf("Vec<%s>", t.elem)
	case Named:
		return fmt.Sprintf("%s.%s", t.module, t.name)
	case Fn:
		s := "fn("
		for i, p := range t.params {
			if i != 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ") -> " + t.ret.String()
	default:
		return "<unknown type>"
	}
}
