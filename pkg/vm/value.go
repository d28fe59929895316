// Package vm is the stack-machine interpreter of spec.md §4.7: it runs a
// compiled pkg/bytecode.Program to completion, raising labeled runtime
// traps (Trap) when a precondition fails, and returns the process exit code
// taken from main's returned Int. Grounded on pkg/asm's Executor — one
// frame, one program counter, run-until-Return — adapted from a
// register/field-element machine to a tagged-value stack machine.
package vm

import (
	"fmt"
	"strings"
)

// Kind tags a runtime Value's variant.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KArray
	KVec
	KStruct
	KFn
	KVoid
)

// Value is a tagged runtime value. Struct and Array are plain Go slices/maps
// copied by value on assignment (spec.md: "value semantics, no in-place
// mutation of String or Array"); Vec holds a pointer so aliasing a Vec
// duplicates the handle, not the backing storage, per spec.md's "Vec is the
// only value with mutable-shared aliasing".
type Value struct {
	Kind   Kind
	I      int64
	F      float64
	B      bool
	S      string
	Arr    []Value
	Vec    *VecHandle
	Struct *StructValue
	FnName string
}

// VecHandle is the shared, mutable backing store of a Vec value.
type VecHandle struct {
	Elems []Value
}

// StructValue is a struct instance: TypeName is left empty by OpNewStruct,
// which carries only a numeric type id, and Fields holds values in
// declared field order matching pkg/bytecode's structLayout numbering.
type StructValue struct {
	TypeName string
	Fields   []Value
}

func IntValue(i int64) Value      { return Value{Kind: KInt, I: i} }
func FloatValue(f float64) Value  { return Value{Kind: KFloat, F: f} }
func BoolValue(b bool) Value      { return Value{Kind: KBool, B: b} }
func StringValue(s string) Value  { return Value{Kind: KString, S: s} }
func VoidValue() Value            { return Value{Kind: KVoid} }
func ArrayValue(els []Value) Value {
	return Value{Kind: KArray, Arr: els}
}
func VecValue(h *VecHandle) Value { return Value{Kind: KVec, Vec: h} }
func FnValue(name string) Value   { return Value{Kind: KFn, FnName: name} }

// String renders v for io.print/printf's %v-equivalent and for trace output.
func (v Value) String() string {
	switch v.Kind {
	case KInt:
		return fmt.Sprintf("%d", v.I)
	case KFloat:
		return fmt.Sprintf("%g", v.F)
	case KBool:
		return fmt.Sprintf("%t", v.B)
	case KString:
		return v.S
	case KArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KVec:
		parts := make([]string, len(v.Vec.Elems))
		for i, e := range v.Vec.Elems {
			parts[i] = e.String()
		}
		return "Vec[" + strings.Join(parts, ", ") + "]"
	case KStruct:
		parts := make([]string, len(v.Struct.Fields))
		for i, f := range v.Struct.Fields {
			parts[i] = f.String()
		}
		return v.Struct.TypeName + "{" + strings.Join(parts, ", ") + "}"
	case KFn:
		return "<fn " + v.FnName + ">"
	case KVoid:
		return "<void>"
	default:
		return "<?>"
	}
}

// TypeName is the short kind name used in E-VM-TYPE messages.
func (v Value) TypeName() string {
	switch v.Kind {
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KArray:
		return "Array"
	case KVec:
		return "Vec"
	case KStruct:
		return v.Struct.TypeName
	case KFn:
		return "Fn"
	default:
		return "Void"
	}
}
