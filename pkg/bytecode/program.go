package bytecode

// ConstKind tags an entry in a function's constant pool.
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
)

// Const is one constant-pool entry. Only the field matching Kind is valid.
type Const struct {
	Kind ConstKind
	I    int64
	F    float64
	B    bool
	S    string
}

// Function is one compiled function body: a flat opcode stream plus the
// constant pool it indexes into. Constants are pooled per function rather
// than per program, mirroring how locals are numbered per function — keeps
// the emitter a single forward pass with no cross-function bookkeeping.
type Function struct {
	QualifiedName string
	Arity         int
	NumLocals     int
	Code          []byte
	Consts        []Const
}

// Global is one compiled module-level "let" binding: Code, when run with no
// locals and an empty operand stack, leaves the binding's initial value on
// top of the stack.
type Global struct {
	QualifiedName string
	Code          []byte
	Consts        []Const
}

// Program is the full compiled unit produced by Emit, ready for
// WriteContainer or direct execution by pkg/vm.
type Program struct {
	Functions  []Function
	Globals    []Global
	EntryIndex int
}

func (p *Program) funcIndex(name string) (int, bool) {
	for i, f := range p.Functions {
		if f.QualifiedName == name {
			return i, true
		}
	}
	return 0, false
}
