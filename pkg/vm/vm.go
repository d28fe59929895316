package vm

import (
	"bufio"
	"encoding/binary"
	"math/rand"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/AayushMainali-Github/skepa-lang/pkg/bytecode"
)

// defaultMaxCallDepth is used when SKEPA_MAX_CALL_DEPTH is unset or
// unparsable; spec.md §4.7 leaves the default implementation-defined.
const defaultMaxCallDepth = 2048

type frame struct {
	fn     *bytecode.Function
	pc     int
	locals []Value
}

// Machine is one execution of a compiled Program: its operand stack, call
// stack, global bindings, and the host resources built-ins need (stdin,
// RNG, working directory).
type Machine struct {
	prog    *bytecode.Program
	globals []Value
	frames  []*frame
	stack   []Value

	maxCallDepth int
	trace        bool

	stdin *bufio.Reader
	rng   *rand.Rand
}

// Option configures a Machine before Run.
type Option func(*Machine)

// WithTrace enables spec.md §4.7's per-instruction trace output.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
		if enabled {
			log.SetLevel(log.TraceLevel)
		}
	}
}

// NewMachine constructs a Machine ready to Run prog.
func NewMachine(prog *bytecode.Program, opts ...Option) *Machine {
	m := &Machine{
		prog:         prog,
		maxCallDepth: readMaxCallDepth(),
		stdin:        bufio.NewReader(os.Stdin),
		rng:          rand.New(rand.NewSource(1)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func readMaxCallDepth() int {
	v := os.Getenv("SKEPA_MAX_CALL_DEPTH")
	if v == "" {
		return defaultMaxCallDepth
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Warnf("SKEPA_MAX_CALL_DEPTH=%q is invalid, using default %d", v, defaultMaxCallDepth)
		return defaultMaxCallDepth
	}
	return n
}

// Run evaluates every global initializer in order, then invokes main, and
// returns the low 8 bits of main's returned Int as the process exit code.
func (m *Machine) Run() (exitCode int, err error) {
	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(*Trap); ok {
				err = t
				return
			}
			err = &Trap{Label: ErrPanic, Message: toPanicMessage(r)}
		}
	}()

	m.globals = make([]Value, len(m.prog.Globals))
	for i, g := range m.prog.Globals {
		m.globals[i] = m.runCode(g.Code, g.Consts, nil, "global:"+g.QualifiedName)
	}

	entry := &m.prog.Functions[m.prog.EntryIndex]
	result := m.call(entry, nil)
	return int(uint8(result.I)), nil
}

func toPanicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "unexpected internal error"
}

// call invokes fn with the given argument values already in call order,
// running it to completion and returning its result (VoidValue for a Void
// function).
func (m *Machine) call(fn *bytecode.Function, args []Value) Value {
	if len(m.frames) >= m.maxCallDepth {
		panic(newTrap(ErrStackOverflow, fn.QualifiedName, 0, "call depth exceeded %d", m.maxCallDepth))
	}
	locals := make([]Value, fn.NumLocals)
	copy(locals, args)
	return m.runCode(fn.Code, fn.Consts, locals, fn.QualifiedName)
}

// runCode executes one code stream (a function body or a global
// initializer) to completion and returns the value left on the stack by
// Return, or VoidValue if it falls off the end / hits ReturnVoid.
func (m *Machine) runCode(code []byte, consts []bytecode.Const, locals []Value, name string) Value {
	fr := &frame{locals: locals}
	m.frames = append(m.frames, fr)
	defer func() { m.frames = m.frames[:len(m.frames)-1] }()

	base := len(m.stack)
	for fr.pc < len(code) {
		if m.trace {
			m.logTrace(name, fr.pc, bytecode.Op(code[fr.pc]))
		}
		op := bytecode.Op(code[fr.pc])
		start := fr.pc
		fr.pc++

		switch op {
		case bytecode.OpPushConst:
			idx := readU32(code, &fr.pc)
			m.push(constToValue(consts[idx]))
		case bytecode.OpLoadLocal:
			slot := readU32(code, &fr.pc)
			m.push(fr.locals[slot])
		case bytecode.OpStoreLocal:
			slot := readU32(code, &fr.pc)
			fr.locals[slot] = m.pop()
		case bytecode.OpLoadGlobal:
			slot := readU32(code, &fr.pc)
			m.push(m.globals[slot])
		case bytecode.OpPop:
			m.pop()

		case bytecode.OpAddI:
			b, a := m.pop(), m.pop()
			m.push(IntValue(a.I + b.I))
		case bytecode.OpSubI:
			b, a := m.pop(), m.pop()
			m.push(IntValue(a.I - b.I))
		case bytecode.OpMulI:
			b, a := m.pop(), m.pop()
			m.push(IntValue(a.I * b.I))
		case bytecode.OpDivI:
			b, a := m.pop(), m.pop()
			if b.I == 0 {
				panic(newTrap(ErrDivZero, name, start, "integer division by zero"))
			}
			m.push(IntValue(a.I / b.I))
		case bytecode.OpModI:
			b, a := m.pop(), m.pop()
			if b.I == 0 {
				panic(newTrap(ErrDivZero, name, start, "integer modulo by zero"))
			}
			m.push(IntValue(a.I % b.I))
		case bytecode.OpAddF:
			b, a := m.pop(), m.pop()
			m.push(FloatValue(a.F + b.F))
		case bytecode.OpSubF:
			b, a := m.pop(), m.pop()
			m.push(FloatValue(a.F - b.F))
		case bytecode.OpMulF:
			b, a := m.pop(), m.pop()
			m.push(FloatValue(a.F * b.F))
		case bytecode.OpDivF:
			b, a := m.pop(), m.pop()
			m.push(FloatValue(a.F / b.F))
		case bytecode.OpNegI:
			a := m.pop()
			m.push(IntValue(-a.I))
		case bytecode.OpNegF:
			a := m.pop()
			m.push(FloatValue(-a.F))
		case bytecode.OpNot:
			a := m.pop()
			m.push(BoolValue(!a.B))
		case bytecode.OpConcatStr:
			b, a := m.pop(), m.pop()
			m.push(StringValue(a.S + b.S))
		case bytecode.OpConcatArr:
			b, a := m.pop(), m.pop()
			out := make([]Value, 0, len(a.Arr)+len(b.Arr))
			out = append(out, a.Arr...)
			out = append(out, b.Arr...)
			m.push(ArrayValue(out))

		case bytecode.OpEqI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I == b.I))
		case bytecode.OpEqF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F == b.F))
		case bytecode.OpEqB:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.B == b.B))
		case bytecode.OpEqS:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.S == b.S))
		case bytecode.OpNeI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I != b.I))
		case bytecode.OpNeF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F != b.F))
		case bytecode.OpNeB:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.B != b.B))
		case bytecode.OpNeS:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.S != b.S))
		case bytecode.OpLtI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I < b.I))
		case bytecode.OpLeI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I <= b.I))
		case bytecode.OpGtI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I > b.I))
		case bytecode.OpGeI:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.I >= b.I))
		case bytecode.OpLtF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F < b.F))
		case bytecode.OpLeF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F <= b.F))
		case bytecode.OpGtF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F > b.F))
		case bytecode.OpGeF:
			b, a := m.pop(), m.pop()
			m.push(BoolValue(a.F >= b.F))

		case bytecode.OpJump:
			off := readI32(code, &fr.pc)
			fr.pc += int(off)
		case bytecode.OpJumpIfFalse:
			off := readI32(code, &fr.pc)
			if !m.pop().B {
				fr.pc += int(off)
			}
		case bytecode.OpJumpIfTrue:
			off := readI32(code, &fr.pc)
			if m.pop().B {
				fr.pc += int(off)
			}
		case bytecode.OpReturn:
			result := m.pop()
			m.stack = m.stack[:base]
			return result
		case bytecode.OpReturnVoid:
			m.stack = m.stack[:base]
			return VoidValue()

		case bytecode.OpCall:
			funcID := readU32(code, &fr.pc)
			arity := int(readU8(code, &fr.pc))
			args := m.popN(arity)
			callee := &m.prog.Functions[funcID]
			m.push(m.call(callee, args))
		case bytecode.OpCallValue:
			arity := int(readU8(code, &fr.pc))
			callee := m.pop()
			args := m.popN(arity)
			fn := m.lookupFunc(callee.FnName, name, start)
			m.push(m.call(fn, args))
		case bytecode.OpCallBuiltin:
			builtinID := readU32(code, &fr.pc)
			arity := int(readU8(code, &fr.pc))
			args := m.popN(arity)
			m.push(m.callBuiltin(int(builtinID), args, name, start))

		case bytecode.OpNewArray:
			n := int(readU32(code, &fr.pc))
			els := m.popN(n)
			m.push(ArrayValue(els))
		case bytecode.OpArrayRepeat:
			n := int(readU32(code, &fr.pc))
			v := m.pop()
			els := make([]Value, n)
			for i := range els {
				els[i] = v
			}
			m.push(ArrayValue(els))
		case bytecode.OpIndexGet:
			idx, recv := m.pop(), m.pop()
			m.push(m.indexGet(recv, idx, name, start))
		case bytecode.OpIndexSet:
			val, idx, recv := m.pop(), m.pop(), m.pop()
			m.indexSet(recv, idx, val, name, start)
		case bytecode.OpNewStruct:
			_ = readU32(code, &fr.pc) // type_id, informational only
			n := int(readU32(code, &fr.pc))
			fields := m.popN(n)
			m.push(Value{Kind: KStruct, Struct: &StructValue{Fields: fields}})
		case bytecode.OpFieldGet:
			idx := readU32(code, &fr.pc)
			recv := m.pop()
			m.push(recv.Struct.Fields[idx])
		case bytecode.OpFieldSet:
			idx := readU32(code, &fr.pc)
			val := m.pop()
			recv := m.pop()
			recv.Struct.Fields[idx] = val
		case bytecode.OpNewVec:
			m.push(VecValue(&VecHandle{}))

		default:
			panic(newTrap(ErrType, name, start, "unknown opcode %d", op))
		}
	}
	// Global initializers have no Return instruction: their code is a bare
	// expression that leaves exactly one value on the stack. A Void
	// function's body always ends in an explicit ReturnVoid (Emit
	// guarantees this), so this path is otherwise unreachable.
	if len(m.stack) > base {
		return m.pop()
	}
	return VoidValue()
}

func (m *Machine) push(v Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *Machine) popN(n int) []Value {
	if n == 0 {
		return nil
	}
	start := len(m.stack) - n
	out := make([]Value, n)
	copy(out, m.stack[start:])
	m.stack = m.stack[:start]
	return out
}

func (m *Machine) lookupFunc(name, caller string, pc int) *bytecode.Function {
	for i := range m.prog.Functions {
		if m.prog.Functions[i].QualifiedName == name {
			return &m.prog.Functions[i]
		}
	}
	panic(newTrap(ErrType, caller, pc, "call to undefined function %q", name))
}

func (m *Machine) indexGet(recv, idx Value, fn string, pc int) Value {
	i := idx.I
	switch recv.Kind {
	case KArray:
		if i < 0 || i >= int64(len(recv.Arr)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "array index %d out of bounds (len %d)", i, len(recv.Arr)))
		}
		return recv.Arr[i]
	case KVec:
		if i < 0 || i >= int64(len(recv.Vec.Elems)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "vec index %d out of bounds (len %d)", i, len(recv.Vec.Elems)))
		}
		return recv.Vec.Elems[i]
	case KString:
		if i < 0 || i >= int64(len(recv.S)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "string index %d out of bounds (len %d)", i, len(recv.S)))
		}
		return StringValue(string(recv.S[i]))
	default:
		panic(newTrap(ErrType, fn, pc, "cannot index a %s", recv.TypeName()))
	}
}

func (m *Machine) indexSet(recv, idx, val Value, fn string, pc int) {
	i := idx.I
	switch recv.Kind {
	case KVec:
		if i < 0 || i >= int64(len(recv.Vec.Elems)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "vec index %d out of bounds (len %d)", i, len(recv.Vec.Elems)))
		}
		recv.Vec.Elems[i] = val
	case KArray:
		if i < 0 || i >= int64(len(recv.Arr)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "array index %d out of bounds (len %d)", i, len(recv.Arr)))
		}
		recv.Arr[i] = val
	default:
		panic(newTrap(ErrType, fn, pc, "cannot assign into a %s", recv.TypeName()))
	}
}

func (m *Machine) logTrace(fn string, pc int, op bytecode.Op) {
	top := "<empty>"
	if len(m.stack) > 0 {
		top = m.stack[len(m.stack)-1].String()
	}
	log.WithFields(log.Fields{
		"depth": len(m.frames),
		"pc":    pc,
		"op":    op.String(),
		"top":   top,
	}).Trace(fn)
}

func constToValue(c bytecode.Const) Value {
	switch c.Kind {
	case bytecode.ConstInt:
		return IntValue(c.I)
	case bytecode.ConstFloat:
		return FloatValue(c.F)
	case bytecode.ConstBool:
		return BoolValue(c.B)
	case bytecode.ConstString:
		return StringValue(c.S)
	default:
		return VoidValue()
	}
}

func readU32(code []byte, pc *int) uint32 {
	v := binary.LittleEndian.Uint32(code[*pc : *pc+4])
	*pc += 4
	return v
}

func readI32(code []byte, pc *int) int32 { return int32(readU32(code, pc)) }

func readU8(code []byte, pc *int) uint8 {
	v := code[*pc]
	*pc++
	return v
}
