package bytecode

import (
	"fmt"

	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

// structLayout resolves a Named type's field order to positional indices,
// built once from the ir.Program's struct declarations are not carried in
// ir (sema erases them after resolving field accesses to names), so the
// emitter tracks field order itself as FieldGet/FieldSet/NewStruct are
// encountered: the first struct literal seen for a given nominal type fixes
// its field order for the rest of the program, mirroring the order sema
// lowered NewStruct.Fields in (declaration order, per ir.go's doc comment).
type structLayout struct {
	fieldIndex map[string]map[string]int // type key -> field name -> index
	typeID     map[string]uint32
}

func newStructLayout() *structLayout {
	return &structLayout{fieldIndex: map[string]map[string]int{}, typeID: map[string]uint32{}}
}

func (s *structLayout) indexOf(t types.Type, field string) int {
	key := t.Module() + "." + t.Name()
	m := s.fieldIndex[key]
	if idx, ok := m[field]; ok {
		return idx
	}
	if m == nil {
		m = map[string]int{}
		s.fieldIndex[key] = m
	}
	idx := len(m)
	m[field] = idx
	return idx
}

func (s *structLayout) idOf(t types.Type) uint32 {
	key := t.Module() + "." + t.Name()
	if id, ok := s.typeID[key]; ok {
		return id
	}
	id := uint32(len(s.typeID))
	s.typeID[key] = id
	return id
}

// emitter compiles one ir.Function into a flat opcode stream, pooling
// constants and back-patching forward jumps once the target is known.
type emitter struct {
	prog      *ir.Program
	layout    *structLayout
	consts    []Const
	code      []byte
	loops     []loopCtx
	globals   map[string]int    // qualified name -> global slot index
	funcIndex map[string]uint32 // qualified name -> index into Program.Functions
}

type loopCtx struct {
	breaks    []int // positions of the i32 operand to patch at loop end
	continues []int // positions of the i32 operand to patch at the condition re-check
}

// Emit compiles a fully checked ir.Program into its bytecode Program, per
// spec.md §4.5's deterministic opcode stream.
func Emit(p *ir.Program) (*Program, error) {
	layout := newStructLayout()
	globals := make(map[string]int, len(p.Globals))
	for i, g := range p.Globals {
		globals[g.QualifiedName] = i
	}
	funcIndex := make(map[string]uint32, len(p.Functions))
	for i, fn := range p.Functions {
		funcIndex[fn.QualifiedName] = uint32(i)
	}

	out := &Program{EntryIndex: p.EntryIndex}
	for _, fn := range p.Functions {
		e := &emitter{prog: p, layout: layout, globals: globals, funcIndex: funcIndex}
		e.emitBlock(fn.Body)
		// Non-Void functions are required by sema to terminate on every
		// path; Void functions may fall off the end and need an implicit
		// return.
		if fn.Ret.Equals(types.TVoid) {
			e.emit(OpReturnVoid)
		}
		out.Functions = append(out.Functions, Function{
			QualifiedName: fn.QualifiedName,
			Arity:         len(fn.Params),
			NumLocals:     fn.NumLocals,
			Code:          e.code,
			Consts:        e.consts,
		})
	}
	for _, g := range p.Globals {
		e := &emitter{prog: p, layout: layout, globals: globals, funcIndex: funcIndex}
		e.emitExpr(g.Init)
		out.Globals = append(out.Globals, Global{
			QualifiedName: g.QualifiedName,
			Code:          e.code,
			Consts:        e.consts,
		})
	}
	return out, nil
}

func (e *emitter) emit(op Op) { e.code = append(e.code, byte(op)) }

func (e *emitter) emitU32(v uint32) {
	e.code = append(e.code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (e *emitter) emitU8(v uint8) { e.code = append(e.code, v) }

// emitI32Placeholder appends a zero i32 operand and returns its byte
// offset, for later patching once the jump target is known.
func (e *emitter) emitI32Placeholder() int {
	pos := len(e.code)
	e.code = append(e.code, 0, 0, 0, 0)
	return pos
}

func (e *emitter) patchI32(pos int, rel int32) {
	v := uint32(rel)
	e.code[pos] = byte(v)
	e.code[pos+1] = byte(v >> 8)
	e.code[pos+2] = byte(v >> 16)
	e.code[pos+3] = byte(v >> 24)
}

// here is the offset the *next* emitted byte will land at, i.e. the base a
// relative jump offset is computed from (spec.md §4.5: offsets are relative
// to the instruction immediately following the jump's operand).
func (e *emitter) here() int { return len(e.code) }

func (e *emitter) addConst(c Const) int {
	for i, existing := range e.consts {
		if existing == c {
			return i
		}
	}
	e.consts = append(e.consts, c)
	return len(e.consts) - 1
}

func (e *emitter) emitBlock(stmts []ir.Stmt) {
	for _, s := range stmts {
		e.emitStmt(s)
	}
}

func (e *emitter) emitStmt(s ir.Stmt) {
	switch st := s.(type) {
	case *ir.LetStmt:
		e.emitExpr(st.Value)
		e.emit(OpStoreLocal)
		e.emitU32(uint32(st.Slot))
	case *ir.AssignLocalStmt:
		e.emitExpr(st.Value)
		e.emit(OpStoreLocal)
		e.emitU32(uint32(st.Slot))
	case *ir.AssignFieldStmt:
		e.emitExpr(st.Recv)
		e.emitExpr(st.Value)
		e.emit(OpFieldSet)
		e.emitU32(uint32(e.layout.indexOf(st.Recv.Type(), st.Field)))
	case *ir.AssignIndexStmt:
		e.emitExpr(st.Recv)
		e.emitExpr(st.Index)
		e.emitExpr(st.Value)
		e.emit(OpIndexSet)
	case *ir.IfStmt:
		e.emitIf(st)
	case *ir.WhileStmt:
		e.emitWhile(st)
	case *ir.ForStmt:
		e.emitFor(st)
	case *ir.MatchStmt:
		e.emitMatch(st)
	case *ir.BreakStmt:
		e.emit(OpJump)
		pos := e.emitI32Placeholder()
		top := &e.loops[len(e.loops)-1]
		top.breaks = append(top.breaks, pos)
	case *ir.ContinueStmt:
		e.emit(OpJump)
		pos := e.emitI32Placeholder()
		top := &e.loops[len(e.loops)-1]
		top.continues = append(top.continues, pos)
	case *ir.ReturnStmt:
		if st.Value == nil {
			e.emit(OpReturnVoid)
			return
		}
		e.emitExpr(st.Value)
		e.emit(OpReturn)
	case *ir.ExprStmt:
		e.emitExpr(st.Value)
		if !st.Value.Type().Equals(types.TVoid) {
			e.emit(OpPop)
		}
	default:
		panic(fmt.Sprintf("bytecode: unhandled stmt %T", s))
	}
}

func (e *emitter) emitIf(st *ir.IfStmt) {
	e.emitExpr(st.Cond)
	e.emit(OpJumpIfFalse)
	elseJump := e.emitI32Placeholder()
	e.emitBlock(st.Then)
	if st.Else == nil {
		e.patchI32(elseJump, int32(e.here()-(elseJump+4)))
		return
	}
	e.emit(OpJump)
	endJump := e.emitI32Placeholder()
	e.patchI32(elseJump, int32(e.here()-(elseJump+4)))
	e.emitBlock(st.Else)
	e.patchI32(endJump, int32(e.here()-(endJump+4)))
}

func (e *emitter) emitWhile(st *ir.WhileStmt) {
	condStart := e.here()
	e.emitExpr(st.Cond)
	e.emit(OpJumpIfFalse)
	exitJump := e.emitI32Placeholder()

	e.loops = append(e.loops, loopCtx{})
	e.emitBlock(st.Body)
	loop := e.loops[len(e.loops)-1]
	e.loops = e.loops[:len(e.loops)-1]

	e.emit(OpJump)
	backJump := e.emitI32Placeholder()
	e.patchI32(backJump, int32(condStart-(backJump+4)))

	loopEnd := e.here()
	e.patchI32(exitJump, int32(loopEnd-(exitJump+4)))
	for _, p := range loop.breaks {
		e.patchI32(p, int32(loopEnd-(p+4)))
	}
	for _, p := range loop.continues {
		e.patchI32(p, int32(condStart-(p+4)))
	}
}

func (e *emitter) emitFor(st *ir.ForStmt) {
	if st.Init != nil {
		e.emitStmt(st.Init)
	}
	condStart := e.here()
	var exitJump int
	hasCond := st.Cond != nil
	if hasCond {
		e.emitExpr(st.Cond)
		e.emit(OpJumpIfFalse)
		exitJump = e.emitI32Placeholder()
	}

	e.loops = append(e.loops, loopCtx{})
	e.emitBlock(st.Body)
	loop := e.loops[len(e.loops)-1]
	e.loops = e.loops[:len(e.loops)-1]

	stepStart := e.here()
	if st.Step != nil {
		e.emitStmt(st.Step)
	}
	e.emit(OpJump)
	backJump := e.emitI32Placeholder()
	e.patchI32(backJump, int32(condStart-(backJump+4)))

	loopEnd := e.here()
	if hasCond {
		e.patchI32(exitJump, int32(loopEnd-(exitJump+4)))
	}
	for _, p := range loop.breaks {
		e.patchI32(p, int32(loopEnd-(p+4)))
	}
	for _, p := range loop.continues {
		e.patchI32(p, int32(stepStart-(p+4)))
	}
}

// emitMatch lowers a match statement into a chain of equality tests against
// the scrutinee, held in a synthetic local-free fashion by re-evaluating the
// target expression per arm: the target is always a side-effect-free
// value (sema restricts match targets to Int/Float/Bool/String), so this is safe
// and avoids needing a dedicated temporary-slot allocator in the emitter.
func (e *emitter) emitMatch(st *ir.MatchStmt) {
	var endJumps []int
	for _, arm := range st.Arms {
		if arm.Wildcard {
			e.emitBlock(arm.Body)
			continue
		}
		// Every pattern but the last falls through (on no-match) to the
		// next pattern test, or jumps straight to the shared body (on
		// match); the last pattern instead jumps past the body to the
		// next arm on no-match, and falls through into the body on match.
		var matchJumps []int
		fallThroughJump := -1
		for i, pat := range arm.Patterns {
			e.emitExpr(st.Value)
			e.emitExpr(pat)
			e.emit(eqOpFor(st.Target))
			if i == len(arm.Patterns)-1 {
				e.emit(OpJumpIfFalse)
				fallThroughJump = e.emitI32Placeholder()
			} else {
				e.emit(OpJumpIfTrue)
				matchJumps = append(matchJumps, e.emitI32Placeholder())
			}
		}

		bodyStart := e.here()
		for _, p := range matchJumps {
			e.patchI32(p, int32(bodyStart-(p+4)))
		}
		e.emitBlock(arm.Body)
		e.emit(OpJump)
		endJumps = append(endJumps, e.emitI32Placeholder())

		if fallThroughJump != -1 {
			e.patchI32(fallThroughJump, int32(e.here()-(fallThroughJump+4)))
		}
	}
	end := e.here()
	for _, p := range endJumps {
		e.patchI32(p, int32(end-(p+4)))
	}
}

func eqOpFor(t types.Type) Op {
	switch t.Kind() {
	case types.Float:
		return OpEqF
	case types.Bool:
		return OpEqB
	case types.String:
		return OpEqS
	default:
		return OpEqI
	}
}

func (e *emitter) emitExpr(x ir.Expr) {
	switch ex := x.(type) {
	case ir.IntLit:
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstInt, I: ex.Value})))
	case ir.FloatLit:
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstFloat, F: ex.Value})))
	case ir.BoolLit:
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstBool, B: ex.Value})))
	case ir.StringLit:
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstString, S: ex.Value})))
	case *ir.LoadLocal:
		e.emit(OpLoadLocal)
		e.emitU32(uint32(ex.Slot))
	case *ir.LoadGlobal:
		slot, ok := e.globals[ex.QualifiedName]
		if !ok {
			panic("bytecode: unresolved global " + ex.QualifiedName)
		}
		e.emit(OpLoadGlobal)
		e.emitU32(uint32(slot))
	case *ir.Unary:
		e.emitExpr(ex.X)
		if ex.Op == "+" {
			return
		}
		e.emit(unaryOp(ex.Op, ex.X.Type()))
	case *ir.Binary:
		e.emitBinary(ex)
	case *ir.Call:
		for _, a := range ex.Args {
			e.emitExpr(a)
		}
		if ex.Callee != nil {
			e.emitExpr(ex.Callee)
			e.emit(OpCallValue)
			e.emitU8(uint8(len(ex.Args)))
			return
		}
		e.emit(OpCall)
		e.emitU32(e.resolveFunc(ex.QualifiedName))
		e.emitU8(uint8(len(ex.Args)))
	case *ir.CallBuiltin:
		for _, a := range ex.Args {
			e.emitExpr(a)
		}
		e.emit(OpCallBuiltin)
		e.emitU32(uint32(ex.Sig.ID))
		e.emitU8(uint8(len(ex.Args)))
	case *ir.MethodCall:
		e.emitExpr(ex.Recv)
		for _, a := range ex.Args {
			e.emitExpr(a)
		}
		e.emit(OpCall)
		e.emitU32(e.resolveFunc(ex.QualifiedName))
		e.emitU8(uint8(len(ex.Args) + 1))
	case *ir.FieldGet:
		e.emitExpr(ex.Recv)
		e.emit(OpFieldGet)
		e.emitU32(uint32(e.layout.indexOf(ex.Recv.Type(), ex.Field)))
	case *ir.IndexGet:
		e.emitExpr(ex.Recv)
		e.emitExpr(ex.Index)
		e.emit(OpIndexGet)
	case *ir.NewArray:
		for _, el := range ex.Elements {
			e.emitExpr(el)
		}
		e.emit(OpNewArray)
		e.emitU32(uint32(len(ex.Elements)))
	case *ir.ArrayRepeat:
		e.emitExpr(ex.Value)
		e.emit(OpArrayRepeat)
		e.emitU32(uint32(ex.Count))
	case *ir.NewStruct:
		for _, f := range ex.Fields {
			e.emitExpr(f)
		}
		e.emit(OpNewStruct)
		e.emitU32(e.layout.idOf(ex.Typ))
		e.emitU32(uint32(len(ex.Fields)))
	case *ir.FnValue:
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstString, S: ex.QualifiedName})))
	default:
		panic(fmt.Sprintf("bytecode: unhandled expr %T", x))
	}
}

// resolveFunc maps a call's statically resolved qualified name to its
// index into Program.Functions. Safe to do in a single forward pass because
// funcIndex is built from the full function table before any body is
// emitted.
func (e *emitter) resolveFunc(name string) uint32 {
	id, ok := e.funcIndex[name]
	if !ok {
		panic("bytecode: unresolved function " + name)
	}
	return id
}

func (e *emitter) emitBinary(ex *ir.Binary) {
	if ex.Op == "&&" {
		e.emitExpr(ex.Left)
		e.emit(OpJumpIfFalse)
		shortCircuit := e.emitI32Placeholder()
		e.emitExpr(ex.Right)
		e.emit(OpJump)
		end := e.emitI32Placeholder()
		e.patchI32(shortCircuit, int32(e.here()-(shortCircuit+4)))
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstBool, B: false})))
		e.patchI32(end, int32(e.here()-(end+4)))
		return
	}
	if ex.Op == "||" {
		e.emitExpr(ex.Left)
		e.emit(OpJumpIfTrue)
		shortCircuit := e.emitI32Placeholder()
		e.emitExpr(ex.Right)
		e.emit(OpJump)
		end := e.emitI32Placeholder()
		e.patchI32(shortCircuit, int32(e.here()-(shortCircuit+4)))
		e.emit(OpPushConst)
		e.emitU32(uint32(e.addConst(Const{Kind: ConstBool, B: true})))
		e.patchI32(end, int32(e.here()-(end+4)))
		return
	}

	e.emitExpr(ex.Left)
	e.emitExpr(ex.Right)
	e.emit(binaryOp(ex.Op, ex.Left.Type()))
}

func unaryOp(op string, t types.Type) Op {
	switch op {
	case "!":
		return OpNot
	case "-":
		if t.Kind() == types.Float {
			return OpNegF
		}
		return OpNegI
	default:
		panic("bytecode: unknown unary operator " + op)
	}
}

func binaryOp(op string, operandType types.Type) Op {
	isFloat := operandType.Kind() == types.Float
	switch op {
	case "+":
		switch operandType.Kind() {
		case types.String:
			return OpConcatStr
		case types.Array:
			return OpConcatArr
		case types.Float:
			return OpAddF
		default:
			return OpAddI
		}
	case "-":
		if isFloat {
			return OpSubF
		}
		return OpSubI
	case "*":
		if isFloat {
			return OpMulF
		}
		return OpMulI
	case "/":
		if isFloat {
			return OpDivF
		}
		return OpDivI
	case "%":
		return OpModI
	case "==":
		return eqOpFor(operandType)
	case "!=":
		switch operandType.Kind() {
		case types.Float:
			return OpNeF
		case types.Bool:
			return OpNeB
		case types.String:
			return OpNeS
		default:
			return OpNeI
		}
	case "<":
		if isFloat {
			return OpLtF
		}
		return OpLtI
	case "<=":
		if isFloat {
			return OpLeF
		}
		return OpLeI
	case ">":
		if isFloat {
			return OpGtF
		}
		return OpGtI
	case ">=":
		if isFloat {
			return OpGeF
		}
		return OpGeI
	default:
		panic("bytecode: unknown binary operator " + op)
	}
}
