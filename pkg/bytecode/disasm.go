package bytecode

import (
	"fmt"
	"strings"
)

// operandWidths maps each opcode to the byte-widths of its immediate
// operands, in order, so Disassemble can walk a code stream without a
// second copy of the opcode table's comments.
var operandWidths = map[Op][]int{
	OpPushConst:  {4},
	OpLoadLocal:  {4},
	OpStoreLocal: {4},
	OpLoadGlobal: {4},
	OpJump:       {4},
	OpJumpIfFalse: {4},
	OpJumpIfTrue:  {4},
	OpCall:        {4, 1},
	OpCallValue:   {1},
	OpCallBuiltin: {4, 1},
	OpNewArray:    {4},
	OpArrayRepeat: {4},
	OpNewStruct:   {4, 4},
	OpFieldGet:    {4},
	OpFieldSet:    {4},
}

// Disassemble renders p as a human-readable instruction listing, one
// function (or global initializer) per section, used by `skepac disasm`.
func Disassemble(p *Program) string {
	var b strings.Builder
	for _, g := range p.Globals {
		fmt.Fprintf(&b, "global %s\n", g.QualifiedName)
		disasmOne(&b, g.Code, g.Consts)
		b.WriteString("\n")
	}
	for i, f := range p.Functions {
		marker := ""
		if i == p.EntryIndex {
			marker = " (entry)"
		}
		fmt.Fprintf(&b, "fn %s(arity=%d, locals=%d)%s\n", f.QualifiedName, f.Arity, f.NumLocals, marker)
		disasmOne(&b, f.Code, f.Consts)
		b.WriteString("\n")
	}
	return b.String()
}

func disasmOne(b *strings.Builder, code []byte, consts []Const) {
	pc := 0
	for pc < len(code) {
		start := pc
		op := Op(code[pc])
		pc++

		var operands []string
		for _, width := range operandWidths[op] {
			switch width {
			case 1:
				operands = append(operands, fmt.Sprintf("%d", code[pc]))
				pc++
			case 4:
				v := le32(code[pc : pc+4])
				if isJump(op) {
					operands = append(operands, fmt.Sprintf("%+d -> %04x", int32(v), start+1+4+int(int32(v))))
				} else {
					operands = append(operands, fmt.Sprintf("%d", v))
				}
				pc += 4
			}
		}

		line := fmt.Sprintf("  %04x  %-14s %s", start, op, strings.Join(operands, ", "))
		if op == OpPushConst && len(operands) == 1 {
			if idx := le32(code[start+1 : start+5]); int(idx) < len(consts) {
				line += fmt.Sprintf("  ; %s", constString(consts[idx]))
			}
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
}

func isJump(op Op) bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpJumpIfTrue
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func constString(c Const) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.I)
	case ConstFloat:
		return fmt.Sprintf("%g", c.F)
	case ConstBool:
		return fmt.Sprintf("%t", c.B)
	case ConstString:
		return fmt.Sprintf("%q", c.S)
	default:
		return "?"
	}
}
