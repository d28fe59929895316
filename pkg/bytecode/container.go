package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/AayushMainali-Github/skepa-lang/pkg/builtin"
)

func doubleBits(f float64) uint64    { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }

// Wire format (spec.md §4.6), all integers little-endian:
//
//	magic        [4]byte "SKBC"
//	version      u32     == containerVersion
//	entry_index  u32
//	num_globals  u32
//	  per global: name_len u32, name []byte
//	              code_len u32, code []byte
//	              num_consts u32, [const]...
//	num_functions u32
//	  per function: name_len u32, name []byte
//	                arity u32, num_locals u32
//	                code_len u32, code []byte
//	                num_consts u32, [const]...
//
// const: tag u8 (0=Int,1=Float,2=Bool,3=String)
//
//	Int:    i64
//	Float:  f64 (IEEE-754 bits)
//	Bool:   u8 (0/1)
//	String: len u32, bytes

const (
	magic           = "SKBC"
	containerVersion = uint32(1)
)

// WriteContainer encodes p into the .skbc binary format.
func WriteContainer(w io.Writer, p *Program) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := writeU32(bw, containerVersion); err != nil {
		return err
	}
	if err := writeU32(bw, uint32(p.EntryIndex)); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(len(p.Globals))); err != nil {
		return err
	}
	for _, g := range p.Globals {
		if err := writeString(bw, g.QualifiedName); err != nil {
			return err
		}
		if err := writeBytes(bw, g.Code); err != nil {
			return err
		}
		if err := writeConsts(bw, g.Consts); err != nil {
			return err
		}
	}

	if err := writeU32(bw, uint32(len(p.Functions))); err != nil {
		return err
	}
	for _, f := range p.Functions {
		if err := writeString(bw, f.QualifiedName); err != nil {
			return err
		}
		if err := writeU32(bw, uint32(f.Arity)); err != nil {
			return err
		}
		if err := writeU32(bw, uint32(f.NumLocals)); err != nil {
			return err
		}
		if err := writeBytes(bw, f.Code); err != nil {
			return err
		}
		if err := writeConsts(bw, f.Consts); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadContainer decodes a .skbc stream. Every malformed-input case returns a
// non-nil error; callers (cmd/skeparun) map that to exit code 13 /
// E-BC-DECODE per spec.md §4.6.
func ReadContainer(r io.Reader) (*Program, error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("skbc: reading magic: %w", err)
	}
	if string(gotMagic[:]) != magic {
		return nil, fmt.Errorf("skbc: bad magic %q, expected %q", gotMagic, magic)
	}

	version, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("skbc: reading version: %w", err)
	}
	if version != containerVersion {
		return nil, fmt.Errorf("skbc: unsupported version %d, expected %d", version, containerVersion)
	}

	entry, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("skbc: reading entry index: %w", err)
	}
	p := &Program{EntryIndex: int(entry)}

	numGlobals, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("skbc: reading global count: %w", err)
	}
	for i := uint32(0); i < numGlobals; i++ {
		name, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: global %d name: %w", i, err)
		}
		code, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: global %d code: %w", i, err)
		}
		consts, err := readConsts(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: global %d consts: %w", i, err)
		}
		p.Globals = append(p.Globals, Global{QualifiedName: name, Code: code, Consts: consts})
	}

	numFns, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("skbc: reading function count: %w", err)
	}
	for i := uint32(0); i < numFns; i++ {
		name, err := readString(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: function %d name: %w", i, err)
		}
		arity, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: function %d arity: %w", i, err)
		}
		numLocals, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: function %d num_locals: %w", i, err)
		}
		if numLocals < arity {
			return nil, fmt.Errorf("skbc: function %d %q: num_locals %d is less than arity %d", i, name, numLocals, arity)
		}
		code, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: function %d code: %w", i, err)
		}
		consts, err := readConsts(br)
		if err != nil {
			return nil, fmt.Errorf("skbc: function %d consts: %w", i, err)
		}
		p.Functions = append(p.Functions, Function{
			QualifiedName: name,
			Arity:         int(arity),
			NumLocals:     int(numLocals),
			Code:          code,
			Consts:        consts,
		})
	}

	if p.EntryIndex < 0 || p.EntryIndex >= len(p.Functions) {
		return nil, fmt.Errorf("skbc: entry index %d out of range (%d functions)", p.EntryIndex, len(p.Functions))
	}

	if err := validateIndices(p); err != nil {
		return nil, err
	}

	return p, nil
}

// validateIndices walks every decoded code stream and checks that each
// operand indexing into a table (constants, locals, globals, functions,
// built-ins) is in range. A hand-crafted or corrupted .skbc container
// that fails one of these checks must be rejected here, at decode time,
// rather than surfacing as an uncontrolled Go runtime panic (mislabeled
// E-VM-PANIC) deep inside the VM once execution reaches the bad operand.
func validateIndices(p *Program) error {
	numBuiltins := len(builtin.All())
	for _, g := range p.Globals {
		if err := validateCode("global "+g.QualifiedName, g.Code, len(g.Consts), 0, len(p.Globals), len(p.Functions), numBuiltins); err != nil {
			return err
		}
	}
	for _, f := range p.Functions {
		if err := validateCode("function "+f.QualifiedName, f.Code, len(f.Consts), f.NumLocals, len(p.Globals), len(p.Functions), numBuiltins); err != nil {
			return err
		}
	}
	return nil
}

func validateCode(label string, code []byte, numConsts, numLocals, numGlobals, numFunctions, numBuiltins int) error {
	pc := 0
	for pc < len(code) {
		op := Op(code[pc])
		pc++
		if _, known := mnemonics[op]; !known {
			return fmt.Errorf("skbc: %s: unknown opcode %d at offset %d", label, op, pc-1)
		}

		var vals []uint32
		for _, width := range operandWidths[op] {
			switch width {
			case 1:
				if pc >= len(code) {
					return fmt.Errorf("skbc: %s: truncated operand at offset %d", label, pc)
				}
				vals = append(vals, uint32(code[pc]))
				pc++
			case 4:
				if pc+4 > len(code) {
					return fmt.Errorf("skbc: %s: truncated operand at offset %d", label, pc)
				}
				vals = append(vals, le32(code[pc:pc+4]))
				pc += 4
			}
		}

		switch op {
		case OpPushConst:
			if int(vals[0]) >= numConsts {
				return fmt.Errorf("skbc: %s: PushConst index %d out of range (%d consts)", label, vals[0], numConsts)
			}
		case OpLoadLocal, OpStoreLocal:
			if int(vals[0]) >= numLocals {
				return fmt.Errorf("skbc: %s: local slot %d out of range (%d locals)", label, vals[0], numLocals)
			}
		case OpLoadGlobal:
			if int(vals[0]) >= numGlobals {
				return fmt.Errorf("skbc: %s: global slot %d out of range (%d globals)", label, vals[0], numGlobals)
			}
		case OpCall:
			if int(vals[0]) >= numFunctions {
				return fmt.Errorf("skbc: %s: Call target %d out of range (%d functions)", label, vals[0], numFunctions)
			}
		case OpCallBuiltin:
			if int(vals[0]) >= numBuiltins {
				return fmt.Errorf("skbc: %s: CallBuiltin id %d out of range (%d built-ins)", label, vals[0], numBuiltins)
			}
		}
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeString(w io.Writer, s string) error { return writeBytes(w, []byte(s)) }

func readString(r io.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("skbc: string is not valid UTF-8")
	}
	return string(b), nil
}

func writeConsts(w io.Writer, consts []Const) error {
	if err := writeU32(w, uint32(len(consts))); err != nil {
		return err
	}
	for _, c := range consts {
		if _, err := w.Write([]byte{byte(c.Kind)}); err != nil {
			return err
		}
		switch c.Kind {
		case ConstInt:
			if err := writeU64(w, uint64(c.I)); err != nil {
				return err
			}
		case ConstFloat:
			if err := writeU64(w, doubleBits(c.F)); err != nil {
				return err
			}
		case ConstBool:
			b := byte(0)
			if c.B {
				b = 1
			}
			if _, err := w.Write([]byte{b}); err != nil {
				return err
			}
		case ConstString:
			if err := writeString(w, c.S); err != nil {
				return err
			}
		default:
			return fmt.Errorf("skbc: unknown const kind %d", c.Kind)
		}
	}
	return nil
}

func readConsts(r io.Reader) ([]Const, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	consts := make([]Const, 0, n)
	var tagBuf [1]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
			return nil, err
		}
		kind := ConstKind(tagBuf[0])
		switch kind {
		case ConstInt:
			v, err := readU64(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, Const{Kind: ConstInt, I: int64(v)})
		case ConstFloat:
			v, err := readU64(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, Const{Kind: ConstFloat, F: floatFromBits(v)})
		case ConstBool:
			if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
				return nil, err
			}
			if tagBuf[0] != 0 && tagBuf[0] != 1 {
				return nil, fmt.Errorf("skbc: bool const has invalid byte %d, expected 0 or 1", tagBuf[0])
			}
			consts = append(consts, Const{Kind: ConstBool, B: tagBuf[0] != 0})
		case ConstString:
			s, err := readString(r)
			if err != nil {
				return nil, err
			}
			consts = append(consts, Const{Kind: ConstString, S: s})
		default:
			return nil, fmt.Errorf("skbc: unknown const tag %d", tagBuf[0])
		}
	}
	return consts, nil
}
