package vm

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AayushMainali-Github/skepa-lang/pkg/builtin"
)

var builtinTable = builtin.All()

const maxRepeatBytes = 1_000_000

// callBuiltin dispatches a fixed built-in by its stable table id (spec.md
// §4.8); args arrive already evaluated, in call order.
func (m *Machine) callBuiltin(id int, args []Value, fn string, pc int) Value {
	if id < 0 || id >= len(builtinTable) {
		panic(newTrap(ErrType, fn, pc, "unknown built-in id %d", id))
	}
	sig := builtinTable[id]
	switch sig.Package {
	case "io":
		return m.callIO(sig.Name, args, fn, pc)
	case "str":
		return callStr(sig.Name, args, fn, pc)
	case "arr":
		return callArr(sig.Name, args, fn, pc)
	case "datetime":
		return callDatetime(sig.Name, args, fn, pc)
	case "random":
		return m.callRandom(sig.Name, args)
	case "os":
		return callOS(sig.Name, args, fn, pc)
	case "fs":
		return callFS(sig.Name, args, fn, pc)
	case "vec":
		return callVec(sig.Name, args, fn, pc)
	default:
		panic(newTrap(ErrType, fn, pc, "unknown built-in package %q", sig.Package))
	}
}

func (m *Machine) callIO(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "print":
		fmt.Print(args[0].S)
	case "println":
		fmt.Println(args[0].S)
	case "printInt":
		fmt.Println(args[0].I)
	case "printFloat":
		fmt.Println(args[0].F)
	case "printBool":
		fmt.Println(args[0].B)
	case "printString":
		fmt.Println(args[0].S)
	case "readLine":
		line, err := m.stdin.ReadString('\n')
		if err != nil && line == "" {
			return StringValue("")
		}
		return StringValue(strings.TrimRight(line, "\r\n"))
	case "format":
		return StringValue(formatArgs(args[0].S, args[1:], fn, pc))
	case "printf":
		fmt.Print(formatArgs(args[0].S, args[1:], fn, pc))
	default:
		panic(newTrap(ErrType, fn, pc, "unknown io built-in %q", name))
	}
	return VoidValue()
}

// formatArgs implements spec.md §6.4's printf-style substitution: each of
// %d, %f, %s, %b consumes the next argument and renders it as Int, Float,
// String, or Bool respectively; %% emits a literal '%'. A specifier whose
// argument's Kind doesn't match, a specifier consumed past the end of args,
// or an unrecognized verb after '%' traps rather than producing garbage
// output.
func formatArgs(format string, args []Value, fn string, pc int) string {
	var b strings.Builder
	argIdx := 0
	next := func(verb byte) Value {
		if argIdx >= len(args) {
			panic(newTrap(ErrArity, fn, pc, "io.format: not enough arguments for verb %%%c", verb))
		}
		v := args[argIdx]
		argIdx++
		return v
	}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 >= len(format) {
			panic(newTrap(ErrType, fn, pc, "io.format: trailing %% in format string"))
		}
		verb := format[i+1]
		i++
		switch verb {
		case 'd':
			v := next(verb)
			if v.Kind != KInt {
				panic(newTrap(ErrType, fn, pc, "io.format: %%d expects Int, got %s", v.TypeName()))
			}
			b.WriteString(strconv.FormatInt(v.I, 10))
		case 'f':
			v := next(verb)
			if v.Kind != KFloat {
				panic(newTrap(ErrType, fn, pc, "io.format: %%f expects Float, got %s", v.TypeName()))
			}
			b.WriteString(strconv.FormatFloat(v.F, 'f', -1, 64))
		case 's':
			v := next(verb)
			if v.Kind != KString {
				panic(newTrap(ErrType, fn, pc, "io.format: %%s expects String, got %s", v.TypeName()))
			}
			b.WriteString(v.S)
		case 'b':
			v := next(verb)
			if v.Kind != KBool {
				panic(newTrap(ErrType, fn, pc, "io.format: %%b expects Bool, got %s", v.TypeName()))
			}
			b.WriteString(strconv.FormatBool(v.B))
		case '%':
			b.WriteByte('%')
		default:
			panic(newTrap(ErrType, fn, pc, "io.format: unknown format verb %%%c", verb))
		}
	}
	return b.String()
}

func callStr(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "len":
		return IntValue(int64(len(args[0].S)))
	case "contains":
		return BoolValue(strings.Contains(args[0].S, args[1].S))
	case "startsWith":
		return BoolValue(strings.HasPrefix(args[0].S, args[1].S))
	case "endsWith":
		return BoolValue(strings.HasSuffix(args[0].S, args[1].S))
	case "trim":
		return StringValue(strings.TrimSpace(args[0].S))
	case "toLower":
		return StringValue(strings.ToLower(args[0].S))
	case "toUpper":
		return StringValue(strings.ToUpper(args[0].S))
	case "indexOf":
		return IntValue(int64(strings.Index(args[0].S, args[1].S)))
	case "lastIndexOf":
		return IntValue(int64(strings.LastIndex(args[0].S, args[1].S)))
	case "slice":
		s := args[0].S
		start, end := args[1].I, args[2].I
		if start < 0 || end > int64(len(s)) || start > end {
			panic(newTrap(ErrIndexOOB, fn, pc, "str.slice(%d, %d) out of bounds for length %d", start, end, len(s)))
		}
		return StringValue(s[start:end])
	case "replace":
		return StringValue(strings.ReplaceAll(args[0].S, args[1].S, args[2].S))
	case "repeat":
		count := args[1].I
		if count < 0 {
			panic(newTrap(ErrIndexOOB, fn, pc, "str.repeat negative count %d", count))
		}
		if count*int64(len(args[0].S)) > maxRepeatBytes {
			panic(newTrap(ErrIndexOOB, fn, pc, "str.repeat output exceeds %d bytes", maxRepeatBytes))
		}
		return StringValue(strings.Repeat(args[0].S, int(count)))
	case "isEmpty":
		return BoolValue(len(args[0].S) == 0)
	default:
		panic(newTrap(ErrType, fn, pc, "unknown str built-in %q", name))
	}
}

// callArr implements the arr.* built-ins, which spec.md §4.8 permits to be
// called on either an Array or a Vec receiver. wrap re-packages a result
// slice as the same kind (Array or Vec) as the receiver, matching what sema
// declared the call's result type to be (pkg/sema/builtins.go).
func callArr(name string, args []Value, fn string, pc int) Value {
	recv := args[0]
	var a []Value
	var wrap func(out []Value) Value
	switch recv.Kind {
	case KArray:
		a = recv.Arr
		wrap = ArrayValue
	case KVec:
		a = recv.Vec.Elems
		wrap = func(out []Value) Value { return VecValue(&VecHandle{Elems: out}) }
	default:
		panic(newTrap(ErrType, fn, pc, "arr.%s expects an Array or Vec, got %s", name, recv.TypeName()))
	}
	switch name {
	case "len":
		return IntValue(int64(len(a)))
	case "isEmpty":
		return BoolValue(len(a) == 0)
	case "contains":
		for _, e := range a {
			if valuesEqual(e, args[1]) {
				return BoolValue(true)
			}
		}
		return BoolValue(false)
	case "indexOf":
		for i, e := range a {
			if valuesEqual(e, args[1]) {
				return IntValue(int64(i))
			}
		}
		return IntValue(-1)
	case "count":
		n := 0
		for _, e := range a {
			if valuesEqual(e, args[1]) {
				n++
			}
		}
		return IntValue(int64(n))
	case "first":
		if len(a) == 0 {
			panic(newTrap(ErrIndexOOB, fn, pc, "arr.first on empty array"))
		}
		return a[0]
	case "last":
		if len(a) == 0 {
			panic(newTrap(ErrIndexOOB, fn, pc, "arr.last on empty array"))
		}
		return a[len(a)-1]
	case "join":
		parts := make([]string, len(a))
		for i, e := range a {
			parts[i] = e.String()
		}
		return StringValue(strings.Join(parts, args[1].S))
	case "reverse":
		out := make([]Value, len(a))
		for i, e := range a {
			out[len(a)-1-i] = e
		}
		return wrap(out)
	case "slice":
		start, end := args[1].I, args[2].I
		if start < 0 || end > int64(len(a)) || start > end {
			panic(newTrap(ErrIndexOOB, fn, pc, "arr.slice(%d, %d) out of bounds for length %d", start, end, len(a)))
		}
		out := make([]Value, end-start)
		copy(out, a[start:end])
		return wrap(out)
	case "sum":
		return arrSum(a)
	case "min":
		if len(a) == 0 {
			panic(newTrap(ErrIndexOOB, fn, pc, "arr.min on empty array"))
		}
		return arrExtreme(a, false)
	case "max":
		if len(a) == 0 {
			panic(newTrap(ErrIndexOOB, fn, pc, "arr.max on empty array"))
		}
		return arrExtreme(a, true)
	case "sort":
		out := make([]Value, len(a))
		copy(out, a)
		sort.Slice(out, func(i, j int) bool { return valueLess(out[i], out[j]) })
		return wrap(out)
	case "distinct":
		var out []Value
		for _, e := range a {
			dup := false
			for _, seen := range out {
				if valuesEqual(e, seen) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, e)
			}
		}
		return wrap(out)
	default:
		panic(newTrap(ErrType, fn, pc, "unknown arr built-in %q", name))
	}
}

func valuesEqual(a, b Value) bool {
	switch a.Kind {
	case KInt:
		return a.I == b.I
	case KFloat:
		return a.F == b.F
	case KBool:
		return a.B == b.B
	case KString:
		return a.S == b.S
	default:
		return false
	}
}

func valueLess(a, b Value) bool {
	switch a.Kind {
	case KInt:
		return a.I < b.I
	case KFloat:
		return a.F < b.F
	case KString:
		return a.S < b.S
	default:
		return false
	}
}

func arrSum(a []Value) Value {
	if len(a) == 0 {
		return IntValue(0)
	}
	if a[0].Kind == KFloat {
		var s float64
		for _, e := range a {
			s += e.F
		}
		return FloatValue(s)
	}
	var s int64
	for _, e := range a {
		s += e.I
	}
	return IntValue(s)
}

func arrExtreme(a []Value, wantMax bool) Value {
	best := a[0]
	for _, e := range a[1:] {
		if (wantMax && valueLess(best, e)) || (!wantMax && valueLess(e, best)) {
			best = e
		}
	}
	return best
}

func callDatetime(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "nowUnix":
		return IntValue(time.Now().Unix())
	case "nowMillis":
		return IntValue(time.Now().UnixMilli())
	case "fromUnix":
		return IntValue(args[0].I)
	case "fromMillis":
		return IntValue(args[0].I / 1000)
	case "parseUnix":
		t, err := time.Parse(time.RFC3339, args[0].S)
		if err != nil {
			panic(newTrap(ErrType, fn, pc, "datetime.parseUnix: %v", err))
		}
		return IntValue(t.Unix())
	case "year":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Year()))
	case "month":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Month()))
	case "day":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Day()))
	case "hour":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Hour()))
	case "minute":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Minute()))
	case "second":
		return IntValue(int64(time.Unix(args[0].I, 0).UTC().Second()))
	default:
		panic(newTrap(ErrType, fn, pc, "unknown datetime built-in %q", name))
	}
}

func (m *Machine) callRandom(name string, args []Value) Value {
	switch name {
	case "seed":
		m.rng.Seed(args[0].I)
		return VoidValue()
	case "int":
		lo, hi := args[0].I, args[1].I
		if hi < lo {
			panic(newTrap(ErrType, "random.int", 0, "random.int(%d, %d): min must be <= max", lo, hi))
		}
		if hi == lo {
			return IntValue(lo)
		}
		return IntValue(lo + m.rng.Int63n(hi-lo+1))
	case "float":
		return FloatValue(m.rng.Float64())
	default:
		panic(newTrap(ErrType, "random."+name, 0, "unknown random built-in %q", name))
	}
}

func callOS(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "cwd":
		wd, err := os.Getwd()
		if err != nil {
			panic(newTrap(ErrType, fn, pc, "os.cwd: %v", err))
		}
		return StringValue(wd)
	case "platform":
		return StringValue(runtime.GOOS)
	case "sleep":
		time.Sleep(time.Duration(args[0].I) * time.Millisecond)
		return VoidValue()
	case "execShell":
		cmd := exec.Command("sh", "-c", args[0].S)
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			if ee, ok := err.(*exec.ExitError); ok {
				return IntValue(int64(ee.ExitCode()))
			}
			panic(newTrap(ErrType, fn, pc, "os.execShell: %v", err))
		}
		return IntValue(0)
	case "execShellOut":
		out, err := exec.Command("sh", "-c", args[0].S).CombinedOutput()
		if err != nil {
			panic(newTrap(ErrType, fn, pc, "os.execShellOut: %v", err))
		}
		return StringValue(string(out))
	default:
		panic(newTrap(ErrType, fn, pc, "unknown os built-in %q", name))
	}
}

func callFS(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "exists":
		_, err := os.Stat(args[0].S)
		return BoolValue(err == nil)
	case "readText":
		b, err := os.ReadFile(args[0].S)
		if err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.readText(%q): %v", args[0].S, err))
		}
		return StringValue(string(b))
	case "writeText":
		if err := os.WriteFile(args[0].S, []byte(args[1].S), 0o644); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.writeText(%q): %v", args[0].S, err))
		}
		return VoidValue()
	case "appendText":
		f, err := os.OpenFile(args[0].S, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.appendText(%q): %v", args[0].S, err))
		}
		defer f.Close()
		w := bufio.NewWriter(f)
		if _, err := w.WriteString(args[1].S); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.appendText(%q): %v", args[0].S, err))
		}
		if err := w.Flush(); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.appendText(%q): %v", args[0].S, err))
		}
		return VoidValue()
	case "mkdirAll":
		if err := os.MkdirAll(args[0].S, 0o755); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.mkdirAll(%q): %v", args[0].S, err))
		}
		return VoidValue()
	case "removeFile":
		if err := os.Remove(args[0].S); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.removeFile(%q): %v", args[0].S, err))
		}
		return VoidValue()
	case "removeDirAll":
		if err := os.RemoveAll(args[0].S); err != nil {
			panic(newTrap(ErrType, fn, pc, "fs.removeDirAll(%q): %v", args[0].S, err))
		}
		return VoidValue()
	case "join":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.S
		}
		return StringValue(filepath.Join(parts...))
	default:
		panic(newTrap(ErrType, fn, pc, "unknown fs built-in %q", name))
	}
}

func callVec(name string, args []Value, fn string, pc int) Value {
	switch name {
	case "new":
		return VecValue(&VecHandle{})
	case "len":
		return IntValue(int64(len(args[0].Vec.Elems)))
	case "push":
		h := args[0].Vec
		h.Elems = append(h.Elems, args[1])
		return VoidValue()
	case "get":
		h := args[0].Vec
		i := args[1].I
		if i < 0 || i >= int64(len(h.Elems)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "vec.get(%d) out of bounds (len %d)", i, len(h.Elems)))
		}
		return h.Elems[i]
	case "set":
		h := args[0].Vec
		i := args[1].I
		if i < 0 || i >= int64(len(h.Elems)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "vec.set(%d) out of bounds (len %d)", i, len(h.Elems)))
		}
		h.Elems[i] = args[2]
		return VoidValue()
	case "delete":
		h := args[0].Vec
		i := args[1].I
		if i < 0 || i >= int64(len(h.Elems)) {
			panic(newTrap(ErrIndexOOB, fn, pc, "vec.delete(%d) out of bounds (len %d)", i, len(h.Elems)))
		}
		h.Elems = append(h.Elems[:i], h.Elems[i+1:]...)
		return VoidValue()
	default:
		panic(newTrap(ErrType, fn, pc, "unknown vec built-in %q", name))
	}
}
