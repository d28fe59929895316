package bytecode

import (
	"bytes"
	"testing"

	"github.com/AayushMainali-Github/skepa-lang/pkg/ir"
	"github.com/AayushMainali-Github/skepa-lang/pkg/types"
)

func compileSimple(t *testing.T) *Program {
	t.Helper()
	prog := &ir.Program{
		EntryIndex: 0,
		Globals: []ir.Global{
			{QualifiedName: "main.greeting", Typ: types.TString, Init: ir.StringLit{Value: "hi"}},
		},
		Functions: []*ir.Function{
			{
				QualifiedName: "main.main",
				Ret:           types.TInt,
				Body: []ir.Stmt{
					&ir.ReturnStmt{Value: ir.IntLit{Value: 3}},
				},
			},
		},
	}
	out, err := Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return out
}

func TestContainerRoundTrip(t *testing.T) {
	p := compileSimple(t)

	var buf bytes.Buffer
	if err := WriteContainer(&buf, p); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	got, err := ReadContainer(&buf)
	if err != nil {
		t.Fatalf("ReadContainer: %v", err)
	}
	if got.EntryIndex != p.EntryIndex {
		t.Fatalf("entry index mismatch: got %d want %d", got.EntryIndex, p.EntryIndex)
	}
	if len(got.Functions) != 1 || got.Functions[0].QualifiedName != "main.main" {
		t.Fatalf("unexpected functions %+v", got.Functions)
	}
	if len(got.Globals) != 1 || got.Globals[0].QualifiedName != "main.greeting" {
		t.Fatalf("unexpected globals %+v", got.Globals)
	}
	if !bytes.Equal(got.Functions[0].Code, p.Functions[0].Code) {
		t.Fatal("code mismatch after round trip")
	}
}

func TestReadContainerRejectsBadMagic(t *testing.T) {
	_, err := ReadContainer(bytes.NewReader([]byte("XXXX\x01\x00\x00\x00")))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadContainerRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	writeU32(&buf, 99)
	_, err := ReadContainer(&buf)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestReadContainerRejectsTruncatedStream(t *testing.T) {
	p := compileSimple(t)
	var buf bytes.Buffer
	if err := WriteContainer(&buf, p); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-4]
	if _, err := ReadContainer(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected error for truncated stream")
	}
}

func TestReadContainerRejectsOutOfRangeEntry(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	writeU32(&buf, containerVersion)
	writeU32(&buf, 5) // entry index way out of range
	writeU32(&buf, 0) // num globals
	writeU32(&buf, 0) // num functions
	if _, err := ReadContainer(&buf); err == nil {
		t.Fatal("expected error for out-of-range entry index")
	}
}
