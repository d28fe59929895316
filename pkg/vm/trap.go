package vm

import "fmt"

// Label is one of the fixed E-VM-* runtime trap labels of spec.md §6.3.
type Label string

const (
	ErrDivZero       Label = "E-VM-DIV-ZERO"
	ErrType          Label = "E-VM-TYPE"
	ErrIndexOOB      Label = "E-VM-INDEX-OOB"
	ErrStackOverflow Label = "E-VM-STACK-OVERFLOW"
	ErrArity         Label = "E-VM-ARITY"
	ErrPanic         Label = "E-VM-PANIC"
)

// Trap is a terminal runtime error: spec.md §7 says "there is no user-level
// exception handling — traps are terminal", so Trap is always fatal to the
// running program, never caught by Skepa code.
type Trap struct {
	Label    Label
	Message  string
	Function string
	PC       int
}

func (t *Trap) Error() string {
	return fmt.Sprintf("%s: %s (in %s at pc=%04x)", t.Label, t.Message, t.Function, t.PC)
}

func newTrap(label Label, fn string, pc int, format string, args ...any) *Trap {
	return &Trap{Label: label, Message: fmt.Sprintf(format, args...), Function: fn, PC: pc}
}
