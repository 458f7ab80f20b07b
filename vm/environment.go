package vm

import (
	"github.com/pkg/errors"

	"github.com/go-irvm/irvm/ir"
	"github.com/go-irvm/irvm/value"
)

// Frame is a single call-stack record: the function being executed, the
// program counter within its body, and the register bindings local to this
// call.
type Frame struct {
	Func     int
	PC       int
	bindings map[string]value.Value
}

// Environment holds the call stack and the shared argument queue that
// services the ARG/PARAM calling-convention handshake. Register bindings
// are owned by their frame and discarded when the frame is popped; the
// argument queue is owned by the Environment and accessed only by the
// Executor.
type Environment struct {
	prog   *Program
	frames []*Frame
	args   []value.Value
}

// NewEnvironment creates an Environment over a linked program, with the
// entry frame already pushed.
func NewEnvironment(prog *Program) *Environment {
	e := &Environment{prog: prog}
	e.PushFrame(prog.Entry)
	return e
}

// PushFrame pushes a new frame for funcID, with PC 0 and empty bindings.
func (e *Environment) PushFrame(funcID int) {
	e.frames = append(e.frames, &Frame{Func: funcID, bindings: make(map[string]value.Value)})
}

// PopFrame discards the top frame.
func (e *Environment) PopFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

// TopFrame returns the current frame.
func (e *Environment) TopFrame() *Frame {
	return e.frames[len(e.frames)-1]
}

// Depth returns the number of live frames (1 while only the entry frame is
// active).
func (e *Environment) Depth() int {
	return len(e.frames)
}

// PCAdvance moves the current frame's program counter to the next
// instruction.
func (e *Environment) PCAdvance() {
	e.TopFrame().PC++
}

// PCSet sets the current frame's program counter to i.
func (e *Environment) PCSet(i int) {
	e.TopFrame().PC = i
}

// Get evaluates an operand: an Imm evaluates to its literal value; a Var
// reads the current frame's binding, or Int(0) if the register has never
// been set (uninitialized registers read as zero).
func (e *Environment) Get(op ir.Operand) value.Value {
	if op.Kind == ir.OpImm {
		return value.Int64(op.Imm)
	}
	if v, ok := e.TopFrame().bindings[op.Name]; ok {
		return v
	}
	return value.Int64(0)
}

// Set writes val into the current frame's binding for op, which must be a
// Var operand.
func (e *Environment) Set(op ir.Operand, val value.Value) error {
	if op.Kind != ir.OpVar {
		return errors.New("cannot assign to an immediate operand")
	}
	e.TopFrame().bindings[op.Name] = val
	return nil
}

// PushArg pushes v onto the argument queue.
func (e *Environment) PushArg(v value.Value) {
	e.args = append(e.args, v)
}

// PopArg pops the most recently pushed argument. The discipline is LIFO:
// pushes and pops occur at the same end, so a caller's
// `ARG a1; ...; ARG ak; CALL f` followed by callee `PARAM p1; ...; PARAM pk`
// binds p1 to ak, p2 to a(k-1), and so on: the callee lists its PARAMs in
// the reverse of the caller's ARG order. An empty queue is a
// calling-convention error.
func (e *Environment) PopArg() (value.Value, error) {
	if len(e.args) == 0 {
		return value.Value{}, errors.New("argument queue underflow in PARAM")
	}
	top := len(e.args) - 1
	v := e.args[top]
	e.args = e.args[:top]
	return v, nil
}

// Function returns the linked function with the given id.
func (e *Environment) Function(id int) *Function {
	return e.prog.Funcs[id]
}
