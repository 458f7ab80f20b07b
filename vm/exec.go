package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-irvm/irvm/ir"
	"github.com/go-irvm/irvm/value"
)

// Option configures an Executor at construction time.
type Option func(*Executor) error

// Input sets the reader READ draws lines from. Defaults to os.Stdin.
func Input(r io.Reader) Option {
	return func(x *Executor) error { x.input = bufio.NewScanner(r); return nil }
}

// Output sets the writer WRITE prints to. Defaults to os.Stdout.
func Output(w io.Writer) Option {
	return func(x *Executor) error { x.output = w; return nil }
}

// MaxInstructions aborts Run with an error once it has dispatched n
// instructions, as a runaway-program guard. n <= 0 means unlimited.
func MaxInstructions(n uint64) Option {
	return func(x *Executor) error { x.maxInstructions = n; return nil }
}

// Trace makes the Executor log one line per dispatched instruction to w
// before executing it.
func Trace(w io.Writer) Option {
	return func(x *Executor) error { x.trace = w; return nil }
}

// MaxStackDepth aborts a Call once it would bring the frame stack past n
// live frames, guarding against runaway recursion. n <= 0 means unlimited.
func MaxStackDepth(n int) Option {
	return func(x *Executor) error { x.maxStackDepth = n; return nil }
}

// Executor fetches and dispatches instructions from the current frame of an
// Environment until the entry frame returns or a fatal error occurs.
type Executor struct {
	env             *Environment
	input           *bufio.Scanner
	output          io.Writer
	trace           io.Writer
	insCount        int64
	maxInstructions uint64
	maxStackDepth   int
}

// New creates an Executor for prog, applying opts in order.
func New(prog *Program, opts ...Option) (*Executor, error) {
	x := &Executor{env: NewEnvironment(prog)}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	if x.input == nil {
		x.input = bufio.NewScanner(os.Stdin)
	}
	if x.output == nil {
		x.output = os.Stdout
	}
	return x, nil
}

// InstructionCount returns the number of instructions executed so far,
// incremented once per executed instruction including labels.
func (x *Executor) InstructionCount() int64 {
	return x.insCount
}

// Run dispatches instructions until the entry frame returns, or a fatal
// error aborts execution. No instruction is retried: every error returned
// here is fatal.
func (x *Executor) Run() error {
	for {
		frame := x.env.TopFrame()
		fn := x.env.Function(frame.Func)
		if frame.PC < 0 || frame.PC >= len(fn.Body) {
			return errors.Errorf("program counter %d out of range in function %q", frame.PC, fn.Name)
		}
		instr := fn.Body[frame.PC]
		if x.trace != nil {
			fmt.Fprintf(x.trace, "%s:%d %T\n", fn.Name, frame.PC, instr)
		}
		done, err := x.step(instr)
		if err != nil {
			return errors.Wrapf(err, "line %d", instr.Line())
		}
		x.insCount++
		if done {
			return nil
		}
		if x.maxInstructions > 0 && uint64(x.insCount) >= x.maxInstructions {
			return errors.Errorf("exceeded instruction limit of %d", x.maxInstructions)
		}
	}
}

// step executes a single instruction and reports whether the entry frame
// has just returned (ending execution).
func (x *Executor) step(instr ir.Instruction) (bool, error) {
	switch in := instr.(type) {
	case ir.Arith:
		x.env.PCAdvance()
		vy, vz := x.env.Get(in.Y), x.env.Get(in.Z)
		var result value.Value
		var err error
		switch in.Op {
		case ir.Add:
			result, err = vy.Add(vz)
		case ir.Sub:
			result, err = vy.Sub(vz)
		case ir.Mul:
			result, err = vy.Mul(vz)
		case ir.Div:
			result, err = vy.Div(vz)
		}
		if err != nil {
			return false, err
		}
		return false, x.env.Set(in.X, result)

	case ir.Assign:
		x.env.PCAdvance()
		return false, x.env.Set(in.X, x.env.Get(in.Y))

	case ir.Deref:
		// `&` aliases the operand's value; it does not materialize an
		// address of a register (see ir.Deref's doc comment).
		x.env.PCAdvance()
		return false, x.env.Set(in.X, x.env.Get(in.Y))

	case ir.Load:
		x.env.PCAdvance()
		loaded, err := x.env.Get(in.Y).Load()
		if err != nil {
			return false, err
		}
		return false, x.env.Set(in.X, loaded)

	case ir.Store:
		x.env.PCAdvance()
		return false, x.env.Get(in.X).Store(x.env.Get(in.Y))

	case ir.Arg:
		x.env.PCAdvance()
		x.env.PushArg(x.env.Get(in.X))
		return false, nil

	case ir.Param:
		x.env.PCAdvance()
		v, err := x.env.PopArg()
		if err != nil {
			return false, err
		}
		return false, x.env.Set(in.X, v)

	case ir.Label:
		x.env.PCAdvance()
		return false, nil

	case ir.Read:
		x.env.PCAdvance()
		return false, x.readInto(in.X)

	case ir.Write:
		x.env.PCAdvance()
		_, err := io.WriteString(x.output, x.env.Get(in.X).String()+"\n")
		return false, err

	case ir.Dec:
		x.env.PCAdvance()
		return false, x.env.Set(in.X, value.NewPtr(in.Size))

	case ir.Call:
		if x.maxStackDepth > 0 && x.env.Depth() >= x.maxStackDepth {
			return false, errors.Errorf("exceeded stack depth limit of %d", x.maxStackDepth)
		}
		// pc does not advance: the caller's PC still points at this Call
		// when the callee eventually returns.
		x.env.PushFrame(in.FuncID)
		return false, nil

	case ir.Return:
		return x.doReturn(in)

	case ir.Goto:
		x.env.PCSet(in.Target)
		return false, nil

	case ir.Cond:
		vx, vy := x.env.Get(in.X), x.env.Get(in.Y)
		if compare(in.Op, vx, vy) {
			x.env.PCSet(in.Target)
		} else {
			x.env.PCAdvance()
		}
		return false, nil

	default:
		return false, errors.Errorf("unhandled instruction %T", instr)
	}
}

func (x *Executor) doReturn(in ir.Return) (bool, error) {
	returning := x.env.TopFrame()
	if returning.Func == x.env.prog.Entry && x.env.Depth() == 1 {
		return true, nil
	}
	result := x.env.Get(in.X)
	x.env.PopFrame()
	caller := x.env.TopFrame()
	callerFn := x.env.Function(caller.Func)
	call, ok := callerFn.Body[caller.PC].(ir.Call)
	if !ok {
		return false, errors.Errorf("return to %q: instruction at pc %d is not a Call", callerFn.Name, caller.PC)
	}
	if err := x.env.Set(call.X, result); err != nil {
		return false, err
	}
	x.env.PCAdvance()
	return false, nil
}

func compare(op ir.RelOp, x, y value.Value) bool {
	switch op {
	case ir.LT:
		return x.Less(y)
	case ir.LE:
		return x.LessEqual(y)
	case ir.GT:
		return x.Greater(y)
	case ir.GE:
		return x.GreaterEqual(y)
	case ir.EQ:
		return x.Equal(y)
	case ir.NE:
		return !x.Equal(y)
	default:
		return false
	}
}

// readInto reads one line from the input, parses it as a signed 32-bit
// decimal integer after stripping whitespace, and binds x to the resulting
// (widened to 64 bits) integer. Parse failure, and running out of input,
// are both fatal.
func (x *Executor) readInto(op ir.Operand) error {
	if !x.input.Scan() {
		if err := x.input.Err(); err != nil {
			return errors.Wrap(err, "READ: input error")
		}
		return errors.New("READ: unexpected end of input")
	}
	line := strings.TrimSpace(x.input.Text())
	n, err := strconv.ParseInt(line, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "READ: %q is not a valid 32-bit integer", line)
	}
	return x.env.Set(op, value.Int64(n))
}
