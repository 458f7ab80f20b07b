package vm

import (
	"io"
	"strconv"

	"github.com/go-irvm/irvm/ir"
)

// Dump writes a disassembly-style listing of a linked Program to w: one
// line per function header, one indented line per instruction showing its
// resolved numeric targets alongside the symbolic names the source used.
func Dump(w io.Writer, prog *Program) error {
	for _, fn := range prog.Funcs {
		if err := dumpLine(w, fn.Name+" (id "+strconv.Itoa(fn.ID)+"):\n"); err != nil {
			return err
		}
		for i, instr := range fn.Body {
			line := "  " + strconv.Itoa(i) + ": " + dumpInstruction(instr) + "\n"
			if err := dumpLine(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func dumpLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func dumpInstruction(instr ir.Instruction) string {
	switch in := instr.(type) {
	case ir.Arith:
		return in.X.String() + " := " + in.Y.String() + " " + in.Op.String() + " " + in.Z.String()
	case ir.Assign:
		return in.X.String() + " := " + in.Y.String()
	case ir.Deref:
		return in.X.String() + " := &" + in.Y.String()
	case ir.Load:
		return in.X.String() + " := *" + in.Y.String()
	case ir.Store:
		return "*" + in.X.String() + " := " + in.Y.String()
	case ir.Arg:
		return "ARG " + in.X.String()
	case ir.Param:
		return "PARAM " + in.X.String()
	case ir.Label:
		return "LABEL " + in.Name + ":"
	case ir.Read:
		return "READ " + in.X.String()
	case ir.Write:
		return "WRITE " + in.X.String()
	case ir.Dec:
		return in.X.String() + " := DEC " + strconv.FormatInt(in.Size, 10)
	case ir.Call:
		return in.X.String() + " := CALL " + in.Name + " -> func " + strconv.Itoa(in.FuncID)
	case ir.Return:
		return "RETURN " + in.X.String()
	case ir.Goto:
		return "GOTO " + in.Name + " -> pc " + strconv.Itoa(in.Target)
	case ir.Cond:
		return "IF " + in.X.String() + " " + in.Op.String() + " " + in.Y.String() +
			" GOTO " + in.Name + " -> pc " + strconv.Itoa(in.Target)
	default:
		return "?"
	}
}
