package vm

import (
	"github.com/pkg/errors"

	"github.com/go-irvm/irvm/ir"
)

// Function is a linked function: its instructions are the same slice the
// parser produced, but every Goto/Cond/Call instruction it contains now
// carries a resolved numeric target alongside its symbolic name.
type Function struct {
	Name string
	Body []ir.Instruction
	ID   int
}

// Program is a linked program: an ordered function table plus the id of
// the entry function (the one named "main").
type Program struct {
	Funcs []*Function
	Entry int
}

// Link assigns each function an id equal to its position in the function
// table, then resolves every Goto/Cond target to an instruction index
// within its own function and every Call target to a function id.
// Unresolved references and duplicate label names within a function are
// link errors. Link does not mutate the ir.Program's instructions in place;
// it builds resolved copies.
func Link(prog *ir.Program) (*Program, error) {
	out := &Program{Entry: -1}
	funcIdx := make(map[string]int, len(prog.Funcs))
	for i, fn := range prog.Funcs {
		if _, dup := funcIdx[fn.Name]; dup {
			return nil, errors.Errorf("link error: duplicate function %q", fn.Name)
		}
		funcIdx[fn.Name] = i
		if fn.Name == "main" {
			out.Entry = i
		}
	}
	if out.Entry < 0 {
		return nil, errors.New("link error: no function named \"main\"")
	}
	for i, fn := range prog.Funcs {
		body, err := linkBody(fn, funcIdx)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, &Function{Name: fn.Name, Body: body, ID: i})
	}
	return out, nil
}

func linkBody(fn *ir.Function, funcIdx map[string]int) ([]ir.Instruction, error) {
	labels := make(map[string]int, len(fn.Body))
	for i, instr := range fn.Body {
		if lbl, ok := instr.(ir.Label); ok {
			if _, dup := labels[lbl.Name]; dup {
				return nil, errors.Errorf("link error: duplicate label %q in function %q", lbl.Name, fn.Name)
			}
			labels[lbl.Name] = i
		}
	}
	body := make([]ir.Instruction, len(fn.Body))
	for i, instr := range fn.Body {
		switch v := instr.(type) {
		case ir.Goto:
			id, ok := labels[v.Name]
			if !ok {
				return nil, errors.Errorf("link error: undefined label %q in function %q", v.Name, fn.Name)
			}
			v.Target = id
			body[i] = v
		case ir.Cond:
			id, ok := labels[v.Name]
			if !ok {
				return nil, errors.Errorf("link error: undefined label %q in function %q", v.Name, fn.Name)
			}
			v.Target = id
			body[i] = v
		case ir.Call:
			id, ok := funcIdx[v.Name]
			if !ok {
				return nil, errors.Errorf("link error: call to undefined function %q in function %q", v.Name, fn.Name)
			}
			v.FuncID = id
			body[i] = v
		default:
			body[i] = instr
		}
	}
	return body, nil
}
