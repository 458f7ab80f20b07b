package ir

import "github.com/pkg/errors"

// Parser builds a Program from IR source text. Syntax errors are fatal and
// report the line number of the offending token: there is no
// error-recovery / collect-many mode, since the grammar does not tolerate
// partial programs.
type Parser struct {
	lex *Lexer
}

// NewParser creates a Parser over src.
func NewParser(src string) *Parser {
	return &Parser{lex: NewLexer(src)}
}

// Parse consumes the lexer to EOF and returns the resulting unlinked
// Program.
func Parse(src string) (*Program, error) {
	return NewParser(src).Parse()
}

// Parse runs the grammar:
//
//	program   := (function | NL)*
//	function  := 'FUNCTION' name ':' NL body
//	body      := (instr | NL)*   (stops at FUNCTION | EOF)
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokEOF:
			return prog, nil
		case TokNewline:
			p.lex.Consume()
		case TokFunction:
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		default:
			return nil, syntaxErr(tok, "expected FUNCTION or end of file")
		}
	}
}

func syntaxErr(tok Token, what string) error {
	return errors.Errorf("line %d: syntax error: %s, got %s", tok.Line, what, tok)
}

func (p *Parser) expect(k Kind) (Token, error) {
	tok, err := p.lex.Consume()
	if err != nil {
		return tok, err
	}
	if tok.Kind != k {
		return tok, syntaxErr(tok, "expected "+k.String())
	}
	return tok, nil
}

func (p *Parser) parseFunction() (*Function, error) {
	if _, err := p.expect(TokFunction); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	fn := &Function{Name: name.Text}
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokFunction, TokEOF:
			return fn, nil
		case TokNewline:
			p.lex.Consume()
		default:
			instr, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			fn.Body = append(fn.Body, instr)
		}
	}
}

// parseInstruction dispatches on the leading token to the matching
// per-instruction grammar rule.
func (p *Parser) parseInstruction() (Instruction, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	var instr Instruction
	switch tok.Kind {
	case TokLabel:
		instr, err = p.parseLabel()
	case TokIdent:
		instr, err = p.parseIdentLed()
	case TokStar:
		instr, err = p.parseStore()
	case TokGoto:
		instr, err = p.parseGoto()
	case TokIf:
		instr, err = p.parseCond()
	case TokReturn:
		instr, err = p.parseReturn()
	case TokDec:
		instr, err = p.parseDec()
	case TokArg:
		instr, err = p.parseArg()
	case TokParam:
		instr, err = p.parseParam()
	case TokRead:
		instr, err = p.parseRead()
	case TokWrite:
		instr, err = p.parseWrite()
	default:
		return nil, syntaxErr(tok, "expected an instruction")
	}
	if err != nil {
		return nil, err
	}
	end, err := p.lex.Consume()
	if err != nil {
		return nil, err
	}
	if end.Kind != TokNewline && end.Kind != TokEOF {
		return nil, syntaxErr(end, "expected end of line")
	}
	return instr, nil
}

func (p *Parser) parseLabel() (Instruction, error) {
	tok, _ := p.lex.Consume()
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	return Label{base: base{tok.Line}, Name: name.Text}, nil
}

// parseIdentLed handles every instruction whose first token is an
// identifier: x := y, x := y op z, x := &y, x := *y, x := CALL f.
func (p *Parser) parseIdentLed() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x := Var(tok.Text)
	if _, err := p.expect(TokAssign); err != nil {
		return nil, err
	}
	next, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	switch next.Kind {
	case TokAmp:
		p.lex.Consume()
		y, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return Deref{base{tok.Line}, x, y}, nil
	case TokStar:
		p.lex.Consume()
		y, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return Load{base{tok.Line}, x, y}, nil
	case TokCall:
		p.lex.Consume()
		name, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		return Call{base: base{tok.Line}, X: x, Name: name.Text}, nil
	}
	y, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	opTok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	var op ArithOp
	switch opTok.Kind {
	case TokPlus:
		op = Add
	case TokMinus:
		op = Sub
	case TokStar:
		op = Mul
	case TokSlash:
		op = Div
	default:
		return Assign{base{tok.Line}, x, y}, nil
	}
	p.lex.Consume()
	z, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Arith{base{tok.Line}, x, y, z, op}, nil
}

func (p *Parser) parseStore() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokAssign); err != nil {
		return nil, err
	}
	y, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Store{base{tok.Line}, x, y}, nil
}

func (p *Parser) parseGoto() (Instruction, error) {
	tok, _ := p.lex.Consume()
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	return Goto{base: base{tok.Line}, Name: name.Text}, nil
}

func (p *Parser) parseCond() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseRelOp()
	if err != nil {
		return nil, err
	}
	y, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokGoto); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	return Cond{base: base{tok.Line}, X: x, Op: op, Y: y, Name: name.Text}, nil
}

func (p *Parser) parseReturn() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Return{base{tok.Line}, x}, nil
}

func (p *Parser) parseDec() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	size, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	return Dec{base{tok.Line}, x, size}, nil
}

func (p *Parser) parseArg() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Arg{base{tok.Line}, x}, nil
}

func (p *Parser) parseParam() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Param{base{tok.Line}, x}, nil
}

func (p *Parser) parseRead() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Read{base{tok.Line}, x}, nil
}

func (p *Parser) parseWrite() (Instruction, error) {
	tok, _ := p.lex.Consume()
	x, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Write{base{tok.Line}, x}, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok, err := p.lex.Consume()
	if err != nil {
		return Operand{}, err
	}
	switch tok.Kind {
	case TokSharp:
		n, err := p.parseInt()
		if err != nil {
			return Operand{}, err
		}
		return Imm(n), nil
	case TokIdent:
		return Var(tok.Text), nil
	default:
		return Operand{}, syntaxErr(tok, "expected an operand")
	}
}

// parseInt parses a signed decimal integer, with unary minus folded in by
// the parser (the lexer only ever emits unsigned integer tokens).
func (p *Parser) parseInt() (int64, error) {
	sign := int64(1)
	tok, err := p.lex.Peek()
	if err != nil {
		return 0, err
	}
	if tok.Kind == TokMinus {
		p.lex.Consume()
		sign = -1
	}
	tok, err = p.lex.Consume()
	if err != nil {
		return 0, err
	}
	if tok.Kind != TokInt {
		return 0, syntaxErr(tok, "expected an integer")
	}
	return sign * tok.Int, nil
}

func (p *Parser) parseRelOp() (RelOp, error) {
	tok, err := p.lex.Consume()
	if err != nil {
		return 0, err
	}
	switch tok.Kind {
	case TokLT:
		return LT, nil
	case TokLE:
		return LE, nil
	case TokGT:
		return GT, nil
	case TokGE:
		return GE, nil
	case TokEQ:
		return EQ, nil
	case TokNE:
		return NE, nil
	default:
		return 0, syntaxErr(tok, "expected a relational operator")
	}
}
