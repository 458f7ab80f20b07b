package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-irvm/irvm/ir"
)

func TestParseEmptyProgram(t *testing.T) {
	prog, err := ir.Parse("\n\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Funcs)
}

func TestParseFunctionHeaderAndBody(t *testing.T) {
	prog, err := ir.Parse("FUNCTION main:\nx := #1\nRETURN x\n")
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Body, 2)
	assign, ok := fn.Body[0].(ir.Assign)
	require.True(t, ok)
	assert.Equal(t, ir.Var("x"), assign.X)
	assert.Equal(t, ir.Imm(1), assign.Y)
}

func TestParseArithDisambiguation(t *testing.T) {
	prog, err := ir.Parse("FUNCTION main:\nz := x + y\nRETURN z\n")
	require.NoError(t, err)
	arith := prog.Funcs[0].Body[0].(ir.Arith)
	assert.Equal(t, ir.Add, arith.Op)
	assert.Equal(t, ir.Var("x"), arith.Y)
	assert.Equal(t, ir.Var("y"), arith.Z)
}

func TestParseDerefLoadAndCall(t *testing.T) {
	prog, err := ir.Parse(
		"FUNCTION main:\n" +
			"p := &v\n" +
			"a := *p\n" +
			"b := CALL f\n" +
			"RETURN b\n")
	require.NoError(t, err)
	body := prog.Funcs[0].Body
	deref := body[0].(ir.Deref)
	assert.Equal(t, ir.Var("v"), deref.Y)
	load := body[1].(ir.Load)
	assert.Equal(t, ir.Var("p"), load.Y)
	call := body[2].(ir.Call)
	assert.Equal(t, "f", call.Name)
}

func TestParseStoreGotoCondAndDec(t *testing.T) {
	prog, err := ir.Parse(
		"FUNCTION main:\n" +
			"DEC v 8\n" +
			"*v := #1\n" +
			"LABEL top:\n" +
			"IF v == #1 GOTO top\n" +
			"GOTO top\n" +
			"RETURN #0\n")
	require.NoError(t, err)
	body := prog.Funcs[0].Body
	dec := body[0].(ir.Dec)
	assert.Equal(t, int64(8), dec.Size)
	store := body[1].(ir.Store)
	assert.Equal(t, ir.Var("v"), store.X)
	_ = body[2].(ir.Label)
	cond := body[3].(ir.Cond)
	assert.Equal(t, ir.EQ, cond.Op)
	assert.Equal(t, "top", cond.Name)
	gotoIns := body[4].(ir.Goto)
	assert.Equal(t, "top", gotoIns.Name)
}

func TestParseNegativeImmediate(t *testing.T) {
	prog, err := ir.Parse("FUNCTION main:\nx := #-5\nRETURN x\n")
	require.NoError(t, err)
	assign := prog.Funcs[0].Body[0].(ir.Assign)
	assert.Equal(t, ir.Imm(-5), assign.Y)
}

func TestParseArgParamReadWrite(t *testing.T) {
	prog, err := ir.Parse(
		"FUNCTION main:\n" +
			"ARG #1\n" +
			"PARAM n\n" +
			"READ n\n" +
			"WRITE n\n" +
			"RETURN n\n")
	require.NoError(t, err)
	body := prog.Funcs[0].Body
	_ = body[0].(ir.Arg)
	_ = body[1].(ir.Param)
	_ = body[2].(ir.Read)
	_ = body[3].(ir.Write)
}

func TestParseMultipleFunctionsWithBlankLines(t *testing.T) {
	prog, err := ir.Parse("FUNCTION a:\nRETURN #0\n\nFUNCTION b:\nRETURN #1\n")
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 2)
	assert.Equal(t, "a", prog.Funcs[0].Name)
	assert.Equal(t, "b", prog.Funcs[1].Name)
}

func TestParseSyntaxErrorReportsLine(t *testing.T) {
	_, err := ir.Parse("FUNCTION main:\nx := \n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseMissingColonAfterFunctionName(t *testing.T) {
	_, err := ir.Parse("FUNCTION main\nRETURN #0\n")
	assert.Error(t, err)
}

func TestOperandAndOpStringRoundTrip(t *testing.T) {
	assert.Equal(t, "#42", ir.Imm(42).String())
	assert.Equal(t, "x", ir.Var("x").String())
	assert.Equal(t, "+", ir.Add.String())
	assert.Equal(t, "==", ir.EQ.String())
}
