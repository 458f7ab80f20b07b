package vm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-irvm/irvm/ir"
	"github.com/go-irvm/irvm/vm"
)

func run(t *testing.T, src, stdin string) string {
	t.Helper()
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)
	var out strings.Builder
	x, err := vm.New(linked, vm.Input(strings.NewReader(stdin)), vm.Output(&out))
	require.NoError(t, err)
	require.NoError(t, x.Run())
	return out.String()
}

func TestConstantArithmetic(t *testing.T) {
	src := "FUNCTION main:\n" +
		"x := #114 * #514\n" +
		"y := #0 - x\n" +
		"WRITE y\n" +
		"RETURN #0\n"
	assert.Equal(t, "-58596\n", run(t, src, ""))
}

func TestCallWithOneArgument(t *testing.T) {
	src := "FUNCTION id:\n" +
		"PARAM n\n" +
		"RETURN n\n" +
		"FUNCTION main:\n" +
		"ARG #114\n" +
		"x := CALL id\n" +
		"ARG #514\n" +
		"y := CALL id\n" +
		"WRITE x\n" +
		"WRITE y\n" +
		"RETURN #0\n"
	assert.Equal(t, "114\n514\n", run(t, src, ""))
}

const fibSrc = "FUNCTION fib:\n" +
	"PARAM n\n" +
	"IF n == #0 GOTO base0\n" +
	"IF n == #1 GOTO base1\n" +
	"a := n - #1\n" +
	"ARG a\n" +
	"r1 := CALL fib\n" +
	"b := n - #2\n" +
	"ARG b\n" +
	"r2 := CALL fib\n" +
	"s := r1 + r2\n" +
	"RETURN s\n" +
	"LABEL base0:\n" +
	"RETURN #0\n" +
	"LABEL base1:\n" +
	"RETURN #1\n" +
	"FUNCTION main:\n" +
	"READ n\n" +
	"ARG n\n" +
	"r := CALL fib\n" +
	"WRITE r\n" +
	"RETURN #0\n"

func TestRecursiveFibonacci(t *testing.T) {
	assert.Equal(t, "55\n", run(t, fibSrc, "10\n"))
}

func TestHeapPointerArithmetic(t *testing.T) {
	src := "FUNCTION main:\n" +
		"DEC v 8\n" +
		"p := &v\n" +
		"*p := #1\n" +
		"q := p + #4\n" +
		"*q := #2\n" +
		"a := *p\n" +
		"b := *q\n" +
		"WRITE a\n" +
		"WRITE b\n" +
		"RETURN #0\n"
	assert.Equal(t, "1\n2\n", run(t, src, ""))
}

const factSrc = "FUNCTION fact:\n" +
	"PARAM n\n" +
	"IF n == #1 GOTO base\n" +
	"m := n - #1\n" +
	"ARG m\n" +
	"r := CALL fact\n" +
	"s := n * r\n" +
	"RETURN s\n" +
	"LABEL base:\n" +
	"RETURN #1\n" +
	"FUNCTION main:\n" +
	"READ n\n" +
	"ARG n\n" +
	"r := CALL fact\n" +
	"WRITE r\n" +
	"RETURN #0\n"

func TestFactorialViaCall(t *testing.T) {
	assert.Equal(t, "720\n", run(t, factSrc, "6\n"))
}

func TestIntegerWraparoundAtOutput(t *testing.T) {
	src := "FUNCTION main:\n" +
		"x := #2147483647 + #1\n" +
		"WRITE x\n" +
		"RETURN #0\n"
	assert.Equal(t, "-2147483648\n", run(t, src, ""))
}

func TestFrameIsolationAfterCall(t *testing.T) {
	src := "FUNCTION callee:\n" +
		"PARAM n\n" +
		"x := #999\n" +
		"RETURN n\n" +
		"FUNCTION main:\n" +
		"x := #1\n" +
		"ARG x\n" +
		"y := CALL callee\n" +
		"WRITE x\n" +
		"WRITE y\n" +
		"RETURN #0\n"
	assert.Equal(t, "1\n1\n", run(t, src, ""))
}

func TestUninitializedRegisterReadsZero(t *testing.T) {
	src := "FUNCTION main:\n" +
		"y := x + #1\n" +
		"WRITE y\n" +
		"RETURN #0\n"
	assert.Equal(t, "1\n", run(t, src, ""))
}

func TestArgumentOrderingMultipleParams(t *testing.T) {
	src := "FUNCTION sub:\n" +
		"PARAM b\n" +
		"PARAM a\n" +
		"d := a - b\n" +
		"RETURN d\n" +
		"FUNCTION main:\n" +
		"ARG #10\n" +
		"ARG #3\n" +
		"r := CALL sub\n" +
		"WRITE r\n" +
		"RETURN #0\n"
	assert.Equal(t, "7\n", run(t, src, ""))
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	src := "FUNCTION main:\n" +
		"x := #1 / #0\n" +
		"WRITE x\n" +
		"RETURN #0\n"
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)
	x, err := vm.New(linked)
	require.NoError(t, err)
	assert.Error(t, x.Run())
}

func TestReadParseFailureIsFatal(t *testing.T) {
	src := "FUNCTION main:\nREAD x\nWRITE x\nRETURN #0\n"
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)
	x, err := vm.New(linked, vm.Input(strings.NewReader("not-a-number\n")))
	require.NoError(t, err)
	assert.Error(t, x.Run())
}

func TestInstructionCountIncludesLabels(t *testing.T) {
	src := "FUNCTION main:\nLABEL here:\nx := #1\nRETURN x\n"
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)
	x, err := vm.New(linked)
	require.NoError(t, err)
	require.NoError(t, x.Run())
	assert.Equal(t, int64(3), x.InstructionCount())
}

func TestMaxInstructionsAborts(t *testing.T) {
	src := "FUNCTION main:\nLABEL top:\nGOTO top\n"
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)
	x, err := vm.New(linked, vm.MaxInstructions(5))
	require.NoError(t, err)
	assert.Error(t, x.Run())
}
