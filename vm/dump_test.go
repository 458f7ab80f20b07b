package vm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-irvm/irvm/ir"
	"github.com/go-irvm/irvm/vm"
)

func TestDumpListsInstructionsWithResolvedTargets(t *testing.T) {
	src := "FUNCTION main:\n" +
		"LABEL top:\n" +
		"x := #1\n" +
		"IF x == #1 GOTO top\n" +
		"RETURN x\n"
	prog, err := ir.Parse(src)
	require.NoError(t, err)
	linked, err := vm.Link(prog)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, vm.Dump(&out, linked))

	listing := out.String()
	assert.Contains(t, listing, "main (id 0):")
	assert.Contains(t, listing, "LABEL top:")
	assert.Contains(t, listing, "-> pc 0")
}
