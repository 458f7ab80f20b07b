// Package value implements the interpreter's value model: 64-bit integers
// and pointers into simulated heap memory, with wrapping arithmetic and
// indirect load/store. Pointers are shared, interior-mutable handles: a Ptr
// carries a shared *Block, so copying a pointer value aliases the same
// cells rather than cloning them.
package value

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind distinguishes an Int from a Ptr value.
type Kind int

// Value kinds.
const (
	KindInt Kind = iota
	KindPtr
)

// Block is a simulated heap block: size logical cells backed by 2*size
// actual cells (the excess, matching the original implementation, is never
// reachable through a valid Load/Store). Block is shared by every Value
// produced by pointer arithmetic over it, so a Store through one alias is
// observed by every other alias.
type Block struct {
	cells []int64
	size  int64
}

// NewBlock allocates a block with 2*size zeroed cells and logical capacity
// size. size is passed straight through from a DEC instruction's byte-count
// operand, matching the original implementation: DEC's argument becomes the
// bound used by the offset/4 < size check directly, with no unit
// conversion.
func NewBlock(size int64) *Block {
	return &Block{cells: make([]int64, 2*size), size: size}
}

// Value is either a 64-bit signed integer or a pointer into a Block.
type Value struct {
	Kind   Kind
	Int    int64
	block  *Block
	Offset int64
}

// Int64 builds an integer value.
func Int64(n int64) Value { return Value{Kind: KindInt, Int: n} }

// NewPtr builds a pointer to the start of a freshly allocated block of the
// given logical size in cells.
func NewPtr(size int64) Value {
	return Value{Kind: KindPtr, block: NewBlock(size)}
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.Kind == KindInt }

// IsPtr reports whether v holds a pointer.
func (v Value) IsPtr() bool { return v.Kind == KindPtr }

// SameBlock reports whether two pointer values reference the same
// underlying block.
func (v Value) SameBlock(o Value) bool { return v.block == o.block }

// Add returns v+o, with Int+Int wrapping modulo 2^64 and Ptr+Int adjusting
// the offset while preserving the block reference. Int+Ptr and Ptr+Ptr are
// errors.
func (v Value) Add(o Value) (Value, error) { return arith(v, o, opAdd) }

// Sub returns v-o. See Add for the (Ptr, Int) / (Int, Ptr) / (Ptr, Ptr)
// rules.
func (v Value) Sub(o Value) (Value, error) { return arith(v, o, opSub) }

// Mul returns v*o. Pointer multiplication is legal in the grammar but
// semantically dubious; this implementation preserves the original's
// bug-for-bug behavior (apply the operator to the offset, keep the block)
// rather than rejecting it.
func (v Value) Mul(o Value) (Value, error) { return arith(v, o, opMul) }

// Div returns v/o. Division by zero is an error.
func (v Value) Div(o Value) (Value, error) { return arith(v, o, opDiv) }

type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
)

func arith(v, o Value, op binOp) (Value, error) {
	switch {
	case v.IsInt() && o.IsInt():
		if op == opDiv && o.Int == 0 {
			return Value{}, errors.New("division by zero")
		}
		return Int64(applyInt(v.Int, o.Int, op)), nil
	case v.IsPtr() && o.IsInt():
		if op == opDiv && o.Int == 0 {
			return Value{}, errors.New("division by zero")
		}
		return Value{Kind: KindPtr, block: v.block, Offset: applyInt(v.Offset, o.Int, op)}, nil
	case v.IsInt() && o.IsPtr():
		return Value{}, errors.New("arithmetic on (int, pointer) is not defined")
	default:
		return Value{}, errors.New("arithmetic on (pointer, pointer) is not defined")
	}
}

func applyInt(a, b int64, op binOp) int64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	default: // opDiv
		if a == minInt64 && b == -1 {
			return a
		}
		return a / b
	}
}

const minInt64 = -1 << 63

// Load reads the integer at the pointer's current offset. It is an error to
// load through an Int value, and an error to load out of bounds
// (offset/4 >= size).
func (v Value) Load() (Value, error) {
	if !v.IsPtr() {
		return Value{}, errors.New("load requires a pointer value")
	}
	idx := v.Offset / 4
	if idx < 0 || idx >= v.block.size {
		return Value{}, errors.Errorf("load out of bounds: offset %d, size %d", v.Offset, v.block.size)
	}
	return Int64(v.block.cells[idx]), nil
}

// Store writes val into the cell at the pointer's current offset. Storing a
// pointer value is a documented no-op, matching the original's behavior of
// silently ignoring non-integer stores.
func (v Value) Store(val Value) error {
	if !v.IsPtr() {
		return errors.New("store requires a pointer value")
	}
	idx := v.Offset / 4
	if idx < 0 || idx >= v.block.size {
		return errors.Errorf("store out of bounds: offset %d, size %d", v.Offset, v.block.size)
	}
	if !val.IsInt() {
		return nil
	}
	v.block.cells[idx] = val.Int
	return nil
}

// Equal reports structural equality on integers and alias equality (same
// block, same offset) on pointers. A pointer never equals an integer.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.IsInt() {
		return v.Int == o.Int
	}
	return v.block == o.block && v.Offset == o.Offset
}

// Less reports whether v < o. Ordering is defined only between two
// integers; any other pair is "unordered" and Less/LessEqual/etc. all
// report false, which is how a Cond instruction treats a comparison it
// cannot evaluate.
func (v Value) Less(o Value) bool    { return v.IsInt() && o.IsInt() && v.Int < o.Int }
func (v Value) Greater(o Value) bool { return v.IsInt() && o.IsInt() && v.Int > o.Int }
func (v Value) LessEqual(o Value) bool {
	return v.IsInt() && o.IsInt() && v.Int <= o.Int
}
func (v Value) GreaterEqual(o Value) bool {
	return v.IsInt() && o.IsInt() && v.Int >= o.Int
}

// String displays the value: an Int shows its low 32 bits as a signed
// decimal (matching the original's `*int as i32` truncation on print); a
// Ptr shows the value currently loaded at its offset.
func (v Value) String() string {
	if v.IsInt() {
		return int32Decimal(v.Int)
	}
	loaded, err := v.Load()
	if err != nil {
		return "<invalid pointer>"
	}
	return loaded.String()
}

func int32Decimal(n int64) string {
	return strconv.FormatInt(int64(int32(n)), 10)
}
