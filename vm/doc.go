// Package vm links a parsed ir.Program into a callable image and executes
// it: a stack of frames, a per-frame register binding, a shared LIFO
// argument queue servicing the caller/callee calling-convention handshake,
// and a dispatch loop that fetches one ir.Instruction at a time from the
// current frame's function body.
//
// The dispatch loop is a single switch over the current instruction,
// advancing or redirecting the program counter as each case requires, with
// a running instruction counter reported back to the host at termination.
package vm
