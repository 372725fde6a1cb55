package bpf

import (
	"fmt"
	"strings"
)

// conditionKey is a structural, comparable identity for a Condition, used to
// key the BDD's opaque boolean variables. Two Conditions with the same key
// are treated as observing the same packet field in the same way; anything
// else is treated as independent, even if it happens to load the same bytes
// via a differently-built Computation.
type conditionKey string

func (c Condition) key() conditionKey {
	var b strings.Builder
	for _, ins := range c.computation.instructions {
		fmt.Fprintf(&b, "%04x/%02x/%02x/%08x;", ins.Code, ins.Jt, ins.Jf, ins.K)
	}
	fmt.Fprintf(&b, "|%04x/%08x", uint16(c.comparison), c.operand)
	return conditionKey(b.String())
}

// Equal reports whether c and other are structurally identical.
func (c Condition) Equal(other Condition) bool {
	return c.key() == other.key()
}

// Computation is an ordered, pure instruction sequence whose postcondition
// is "the value of interest is in A". It never contains a jump.
type Computation struct {
	instructions []Instruction
}

func newComputation(instructions []Instruction) Computation {
	// Copy so callers can't mutate a Computation's instructions through the
	// slice they passed in.
	cp := make([]Instruction, len(instructions))
	copy(cp, instructions)
	return Computation{instructions: cp}
}

func (c Computation) build() []Instruction {
	return c.instructions
}

func (c Computation) len() int {
	return len(c.instructions)
}

// Condition is the unit atom of the predicate algebra: load a value into A
// via a Computation, then compare it against Operand with Comparison.
type Condition struct {
	computation Computation
	comparison  Comparison
	operand     uint32
}

// NewCondition builds a Condition from a raw load sequence, a comparison,
// and the immediate to compare against. Exported so idiom packages can build
// Terminal predicates directly when the OffsetEquals* helpers in this
// package don't cover their needs.
func NewCondition(load []Instruction, cmp Comparison, operand uint32) Condition {
	return Condition{
		computation: newComputation(load),
		comparison:  cmp,
		operand:     operand,
	}
}

// build emits the jump instruction followed by the load, both in
// reverse-walk order. The caller's final, reversed program sees the load
// first, in its original order, and the jump last, as required by the
// Computation postcondition.
func (c Condition) build(jt, jf int) []Instruction {
	out := jump(c.comparison, c.operand, jt, jf)
	out = append(out, reverseCopy(c.computation.build())...)
	return out
}

func (c Condition) len() int {
	return c.computation.len() + 1
}

// OffsetEqualsU8 builds a Terminal-ready Condition: true iff packet[off] == value.
func OffsetEqualsU8(off uint32, value uint8) Condition {
	return NewCondition(loadU8At(off), Equal, uint32(value))
}

// OffsetEqualsU16 builds a Condition: true iff the big-endian u16 at
// packet[off:off+2] == value.
func OffsetEqualsU16(off uint32, value uint16) Condition {
	return NewCondition(loadU16At(off), Equal, uint32(value))
}

// OffsetEqualsU32 builds a Condition: true iff the big-endian u32 at
// packet[off:off+4] == value.
func OffsetEqualsU32(off uint32, value uint32) Condition {
	return NewCondition(loadU32At(off), Equal, value)
}
