package bpf

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// MaxInstructions is the largest instruction count a struct sock_fprog can
// describe: its len field is a u16.
const MaxInstructions = 65535

// Program is a finished, verifier-sized classic BPF instruction sequence,
// ready to hand to SO_ATTACH_FILTER or to disassemble for diagnostics.
type Program struct {
	instructions []Instruction
}

// NewProgram wraps instructions as a Program, rejecting sequences longer
// than MaxInstructions.
func NewProgram(instructions []Instruction) (*Program, error) {
	if len(instructions) > MaxInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrFilterProgramOverflow, len(instructions))
	}
	cp := make([]Instruction, len(instructions))
	copy(cp, instructions)
	return &Program{instructions: cp}, nil
}

// Len returns the instruction count.
func (p *Program) Len() int {
	return len(p.instructions)
}

// Instructions returns a defensive copy of the program's instructions.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

// SockFilters renders the program as the kernel ABI's struct sock_filter
// array, suitable for embedding in a unix.SockFprog for SO_ATTACH_FILTER.
func (p *Program) SockFilters() []unix.SockFilter {
	out := make([]unix.SockFilter, len(p.instructions))
	for i, ins := range p.instructions {
		out[i] = unix.SockFilter{Code: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return out
}

// Dump renders the program's diagnostic textual form: a "len: N" header
// followed by one comma-terminated "code jt jf k" group per instruction.
func (p *Program) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "len: %d\n", len(p.instructions))
	for _, ins := range p.instructions {
		fmt.Fprintf(&b, "%d %d %d %d,", ins.Code, ins.Jt, ins.Jf, ins.K)
	}
	return b.String()
}
