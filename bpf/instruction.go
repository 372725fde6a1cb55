// Package bpf compiles symbolic boolean predicates over packet contents into
// classic BPF (cBPF) programs that can be attached to a raw socket with
// SO_ATTACH_FILTER.
package bpf

import "fmt"

// Instruction mirrors the kernel's struct sock_filter byte for byte:
//
//	struct sock_filter { u16 code; u8 jt; u8 jf; u32 k; }
//
// Jump offsets (Jt, Jf) are relative to the instruction immediately after the
// jump and are measured in whole instructions; 0 means "fall through".
type Instruction struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// Opcode class, size, and mode fields, OR-ed together to form Instruction.Code,
// matching linux/filter.h.
const (
	ClassLD  uint16 = 0x00
	ClassLDX uint16 = 0x01
	ClassST  uint16 = 0x02
	ClassSTX uint16 = 0x03
	ClassALU uint16 = 0x04
	ClassJMP uint16 = 0x05
	ClassRET uint16 = 0x06
	ClassMSC uint16 = 0x07

	SizeW uint16 = 0x00
	SizeH uint16 = 0x08
	SizeB uint16 = 0x10

	ModeIMM uint16 = 0x00
	ModeABS uint16 = 0x20
	ModeIND uint16 = 0x40
	ModeMEM uint16 = 0x60
	ModeLEN uint16 = 0x80
	ModeMSH uint16 = 0xa0

	JmpJA   uint16 = 0x00
	JmpJEQ  uint16 = 0x10
	JmpJGT  uint16 = 0x20
	JmpJGE  uint16 = 0x30
	JmpJSET uint16 = 0x40

	SrcK uint16 = 0x00
	SrcX uint16 = 0x08
	SrcA uint16 = 0x10
)

// Comparison is the jump-op portion of a JMP instruction's Code, so its
// values can be OR-ed directly into a Code value.
type Comparison uint16

// Comparisons supported by a conditional jump instruction.
const (
	Always       Comparison = Comparison(JmpJA)
	Equal        Comparison = Comparison(JmpJEQ)
	GreaterThan  Comparison = Comparison(JmpJGT)
	GreaterEqual Comparison = Comparison(JmpJGE)
	AndMask      Comparison = Comparison(JmpJSET)
	Unknown      Comparison = Comparison(0xff)
)

// ComparisonFromByte recovers a Comparison from a raw jump-op byte, mapping
// anything unrecognized to Unknown.
func ComparisonFromByte(b byte) Comparison {
	switch uint16(b) {
	case JmpJA:
		return Always
	case JmpJEQ:
		return Equal
	case JmpJGT:
		return GreaterThan
	case JmpJGE:
		return GreaterEqual
	case JmpJSET:
		return AndMask
	default:
		return Unknown
	}
}

func (c Comparison) String() string {
	switch c {
	case Always:
		return "JA"
	case Equal:
		return "JEQ"
	case GreaterThan:
		return "JGT"
	case GreaterEqual:
		return "JGE"
	case AndMask:
		return "JSET"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(c))
	}
}
