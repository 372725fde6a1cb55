package bpf

import "encoding/binary"

// interpret is a minimal classic BPF interpreter covering exactly the
// opcode subset this package emits (ABS/LEN/MEM loads, MSH, scratch store,
// K-operand jumps, RET K/A). It exists so package tests can assert on a
// compiled Program's actual runtime behavior instead of just its shape.
func interpret(prog *Program, pkt []byte) uint32 {
	var a, x uint32
	var scratch [16]uint32
	ins := prog.Instructions()

	pc := 0
	for {
		if pc < 0 || pc >= len(ins) {
			panic("interpret: program counter left the instruction stream")
		}
		in := ins[pc]

		switch in.Code & 0x07 {
		case ClassLD:
			switch in.Code & 0xe0 {
			case ModeABS:
				a = loadAbs(pkt, in.K, in.Code&0x18)
			case ModeIND:
				a = loadAbs(pkt, x+in.K, in.Code&0x18)
			case ModeLEN:
				a = uint32(len(pkt))
			case ModeMEM:
				a = scratch[in.K]
			default:
				panic("interpret: unsupported LD mode")
			}
			pc++

		case ClassLDX:
			if in.Code&0xe0 != ModeMSH {
				panic("interpret: unsupported LDX mode")
			}
			x = uint32(pkt[in.K]&0x0f) * 4
			pc++

		case ClassST:
			scratch[in.K] = a
			pc++

		case ClassJMP:
			cmp := ComparisonFromByte(byte(in.Code & 0xf0))
			if cmp == Always {
				pc += 1 + int(in.K)
				continue
			}

			var taken bool
			switch cmp {
			case Equal:
				taken = a == in.K
			case GreaterThan:
				taken = a > in.K
			case GreaterEqual:
				taken = a >= in.K
			case AndMask:
				taken = a&in.K != 0
			default:
				panic("interpret: unsupported jump comparison")
			}
			if taken {
				pc += 1 + int(in.Jt)
			} else {
				pc += 1 + int(in.Jf)
			}
			continue

		case ClassRET:
			if in.Code&0x18 == SrcA {
				return a
			}
			return in.K

		default:
			panic("interpret: unsupported instruction class")
		}
	}
}

func loadAbs(pkt []byte, off uint32, size uint16) uint32 {
	switch size {
	case SizeB:
		return uint32(pkt[off])
	case SizeH:
		return uint32(binary.BigEndian.Uint16(pkt[off : off+2]))
	default:
		return binary.BigEndian.Uint32(pkt[off : off+4])
	}
}

// accepted reports whether running prog against pkt returns a nonzero
// (ACCEPT) verdict.
func accepted(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, prog *Program, pkt []byte) bool {
	t.Helper()
	return interpret(prog, pkt) != 0
}
