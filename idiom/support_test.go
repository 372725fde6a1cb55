package idiom

import (
	"encoding/binary"

	"bpfcap/bpf"
)

// frame builds a minimal Ethernet II frame for idiom tests: 14-byte header
// (dst/src zeroed, EtherType set) followed by payload.
func frame(etherType uint16, payload []byte) []byte {
	buf := make([]byte, 14+len(payload))
	binary.BigEndian.PutUint16(buf[12:14], etherType)
	copy(buf[14:], payload)
	return buf
}

// interpret is a trimmed classic BPF interpreter mirroring bpf's own test
// helper, kept local to avoid exporting test-only surface from bpf for a
// single downstream package to import.
func interpret(prog *bpf.Program, pkt []byte) uint32 {
	var a, x uint32
	var scratch [16]uint32
	ins := prog.Instructions()

	pc := 0
	for {
		in := ins[pc]
		switch in.Code & 0x07 {
		case bpf.ClassLD:
			switch in.Code & 0xe0 {
			case bpf.ModeABS:
				a = loadAbs(pkt, in.K, in.Code&0x18)
			case bpf.ModeIND:
				a = loadAbs(pkt, x+in.K, in.Code&0x18)
			case bpf.ModeLEN:
				a = uint32(len(pkt))
			case bpf.ModeMEM:
				a = scratch[in.K]
			}
			pc++
		case bpf.ClassLDX:
			x = uint32(pkt[in.K]&0x0f) * 4
			pc++
		case bpf.ClassST:
			scratch[in.K] = a
			pc++
		case bpf.ClassJMP:
			cmp := bpf.ComparisonFromByte(byte(in.Code & 0xf0))
			if cmp == bpf.Always {
				pc += 1 + int(in.K)
				continue
			}
			var taken bool
			switch cmp {
			case bpf.Equal:
				taken = a == in.K
			case bpf.GreaterThan:
				taken = a > in.K
			case bpf.GreaterEqual:
				taken = a >= in.K
			case bpf.AndMask:
				taken = a&in.K != 0
			}
			if taken {
				pc += 1 + int(in.Jt)
			} else {
				pc += 1 + int(in.Jf)
			}
			continue
		case bpf.ClassRET:
			if in.Code&0x18 == bpf.SrcA {
				return a
			}
			return in.K
		}
	}
}

func loadAbs(pkt []byte, off uint32, size uint16) uint32 {
	switch size {
	case bpf.SizeB:
		return uint32(pkt[off])
	case bpf.SizeH:
		return uint32(binary.BigEndian.Uint16(pkt[off : off+2]))
	default:
		return binary.BigEndian.Uint32(pkt[off : off+4])
	}
}

func accepted(prog *bpf.Program, pkt []byte) bool {
	return interpret(prog, pkt) != 0
}
