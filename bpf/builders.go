package bpf

// Builders emit the small, pure instruction sequences the rest of the
// package composes. Each one returns its instructions in execution order;
// the backward code generator is responsible for reversing whatever it
// accumulates, not these functions.

// loadU8At loads packet[off] into A.
func loadU8At(off uint32) []Instruction {
	return []Instruction{{Code: ClassLD | SizeB | ModeABS, K: off}}
}

// loadU16At loads the big-endian 16-bit word at packet[off:off+2] into A.
func loadU16At(off uint32) []Instruction {
	return []Instruction{{Code: ClassLD | SizeH | ModeABS, K: off}}
}

// loadU32At loads the big-endian 32-bit word at packet[off:off+4] into A.
func loadU32At(off uint32) []Instruction {
	return []Instruction{{Code: ClassLD | SizeW | ModeABS, K: off}}
}

// loadU16AtXOffset loads the big-endian 16-bit word at packet[X+off:X+off+2]
// into A.
func loadU16AtXOffset(off uint32) []Instruction {
	return []Instruction{{Code: ClassLD | SizeH | ModeIND, K: off}}
}

// loadIHLIntoX decodes the IPv4 IHL nibble at packet[off] into the header
// byte length 4*(packet[off]&0x0F), storing it in X.
func loadIHLIntoX(off uint32) []Instruction {
	return []Instruction{{Code: ClassLDX | SizeB | ModeMSH, K: off}}
}

// loadFromScratch loads scratch[m] into A.
func loadFromScratch(m uint32) []Instruction {
	return []Instruction{{Code: ClassLD | ModeMEM, K: m}}
}

// storeToScratch stores A into scratch[m].
func storeToScratch(m uint32) []Instruction {
	return []Instruction{{Code: ClassST, K: m}}
}

// jump emits a conditional jump comparing A against k, skipping jt
// instructions forward on true and jf instructions forward on false. When
// cmp is Always, jt and jf are both meaningless to the kernel: BPF_JA carries
// its jump distance in k instead, so callers encoding an unconditional jump
// must pass the distance as k, not as jt/jf.
func jump(cmp Comparison, k uint32, jt, jf int) []Instruction {
	return []Instruction{{
		Code: ClassJMP | uint16(cmp) | SrcK,
		Jt:   uint8(jt),
		Jf:   uint8(jf),
		K:    k,
	}}
}

// acceptEpilogue emits the two-instruction "accept whole frame" epilogue:
// load the wire length into A, then return it.
func acceptEpilogue() []Instruction {
	return []Instruction{
		{Code: ClassLD | ModeLEN | SizeW},
		{Code: ClassRET | SrcA},
	}
}

// dropEpilogue emits the one-instruction "drop" epilogue: return 0.
func dropEpilogue() []Instruction {
	return []Instruction{{Code: ClassRET | SrcK}}
}
