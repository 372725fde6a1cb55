package bpf

// Field offsets used by BuildTCPPortFilter. These are local to this file
// rather than shared with the idiom package: the hand-assembled filter below
// is a fixed, literal instruction sequence, not something built from
// Condition terminals, so there's nothing to gain from sharing a table.
const (
	tcpFilterOffsetEtherType     = 12
	tcpFilterSizeEtherHeader     = 14
	tcpFilterSizeIPv6Header      = 40
	tcpFilterOffsetIP6NextHeader = 6
	tcpFilterOffsetIP4Proto      = 9
	tcpFilterOffsetIP4Fragment   = 6
	tcpFilterOffsetTCPSrcPort    = 0
	tcpFilterOffsetTCPDstPort    = 2

	tcpFilterEtherTypeIPv4 = 0x0800
	tcpFilterEtherTypeIPv6 = 0x86DD
	tcpFilterIPProtoTCP    = 6

	tcpFilterSrcPortScratch = 0
)

// BuildTCPPortFilter hand-assembles a cBPF program that accepts TCP segments
// (IPv4 or IPv6, fragmentation-aware) whose source or destination port
// appears in ports. It is written directly in execution order with literal
// jump-offset arithmetic rather than through Predicate.Compile: the general
// predicate compiler has no way to express "recover the TCP header location
// from a variable-length IPv4 header" or "compare the same value against a
// whole set of alternatives" without manually unrolling one Or branch per
// port, which would both bloat the program and obscure the control flow this
// filter depends on.
func BuildTCPPortFilter(ports []uint16) (*Program, error) {
	n := len(ports)
	var ins []Instruction

	// Check EtherType is IPv6; if not, skip ahead to the IPv4 branch.
	ins = append(ins, loadU16At(tcpFilterOffsetEtherType)...)
	ins = append(ins, jump(Equal, tcpFilterEtherTypeIPv6, 0, 6)...)

	// IPv6 branch: load the next-header field, drop unless it's TCP.
	ins = append(ins, loadU8At(tcpFilterSizeEtherHeader+tcpFilterOffsetIP6NextHeader)...)
	ins = append(ins, jump(Equal, tcpFilterIPProtoTCP, 0, 13+n+1+n+2)...)

	// IPv6 has no variable-length header to account for: the TCP header
	// always starts right after the fixed 40-byte IPv6 header.
	ins = append(ins, loadU16At(tcpFilterSizeEtherHeader+tcpFilterSizeIPv6Header+tcpFilterOffsetTCPSrcPort)...)
	ins = append(ins, storeToScratch(tcpFilterSrcPortScratch)...)
	ins = append(ins, loadU16At(tcpFilterSizeEtherHeader+tcpFilterSizeIPv6Header+tcpFilterOffsetTCPDstPort)...)
	// Jump past the IPv4 branch straight to the port comparison, which
	// expects dst port in A and src port already stashed in scratch[0]. The
	// IPv4 branch below is exactly 9 instructions (the ethertype check, the
	// proto check, the fragment check, and the four loads/stores that locate
	// the TCP header), so skipping it means an unconditional jump of 9.
	ins = append(ins, jump(Always, 9, 0, 0)...)

	// IPv4 branch: A still holds the ethertype from the very first load.
	ins = append(ins, jump(Equal, tcpFilterEtherTypeIPv4, 0, 8+n+1+n+2)...)
	ins = append(ins, loadU8At(tcpFilterSizeEtherHeader+tcpFilterOffsetIP4Proto)...)
	ins = append(ins, jump(Equal, tcpFilterIPProtoTCP, 0, 6+n+1+n+2)...)

	// Refuse fragments: only the first fragment carries the TCP header, and
	// this filter doesn't reassemble.
	ins = append(ins, loadU16At(tcpFilterSizeEtherHeader+tcpFilterOffsetIP4Fragment)...)
	ins = append(ins, jump(AndMask, 0x1fff, 4+n+1+n+2, 0)...)

	// X = IPv4 header length (IHL*4); the TCP header starts right after it.
	ins = append(ins, loadIHLIntoX(tcpFilterSizeEtherHeader)...)
	ins = append(ins, loadU16AtXOffset(tcpFilterSizeEtherHeader+tcpFilterOffsetTCPSrcPort)...)
	ins = append(ins, storeToScratch(tcpFilterSrcPortScratch)...)
	ins = append(ins, loadU16AtXOffset(tcpFilterSizeEtherHeader+tcpFilterOffsetTCPDstPort)...)

	// Port comparison: dst port is already in A. A match jumps to ACCEPT; a
	// mismatch falls through to the next test.
	for i, port := range ports {
		accept := 2*n - i
		ins = append(ins, jump(Equal, uint32(port), accept, 0)...)
	}

	// Fall through to the same comparison against the src port, stashed
	// earlier in scratch[0]. Only the last src-port test jumps on a
	// mismatch: past the ACCEPT epilogue to DROP.
	ins = append(ins, loadFromScratch(tcpFilterSrcPortScratch)...)
	for i, port := range ports {
		accept := n - i - 1
		drop := 0
		if i == n-1 {
			drop = len(acceptEpilogue())
		}
		ins = append(ins, jump(Equal, uint32(port), accept, drop)...)
	}

	ins = append(ins, acceptEpilogue()...)
	ins = append(ins, dropEpilogue()...)

	return NewProgram(ins)
}
