package idiom

import (
	"net"

	"bpfcap/bpf"
)

// ShiftIPHopLimit is true iff the packet's Hop Limit (IPv4 TTL or IPv6 Hop
// Limit) is ttl, with the IP header assumed to start at shift bytes into
// the packet. It is the Or of the IPv4 and IPv6 variants and does not check
// EtherType: each side compares the byte at its own offset whatever the
// frame's IP version.
func ShiftIPHopLimit(ttl uint8, shift uint32) bpf.Predicate {
	return ShiftIP4TTL(ttl, shift).Or(ShiftIP6HopLimit(ttl, shift))
}

// IPHopLimit is true iff the packet's Hop Limit is ttl.
func IPHopLimit(ttl uint8) bpf.Predicate { return ShiftIPHopLimit(ttl, SizeEtherHeader) }

// ShiftIPNextHeader is true iff the packet's next-layer protocol (IPv4
// protocol or IPv6 Next Header) is proto, with the IP header assumed to
// start at shift bytes into the packet.
func ShiftIPNextHeader(proto uint8, shift uint32) bpf.Predicate {
	return ShiftIP4Proto(proto, shift).Or(ShiftIP6NextHeader(proto, shift))
}

// IPNextHeader is true iff the packet's next-layer protocol is proto.
func IPNextHeader(proto uint8) bpf.Predicate { return ShiftIPNextHeader(proto, SizeEtherHeader) }

// ShiftIPSrc is true iff the IP source address is ip, with the IP header
// assumed to start at shift bytes into the packet. The IP version is taken
// from ip itself, not from a packet field: callers pick the family by the
// address they pass in.
func ShiftIPSrc(ip net.IP, shift uint32) bpf.Predicate {
	if v4 := ip.To4(); v4 != nil {
		return ShiftIP4Src(v4, shift)
	}
	return ShiftIP6Src(ip, shift)
}

// IPSrc is true iff the IP source address is ip.
func IPSrc(ip net.IP) bpf.Predicate { return ShiftIPSrc(ip, SizeEtherHeader) }

// ShiftIPDst is true iff the IP destination address is ip, with the IP
// header assumed to start at shift bytes into the packet.
func ShiftIPDst(ip net.IP, shift uint32) bpf.Predicate {
	if v4 := ip.To4(); v4 != nil {
		return ShiftIP4Dst(v4, shift)
	}
	return ShiftIP6Dst(ip, shift)
}

// IPDst is true iff the IP destination address is ip.
func IPDst(ip net.IP) bpf.Predicate { return ShiftIPDst(ip, SizeEtherHeader) }

// ShiftIPHost is true iff ip is either the IP source or destination, with
// the IP header assumed to start at shift bytes into the packet.
func ShiftIPHost(ip net.IP, shift uint32) bpf.Predicate {
	return ShiftIPSrc(ip, shift).Or(ShiftIPDst(ip, shift))
}

// IPHost is true iff ip is either the IP source or destination.
func IPHost(ip net.IP) bpf.Predicate { return ShiftIPHost(ip, SizeEtherHeader) }
