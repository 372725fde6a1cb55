package idiom

import (
	"encoding/binary"
	"net"

	"bpfcap/bpf"
)

// IPv6 header field offsets, relative to the start of the IPv6 header.
const (
	OffsetIP6NextHeader uint32 = 6
	OffsetIP6HopLimit   uint32 = 7
	OffsetIP6Src        uint32 = 8
	OffsetIP6Dst        uint32 = 24
)

// ShiftIP6HopLimit is true iff the IPv6 Hop Limit field is ttl, with the
// IPv6 header assumed to start at shift bytes into the packet.
func ShiftIP6HopLimit(ttl uint8, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU8(OffsetIP6HopLimit, ttl, shift)
}

// IP6HopLimit is true iff the IPv6 Hop Limit field is ttl.
func IP6HopLimit(ttl uint8) bpf.Predicate { return ShiftIP6HopLimit(ttl, SizeEtherHeader) }

// ShiftIP6NextHeader is true iff the IPv6 Next Header field is proto, with
// the IPv6 header assumed to start at shift bytes into the packet.
func ShiftIP6NextHeader(proto uint8, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU8(OffsetIP6NextHeader, proto, shift)
}

// IP6NextHeader is true iff the IPv6 Next Header field is proto.
func IP6NextHeader(proto uint8) bpf.Predicate { return ShiftIP6NextHeader(proto, SizeEtherHeader) }

// ip6Words splits a 16-byte IPv6 address into four big-endian u32 words, the
// largest unit cBPF can load and compare in one instruction.
func ip6Words(ip net.IP) [4]uint32 {
	b := ip.To16()
	var words [4]uint32
	for i := range words {
		words[i] = binary.BigEndian.Uint32(b[i*4 : i*4+4])
	}
	return words
}

// shiftIP6AddrEquals is true iff the 16-byte address at offset (relative to
// shift) equals ip, built as a conjunction of four word comparisons.
func shiftIP6AddrEquals(offset uint32, ip net.IP, shift uint32) bpf.Predicate {
	words := ip6Words(ip)
	p := ShiftOffsetEqualsU32(offset, words[0], shift)
	for i := 1; i < 4; i++ {
		p = p.And(ShiftOffsetEqualsU32(offset+uint32(i*4), words[i], shift))
	}
	return p
}

// ShiftIP6Src is true iff the IPv6 source address is ip, with the IPv6
// header assumed to start at shift bytes into the packet.
func ShiftIP6Src(ip net.IP, shift uint32) bpf.Predicate {
	return shiftIP6AddrEquals(OffsetIP6Src, ip, shift)
}

// IP6Src is true iff the packet is IPv6 and its source address is ip.
func IP6Src(ip net.IP) bpf.Predicate {
	return EtherTypeIsIP6().And(ShiftIP6Src(ip, SizeEtherHeader))
}

// ShiftIP6Dst is true iff the IPv6 destination address is ip, with the IPv6
// header assumed to start at shift bytes into the packet.
func ShiftIP6Dst(ip net.IP, shift uint32) bpf.Predicate {
	return shiftIP6AddrEquals(OffsetIP6Dst, ip, shift)
}

// IP6Dst is true iff the packet is IPv6 and its destination address is ip.
func IP6Dst(ip net.IP) bpf.Predicate {
	return EtherTypeIsIP6().And(ShiftIP6Dst(ip, SizeEtherHeader))
}

// ShiftIP6Host is true iff ip is either the IPv6 source or destination, with
// the IPv6 header assumed to start at shift bytes into the packet.
func ShiftIP6Host(ip net.IP, shift uint32) bpf.Predicate {
	return ShiftIP6Src(ip, shift).Or(ShiftIP6Dst(ip, shift))
}

// IP6Host is true iff ip is either the IPv6 source or destination.
func IP6Host(ip net.IP) bpf.Predicate { return ShiftIP6Host(ip, SizeEtherHeader) }
