package idiom

import (
	"encoding/binary"
	"net"

	"bpfcap/bpf"
)

// IPv4 header field offsets, relative to the start of the IPv4 header.
const (
	OffsetIP4TTL   uint32 = 8
	OffsetIP4Proto uint32 = 9
	OffsetIP4Src   uint32 = 12
	OffsetIP4Dst   uint32 = 16
)

// ShiftIP4TTL is true iff the IPv4 TTL field is ttl, with the IPv4 header
// assumed to start at shift bytes into the packet.
func ShiftIP4TTL(ttl uint8, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU8(OffsetIP4TTL, ttl, shift)
}

// IP4TTL is true iff the IPv4 TTL field is ttl.
func IP4TTL(ttl uint8) bpf.Predicate { return ShiftIP4TTL(ttl, SizeEtherHeader) }

// ShiftIP4Proto is true iff the IPv4 protocol field is proto, with the IPv4
// header assumed to start at shift bytes into the packet.
func ShiftIP4Proto(proto uint8, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU8(OffsetIP4Proto, proto, shift)
}

// IP4Proto is true iff the IPv4 protocol field is proto.
func IP4Proto(proto uint8) bpf.Predicate { return ShiftIP4Proto(proto, SizeEtherHeader) }

func ip4Word(ip net.IP) uint32 {
	return binary.BigEndian.Uint32(ip.To4())
}

// ShiftIP4Src is true iff the IPv4 source address is ip, with the IPv4
// header assumed to start at shift bytes into the packet.
func ShiftIP4Src(ip net.IP, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU32(OffsetIP4Src, ip4Word(ip), shift)
}

// IP4Src is true iff the packet is IPv4 and its source address is ip.
func IP4Src(ip net.IP) bpf.Predicate {
	return EtherTypeIsIP4().And(ShiftIP4Src(ip, SizeEtherHeader))
}

// ShiftIP4Dst is true iff the IPv4 destination address is ip, with the IPv4
// header assumed to start at shift bytes into the packet.
func ShiftIP4Dst(ip net.IP, shift uint32) bpf.Predicate {
	return ShiftOffsetEqualsU32(OffsetIP4Dst, ip4Word(ip), shift)
}

// IP4Dst is true iff the packet is IPv4 and its destination address is ip.
func IP4Dst(ip net.IP) bpf.Predicate {
	return EtherTypeIsIP4().And(ShiftIP4Dst(ip, SizeEtherHeader))
}

// ShiftIP4Host is true iff ip is either the IPv4 source or destination, with
// the IPv4 header assumed to start at shift bytes into the packet.
func ShiftIP4Host(ip net.IP, shift uint32) bpf.Predicate {
	return ShiftIP4Src(ip, shift).Or(ShiftIP4Dst(ip, shift))
}

// IP4Host is true iff the packet is IPv4 and ip is either its source or
// destination address.
func IP4Host(ip net.IP) bpf.Predicate { return IP4Src(ip).Or(IP4Dst(ip)) }
