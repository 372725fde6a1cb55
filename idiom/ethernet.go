package idiom

import (
	"encoding/binary"
	"net"

	"bpfcap/bpf"
)

// Ethernet II header field offsets and well-known EtherType values.
const (
	OffsetEtherDst  uint32 = 0
	OffsetEtherSrc  uint32 = 6
	OffsetEtherType uint32 = 12
	SizeEtherHeader uint32 = 14

	EtherTypeIP   uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
	EtherTypeIPv6 uint16 = 0x86DD
)

// EtherType is true iff the packet's EtherType field equals etherType.
func EtherType(etherType uint16) bpf.Predicate {
	return OffsetEqualsU16(OffsetEtherType, etherType)
}

// macWords splits a 6-byte MAC into the u32/u16 pair cBPF can load and
// compare directly, matching how loadU32At/loadU16At read big-endian words.
func macWords(mac net.HardwareAddr) (uint32, uint16) {
	return binary.BigEndian.Uint32(mac[0:4]), binary.BigEndian.Uint16(mac[4:6])
}

// EtherSrc is true iff the packet's Ethernet source address is mac.
func EtherSrc(mac net.HardwareAddr) bpf.Predicate {
	hi, lo := macWords(mac)
	return OffsetEqualsU32(OffsetEtherSrc, hi).And(OffsetEqualsU16(OffsetEtherSrc+4, lo))
}

// EtherDst is true iff the packet's Ethernet destination address is mac.
func EtherDst(mac net.HardwareAddr) bpf.Predicate {
	hi, lo := macWords(mac)
	return OffsetEqualsU32(OffsetEtherDst, hi).And(OffsetEqualsU16(OffsetEtherDst+4, lo))
}

// EtherHost is true iff mac is either the Ethernet source or destination.
func EtherHost(mac net.HardwareAddr) bpf.Predicate {
	return EtherDst(mac).Or(EtherSrc(mac))
}

// EtherTypeIsARP accepts only ARP frames.
func EtherTypeIsARP() bpf.Predicate { return EtherType(EtherTypeARP) }

// EtherTypeIsIP4 accepts only IPv4 frames.
func EtherTypeIsIP4() bpf.Predicate { return EtherType(EtherTypeIP) }

// EtherTypeIsIP6 accepts only IPv6 frames.
func EtherTypeIsIP6() bpf.Predicate { return EtherType(EtherTypeIPv6) }
