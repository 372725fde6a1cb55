// Package idiom builds bpf.Predicate values for common packet fields
// (Ethernet, IPv4, IPv6) so callers don't have to hand-roll Condition loads
// for the fields everyone filters on.
package idiom

import "bpfcap/bpf"

// OffsetEqualsU8 is true iff the octet at offset equals value.
func OffsetEqualsU8(offset uint32, value uint8) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU8(offset, value))
}

// ShiftOffsetEqualsU8 is true iff the octet at offset+shift equals value.
// shift lets a field defined relative to "the start of this layer" be reused
// once the layer's start within the packet is known at a call site.
func ShiftOffsetEqualsU8(offset uint32, value uint8, shift uint32) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU8(offset+shift, value))
}

// OffsetEqualsU16 is true iff the big-endian u16 at offset equals value.
func OffsetEqualsU16(offset uint32, value uint16) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU16(offset, value))
}

// ShiftOffsetEqualsU16 is true iff the big-endian u16 at offset+shift equals value.
func ShiftOffsetEqualsU16(offset uint32, value uint16, shift uint32) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU16(offset+shift, value))
}

// OffsetEqualsU32 is true iff the big-endian u32 at offset equals value.
func OffsetEqualsU32(offset uint32, value uint32) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU32(offset, value))
}

// ShiftOffsetEqualsU32 is true iff the big-endian u32 at offset+shift equals value.
func ShiftOffsetEqualsU32(offset uint32, value uint32, shift uint32) bpf.Predicate {
	return bpf.Terminal(bpf.OffsetEqualsU32(offset+shift, value))
}
