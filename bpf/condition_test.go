package bpf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConditionEqualIsStructural(t *testing.T) {
	a := OffsetEqualsU16(12, 0x0800)
	b := OffsetEqualsU16(12, 0x0800)
	c := OffsetEqualsU16(12, 0x86DD)
	d := OffsetEqualsU8(12, 0x08)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c), "different operand must not be Equal")
	require.False(t, a.Equal(d), "different load width must not be Equal")
}

func TestTCPPortFilterRejectsNonMatchingProtocols(t *testing.T) {
	prog, err := BuildTCPPortFilter([]uint16{80, 443})
	require.NoError(t, err)
	require.NotZero(t, prog.Len())

	udpFrame := frame(0x0800, make([]byte, 40))
	udpFrame[14+9] = 17 // IPv4 protocol: UDP
	require.False(t, accepted(t, prog, udpFrame))
}

func TestTCPPortFilterAcceptsMatchingIPv4DstPort(t *testing.T) {
	prog, err := BuildTCPPortFilter([]uint16{80})
	require.NoError(t, err)

	payload := make([]byte, 40)
	// Minimal IPv4 header: version/IHL=0x45 (20-byte header), protocol=TCP.
	payload[0] = 0x45
	payload[9] = 6
	// TCP header begins at IPv4 payload offset 20: src port 12345, dst port 80.
	payload[20] = 0x30
	payload[21] = 0x39
	payload[22] = 0x00
	payload[23] = 80

	pkt := frame(0x0800, payload)
	require.True(t, accepted(t, prog, pkt))
}

func TestTCPPortFilterRejectsIPv4NonMatchingPort(t *testing.T) {
	prog, err := BuildTCPPortFilter([]uint16{80})
	require.NoError(t, err)

	payload := make([]byte, 40)
	payload[0] = 0x45
	payload[9] = 6
	payload[20] = 0x30
	payload[21] = 0x39
	payload[22] = 0x01
	payload[23] = 0xbb // port 443

	pkt := frame(0x0800, payload)
	require.False(t, accepted(t, prog, pkt))
}

func TestTCPPortFilterAcceptsMatchingIPv6SrcPort(t *testing.T) {
	prog, err := BuildTCPPortFilter([]uint16{22})
	require.NoError(t, err)

	// IPv6 header is a fixed 40 bytes; the TCP header starts right after it.
	payload := make([]byte, 40+20)
	payload[6] = 6 // next header: TCP
	// TCP header at offset 40: src port 22, dst port 9000.
	payload[40] = 0x00
	payload[41] = 0x16
	payload[42] = 0x23
	payload[43] = 0x28

	pkt := frame(0x86DD, payload)
	require.True(t, accepted(t, prog, pkt))
}

func TestTCPPortFilterRejectsIPv6NonMatchingPort(t *testing.T) {
	prog, err := BuildTCPPortFilter([]uint16{22})
	require.NoError(t, err)

	payload := make([]byte, 40+20)
	payload[6] = 6
	payload[40] = 0x00
	payload[41] = 0x50 // src port 80
	payload[42] = 0x23
	payload[43] = 0x28 // dst port 9000

	pkt := frame(0x86DD, payload)
	require.False(t, accepted(t, prog, pkt))
}
