package idiom

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func ip6Packet(hopLimit, nextHeader byte, src, dst net.IP) []byte {
	payload := make([]byte, 40)
	payload[7] = hopLimit
	payload[6] = nextHeader
	copy(payload[8:24], src.To16())
	copy(payload[24:40], dst.To16())
	return frame(EtherTypeIPv6, payload)
}

func TestIP6HostMatchesSrcOrDst(t *testing.T) {
	target := net.ParseIP("2001:db8::1")
	other := net.ParseIP("2001:db8::2")

	prog, err := IP6Host(target).Compile()
	require.NoError(t, err)

	require.True(t, accepted(prog, ip6Packet(64, 6, target, other)))
	require.True(t, accepted(prog, ip6Packet(64, 6, other, target)))
	require.False(t, accepted(prog, ip6Packet(64, 6, other, other)))
}

func TestIP6HopLimitAndNextHeader(t *testing.T) {
	src := net.ParseIP("2001:db8::1")
	dst := net.ParseIP("2001:db8::2")

	hopProg, err := IP6HopLimit(64).Compile()
	require.NoError(t, err)
	require.True(t, accepted(hopProg, ip6Packet(64, 6, src, dst)))
	require.False(t, accepted(hopProg, ip6Packet(32, 6, src, dst)))

	nhProg, err := IP6NextHeader(17).Compile()
	require.NoError(t, err)
	require.True(t, accepted(nhProg, ip6Packet(64, 17, src, dst)))
	require.False(t, accepted(nhProg, ip6Packet(64, 6, src, dst)))
}
