package idiom

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEtherTypePredicates(t *testing.T) {
	prog, err := EtherTypeIsIP4().Compile()
	require.NoError(t, err)

	require.True(t, accepted(prog, frame(EtherTypeIP, nil)))
	require.False(t, accepted(prog, frame(EtherTypeIPv6, nil)))
	require.False(t, accepted(prog, frame(EtherTypeARP, nil)))
}

func TestEtherHostMatchesEitherDirection(t *testing.T) {
	mac := net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	prog, err := EtherHost(mac).Compile()
	require.NoError(t, err)

	asSrc := make([]byte, 14)
	copy(asSrc[6:12], mac)
	require.True(t, accepted(prog, frame2(asSrc)))

	asDst := make([]byte, 14)
	copy(asDst[0:6], mac)
	require.True(t, accepted(prog, frame2(asDst)))

	neither := make([]byte, 14)
	require.False(t, accepted(prog, frame2(neither)))
}

// frame2 is used by tests that need to fully control all 14 header bytes
// (EtherType included), rather than frame's "header + payload" split.
func frame2(header []byte) []byte {
	buf := make([]byte, 14)
	copy(buf, header)
	return buf
}
