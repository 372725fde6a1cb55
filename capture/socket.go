// Package capture attaches compiled bpf.Program filters to raw AF_PACKET
// sockets and delivers the frames that pass them.
package capture

import (
	"fmt"

	"github.com/mdlayher/socket"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"bpfcap/bpf"
)

// packetIgnoreOutgoing is PACKET_IGNORE_OUTGOING (linux/if_packet.h), not yet
// exposed as a named constant by golang.org/x/sys/unix at the version this
// module pins.
const packetIgnoreOutgoing = 23

// bufferSize is the per-recv buffer, at least 65535 bytes. Frames longer
// than it (a maximum-size IP datagram plus its link-layer header is one) are
// reported as BufferUndersize and discarded rather than silently truncated.
const bufferSize = 65536

// ErrBufferUndersize identifies a read that received more bytes than fit in
// the capture buffer. Capture.Next logs it and discards the frame rather
// than returning it to the caller; MSG_TRUNC still reports the frame's true
// wire length so the log records how much was lost.
var ErrBufferUndersize = errors.New("capture: received frame larger than the read buffer")

// Socket is a bound, non-blocking AF_PACKET/SOCK_RAW socket on one network
// interface.
type Socket struct {
	conn    *socket.Conn
	ifindex int
	logger  *zap.Logger
}

// NewSocket opens a raw socket bound to the named interface, capturing every
// EtherType. Opening a raw AF_PACKET socket requires CAP_NET_RAW.
func NewSocket(ifaceName string, logger *zap.Logger) (*Socket, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	link, err := netlink.LinkByName(ifaceName)
	if err != nil {
		return nil, errors.Wrapf(err, "capture: resolve interface %q", ifaceName)
	}
	ifindex := link.Attrs().Index

	// htons(ETH_P_ALL): the protocol field of an AF_PACKET socket is
	// compared against the wire in network byte order.
	proto := int(htons(unix.ETH_P_ALL))

	conn, err := socket.Socket(unix.AF_PACKET, unix.SOCK_RAW, proto, "bpfcapture", nil)
	if err != nil {
		return nil, errors.Wrap(err, "capture: open AF_PACKET socket")
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: uint16(proto),
		Ifindex:  ifindex,
	}
	if err := conn.Bind(addr); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "capture: bind to interface %q", ifaceName)
	}

	logger.Debug("opened raw capture socket", zap.String("interface", ifaceName), zap.Int("ifindex", ifindex))

	return &Socket{conn: conn, ifindex: ifindex, logger: logger}, nil
}

// htons converts a 16-bit value from host to network byte order.
func htons(v uint16) uint16 {
	return v<<8 | v>>8
}

// SetFilter installs prog as the socket's classic BPF filter via
// SO_ATTACH_FILTER. Any frame the program's ACCEPT/DROP decision rejects
// never reaches a subsequent Capture.Next call.
func (s *Socket) SetFilter(prog *bpf.Program) error {
	filters := prog.SockFilters()
	fprog := unix.SockFprog{Len: uint16(prog.Len())}
	if len(filters) > 0 {
		fprog.Filter = &filters[0]
	}
	return s.setsockopt(func(fd int) error {
		return unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &fprog)
	}, "SO_ATTACH_FILTER")
}

// IgnoreOutgoing drops frames this host itself transmitted on the interface,
// so only genuinely received traffic is reported.
func (s *Socket) IgnoreOutgoing() error {
	return s.setsockopt(func(fd int) error {
		return unix.SetsockoptInt(fd, unix.SOL_PACKET, packetIgnoreOutgoing, 1)
	}, "PACKET_IGNORE_OUTGOING")
}

// setsockopt runs fn against the socket's raw file descriptor, the way
// net.Conn-based code reaches setsockopt calls the standard library doesn't
// expose directly.
func (s *Socket) setsockopt(fn func(fd int) error, op string) error {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return errors.Wrapf(err, "capture: %s: syscall conn", op)
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = fn(int(fd))
	}); err != nil {
		return errors.Wrapf(err, "capture: %s: control", op)
	}
	if sockErr != nil {
		return errors.Wrapf(sockErr, "capture: %s", op)
	}
	return nil
}

// Close releases the underlying socket.
func (s *Socket) Close() error {
	return s.conn.Close()
}

func (s *Socket) String() string {
	return fmt.Sprintf("capture.Socket{ifindex=%d}", s.ifindex)
}
