package capture

import (
	"context"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Frame is one captured link-layer frame. Data holds the bytes actually
// read; WireLen is the frame's true length on the wire, recovered from
// MSG_TRUNC. A Frame returned by Capture.Next is always whole: Next discards
// any frame it can't read in full rather than handing back a partial one.
type Frame struct {
	Data    []byte
	WireLen int
}

// Truncated reports whether Data holds less than the full frame.
func (f Frame) Truncated() bool {
	return f.WireLen > len(f.Data)
}

// Decode lazily parses Data as an Ethernet frame for diagnostics. It is
// never on the hot path of a filtering decision, which is made entirely in
// kernel space by the attached bpf.Program before a Frame is ever produced.
func (f Frame) Decode() gopacket.Packet {
	return gopacket.NewPacket(f.Data, layers.LayerTypeEthernet, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
}

// Capture reads successive frames from a Socket.
type Capture struct {
	socket *Socket
	logger *zap.Logger
}

// NewCapture wraps an already-configured Socket (filter and ignore-outgoing
// flag, if wanted, should be set before the first Next call).
func NewCapture(s *Socket) *Capture {
	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{socket: s, logger: logger}
}

// Next blocks until one frame arrives, ctx is canceled, or a non-recoverable
// socket error occurs. A BufferUndersize condition (ErrBufferUndersize) is
// logged and the offending frame is discarded: Next keeps waiting for the
// next frame rather than handing the caller a truncated one or returning the
// error, mirroring how a dropped, over-large packet is simply missed
// traffic, not a fatal capture failure.
func (c *Capture) Next(ctx context.Context) (Frame, error) {
	buf := make([]byte, bufferSize)
	for {
		n, _, err := c.socket.conn.Recvfrom(ctx, buf, unix.MSG_TRUNC)
		if err != nil {
			return Frame{}, errors.Wrap(err, "capture: recvfrom")
		}

		// With MSG_TRUNC, n is the frame's true wire length even when it
		// exceeds len(buf); only min(n, len(buf)) bytes were actually copied.
		if n > bufferSize {
			c.logger.Warn("discarding frame that exceeded capture buffer",
				zap.Error(ErrBufferUndersize),
				zap.Int("wire_len", n),
				zap.Int("buffer_size", bufferSize))
			continue
		}

		return Frame{Data: append([]byte(nil), buf[:n]...), WireLen: n}, nil
	}
}

// Close releases the underlying socket.
func (c *Capture) Close() error {
	return c.socket.Close()
}
