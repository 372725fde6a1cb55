package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"bpfcap/bpf"
	"bpfcap/capture"
	"bpfcap/idiom"
)

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap couldn't build its own logger; fall back rather than crash a
		// CLI whose whole job is to print packets.
		return zap.NewNop()
	}
	return logger
}

func runCapture(c *cli.Context, iface string, prog *bpf.Program) error {
	logger := newLogger(c.Bool("debug"))
	defer logger.Sync()

	fmt.Println(prog.Dump())

	sock, err := capture.NewSocket(iface, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer sock.Close()

	if err := sock.SetFilter(prog); err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("ignore-outgoing") {
		if err := sock.IgnoreOutgoing(); err != nil {
			return cli.Exit(err, 1)
		}
	}

	capturer := capture.NewCapture(sock)
	defer capturer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for {
		frame, err := capturer.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return cli.Exit(err, 1)
		}
		logger.Info("frame captured",
			zap.Int("wire_len", frame.WireLen),
			zap.Int("captured_len", len(frame.Data)),
			zap.Bool("truncated", frame.Truncated()),
			zap.String("summary", frame.Decode().String()),
		)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "bpfcapture"
	app.Usage = "Compile boolean packet predicates into classic BPF and capture with them"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "ignore-outgoing", Usage: "drop frames this host transmitted itself"},
		&cli.BoolFlag{Name: "debug", Usage: "enable development-mode (human-readable) logging"},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "host",
			Usage:     "Capture frames to or from a host address",
			ArgsUsage: "interface ip",
			Action: func(c *cli.Context) error {
				args := c.Args()
				if args.Len() < 2 {
					return cli.Exit("Insufficient arguments", 1)
				}
				ip := net.ParseIP(args.Get(1))
				if ip == nil {
					return cli.Exit("Could not parse IP address", 1)
				}
				prog, err := idiom.IPHost(ip).Compile()
				if err != nil {
					return cli.Exit(err, 1)
				}
				return runCapture(c, args.First(), prog)
			},
		},
		{
			Name:      "ports",
			Usage:     "Capture TCP segments on any of a set of ports",
			ArgsUsage: "interface port [port] ...",
			Action: func(c *cli.Context) error {
				args := c.Args()
				if args.Len() < 2 {
					return cli.Exit("Insufficient arguments", 1)
				}
				ports := make([]uint16, 0, args.Len()-1)
				for _, s := range args.Tail() {
					p, err := strconv.ParseUint(s, 10, 16)
					if err != nil {
						return cli.Exit(fmt.Sprintf("invalid port %q", s), 1)
					}
					ports = append(ports, uint16(p))
				}
				prog, err := bpf.BuildTCPPortFilter(ports)
				if err != nil {
					return cli.Exit(err, 1)
				}
				return runCapture(c, args.First(), prog)
			},
		},
		{
			Name:      "dump",
			Usage:     "Print the compiled filter program for a host address without capturing",
			ArgsUsage: "ip",
			Action: func(c *cli.Context) error {
				args := c.Args()
				if args.Len() < 1 {
					return cli.Exit("Insufficient arguments", 1)
				}
				ip := net.ParseIP(args.First())
				if ip == nil {
					return cli.Exit("Could not parse IP address", 1)
				}
				prog, err := idiom.IPHost(ip).Compile()
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Println(prog.Dump())
				return nil
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
