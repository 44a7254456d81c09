// Package netclient implements the client control loop (SPEC_FULL.md
// §4.4): a reactor multiplexing SIGINT, the UDP control socket, standard
// input commands, and every active TCP transfer, driving the client-side
// state machines for discover/search/fetch/upload/remove.
package netclient

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netstore-go/netstore/internal/config"
	"github.com/netstore-go/netstore/internal/netutil"
	"github.com/netstore-go/netstore/pkg/seq"
	"github.com/netstore-go/netstore/pkg/wire"
	"golang.org/x/net/ipv4"
)

// Client is the long-lived client-side reactor.
type Client struct {
	cfg       config.Client
	log       *logrus.Logger
	timeout   time.Duration
	mcastAddr *net.UDPAddr

	conn *net.UDPConn
	pc   *ipv4.PacketConn

	discoverReg *seq.Registry[*discoverWindow]
	searchReg   *seq.Registry[*searchWindow]
	fetchReg    *seq.Registry[*fetchState]
	uploadReg   *seq.Registry[*uploadAttempt]

	// lastSearch is the (server, filename) cross product from the most
	// recent completed search, which "fetch" consults (SPEC_FULL §4.4).
	lastSearch []searchMatch

	uploadQueue       []string
	uploadDiscoverSeq uint64
	hasUploadDiscover bool

	transferDoneCh chan transferOutcome
	stdout         *bufio.Writer
	stderr         *bufio.Writer
}

// New builds a client ready to Run. out/errOut are typically os.Stdout
// and os.Stderr; they are accepted as parameters so tests can capture
// the user-visible output lines verbatim.
func New(cfg config.Client, log *logrus.Logger, out, errOut *os.File) *Client {
	return &Client{
		cfg:            cfg,
		log:            log,
		timeout:        time.Duration(cfg.Timeout) * time.Second,
		mcastAddr:      &net.UDPAddr{IP: net.ParseIP(cfg.MulticastAddr), Port: cfg.CmdPort},
		discoverReg:    seq.New[*discoverWindow](),
		searchReg:      seq.New[*searchWindow](),
		fetchReg:       seq.New[*fetchState](),
		uploadReg:      seq.New[*uploadAttempt](),
		transferDoneCh: make(chan transferOutcome, 8),
		stdout:         bufio.NewWriter(out),
		stderr:         bufio.NewWriter(errOut),
	}
}

type udpPacket struct {
	data []byte
	from *net.UDPAddr
}

// Run opens the control socket and services the reactor until ctx is
// cancelled, SIGINT arrives, or the user types "exit".
func (c *Client) Run(ctx context.Context) error {
	conn, pc, mcast, err := netutil.DialMulticast(c.cfg.MulticastAddr, c.cfg.CmdPort)
	if err != nil {
		return err
	}
	c.conn = conn
	c.pc = pc
	c.mcastAddr = mcast
	defer conn.Close()
	defer c.flush()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	pktCh := make(chan udpPacket, 32)
	go c.recvLoop(conn, pktCh)

	lineCh := make(chan string, 8)
	lineErrCh := make(chan error, 1)
	go c.stdinLoop(lineCh, lineErrCh)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		c.armTimer(timer)
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			c.log.Info("SIGINT received, exiting")
			return errInterrupted
		case pkt := <-pktCh:
			c.handlePacket(pkt)
		case line := <-lineCh:
			if exit := c.handleLine(line); exit {
				return nil
			}
		case <-lineErrCh:
			return nil
		case out := <-c.transferDoneCh:
			c.handleTransferDone(out)
		case <-timer.C:
			c.sweepDeadlines()
		}
	}
}

func (c *Client) recvLoop(conn *net.UDPConn, pktCh chan<- udpPacket) {
	for {
		buf := make([]byte, wire.BufferSize)
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		pktCh <- udpPacket{data: buf[:n], from: addr}
	}
}

func (c *Client) stdinLoop(lineCh chan<- string, errCh chan<- error) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lineCh <- scanner.Text()
	}
	errCh <- scanner.Err()
}

func (c *Client) flush() {
	c.stdout.Flush()
	c.stderr.Flush()
}

func (c *Client) outf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
	c.stdout.Flush()
}

func (c *Client) errf(format string, args ...any) {
	fmt.Fprintf(c.stderr, format, args...)
	c.stderr.Flush()
}

func (c *Client) destPath(name string) string {
	return filepath.Join(c.cfg.OutFolder, name)
}
