// Package netserver implements the server control loop (SPEC_FULL.md
// §4.3): a single reactor that receives on the shared multicast socket,
// dispatches per-command handlers, and spins up one-shot goroutines for
// each GET/ADD's listening socket and transfer session.
package netserver

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netstore-go/netstore/internal/config"
	"github.com/netstore-go/netstore/internal/netutil"
	"github.com/netstore-go/netstore/internal/store"
	"golang.org/x/net/ipv4"
)

// Server is the long-lived server-side reactor. It owns the hosted-files
// set and free-space counter exclusively; every mutation happens inside
// dispatch (see dispatch.go), which runs on the reactor goroutine.
type Server struct {
	cfg     config.Server
	store   *store.Store
	log     *logrus.Logger
	timeout time.Duration

	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

// New builds a server ready to Run.
func New(cfg config.Server, st *store.Store, log *logrus.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		log:     log,
		timeout: time.Duration(cfg.Timeout) * time.Second,
	}
}

type udpPacket struct {
	data []byte
	from *net.UDPAddr
}

// Run joins the multicast group and services requests until ctx is
// cancelled or SIGINT arrives. It returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	conn, pc, err := netutil.ListenMulticast(s.cfg.MulticastAddr, s.cfg.CmdPort)
	if err != nil {
		return err
	}
	s.conn = conn
	s.pc = pc
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	pktCh := make(chan udpPacket, 32)
	recvDone := make(chan struct{})
	go s.recvLoop(conn, pktCh, recvDone)

	s.log.Infof("server listening on %s:%d", s.cfg.MulticastAddr, s.cfg.CmdPort)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			s.log.Info("SIGINT received, shutting down")
			return errInterrupted
		case pkt := <-pktCh:
			s.dispatch(pkt)
		case <-recvDone:
			return nil
		}
	}
}

// recvLoop is the only goroutine that ever calls Read on the shared
// multicast socket; it forwards exactly one packet at a time onto pktCh,
// the channel equivalent of a readiness bit for the reactor's select.
func (s *Server) recvLoop(conn *net.UDPConn, pktCh chan<- udpPacket, done chan<- struct{}) {
	defer close(done)
	for {
		buf := make([]byte, 65535)
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if isClosed(err) {
				return
			}
			s.log.Warnf("udp receive error: %v", err)
			continue
		}
		pktCh <- udpPacket{data: buf[:n], from: addr}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
