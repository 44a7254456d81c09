package netserver

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/netstore-go/netstore/internal/transfer"
	"github.com/netstore-go/netstore/pkg/wire"
)

// dispatch decodes one UDP packet and routes it to the matching handler.
// It runs on the reactor goroutine and must return without blocking —
// any actual I/O it triggers (a TCP accept, a file copy) happens in a
// one-shot goroutine spawned by the handler.
func (s *Server) dispatch(pkt udpPacket) {
	p, err := wire.Decode(pkt.data)
	if err != nil {
		s.log.Warnf("[PCKG ERROR] Skipping invalid package from %s (%v)", pkt.from, err)
		return
	}

	switch p.Tag {
	case wire.HELLO:
		s.handleHELLO(p, pkt.from)
	case wire.LIST:
		s.handleLIST(p, pkt.from)
	case wire.GET:
		s.handleGET(p, pkt.from)
	case wire.DEL:
		s.handleDEL(p)
	case wire.ADD:
		s.handleADD(p, pkt.from)
	default:
		s.log.Warnf("[PCKG ERROR] Skipping invalid package from %s (unexpected tag %s)", pkt.from, p.Tag)
	}
}

func (s *Server) handleHELLO(p wire.Packet, from *net.UDPAddr) {
	if len(p.Data) != 0 {
		s.log.Warnf("[PCKG ERROR] Skipping invalid package from %s (HELLO carries data)", from)
		return
	}
	reply := wire.EncodeComplex(wire.GOOD_DAY, p.Seq, uint64(s.store.FreeSpace()), []byte(s.cfg.MulticastAddr))
	s.send(reply, from)
}

func (s *Server) handleLIST(p wire.Packet, from *net.UDPAddr) {
	substr := trimNUL(p.Data)
	matches := s.store.Search(substr)
	if len(matches) == 0 {
		return
	}

	var chunk []string
	chunkLen := 0
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		reply := wire.EncodeSimple(wire.MY_LIST, p.Seq, []byte(strings.Join(chunk, "\n")))
		s.send(reply, from)
		chunk = nil
		chunkLen = 0
	}
	for _, name := range matches {
		extra := len(name)
		if len(chunk) > 0 {
			extra++ // "\n" separator
		}
		if chunkLen+extra > wire.DataMax && len(chunk) > 0 {
			flush()
			extra = len(name)
		}
		chunk = append(chunk, name)
		chunkLen += extra
	}
	flush()
}

func (s *Server) handleGET(p wire.Packet, from *net.UDPAddr) {
	name := trimNUL(p.Data)
	if !s.store.Contains(name) {
		s.log.Debugf("GET for unknown file %q from %s, dropping", name, from)
		return
	}

	path := filepath.Join(s.cfg.SharedFolder, name)
	file, err := os.Open(path)
	if err != nil {
		s.log.Warnf("GET %q: open failed: %v", name, err)
		return
	}

	ln, port, err := listenEphemeral()
	if err != nil {
		s.log.Warnf("GET %q: listen failed: %v", name, err)
		file.Close()
		return
	}

	reply := wire.EncodeComplex(wire.CONNECT_ME, p.Seq, uint64(port), []byte(name))
	s.send(reply, from)

	go s.serveTransfer(ln, file, name, transfer.FileToSocket)
}

func (s *Server) handleDEL(p wire.Packet) {
	name := trimNUL(p.Data)
	if !s.store.Contains(name) {
		return
	}
	path := filepath.Join(s.cfg.SharedFolder, name)
	if err := os.Remove(path); err != nil {
		s.log.Warnf("DEL %q: unlink failed: %v", name, err)
		return
	}
	s.store.Release(name)
}

func (s *Server) handleADD(p wire.Packet, from *net.UDPAddr) {
	name := trimNUL(p.Data)
	size := int64(p.Param)

	switch {
	case name == "":
		s.rejectADD(p, from, name)
		return
	case strings.Contains(name, "/"):
		s.rejectADD(p, from, name)
		return
	case s.store.Contains(name):
		s.rejectADD(p, from, name)
		return
	case size > s.store.FreeSpace():
		s.rejectADD(p, from, name)
		return
	}

	path := filepath.Join(s.cfg.SharedFolder, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0660)
	if err != nil {
		s.log.Warnf("ADD %q: create failed: %v", name, err)
		return
	}

	ln, port, err := listenEphemeral()
	if err != nil {
		s.log.Warnf("ADD %q: listen failed: %v", name, err)
		file.Close()
		return
	}

	// Reservation happens at accept time, before the bytes have arrived,
	// and is not rolled back if the transfer never completes (SPEC_FULL
	// open question #1).
	s.store.Reserve(name, size)

	reply := wire.EncodeComplex(wire.CAN_ADD, p.Seq, uint64(port), nil)
	s.send(reply, from)

	go s.serveTransfer(ln, file, name, transfer.SocketToFile)
}

func (s *Server) rejectADD(p wire.Packet, from *net.UDPAddr, name string) {
	reply := wire.EncodeSimple(wire.NO_WAY, p.Seq, []byte(name))
	s.send(reply, from)
}

// serveTransfer accepts at most one connection on ln within the server's
// timeout, then runs the transfer session to completion. It owns ln and
// file for their entire lifetime and needs no further interaction with
// the reactor's shared state once it has been spawned.
func (s *Server) serveTransfer(ln *net.TCPListener, file *os.File, name string, dir transfer.Direction) {
	defer ln.Close()

	if err := ln.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		s.log.Warnf("transfer %q: set accept deadline: %v", name, err)
		file.Close()
		return
	}
	conn, err := ln.Accept()
	if err != nil {
		s.log.Warnf("transfer %q: no connection within timeout: %v", name, err)
		file.Close()
		return
	}

	sess := transfer.New(conn, file, dir, s.timeout)
	res := sess.Run()
	if res.Err != nil {
		s.log.Warnf("transfer %q failed after %d bytes: %v", name, res.BytesMoved, res.Err)
		return
	}
	s.log.Infof("transfer %q completed, %d bytes", name, res.BytesMoved)
}

func (s *Server) send(data []byte, to *net.UDPAddr) {
	if _, err := s.conn.WriteToUDP(data, to); err != nil {
		s.log.Warnf("udp send to %s failed: %v", to, err)
	}
}

func trimNUL(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
