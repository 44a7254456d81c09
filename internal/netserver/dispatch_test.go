package netserver

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/netstore-go/netstore/internal/config"
	"github.com/netstore-go/netstore/internal/store"
	"github.com/netstore-go/netstore/pkg/wire"
)

func newTestServer(t *testing.T, folder string) (*Server, *net.UDPConn, *net.UDPAddr) {
	t.Helper()
	st, ok := store.New(1000, nil, nil)
	if !ok {
		t.Fatal("store init failed")
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := config.Server{MulticastAddr: "239.10.11.12", CmdPort: 0, SharedFolder: folder, MaxSpace: 1000, Timeout: 1}
	s := New(cfg, st, log)

	serverConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	s.conn = serverConn

	clientConn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { serverConn.Close(); clientConn.Close() })

	return s, clientConn, serverConn.LocalAddr().(*net.UDPAddr)
}

func TestHandleHELLOReplies(t *testing.T) {
	s, client, serverAddr := newTestServer(t, t.TempDir())
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	s.dispatch(udpPacket{data: wire.EncodeSimple(wire.HELLO, 42, nil), from: clientAddr})

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 65535)
	n, from, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply received: %v", err)
	}
	p, err := wire.Decode(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, wire.GOOD_DAY, p.Tag)
	assert.Equal(t, uint64(42), p.Seq)
	assert.Equal(t, uint64(1000), p.Param)
	assert.Equal(t, serverAddr.Port, from.Port)
}

func TestHandleLISTSendsMatchingFiles(t *testing.T) {
	folder := t.TempDir()
	s, client, _ := newTestServer(t, folder)
	s.store.Reserve("a.txt", 10)
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	s.dispatch(udpPacket{data: wire.EncodeSimple(wire.LIST, 1, nil), from: clientAddr})

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 65535)
	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply received: %v", err)
	}
	p, _ := wire.Decode(buf[:n])
	assert.Equal(t, wire.MY_LIST, p.Tag)
	assert.Equal(t, "a.txt", string(p.Data))
}

func TestHandleLISTEmptyResultNoReply(t *testing.T) {
	s, client, _ := newTestServer(t, t.TempDir())
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	s.dispatch(udpPacket{data: wire.EncodeSimple(wire.LIST, 1, []byte("ghost")), from: clientAddr})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 65535)
	_, _, err := client.ReadFromUDP(buf)
	if err == nil {
		t.Error("expected no reply for empty search result")
	}
}

func TestHandleADDRejectsOversize(t *testing.T) {
	s, client, _ := newTestServer(t, t.TempDir())
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	s.dispatch(udpPacket{data: wire.EncodeComplex(wire.ADD, 9, 2000, []byte("big")), from: clientAddr})

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 65535)
	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply received: %v", err)
	}
	p, _ := wire.Decode(buf[:n])
	assert.Equal(t, wire.NO_WAY, p.Tag)
	assert.Equal(t, "big", string(p.Data))
	assert.Equal(t, int64(1000), s.store.FreeSpace())
}

func TestHandleADDAcceptsAndReserves(t *testing.T) {
	folder := t.TempDir()
	s, client, _ := newTestServer(t, folder)
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	s.dispatch(udpPacket{data: wire.EncodeComplex(wire.ADD, 9, 100, []byte("new.txt")), from: clientAddr})

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 65535)
	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply received: %v", err)
	}
	p, _ := wire.Decode(buf[:n])
	assert.Equal(t, wire.CAN_ADD, p.Tag)
	assert.True(t, p.Param > 0)
	assert.Equal(t, int64(900), s.store.FreeSpace())
	assert.True(t, s.store.Contains("new.txt"))
}

func TestHandleDELRemovesFileAndRestoresSpace(t *testing.T) {
	folder := t.TempDir()
	s, client, _ := newTestServer(t, folder)
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	path := filepath.Join(folder, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	s.store.Reserve("a.txt", 5)

	s.dispatch(udpPacket{data: wire.EncodeSimple(wire.DEL, 1, []byte("a.txt")), from: clientAddr})

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
	assert.Equal(t, int64(1000), s.store.FreeSpace())
	assert.False(t, s.store.Contains("a.txt"))

	// DEL never replies.
	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 65535)
	_, _, err := client.ReadFromUDP(buf)
	if err == nil {
		t.Error("expected no reply for DEL")
	}
}

func TestHandleDELNonexistentIsNoop(t *testing.T) {
	s, _, _ := newTestServer(t, t.TempDir())
	before := s.store.FreeSpace()
	s.dispatch(udpPacket{data: wire.EncodeSimple(wire.DEL, 1, []byte("ghost"))})
	assert.Equal(t, before, s.store.FreeSpace())
}
