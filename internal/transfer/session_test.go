package transfer

import (
	"bytes"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pipePair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	var server net.Conn
	done := make(chan struct{})
	go func() {
		server, _ = ln.Accept()
		close(done)
	}()
	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	<-done
	return server, client
}

func TestFileToSocketSendsWholeFile(t *testing.T) {
	server, client := pipePair(t)
	defer client.Close()

	f, err := os.CreateTemp(t.TempDir(), "src")
	if err != nil {
		t.Fatal(err)
	}
	payload := bytes.Repeat([]byte("x"), 200)
	f.Write(payload)
	f.Seek(0, io.SeekStart)

	sess := New(server, f, FileToSocket, 2*time.Second)
	resultCh := make(chan Result, 1)
	go func() { resultCh <- sess.Run() }()

	got, err := io.ReadAll(client)
	if err != nil {
		t.Fatal(err)
	}
	res := <-resultCh
	assert.NoError(t, res.Err)
	assert.Equal(t, int64(200), res.BytesMoved)
	assert.Equal(t, payload, got)
}

func TestSocketToFileWritesWholeStream(t *testing.T) {
	server, client := pipePair(t)

	dst, err := os.CreateTemp(t.TempDir(), "dst")
	if err != nil {
		t.Fatal(err)
	}
	dstPath := dst.Name()

	sess := New(server, dst, SocketToFile, 2*time.Second)
	resultCh := make(chan Result, 1)
	go func() { resultCh <- sess.Run() }()

	payload := bytes.Repeat([]byte("y"), 150)
	client.Write(payload)
	client.Close()

	res := <-resultCh
	assert.NoError(t, res.Err)
	assert.Equal(t, int64(150), res.BytesMoved)

	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, payload, got)
}

func TestSocketToFileTimesOutOnInactivity(t *testing.T) {
	server, client := pipePair(t)
	defer client.Close()

	dst, err := os.CreateTemp(t.TempDir(), "dst")
	if err != nil {
		t.Fatal(err)
	}

	sess := New(server, dst, SocketToFile, 100*time.Millisecond)
	res := sess.Run()
	assert.Error(t, res.Err)
}
