// Package transfer implements the per-file TCP copy used for both GET/
// fetch downloads and ADD/upload uploads: a bidirectional, time-budgeted
// byte mover with the position/bufSize cursor discipline of
// SPEC_FULL.md §4.5.
package transfer

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/netstore-go/netstore/internal/wireerr"
	"github.com/netstore-go/netstore/pkg/wire"
)

// Direction is which way bytes flow for this session.
type Direction int

const (
	// SocketToFile reads from the TCP socket and writes to the file
	// (server receiving ADD, client receiving a GET download).
	SocketToFile Direction = iota
	// FileToSocket reads from the file and writes to the TCP socket
	// (server serving a GET, client performing an upload).
	FileToSocket
)

// Result is the terminal outcome of a Session's Run.
type Result struct {
	BytesMoved int64
	Err        error // nil on clean completion (EOF reached)
}

// Session owns one TCP connection and one file descriptor for the
// duration of a single transfer. No two concurrent sessions share a file
// descriptor (SPEC_FULL.md §3 ownership rule).
type Session struct {
	conn    net.Conn
	file    *os.File
	dir     Direction
	timeout time.Duration

	buf      [wire.BufferSize]byte
	position int
	bufSize  int
}

// New creates an active session. conn and file are already open; Run
// drives the copy to completion and closes both before returning.
func New(conn net.Conn, file *os.File, dir Direction, timeout time.Duration) *Session {
	return &Session{conn: conn, file: file, dir: dir, timeout: timeout}
}

// Run drives the transfer until EOF, error, or inactivity timeout, then
// closes both the connection and the file.
func (s *Session) Run() Result {
	defer s.conn.Close()
	defer s.file.Close()

	switch s.dir {
	case SocketToFile:
		return s.runSocketToFile()
	default:
		return s.runFileToSocket()
	}
}

func (s *Session) runSocketToFile() Result {
	var moved int64
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return Result{moved, err}
		}
		n, err := s.conn.Read(s.buf[:])
		if n > 0 {
			written, werr := s.file.Write(s.buf[:n])
			if werr != nil || written != n {
				return Result{moved, errWithCause(wireerr.ErrLocalIO, werr)}
			}
			moved += int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Result{moved, nil}
			}
			if isTimeout(err) {
				return Result{moved, wireerr.ErrTimeout}
			}
			return Result{moved, errWithCause(wireerr.ErrSocketIO, err)}
		}
	}
}

func (s *Session) runFileToSocket() Result {
	var moved int64
	for {
		if s.position == s.bufSize {
			n, err := s.file.Read(s.buf[:])
			if n == 0 || errors.Is(err, io.EOF) {
				return Result{moved, nil}
			}
			if err != nil {
				return Result{moved, errWithCause(wireerr.ErrLocalIO, err)}
			}
			s.bufSize = n
			s.position = 0
		}

		if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
			return Result{moved, err}
		}
		n, err := s.conn.Write(s.buf[s.position:s.bufSize])
		s.position += n
		moved += int64(n)
		if err != nil {
			if isTimeout(err) {
				return Result{moved, wireerr.ErrTimeout}
			}
			return Result{moved, errWithCause(wireerr.ErrSocketIO, err)}
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func errWithCause(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &causedError{kind: kind, cause: cause}
}

type causedError struct {
	kind  error
	cause error
}

func (e *causedError) Error() string { return e.kind.Error() + ": " + e.cause.Error() }
func (e *causedError) Unwrap() error { return e.kind }
func (e *causedError) Cause() error  { return e.cause }
